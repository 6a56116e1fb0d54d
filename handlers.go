package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/AtlasData/atlas-insight-go/analysis/query"
	"github.com/AtlasData/atlas-insight-go/analysis/tabular"
	"github.com/AtlasData/atlas-insight-go/pkg/catalog"
	"github.com/AtlasData/atlas-insight-go/pkg/filestore"
	"github.com/AtlasData/atlas-insight-go/pkg/models"
	"github.com/AtlasData/atlas-insight-go/utils"
	"github.com/gorilla/mux"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "atlas-insight",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// AnalyzeRequest carries an ad-hoc payload to analyze without cataloguing it
type AnalyzeRequest struct {
	Content  string `json:"content"`
	Format   string `json:"format"`
	Title    string `json:"title,omitempty"`
	Category string `json:"category,omitempty"`
	Question string `json:"question,omitempty"`
}

// handleAnalyze runs the full pipeline over an uploaded payload
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequestResponse(w, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeBadRequestResponse(w, "content is required")
		return
	}

	format, ok := parseFormat(req.Format)
	if !ok {
		writeBadRequestResponse(w, "format must be csv or json")
		return
	}

	result, err := s.engine.AnalyzeRaw(r.Context(), req.Content, format, req.Category, req.Title, req.Question)
	if err != nil {
		var parseErr *tabular.ParseError
		if errors.As(err, &parseErr) {
			writeBadRequestResponse(w, parseErr.Error())
			return
		}
		s.logger.Error("Analysis failed", err, utils.Component("api"))
		writeInternalServerErrorResponse(w, "analysis failed")
		return
	}
	writeSuccessResponse(w, result)
}

// QueryRequest carries a free-text question over the catalog
type QueryRequest struct {
	Question string `json:"question"`
}

// handleQuery answers a natural-language question from catalogued datasets
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequestResponse(w, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeBadRequestResponse(w, "question is required")
		return
	}

	result, err := s.engine.ProcessQuery(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, query.ErrNoRelevantData) {
			// An unanswerable question is an empty state, not a failure.
			writeSuccessResponse(w, models.QueryResult{
				Question:       req.Question,
				Answer:         "No catalogued datasets match this question yet. Try adding datasets or rephrasing.",
				Datasets:       []models.Dataset{},
				Visualizations: []models.Visualization{},
				Insights:       []string{},
			})
			return
		}
		s.logger.Error("Query failed", err, utils.Component("api"))
		writeInternalServerErrorResponse(w, "query failed")
		return
	}
	writeSuccessResponse(w, result)
}

// handleListDatasets lists catalogued datasets with optional filters
func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	filter := models.DatasetFilter{
		Category: r.URL.Query().Get("category"),
		Limit:    parseLimit(r, 0),
	}
	if featured := r.URL.Query().Get("featured"); featured != "" {
		val := featured == "true"
		filter.Featured = &val
	}

	datasets, err := s.catalog.ListDatasets(r.Context(), filter)
	if err != nil {
		s.logger.Error("Failed to list datasets", err, utils.Component("api"))
		writeInternalServerErrorResponse(w, "failed to list datasets")
		return
	}
	writeSuccessResponse(w, map[string]any{
		"datasets": datasets,
		"count":    len(datasets),
	})
}

// DatasetRequest carries a dataset's metadata plus its file content
type DatasetRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Format      string `json:"format"`
	Featured    *bool  `json:"featured,omitempty"`
	Content     string `json:"content"`
}

// handleCreateDataset catalogs a new dataset and stores its file
func (s *Server) handleCreateDataset(w http.ResponseWriter, r *http.Request) {
	var req DatasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequestResponse(w, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeBadRequestResponse(w, "title is required")
		return
	}
	format, ok := parseFormat(req.Format)
	if !ok {
		writeBadRequestResponse(w, "format must be csv or json")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeBadRequestResponse(w, "content is required")
		return
	}

	ds := &models.Dataset{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Format:      models.DatasetFormat(format),
	}
	if req.Featured != nil {
		ds.Featured = *req.Featured
	}
	if err := s.catalog.SaveDataset(r.Context(), ds); err != nil {
		s.logger.Error("Failed to save dataset", err, utils.Component("api"))
		writeInternalServerErrorResponse(w, "failed to save dataset")
		return
	}

	ds.FileRef = ds.ID + "." + string(format)
	if err := s.writable.Put(r.Context(), ds.FileRef, req.Content); err != nil {
		s.logger.Error("Failed to store dataset file", err, utils.Component("api"))
		writeInternalServerErrorResponse(w, "failed to store dataset file")
		return
	}
	if err := s.catalog.SaveDataset(r.Context(), ds); err != nil {
		s.logger.Error("Failed to save dataset", err, utils.Component("api"))
		writeInternalServerErrorResponse(w, "failed to save dataset")
		return
	}

	writeJSONResponse(w, http.StatusCreated, map[string]any{
		"success": true,
		"data":    ds,
	})
}

// handleGetDataset returns one catalogued dataset
func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ds, err := s.catalog.GetDataset(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeNotFoundResponse(w, "dataset not found: "+id)
			return
		}
		s.logger.Error("Failed to get dataset", err, utils.Component("api"))
		writeInternalServerErrorResponse(w, "failed to get dataset")
		return
	}
	writeSuccessResponse(w, ds)
}

// handleUpdateDataset updates a dataset's metadata and optionally its file
func (s *Server) handleUpdateDataset(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ds, err := s.catalog.GetDataset(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeNotFoundResponse(w, "dataset not found: "+id)
			return
		}
		writeInternalServerErrorResponse(w, "failed to get dataset")
		return
	}

	var req DatasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequestResponse(w, "Invalid request body: "+err.Error())
		return
	}

	if req.Title != "" {
		ds.Title = req.Title
	}
	if req.Description != "" {
		ds.Description = req.Description
	}
	if req.Category != "" {
		ds.Category = req.Category
	}
	if req.Featured != nil {
		ds.Featured = *req.Featured
	}
	if req.Format != "" {
		format, ok := parseFormat(req.Format)
		if !ok {
			writeBadRequestResponse(w, "format must be csv or json")
			return
		}
		ds.Format = models.DatasetFormat(format)
	}
	if req.Content != "" {
		if ds.FileRef == "" {
			ds.FileRef = ds.ID + "." + string(ds.Format)
		}
		if err := s.writable.Put(r.Context(), ds.FileRef, req.Content); err != nil {
			s.logger.Error("Failed to store dataset file", err, utils.Component("api"))
			writeInternalServerErrorResponse(w, "failed to store dataset file")
			return
		}
		// Stored content changed, so any cached profile is stale.
		ds.Profile = nil
	}

	if err := s.catalog.SaveDataset(r.Context(), ds); err != nil {
		s.logger.Error("Failed to save dataset", err, utils.Component("api"))
		writeInternalServerErrorResponse(w, "failed to save dataset")
		return
	}
	writeSuccessResponse(w, ds)
}

// handleDeleteDataset removes a dataset and its stored file
func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ds, err := s.catalog.GetDataset(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeNotFoundResponse(w, "dataset not found: "+id)
			return
		}
		writeInternalServerErrorResponse(w, "failed to get dataset")
		return
	}

	if ds.FileRef != "" {
		if err := s.writable.Delete(r.Context(), ds.FileRef); err != nil && !errors.Is(err, filestore.ErrNotFound) {
			s.logger.Warn("Failed to delete dataset file",
				utils.String("file_ref", ds.FileRef),
				utils.Component("api"))
		}
	}
	if err := s.catalog.DeleteDataset(r.Context(), id); err != nil {
		s.logger.Error("Failed to delete dataset", err, utils.Component("api"))
		writeInternalServerErrorResponse(w, "failed to delete dataset")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"message":    "dataset deleted",
		"dataset_id": id,
	})
}

// handleDatasetAnalysis runs the full analysis pipeline over one
// catalogued dataset. An optional question query parameter steers the
// narrative.
func (s *Server) handleDatasetAnalysis(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ds, err := s.catalog.GetDataset(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeNotFoundResponse(w, "dataset not found: "+id)
			return
		}
		writeInternalServerErrorResponse(w, "failed to get dataset")
		return
	}

	question := r.URL.Query().Get("question")
	result, _, err := s.engine.AnalyzeDataset(r.Context(), *ds, question)
	if err != nil {
		var parseErr *tabular.ParseError
		if errors.As(err, &parseErr) {
			writeBadRequestResponse(w, parseErr.Error())
			return
		}
		s.logger.Error("Dataset analysis failed", err,
			utils.String("dataset_id", id),
			utils.Component("api"))
		writeInternalServerErrorResponse(w, "analysis failed")
		return
	}
	writeSuccessResponse(w, result)
}

// handleRefreshProfile re-profiles one dataset on demand
func (s *Server) handleRefreshProfile(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ds, err := s.catalog.GetDataset(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeNotFoundResponse(w, "dataset not found: "+id)
			return
		}
		writeInternalServerErrorResponse(w, "failed to get dataset")
		return
	}

	if err := s.scheduler.RefreshOne(r.Context(), *ds); err != nil {
		s.logger.Error("Profile refresh failed", err,
			utils.String("dataset_id", id),
			utils.Component("api"))
		writeInternalServerErrorResponse(w, "profile refresh failed")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"message":    "profile refreshed",
		"dataset_id": id,
	})
}

// parseFormat normalizes the wire format name
func parseFormat(raw string) (tabular.Format, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "csv":
		return tabular.FormatCSV, true
	case "json":
		return tabular.FormatJSON, true
	default:
		return "", false
	}
}
