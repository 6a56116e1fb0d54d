package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AtlasData/atlas-insight-go/analysis"
	"github.com/AtlasData/atlas-insight-go/analysis/query"
	"github.com/AtlasData/atlas-insight-go/pkg/catalog"
	"github.com/AtlasData/atlas-insight-go/pkg/config"
	"github.com/AtlasData/atlas-insight-go/pkg/filestore"
	"github.com/AtlasData/atlas-insight-go/pkg/models"
	"github.com/AtlasData/atlas-insight-go/pkg/scheduler"
	"github.com/AtlasData/atlas-insight-go/utils"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	store := catalog.NewMemoryStore()
	files, err := filestore.NewFileSystemStore(t.TempDir())
	require.NoError(t, err)

	logger := utils.GetLogger()
	logger.SetLevel(utils.ERROR)

	cfg := analysis.DefaultConfig()
	engine := query.NewEngine(cfg, store, files, nil, logger)

	s := &Server{
		router:    mux.NewRouter(),
		cfg:       &config.Config{RequestTimeout: 30 * time.Second},
		analysis:  cfg,
		engine:    engine,
		catalog:   store,
		files:     files,
		writable:  files,
		scheduler: scheduler.NewProfileScheduler(engine, store, logger),
		bus:       utils.NewEventBus(),
		logger:    logger,
	}
	s.setupRoutes()
	return s
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func seedDataset(t *testing.T, s *Server, ds models.Dataset, content string) models.Dataset {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.catalog.SaveDataset(ctx, &ds))
	if ds.FileRef == "" {
		ds.FileRef = ds.ID + "." + string(ds.Format)
		require.NoError(t, s.catalog.SaveDataset(ctx, &ds))
	}
	require.NoError(t, s.writable.Put(ctx, ds.FileRef, content))
	return ds
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestHandleAnalyze(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{
		Content: "region,revenue\nnorth,100\nnorth,110\nsouth,40\nsouth,45\n",
		Format:  "csv",
		Title:   "regional revenue",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Insights       []string `json:"insights"`
			Visualizations []any    `json:"visualizations"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.Data.Insights)
}

func TestHandleAnalyzeBadInput(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{Content: "x", Format: "xml"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{Content: "header only\n", Format: "csv"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{Format: "csv"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleQueryEmptyCatalog(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/v1/query", QueryRequest{Question: "anything at all"})

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data models.QueryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Data.Datasets)
	assert.Contains(t, body.Data.Answer, "No catalogued datasets")
}

func TestHandleQueryAnswersFromCatalog(t *testing.T) {
	s := newTestServer(t)
	seedDataset(t, s, models.Dataset{
		Title:    "GDP by Country",
		Category: "Economic Indicators",
		Format:   models.FormatCSV,
	}, "country,gdp\nUS,21000\nDE,4200\nFR,2900\n")

	rec := doJSON(t, s, http.MethodPost, "/api/v1/query", QueryRequest{Question: "Show me the GDP by country"})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data models.QueryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.Datasets)
	assert.Equal(t, "GDP by Country", body.Data.Datasets[0].Title)
	assert.NotEmpty(t, body.Data.Answer)
}

func TestDatasetCRUDOverHTTP(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/datasets", DatasetRequest{
		Title:    "Air Quality",
		Category: "Environment",
		Format:   "csv",
		Content:  "site,pm25\nx,40\ny,50\n",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data models.Dataset `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created.Data.ID
	require.NotEmpty(t, id)
	assert.NotEmpty(t, created.Data.FileRef)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/datasets/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/datasets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Equal(t, 1, listed.Data.Count)

	rec = doJSON(t, s, http.MethodPut, "/api/v1/datasets/"+id, DatasetRequest{Description: "updated"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodDelete, "/api/v1/datasets/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/datasets/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleUpdateDatasetKeepsFeatured(t *testing.T) {
	s := newTestServer(t)
	ds := seedDataset(t, s, models.Dataset{
		Title:    "School Funding",
		Category: "Education",
		Format:   models.FormatCSV,
		Featured: true,
	}, "district,budget\na,100\nb,120\n")

	rec := doJSON(t, s, http.MethodPut, "/api/v1/datasets/"+ds.ID, map[string]any{"description": "updated"})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data models.Dataset `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "updated", body.Data.Description)
	assert.True(t, body.Data.Featured, "metadata-only update should keep the featured flag")

	rec = doJSON(t, s, http.MethodPut, "/api/v1/datasets/"+ds.ID, map[string]any{"featured": false})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Data.Featured)
}

// newCachedTestServer wires the file cache in front of both reads and
// writes, the way NewServer does when Redis is configured.
func newCachedTestServer(t *testing.T) *Server {
	t.Helper()

	store := catalog.NewMemoryStore()
	fs, err := filestore.NewFileSystemStore(t.TempDir())
	require.NoError(t, err)

	logger := utils.GetLogger()
	logger.SetLevel(utils.ERROR)

	mr := miniredis.RunT(t)
	cached := filestore.NewCachedStore(fs, redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute, logger)

	cfg := analysis.DefaultConfig()
	engine := query.NewEngine(cfg, store, cached, nil, logger)

	s := &Server{
		router:    mux.NewRouter(),
		cfg:       &config.Config{RequestTimeout: 30 * time.Second},
		analysis:  cfg,
		engine:    engine,
		catalog:   store,
		files:     cached,
		writable:  cached,
		scheduler: scheduler.NewProfileScheduler(engine, store, logger),
		bus:       utils.NewEventBus(),
		logger:    logger,
	}
	s.setupRoutes()
	return s
}

func TestHandleUpdateDatasetRefreshesCachedFile(t *testing.T) {
	s := newCachedTestServer(t)
	ds := seedDataset(t, s, models.Dataset{
		Title:    "Enrollment",
		Category: "Education",
		Format:   models.FormatCSV,
	}, "district,students\nnorth,1200\nsouth,900\n")

	// Prime the cache through a profile refresh.
	rec := doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/v1/datasets/%s/profile", ds.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPut, "/api/v1/datasets/"+ds.ID, map[string]any{
		"content": "district,students\nnorth,1200\nsouth,900\neast,700\nwest,500\n",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/v1/datasets/%s/profile", ds.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := s.catalog.GetDataset(context.Background(), ds.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Profile)
	assert.Equal(t, 4, got.Profile.RowCount, "re-profiling after an update should read the new content")
}

func TestHandleDeleteDatasetDropsCachedFile(t *testing.T) {
	s := newCachedTestServer(t)
	ds := seedDataset(t, s, models.Dataset{
		Title:  "Enrollment",
		Format: models.FormatCSV,
	}, "district,students\nnorth,1200\n")

	_, err := s.files.Fetch(context.Background(), ds.FileRef)
	require.NoError(t, err)

	rec := doJSON(t, s, http.MethodDelete, "/api/v1/datasets/"+ds.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	_, err = s.files.Fetch(context.Background(), ds.FileRef)
	assert.ErrorIs(t, err, filestore.ErrNotFound)
}

func TestHandleDatasetAnalysis(t *testing.T) {
	s := newTestServer(t)
	ds := seedDataset(t, s, models.Dataset{
		Title:    "Hospital Stats",
		Category: "Healthcare",
		Format:   models.FormatCSV,
	}, "hospital,patients\na,100\nb,150\nc,90\n")

	rec := doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/v1/datasets/%s/analysis", ds.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data models.DatasetAnalysis `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ds.ID, body.Data.DatasetID)
	assert.NotEmpty(t, body.Data.Insights)
	assert.Equal(t, "healthcare", body.Data.Domain)
}

func TestHandleDatasetAnalysisNotFound(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/v1/datasets/nope/analysis", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleRefreshProfile(t *testing.T) {
	s := newTestServer(t)
	ds := seedDataset(t, s, models.Dataset{
		Title:    "Enrollment",
		Category: "Education",
		Format:   models.FormatCSV,
	}, "district,students\nnorth,1200\nsouth,900\n")

	rec := doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/v1/datasets/%s/profile", ds.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := s.catalog.GetDataset(context.Background(), ds.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Profile)
	assert.Equal(t, 2, got.Profile.RowCount)
}
