package main

// setupRoutes sets up the HTTP routes with API versioning
func (s *Server) setupRoutes() {
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.errorRecoveryMiddleware)
	s.router.Use(s.timeoutMiddleware)

	// Health check (no version)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	v1 := s.router.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Ad-hoc analysis of an uploaded payload
	v1.HandleFunc("/analyze", s.handleAnalyze).Methods("POST")

	// Natural-language query over the catalog
	v1.HandleFunc("/query", s.handleQuery).Methods("POST")

	// Dataset catalog
	v1.HandleFunc("/datasets", s.handleListDatasets).Methods("GET")
	v1.HandleFunc("/datasets", s.handleCreateDataset).Methods("POST")
	v1.HandleFunc("/datasets/{id}", s.handleGetDataset).Methods("GET")
	v1.HandleFunc("/datasets/{id}", s.handleUpdateDataset).Methods("PUT")
	v1.HandleFunc("/datasets/{id}", s.handleDeleteDataset).Methods("DELETE")
	v1.HandleFunc("/datasets/{id}/analysis", s.handleDatasetAnalysis).Methods("GET")
	v1.HandleFunc("/datasets/{id}/profile", s.handleRefreshProfile).Methods("POST")
}
