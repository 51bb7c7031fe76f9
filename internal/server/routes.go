package server

import "net/http"

// setupRoutes mounts the CaseStrainer HTTP API (spec §6.1): ingestion,
// job status polling, result retrieval, and a health check.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/analyze", s.AnalyzeHandler)
	mux.HandleFunc("/task_status/", s.TaskStatusHandler)
	mux.HandleFunc("/result/", s.ResultHandler)
	mux.HandleFunc("/health", s.HealthHandler)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "no such route")
	})

	return mux
}
