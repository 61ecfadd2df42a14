package server

import (
	"net/http"
)

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)

	mux.HandleFunc("POST /api/starmap/grid", s.handleGrid)
	mux.HandleFunc("POST /api/starmap/search", s.handleSearch)
	mux.HandleFunc("GET /api/starmap/search", s.handleSearch)
	mux.HandleFunc("POST /api/starmap/locate", s.handleLocate)

	mux.HandleFunc("GET /api/content/{kind}", s.handleListContent)
	mux.HandleFunc("GET /api/content/{kind}/{slug...}", s.handleGetContent)

	mux.HandleFunc("GET /api/session/intro", s.handleIntro)
	mux.HandleFunc("POST /api/session/intro", s.handleIntro)
	mux.HandleFunc("DELETE /api/session/intro", s.handleIntro)

	if s.assets != nil {
		mux.Handle("GET /images/", http.FileServerFS(s.assets))
	}

	s.logger.Debug("Routes configured",
		"starmap", []string{"/api/starmap/grid", "/api/starmap/search", "/api/starmap/locate"},
		"content", []string{"/api/content/{kind}", "/api/content/{kind}/{slug...}"},
		"session", []string{"/api/session/intro"},
		"assets", s.assets != nil,
	)
	return mux
}
