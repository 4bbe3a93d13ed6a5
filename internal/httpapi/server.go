package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/dxpool/hns-backend/internal/logger"
	"github.com/dxpool/hns-backend/internal/logs"
	"github.com/dxpool/hns-backend/internal/query"
)

// Server wires the Query Engine to a gorilla/mux router (SPEC_FULL.md §4.5).
type Server struct {
	engine *query.Engine
	log    *logs.Logger

	apiKey      string
	corsEnabled bool
}

// Options configures the HTTP surface's auth/CORS behavior (spec.md §6.3).
type Options struct {
	APIKey      string
	CORSEnabled bool
}

// New constructs a Server over engine.
func New(engine *query.Engine, opts Options) *Server {
	return &Server{
		engine:      engine,
		log:         logger.Get(logger.SubsystemHTTP),
		apiKey:      opts.APIKey,
		corsEnabled: opts.CORSEnabled,
	}
}

// Handler builds the full route table wrapped in auth/CORS middleware,
// ready to pass to http.ListenAndServe (SPEC_FULL.md §4.5).
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	s.addRoutes(router)

	var h http.Handler = router
	h = basicAuth(s.apiKey, s.log, h)
	if s.corsEnabled {
		h = cors.AllowAll().Handler(h)
	}
	return h
}
