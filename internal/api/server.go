// Package api exposes the parsing engine and the published timetable over
// HTTP.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"timetable_parser/internal/scanner"
	"timetable_parser/internal/storage"
	"timetable_parser/internal/timetable"
)

// maxParseBody caps POST /parse payloads. Grid exports are a few hundred KB
// at most.
const maxParseBody = 8 << 20

// Server serves parse requests and reads back the current published
// timetable from Postgres when one is configured.
type Server struct {
	engine *scanner.Engine
	pg     *storage.PostgresDB
	port   int
	log    *logrus.Logger
}

// NewServer creates a server. pg may be nil; the timetable endpoints then
// answer 503.
func NewServer(engine *scanner.Engine, pg *storage.PostgresDB, port int, log *logrus.Logger) *Server {
	if engine == nil {
		engine = scanner.New()
	}
	if log == nil {
		log = logrus.New()
	}
	return &Server{engine: engine, pg: pg, port: port, log: log}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// Standard middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/parse", s.handleParse)
		r.Get("/timetable", s.handleTimetable)
		r.Get("/timetable/{day}", s.handleTimetableDay)
	})

	return r
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := ":" + strconv.Itoa(s.port)
	s.log.WithField("addr", addr).Info("api server starting")
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleParse runs the engine over a raw grid export posted as the request
// body and returns the decoded entries.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxParseBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	if len(body) == 0 {
		respondError(w, http.StatusBadRequest, "empty body")
		return
	}

	entries := s.engine.Parse(string(body))
	if entries == nil {
		entries = []timetable.Entry{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"count":   len(entries),
		"entries": entries,
	})
}

func (s *Server) handleTimetable(w http.ResponseWriter, r *http.Request) {
	if s.pg == nil {
		respondError(w, http.StatusServiceUnavailable, "timetable store not configured")
		return
	}
	groups, err := s.pg.Document(r.Context())
	if err != nil {
		s.log.WithError(err).Error("load timetable")
		respondError(w, http.StatusInternalServerError, "load timetable failed")
		return
	}
	if groups == nil {
		groups = []timetable.DayGroup{}
	}
	respondJSON(w, http.StatusOK, groups)
}

func (s *Server) handleTimetableDay(w http.ResponseWriter, r *http.Request) {
	if s.pg == nil {
		respondError(w, http.StatusServiceUnavailable, "timetable store not configured")
		return
	}
	day := chi.URLParam(r, "day")
	entries, err := s.pg.EntriesForDay(r.Context(), day)
	if err != nil {
		s.log.WithError(err).Error("load day")
		respondError(w, http.StatusInternalServerError, "load day failed")
		return
	}
	if entries == nil {
		entries = []timetable.Entry{}
	}
	respondJSON(w, http.StatusOK, timetable.DayGroup{Day: day, Entries: entries})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
