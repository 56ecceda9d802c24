// Package api exposes the HTTP surface: health checks, marker preset and
// calibration persistence, the live chart pages, and the WebSocket
// analysis endpoint.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/stride-data/gait.report/internal/db"
	"github.com/stride-data/gait.report/internal/httputil"
	"github.com/stride-data/gait.report/internal/marker"
	"github.com/stride-data/gait.report/internal/session"
	"github.com/stride-data/gait.report/internal/version"
)

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Server serves the HTTP API. The WebSocket handler is mounted as an
// ordinary http.Handler so the transport stays replaceable.
type Server struct {
	db      *db.DB
	ws      http.Handler
	results *session.Log
}

// NewServer creates the API server. ws and results may be nil in tests.
func NewServer(database *db.DB, ws http.Handler, results *session.Log) *Server {
	return &Server{db: database, ws: ws, results: results}
}

// ServeMux returns the route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/marker-presets", s.handlePresets)
	mux.HandleFunc("/api/marker-presets/", s.handlePreset)
	mux.HandleFunc("/api/calibration-labels", s.handleCalibrationLabels)
	mux.HandleFunc("/api/charts/angles", s.handleAngleChart)
	if s.ws != nil {
		mux.Handle("/ws", s.ws)
	}
	return mux
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		httputil.NotFound(w, "not found")
		return
	}
	httputil.WriteJSONOK(w, map[string]string{
		"status":  "healthy",
		"service": "gait.report analysis service",
		"version": version.Version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	dbOK := true
	if s.db != nil {
		if err := s.db.Ping(); err != nil {
			status = "degraded"
			dbOK = false
		}
	}
	httputil.WriteJSONOK(w, map[string]any{
		"status":   status,
		"database": dbOK,
	})
}

// handlePresets serves GET (list) and POST (create/replace) on the
// preset collection.
func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		names, err := s.db.ListMarkerPresets()
		if err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		if names == nil {
			names = []string{}
		}
		httputil.WriteJSONOK(w, map[string]any{"presets": names})

	case http.MethodPost:
		var payload struct {
			Name    string          `json:"name"`
			Configs []marker.Config `json:"configs"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			httputil.BadRequest(w, "invalid JSON body")
			return
		}
		if err := s.db.SaveMarkerPreset(payload.Name, payload.Configs); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, map[string]string{"saved": payload.Name})

	default:
		httputil.MethodNotAllowed(w)
	}
}

// handlePreset serves GET and DELETE on a single named preset.
func (s *Server) handlePreset(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Path[len("/api/marker-presets/"):]
	if name == "" {
		httputil.BadRequest(w, "preset name required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		configs, err := s.db.GetMarkerPreset(name)
		if errors.Is(err, sql.ErrNoRows) {
			httputil.NotFound(w, "no such preset")
			return
		}
		if err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		httputil.WriteJSONOK(w, map[string]any{"name": name, "configs": configs})

	case http.MethodDelete:
		if err := s.db.DeleteMarkerPreset(name); err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		httputil.WriteJSONOK(w, map[string]string{"deleted": name})

	default:
		httputil.MethodNotAllowed(w)
	}
}

// handleCalibrationLabels serves GET and PUT of the confirmed legacy
// color -> joint mapping.
func (s *Server) handleCalibrationLabels(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		labels, err := s.db.LoadCalibrationLabels()
		if err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		httputil.WriteJSONOK(w, labels)

	case http.MethodPut:
		var labels map[string]string
		if err := json.NewDecoder(r.Body).Decode(&labels); err != nil {
			httputil.BadRequest(w, "invalid JSON body")
			return
		}
		if err := s.db.SaveCalibrationLabels(labels); err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		httputil.WriteJSONOK(w, map[string]int{"labels": len(labels)})

	default:
		httputil.MethodNotAllowed(w)
	}
}
