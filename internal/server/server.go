// Package server exposes the surveillance system over HTTP: activation,
// live MJPEG feeds, the status surface, the alert log and the alert
// websocket.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/config"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/framestore"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/logger"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/pipeline"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/stream"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/pkg/types"
)

// AlertLog is the read side of the persistence collaborator, backing
// /api/alerts.
type AlertLog interface {
	Recent(limit int) ([]types.AlertRecord, error)
}

// Server wires the engine, multiplexer and alert log into HTTP handlers.
type Server struct {
	cfg    config.Config
	engine *pipeline.Engine
	mux    *stream.Multiplexer
	alerts AlertLog
	hub    *Hub
	log    *zap.SugaredLogger
}

// New returns a configured server. alerts may be nil when persistence is
// disabled; /api/alerts then reports an empty log.
func New(cfg config.Config, engine *pipeline.Engine, mux *stream.Multiplexer, alerts AlertLog, hub *Hub) *Server {
	return &Server{
		cfg:    cfg,
		engine: engine,
		mux:    mux,
		alerts: alerts,
		hub:    hub,
		log:    logger.Named("http"),
	}
}

// Handler exposes the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/start_detection", s.cors(s.handleStartDetection))
	mux.HandleFunc("/get_status", s.cors(s.handleStatus))
	mux.HandleFunc("/api/alerts", s.cors(s.handleAlerts))
	mux.HandleFunc("/crowd_feed", s.handleFeed)
	mux.HandleFunc("/weapon_feed", s.handleFeed)
	mux.HandleFunc("/final_feed", s.handleFeed)
	mux.HandleFunc("/violence_feed", s.handleFeed)
	mux.HandleFunc("/ws/alerts", s.handleAlertSocket)
	mux.HandleFunc("/healthz", s.handleHealth)

	return mux
}

// cors allows the dashboard origin. The feeds skip it: multipart streams
// are consumed through <img> tags, which are not subject to CORS.
func (s *Server) cors(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.CORSOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStartDetection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	started, err := s.engine.StartDetection(r.Context())
	if err != nil {
		s.log.Errorw("activation failed", "error", err)
		writeJSONWithStatus(w, map[string]any{
			"status": fmt.Sprintf("Error starting: %v", err),
			"active": false,
		}, http.StatusInternalServerError)
		return
	}

	status := "Detection started"
	if !started {
		status = "Already running"
	}
	writeJSON(w, map[string]any{"status": status, "active": true})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.engine.Status())
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if s.alerts == nil {
		writeJSON(w, []types.AlertRecord{})
		return
	}

	records, err := s.alerts.Recent(100)
	if err != nil {
		s.log.Errorw("alert log query failed", "error", err)
		writeJSONWithStatus(w, map[string]any{"error": "Failed to retrieve alert log"}, http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []types.AlertRecord{}
	}
	writeJSON(w, records)
}

// handleFeed serves one MJPEG stream; the stage key comes from the route
// name ("/crowd_feed" → crowd).
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), "_feed")
	key, ok := framestore.ParseKey(name)
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.mux.ServeKey(w, r, key)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":        "ok",
		"system_active": s.engine.Active(),
		"ws_clients":    s.hub.ClientCount(),
	})
}

func writeJSON(w http.ResponseWriter, payload any) {
	writeJSONWithStatus(w, payload, http.StatusOK)
}

func writeJSONWithStatus(w http.ResponseWriter, payload any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		_, _ = fmt.Fprintf(w, `{"error":%q}`, err.Error())
	}
}
