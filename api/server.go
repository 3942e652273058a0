package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/wricardo/mcp-training/smartastronaut/game/engine"
	"github.com/wricardo/mcp-training/smartastronaut/game/maps"
	"github.com/wricardo/mcp-training/smartastronaut/game/service"
)

// Largest accepted map upload. A 10x10 map is a few hundred bytes.
const maxMapBytes = 64 << 10

// Hub receives live session events and serves watcher connections
type Hub interface {
	ServeWS(w http.ResponseWriter, r *http.Request, sessionID string)
	RunCompleted(sessionID string, record interface{})
	MapUpdated(sessionID string, metadata interface{})
}

// Server represents the REST API server
type Server struct {
	service service.MissionService
	hub     Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil, which disables /ws and live events.
func NewServer(missionService service.MissionService, hub Hub) *Server {
	s := &Server{
		service: missionService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("", s.handleIndex).Methods("GET")
	api.HandleFunc("/", s.handleIndex).Methods("GET")

	// Algorithms
	api.HandleFunc("/algorithms", s.handleListAlgorithms).Methods("GET")
	api.HandleFunc("/algorithm/{name}", s.handleGetAlgorithm).Methods("GET")
	api.HandleFunc("/run", s.handleRun).Methods("POST")

	// Map library
	api.HandleFunc("/maps", s.handleListMaps).Methods("GET")
	api.HandleFunc("/maps/{name}", s.handleSaveMap).Methods("PUT")

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Session map
	api.HandleFunc("/sessions/{id}/map/upload", s.handleUploadMap).Methods("POST")
	api.HandleFunc("/sessions/{id}/map", s.handleGetMap).Methods("GET")
	api.HandleFunc("/sessions/{id}/map/reset", s.handleResetMap).Methods("POST")
	api.HandleFunc("/sessions/{id}/map/cell/{row}/{col}", s.handleGetCell).Methods("GET")
	api.HandleFunc("/sessions/{id}/map/metadata", s.handleGetMetadata).Methods("GET")
	api.HandleFunc("/sessions/{id}/map/goal", s.handleSetGoal).Methods("POST")

	// Session runs
	api.HandleFunc("/sessions/{id}/run", s.handleRunOnSession).Methods("POST")
	api.HandleFunc("/sessions/{id}/runs", s.handleGetRuns).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors to HTTP status codes
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrUnknownAlgorithm),
		errors.Is(err, engine.ErrUnknownStrategy),
		errors.Is(err, maps.ErrMapNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNoMapLoaded):
		return http.StatusConflict
	case errors.Is(err, maps.ErrInvalidMap),
		errors.Is(err, engine.ErrInvalidInput),
		errors.Is(err, service.ErrNoStart),
		errors.Is(err, service.ErrOutOfBounds):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"name":       "Smart Astronaut Mission Planner",
		"algorithms": len(s.service.ListAlgorithms(r.Context())),
		"endpoints": []string{
			"GET /api/algorithms",
			"GET /api/algorithm/{name}",
			"POST /api/run",
			"GET /api/maps",
			"PUT /api/maps/{name}",
			"POST /api/sessions",
			"GET /api/sessions",
			"GET /api/sessions/{id}",
			"DELETE /api/sessions/{id}",
			"POST /api/sessions/{id}/map/upload",
			"GET /api/sessions/{id}/map",
			"POST /api/sessions/{id}/map/reset",
			"GET /api/sessions/{id}/map/cell/{row}/{col}",
			"GET /api/sessions/{id}/map/metadata",
			"POST /api/sessions/{id}/map/goal",
			"POST /api/sessions/{id}/run",
			"GET /api/sessions/{id}/runs",
			"GET /ws?session={id}",
		},
	})
}

// Algorithm Handlers

func (s *Server) handleListAlgorithms(w http.ResponseWriter, r *http.Request) {
	algorithms := s.service.ListAlgorithms(r.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"algorithms": algorithms,
		"count":      len(algorithms),
	})
}

func (s *Server) handleGetAlgorithm(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.GetAlgorithm(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req service.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Algorithm == "" {
		respondError(w, http.StatusBadRequest, "algorithm is required")
		return
	}

	exec, err := s.service.Run(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, exec)
}

// Map Library Handlers

func (s *Server) handleListMaps(w http.ResponseWriter, r *http.Request) {
	infos, err := s.service.ListMaps(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"maps":  infos,
		"count": len(infos),
	})
}

func (s *Server) handleSaveMap(w http.ResponseWriter, r *http.Request) {
	text, err := io.ReadAll(io.LimitReader(r.Body, maxMapBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	info, err := s.service.SaveMap(r.Context(), mux.Vars(r)["name"], string(text))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Map string `json:"map,omitempty"`
	}

	// The body is optional; an empty one selects the default map
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	sess, err := s.service.CreateSession(r.Context(), req.Map)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	total := len(sessions)

	query := r.URL.Query()
	sortBy := query.Get("sort") // "created", "accessed" (default)
	order := query.Get("order") // "asc", "desc" (default)
	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			sessions = sessions[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Session Map Handlers

func (s *Server) handleUploadMap(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	r.Body = http.MaxBytesReader(w, r.Body, maxMapBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".txt") {
		respondError(w, http.StatusBadRequest, "only .txt map files are accepted")
		return
	}

	text, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	sess, err := s.service.UploadMap(r.Context(), sessionID, string(text))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.MapUpdated(sess.ID, sess.Metadata)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Map %s loaded", header.Filename),
		"session": sess,
	})
}

func (s *Server) handleGetMap(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.GetMap(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleResetMap(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.ResetMap(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.MapUpdated(sess.ID, sess.Metadata)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Map reset successfully",
		"session": sess,
	})
}

func (s *Server) handleGetCell(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	row, err := strconv.Atoi(vars["row"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "row must be an integer")
		return
	}
	col, err := strconv.Atoi(vars["col"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "col must be an integer")
		return
	}

	cell, err := s.service.GetCell(r.Context(), vars["id"], row, col)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cell)
}

func (s *Server) handleGetMetadata(w http.ResponseWriter, r *http.Request) {
	meta, err := s.service.GetMetadata(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, meta)
}

func (s *Server) handleSetGoal(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Row *int `json:"row"`
		Col *int `json:"col"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Row == nil || req.Col == nil {
		respondError(w, http.StatusBadRequest, "row and col are required")
		return
	}

	meta, err := s.service.SetGoal(r.Context(), sessionID, engine.Position{Row: *req.Row, Col: *req.Col})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.MapUpdated(watchKey(sessionID), meta)
	}

	respondJSON(w, http.StatusOK, meta)
}

// Session Run Handlers

func (s *Server) handleRunOnSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req service.SessionRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Algorithm == "" {
		respondError(w, http.StatusBadRequest, "algorithm is required")
		return
	}

	record, err := s.service.RunOnSession(r.Context(), sessionID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.RunCompleted(watchKey(sessionID), record)
	}

	respondJSON(w, http.StatusOK, record)
}

// watchKey turns a session ID taken from the URL into the lower-case form
// sessions are stored and watched under
func watchKey(sessionID string) string {
	return strings.ToLower(strings.TrimSpace(sessionID))
}

func (s *Server) handleGetRuns(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetRunHistory(r.Context(), sessionID, opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "live events disabled", http.StatusServiceUnavailable)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	sess, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sess.ID)
}
