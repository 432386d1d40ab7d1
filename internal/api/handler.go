package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/blockedby/forwarder-os/internal/forwarder"
)

// Handler handles HTTP requests for the forwarder control API.
type Handler struct {
	control ForwarderControl
	loader  JobsLoader
	chats   ChatLister
	store   ForwardsStore
}

// NewHandler creates a new handler.
func NewHandler(control ForwarderControl, loader JobsLoader, chats ChatLister, store ForwardsStore) *Handler {
	return &Handler{
		control: control,
		loader:  loader,
		chats:   chats,
		store:   store,
	}
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Status handles GET /api/v1/status
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	status := "stopped"
	if h.control.Running() {
		status = "running"
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":          status,
		"telegram_status": h.chats.GetStatus(),
		"jobs":            len(h.control.Jobs()),
	})
}

// Start handles POST /api/v1/forwarder/start: reloads the job file and
// starts forwarding.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.loader()
	if err != nil {
		respondError(w, http.StatusBadRequest, "load jobs: "+err.Error())
		return
	}

	if err := h.control.Start(r.Context(), jobs); err != nil {
		switch {
		case errors.Is(err, forwarder.ErrAlreadyRunning):
			respondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, forwarder.ErrNoJobs):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "running",
		"jobs":   len(jobs),
	})
}

// Stop handles DELETE /api/v1/forwarder/current
func (h *Handler) Stop(w http.ResponseWriter, _ *http.Request) {
	h.control.Stop()
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "forwarding stopped",
	})
}

// ListJobs handles GET /api/v1/jobs
func (h *Handler) ListJobs(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.control.Jobs())
}

// ListChats handles GET /api/v1/chats
func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	dialogs, err := h.chats.ListDialogs(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, dialogs)
}

// History handles GET /api/v1/history?limit=N
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusNotFound, "forward record store not configured")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := h.store.Recent(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, records)
}

// helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
