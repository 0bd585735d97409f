package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/pkmn-analytics/battle-features/internal/ingest"
)

// Health check endpoint
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// Ready check endpoint
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := make(map[string]bool, len(h.checks))
	allHealthy := true
	for name, check := range h.checks {
		err := check(ctx)
		checks[name] = err == nil
		if err != nil {
			allHealthy = false
			h.logger.Warnw("Readiness check failed", "backend", name, "error", err)
		}
	}

	status := http.StatusOK
	if !allHealthy {
		status = http.StatusServiceUnavailable
	}
	body := map[string]interface{}{
		"ready":  allHealthy,
		"checks": checks,
	}
	if h.pool != nil {
		body["queueDepth"] = h.pool.QueueDepth()
	}
	h.jsonResponse(w, status, body)
}

// readBattles decodes a JSONL request body. It writes the error response
// itself and reports false when the request cannot proceed.
func (h *Handler) readBattles(w http.ResponseWriter, r *http.Request) (*ingest.Result, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	defer r.Body.Close()

	res, err := ingest.ReadJSONL(r.Body, ingest.Options{
		RequireFullLevel: r.URL.Query().Get("full_level") == "true",
	})
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return nil, false
		}
		h.errorResponse(w, http.StatusBadRequest, "Failed to read request body")
		return nil, false
	}
	if len(res.Battles) == 0 && len(res.LineErrors) == 0 {
		h.errorResponse(w, http.StatusBadRequest, "No battles in request body")
		return nil, false
	}
	return res, true
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}
