package handlers

import (
	"net/http"

	"github.com/pkmn-analytics/battle-features/internal/models"
)

// IngestBattles handles POST /api/v1/battles/ingest
// @Summary Ingest Battles
// @Description Accepts newline-separated battle records and queues them for background extraction
// @Tags Ingestion
// @Accept plain
// @Produce json
// @Param body body string true "JSONL battle records"
// @Success 202 {object} models.IngestResponse "Accepted"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 413 {object} map[string]string "Body too large"
// @Failure 503 {object} map[string]string "Ingestion disabled"
// @Router /battles/ingest [post]
func (h *Handler) IngestBattles(w http.ResponseWriter, r *http.Request) {
	if h.pool == nil {
		h.errorResponse(w, http.StatusServiceUnavailable, "Ingestion is not enabled")
		return
	}

	res, ok := h.readBattles(w, r)
	if !ok {
		return
	}

	resp := models.IngestResponse{
		Status:   "accepted",
		Failures: res.Failures(),
	}
	for i, b := range res.Battles {
		if !h.pool.Enqueue(b) {
			resp.Dropped = len(res.Battles) - i
			h.logger.Warnw("Worker pool queue full, dropping remaining battles in batch", "dropped", resp.Dropped)
			break
		}
		resp.Accepted++
	}

	h.logger.Infow("Battles ingested",
		"accepted", resp.Accepted,
		"dropped", resp.Dropped,
		"rejectedLines", len(res.LineErrors),
		"duplicates", res.Duplicates,
	)
	h.jsonResponse(w, http.StatusAccepted, resp)
}
