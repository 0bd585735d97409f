package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/pkmn-analytics/battle-features/internal/features"
	"github.com/pkmn-analytics/battle-features/internal/logic"
	"github.com/pkmn-analytics/battle-features/internal/models"
)

// APISource tags runs started over HTTP.
const APISource = "api"

// ExtractFeatures handles POST /api/v1/features/extract
// @Summary Extract Features
// @Description Extracts one feature row per battle from a JSONL body and returns them with the column schema
// @Tags Features
// @Accept plain
// @Produce json
// @Param body body string true "JSONL battle records"
// @Param profile query string false "Must match the served profile when set"
// @Param full_level query bool false "Keep only battles whose team is all level 100"
// @Success 200 {object} models.ExtractResponse
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 413 {object} map[string]string "Body too large"
// @Failure 500 {object} map[string]string "Extraction failed"
// @Router /features/extract [post]
func (h *Handler) ExtractFeatures(w http.ResponseWriter, r *http.Request) {
	if p := r.URL.Query().Get("profile"); p != "" && p != h.service.Profile() {
		h.errorResponse(w, http.StatusBadRequest, "Profile "+p+" is not served here; this service extracts "+h.service.Profile())
		return
	}

	res, ok := h.readBattles(w, r)
	if !ok {
		return
	}

	report, err := h.service.Run(r.Context(), APISource, res.Battles)
	if err != nil {
		h.logger.Errorw("Extraction run failed", "battles", len(res.Battles), "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Extraction failed")
		return
	}

	// Undecodable lines fail before the run sees them; report them too.
	report.Failures = append(res.Failures(), report.Failures...)
	report.Run.Failed += len(res.LineErrors)

	h.jsonResponse(w, http.StatusOK, models.ExtractResponse{
		Columns:          h.service.Schema(),
		ExtractionReport: *report,
	})
}

// GetColumns handles GET /api/v1/features/columns
// @Summary Feature Columns
// @Description Lists the ordered column schema of the served profile
// @Tags Features
// @Produce json
// @Success 200 {array} models.Column
// @Router /features/columns [get]
func (h *Handler) GetColumns(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"profile": h.service.Profile(),
		"columns": h.service.Schema(),
	})
}

// GetProfiles handles GET /api/v1/features/profiles
// @Summary Feature Profiles
// @Description Lists the available feature profiles and the units each selects
// @Tags Features
// @Produce json
// @Success 200 {array} models.ProfileInfo
// @Router /features/profiles [get]
func (h *Handler) GetProfiles(w http.ResponseWriter, r *http.Request) {
	names := h.profiles.Names()

	out := make([]models.ProfileInfo, 0, len(names))
	for _, name := range names {
		p, err := h.profiles.Get(name)
		if err != nil {
			continue
		}
		columns := 0
		for _, u := range p.Units {
			if unit, ok := features.LookupUnit(u); ok {
				columns += len(unit.Columns)
			}
		}
		out = append(out, models.ProfileInfo{
			Name:        p.Name,
			Description: p.Description,
			Units:       p.Units,
			Columns:     columns,
			Default:     p.Name == h.profiles.Default,
		})
	}
	h.jsonResponse(w, http.StatusOK, out)
}

// GetRuns handles GET /api/v1/runs
// @Summary Recent Extraction Runs
// @Description Lists recent extraction runs, newest first
// @Tags Features
// @Produce json
// @Param limit query int false "Maximum runs to return (default 20, max 200)"
// @Success 200 {array} models.ExtractionRun
// @Failure 503 {object} map[string]string "Run history disabled"
// @Router /runs [get]
func (h *Handler) GetRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			h.errorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, 200)
	}

	runs, err := h.service.RecentRuns(r.Context(), limit)
	if errors.Is(err, logic.ErrNoRunStore) {
		h.errorResponse(w, http.StatusServiceUnavailable, "Run history is not enabled")
		return
	}
	if err != nil {
		h.logger.Errorw("Failed to list runs", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}
	if runs == nil {
		runs = []models.ExtractionRun{}
	}
	h.jsonResponse(w, http.StatusOK, runs)
}
