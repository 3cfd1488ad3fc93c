package handlers

import (
	"net/http"
	"strconv"

	"brigade-backend/internal/models"
	"brigade-backend/internal/services"
)

type ReportHandler struct {
	reportingService *services.ReportingService
	leaderboardSize  int
}

func NewReportHandler(reportingService *services.ReportingService, leaderboardSize int) *ReportHandler {
	return &ReportHandler{reportingService: reportingService, leaderboardSize: leaderboardSize}
}

func (h *ReportHandler) ErrorList(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.reportingService.ViolationCatalog(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

func (h *ReportHandler) UserList(w http.ResponseWriter, r *http.Request) {
	names, err := h.reportingService.AccountNames(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (h *ReportHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := h.leaderboardSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "limit must be an integer", r))
			return
		}
		limit = n
	}

	records, err := h.reportingService.Leaderboard(r.Context(), limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	entries := make([]models.LeaderboardEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, models.LeaderboardEntry{
			GroupName:      rec.GroupName,
			Timestamp:      rec.Timestamp.Format(models.HistoryTimestampLayout),
			Time:           rec.Time,
			TimeWithErrors: rec.TimeWithErrors,
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *ReportHandler) TimeSeries(w http.ResponseWriter, r *http.Request) {
	series, _, err := h.reportingService.GroupedTimeSeries(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, seriesJSON(series))
}

func seriesJSON(series map[string]*models.TimeSeries) map[string]models.SeriesJSON {
	out := make(map[string]models.SeriesJSON, len(series))
	for group, ts := range series {
		stamps := make([]string, 0, len(ts.Timestamps))
		for _, t := range ts.Timestamps {
			stamps = append(stamps, t.Format(models.SeriesTimestampLayout))
		}
		out[group] = models.SeriesJSON{Timestamps: stamps, Times: ts.Times}
	}
	return out
}
