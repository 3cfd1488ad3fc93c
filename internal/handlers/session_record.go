package handlers

import (
	"encoding/json"
	"net/http"

	"brigade-backend/internal/middleware"
	"brigade-backend/internal/models"
	"brigade-backend/internal/services"
)

type SessionRecordHandler struct {
	authService       *services.AuthService
	submissionService *services.SubmissionService
	reportingService  *services.ReportingService
}

func NewSessionRecordHandler(authService *services.AuthService, submissionService *services.SubmissionService, reportingService *services.ReportingService) *SessionRecordHandler {
	return &SessionRecordHandler{
		authService:       authService,
		submissionService: submissionService,
		reportingService:  reportingService,
	}
}

// Create handles POST /api/new-error.
func (h *SessionRecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body: "+err.Error(), r))
		return
	}

	accountID := middleware.GetAccountID(r.Context())
	if _, err := h.submissionService.Submit(r.Context(), accountID, req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.MessageResponse{Msg: "Entry added successfully"})
}

// History handles GET /api/error-history for the calling group.
func (h *SessionRecordHandler) History(w http.ResponseWriter, r *http.Request) {
	account, err := h.authService.Account(r.Context(), middleware.GetAccountID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	entries, err := h.reportingService.HistoryEntries(r.Context(), account.Username)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}
