package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"brigade-backend/internal/models"
	"brigade-backend/internal/penalty"
	"brigade-backend/internal/repository"
)

type SubmissionService struct {
	auth       *AuthService
	violations repository.ViolationStore
	sessions   repository.SessionStore
	now        func() time.Time
}

func NewSubmissionService(auth *AuthService, violations repository.ViolationStore, sessions repository.SessionStore) *SubmissionService {
	return &SubmissionService{
		auth:       auth,
		violations: violations,
		sessions:   sessions,
		now:        time.Now,
	}
}

// Submit stores a drill run for the calling account. The penalty is
// computed with the catalog weights as they are now and never recomputed.
// Every call inserts a new record.
func (s *SubmissionService) Submit(ctx context.Context, accountID int64, req models.SubmitRequest) (*models.SessionRecord, error) {
	if req.Time == nil {
		return nil, missingField("time")
	}
	if *req.Time < 0 || math.IsNaN(*req.Time) || math.IsInf(*req.Time, 0) {
		return nil, &ValidationError{Fields: map[string]string{"time": "time must be a non-negative number"}}
	}
	if id, ok := req.Counts.Validate(); !ok {
		key := models.CounterKey(id)
		return nil, &ValidationError{Fields: map[string]string{
			key: fmt.Sprintf("%s must be between 0 and %d", key, penalty.MaxCount),
		}}
	}

	account, err := s.auth.Account(ctx, accountID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.violations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load violation weights: %w", err)
	}
	weights := penalty.WeightsFrom(models.Definitions(catalog))

	rec := &models.SessionRecord{
		GroupName:      account.Username,
		Timestamp:      s.now().UTC(),
		Time:           *req.Time,
		TimeWithErrors: penalty.TimeWithErrors(*req.Time, req.Counts, weights),
		Errors:         req.Counts,
	}
	if err := s.sessions.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to store session record: %w", err)
	}

	return rec, nil
}
