package services

import (
	"context"
	"fmt"

	"brigade-backend/internal/models"
	"brigade-backend/internal/penalty"
	"brigade-backend/internal/repository"
)

const maxLeaderboardSize = 100

// ReportingService answers read-only queries for the overview, table and
// reference lists. Nothing here writes.
type ReportingService struct {
	accounts   repository.AccountStore
	violations repository.ViolationStore
	sessions   repository.SessionStore
}

func NewReportingService(accounts repository.AccountStore, violations repository.ViolationStore, sessions repository.SessionStore) *ReportingService {
	return &ReportingService{accounts: accounts, violations: violations, sessions: sessions}
}

// Leaderboard returns the fastest runs across all groups by raw time.
func (s *ReportingService) Leaderboard(ctx context.Context, limit int) ([]*models.SessionRecord, error) {
	if limit < 1 || limit > maxLeaderboardSize {
		return nil, &ValidationError{Fields: map[string]string{
			"limit": fmt.Sprintf("limit must be between 1 and %d", maxLeaderboardSize),
		}}
	}
	records, err := s.sessions.ListFastest(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return records, nil
}

// GroupedTimeSeries groups every record by group name, oldest first.
// The returned slice lists group names in the order they first appear.
func (s *ReportingService) GroupedTimeSeries(ctx context.Context) (map[string]*models.TimeSeries, []string, error) {
	records, err := s.sessions.ListChronological(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load session records: %w", err)
	}

	series := make(map[string]*models.TimeSeries)
	var groups []string
	for _, rec := range records {
		ts, ok := series[rec.GroupName]
		if !ok {
			ts = &models.TimeSeries{}
			series[rec.GroupName] = ts
			groups = append(groups, rec.GroupName)
		}
		ts.Timestamps = append(ts.Timestamps, rec.Timestamp)
		ts.Times = append(ts.Times, rec.Time)
	}
	return series, groups, nil
}

// HistoryForGroup returns one group's records, newest first.
func (s *ReportingService) HistoryForGroup(ctx context.Context, group string) ([]*models.SessionRecord, error) {
	records, err := s.sessions.ListByGroup(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for %s: %w", group, err)
	}
	return records, nil
}

// HistoryEntries is HistoryForGroup with every non-zero counter resolved to
// its catalog text.
func (s *ReportingService) HistoryEntries(ctx context.Context, group string) ([]*models.HistoryEntry, error) {
	records, err := s.HistoryForGroup(ctx, group)
	if err != nil {
		return nil, err
	}
	catalog, err := s.ViolationCatalog(ctx)
	if err != nil {
		return nil, err
	}
	texts := models.ViolationTexts(catalog)

	entries := make([]*models.HistoryEntry, 0, len(records))
	for _, rec := range records {
		entry := &models.HistoryEntry{
			ID:             rec.ID,
			At:             rec.Timestamp,
			Timestamp:      rec.Timestamp.Format(models.HistoryTimestampLayout),
			Time:           rec.Time,
			TimeWithErrors: rec.TimeWithErrors,
			TotalErrors:    rec.Errors.Total(),
			Errors:         make([]models.ErrorDetail, 0),
		}
		for id := 1; id <= penalty.NumViolations; id++ {
			count := rec.Errors.Get(id)
			if count == 0 {
				continue
			}
			text, ok := texts[id]
			if !ok {
				text = models.DefaultViolationText(id)
			}
			entry.Errors = append(entry.Errors, models.ErrorDetail{ID: id, Count: count, Text: text})
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *ReportingService) ViolationCatalog(ctx context.Context) ([]*models.Violation, error) {
	catalog, err := s.violations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load violation catalog: %w", err)
	}
	return catalog, nil
}

// AccountNames lists the non-admin usernames, i.e. the training groups.
func (s *ReportingService) AccountNames(ctx context.Context) ([]string, error) {
	names, err := s.accounts.ListUsernames(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load usernames: %w", err)
	}
	return names, nil
}
