package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"brigade-backend/internal/penalty"
)

// SessionRecord is one timed drill run. Records are insert-only; the
// penalized time is frozen at submission.
type SessionRecord struct {
	ID             int64          `json:"id"`
	GroupName      string         `json:"group_name"`
	Timestamp      time.Time      `json:"timestamp"`
	Time           float64        `json:"time"`
	TimeWithErrors float64        `json:"time_with_errors"`
	Errors         penalty.Counts `json:"-"`
}

// SubmitRequest is the body of a new drill run: a raw time plus the
// error_1..error_16 counters. Absent counters are zero; Time is nil when the
// field was not sent.
type SubmitRequest struct {
	Time   *float64
	Counts penalty.Counts
}

func (s *SubmitRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = SubmitRequest{}

	if v, ok := raw["time"]; ok && !isNull(v) {
		var t float64
		if err := json.Unmarshal(v, &t); err != nil {
			return fmt.Errorf("time must be a number")
		}
		s.Time = &t
	}

	for id := 1; id <= penalty.NumViolations; id++ {
		key := CounterKey(id)
		v, ok := raw[key]
		if !ok || isNull(v) {
			continue
		}
		n, err := decodeCounter(v)
		if err != nil {
			return fmt.Errorf("%s %w", key, err)
		}
		s.Counts.Set(id, n)
	}

	return nil
}

// decodeCounter accepts any JSON number with an integral value, so 2 and
// 2.0 are the same counter. Negative values are left to Counts.Validate.
func decodeCounter(v json.RawMessage) (int, error) {
	var f float64
	if err := json.Unmarshal(v, &f); err != nil || f != math.Trunc(f) {
		return 0, errors.New("must be an integer")
	}
	if f > penalty.MaxCount || f < -penalty.MaxCount {
		return 0, fmt.Errorf("must be between 0 and %d", penalty.MaxCount)
	}
	return int(f), nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// ErrorDetail is a single non-zero counter rendered with its catalog text.
type ErrorDetail struct {
	ID    int    `json:"id"`
	Count int    `json:"count"`
	Text  string `json:"text"`
}

// HistoryEntry is a session record as returned by the history endpoint.
type HistoryEntry struct {
	ID             int64         `json:"-"`
	At             time.Time     `json:"-"`
	Timestamp      string        `json:"timestamp"`
	Time           float64       `json:"time"`
	TimeWithErrors float64       `json:"time_with_errors"`
	TotalErrors    int           `json:"-"`
	Errors         []ErrorDetail `json:"errors"`
}

// LeaderboardEntry is one ranked run.
type LeaderboardEntry struct {
	GroupName      string  `json:"group_name"`
	Timestamp      string  `json:"timestamp"`
	Time           float64 `json:"time"`
	TimeWithErrors float64 `json:"time_with_errors"`
}

// TimeSeries is the per-group trend: parallel timestamp and raw time lists.
type TimeSeries struct {
	Timestamps []time.Time
	Times      []float64
}

// SeriesJSON is the wire form of a TimeSeries.
type SeriesJSON struct {
	Timestamps []string  `json:"timestamps"`
	Times      []float64 `json:"times"`
}

const (
	HistoryTimestampLayout = "2006-01-02 15:04:05"
	SeriesTimestampLayout  = "2006-01-02 15:04"
	TableTimestampLayout   = "02.01.2006 15:04"
)
