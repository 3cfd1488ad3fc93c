package models

import (
	"fmt"

	"brigade-backend/internal/penalty"
)

// Violation is one entry of the fixed error catalog.
type Violation struct {
	ID   int    `json:"id"`
	Text string `json:"error_text"`
	Time int    `json:"time"`
}

// CounterKey is the JSON field and column name of a violation counter.
func CounterKey(id int) string {
	return fmt.Sprintf("error_%d", id)
}

// DefaultViolationText is shown for counters whose catalog entry is missing.
func DefaultViolationText(id int) string {
	return fmt.Sprintf("Fehler %d", id)
}

// Definitions projects the catalog onto what the penalty calculator needs.
func Definitions(vs []*Violation) []penalty.Definition {
	defs := make([]penalty.Definition, 0, len(vs))
	for _, v := range vs {
		defs = append(defs, penalty.Definition{ID: v.ID, Time: v.Time})
	}
	return defs
}

// ViolationTexts indexes catalog texts by id.
func ViolationTexts(vs []*Violation) map[int]string {
	texts := make(map[int]string, len(vs))
	for _, v := range vs {
		texts[v.ID] = v.Text
	}
	return texts
}
