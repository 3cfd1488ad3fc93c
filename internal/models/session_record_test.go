package models

import (
	"encoding/json"
	"testing"
)

func TestSubmitRequest_Unmarshal(t *testing.T) {
	var req SubmitRequest
	body := `{"time": 100.5, "error_1": 2, "error_16": 1, "error_7": null, "comment": "ignored"}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Time == nil || *req.Time != 100.5 {
		t.Fatalf("expected time 100.5, got %v", req.Time)
	}
	if req.Counts.Get(1) != 2 || req.Counts.Get(16) != 1 {
		t.Errorf("unexpected counts: %v", req.Counts)
	}
	if req.Counts.Get(7) != 0 {
		t.Errorf("expected null counter to be zero, got %d", req.Counts.Get(7))
	}
}

func TestSubmitRequest_MissingTime(t *testing.T) {
	var req SubmitRequest
	if err := json.Unmarshal([]byte(`{"error_3": 1}`), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Time != nil {
		t.Fatalf("expected nil time, got %v", *req.Time)
	}
}

func TestSubmitRequest_RejectsBadTypes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"string time", `{"time": "fast"}`},
		{"fractional counter", `{"time": 1, "error_2": 1.5}`},
		{"string counter", `{"time": 1, "error_4": "two"}`},
		{"oversize counter", `{"time": 1, "error_1": 4611686018427387904}`},
		{"exponent counter", `{"time": 1, "error_5": 1e300}`},
		{"not an object", `[1, 2]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var req SubmitRequest
			if err := json.Unmarshal([]byte(tc.body), &req); err == nil {
				t.Fatalf("expected error for %s", tc.body)
			}
		})
	}
}

func TestSubmitRequest_IntegralFloatCounter(t *testing.T) {
	var req SubmitRequest
	if err := json.Unmarshal([]byte(`{"time": 10, "error_1": 2.0, "error_9": 3e0, "error_3": -1}`), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Counts.Get(1) != 2 || req.Counts.Get(9) != 3 {
		t.Errorf("unexpected counts: %v", req.Counts)
	}
	// Sign is checked by Counts.Validate, not by the decoder.
	if req.Counts.Get(3) != -1 {
		t.Errorf("expected -1 to decode, got %d", req.Counts.Get(3))
	}
}
