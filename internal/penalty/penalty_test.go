package penalty

import (
	"math"
	"math/rand"
	"testing"
)

func TestTimeWithErrors(t *testing.T) {
	tests := []struct {
		name     string
		time     float64
		counts   func() Counts
		weights  Weights
		expected float64
	}{
		{
			name:     "no violations keeps raw time",
			time:     73.4,
			counts:   func() Counts { return Counts{} },
			weights:  Weights{1: 5, 2: 10},
			expected: 73.4,
		},
		{
			name: "two of error_1 at five seconds",
			time: 100,
			counts: func() Counts {
				var c Counts
				c.Set(1, 2)
				return c
			},
			weights:  Weights{1: 5},
			expected: 110,
		},
		{
			name: "missing weight counts as zero",
			time: 50,
			counts: func() Counts {
				var c Counts
				c.Set(3, 4)
				c.Set(16, 1)
				return c
			},
			weights:  Weights{16: 20},
			expected: 70,
		},
		{
			name: "all slots contribute",
			time: 0,
			counts: func() Counts {
				var c Counts
				for id := 1; id <= NumViolations; id++ {
					c.Set(id, 1)
				}
				return c
			},
			weights: func() Weights {
				w := Weights{}
				for id := 1; id <= NumViolations; id++ {
					w[id] = id
				}
				return w
			}(),
			expected: 136,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := TimeWithErrors(tc.time, tc.counts(), tc.weights)
			if got != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestTimeWithErrors_MatchesLinearCombination(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 200; run++ {
		var counts Counts
		weights := Weights{}
		rawTime := float64(rng.Intn(600))
		expected := rawTime

		for id := 1; id <= NumViolations; id++ {
			c := rng.Intn(5)
			w := rng.Intn(30)
			counts.Set(id, c)
			weights[id] = w
			expected += float64(c * w)
		}

		if got := TimeWithErrors(rawTime, counts, weights); got != expected {
			t.Fatalf("run %d: expected %v, got %v", run, expected, got)
		}
	}
}

func TestTimeWithErrors_MonotonicInEachCounter(t *testing.T) {
	weights := Weights{}
	for id := 1; id <= NumViolations; id++ {
		weights[id] = id % 4
	}

	var base Counts
	for id := 1; id <= NumViolations; id++ {
		base.Set(id, 1)
	}
	before := TimeWithErrors(42, base, weights)

	for id := 1; id <= NumViolations; id++ {
		bumped := base
		bumped.Set(id, base.Get(id)+1)
		if after := TimeWithErrors(42, bumped, weights); after < before {
			t.Errorf("id %d: penalized time decreased from %v to %v", id, before, after)
		}
	}
}

func TestCounts_SetRejectsOutOfRange(t *testing.T) {
	var c Counts
	if err := c.Set(0, 1); err == nil {
		t.Error("Expected error for id 0")
	}
	if err := c.Set(NumViolations+1, 1); err == nil {
		t.Error("Expected error for id 17")
	}
	if c.Get(17) != 0 {
		t.Error("Expected Get outside the catalog to return 0")
	}
}

func TestCounts_Validate(t *testing.T) {
	var c Counts
	c.Set(2, 3)
	if _, ok := c.Validate(); !ok {
		t.Fatal("Expected non-negative counts to validate")
	}

	c.Set(9, -1)
	id, ok := c.Validate()
	if ok || id != 9 {
		t.Fatalf("Expected id 9 to fail validation, got id=%d ok=%v", id, ok)
	}
}

func TestWeightsFrom_IgnoresUnknownIDs(t *testing.T) {
	w := WeightsFrom([]Definition{{ID: 1, Time: 5}, {ID: 17, Time: 99}, {ID: 0, Time: 3}})
	if len(w) != 1 || w[1] != 5 {
		t.Fatalf("Expected only id 1 to be kept, got %v", w)
	}
}

func TestCounts_ValidateUpperBound(t *testing.T) {
	var c Counts
	c.Set(1, MaxCount)
	if _, ok := c.Validate(); !ok {
		t.Fatal("Expected MaxCount to validate")
	}

	c.Set(4, MaxCount+1)
	id, ok := c.Validate()
	if ok || id != 4 {
		t.Fatalf("Expected id 4 to exceed the bound, got id=%d ok=%v", id, ok)
	}
}

func TestTimeWithErrors_LargeCountersDoNotWrap(t *testing.T) {
	var c Counts
	c.Set(1, 1<<62)
	got := TimeWithErrors(100, c, Weights{1: 2})
	if got <= 100 {
		t.Fatalf("Expected penalty to grow with the counter, got %v", got)
	}

	var all Counts
	for id := 1; id <= NumViolations; id++ {
		all.Set(id, MaxCount)
	}
	w := Weights{}
	for id := 1; id <= NumViolations; id++ {
		w[id] = MaxCount
	}
	got = TimeWithErrors(1, all, w)
	if got < float64(MaxCount)*float64(MaxCount) || math.IsInf(got, 0) {
		t.Errorf("Expected a large finite penalty, got %v", got)
	}
}
