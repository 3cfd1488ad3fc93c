// Package penalty converts violation counts into time penalties.
//
// A drill run is recorded with its raw time and one counter for each of the
// NumViolations catalogued violations. Every violation carries a weight in
// seconds; the penalized time is the raw time plus count × weight summed over
// all violations.
package penalty

import (
	"fmt"
	"math"
)

// NumViolations is the size of the violation catalog. Ids run 1..NumViolations.
const NumViolations = 16

// MaxCount is the largest counter a record can hold (a 32-bit column).
const MaxCount = math.MaxInt32

// Counts holds one non-negative counter per violation id. Index 0 is id 1.
type Counts [NumViolations]int

// Weights maps violation id to its penalty in seconds per occurrence.
type Weights map[int]int

// Definition is the slice of a violation definition the calculator needs.
type Definition struct {
	ID   int
	Time int
}

// ValidID reports whether id addresses a catalog slot.
func ValidID(id int) bool {
	return id >= 1 && id <= NumViolations
}

// Get returns the counter for violation id, or 0 for ids outside the catalog.
func (c Counts) Get(id int) int {
	if !ValidID(id) {
		return 0
	}
	return c[id-1]
}

// Set stores n as the counter for violation id.
func (c *Counts) Set(id, n int) error {
	if !ValidID(id) {
		return fmt.Errorf("violation id %d out of range 1..%d", id, NumViolations)
	}
	c[id-1] = n
	return nil
}

// Total is the number of violations across all counters.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Validate rejects counters outside 0..MaxCount and returns the id of the
// first one.
func (c Counts) Validate() (int, bool) {
	for i, n := range c {
		if n < 0 || n > MaxCount {
			return i + 1, false
		}
	}
	return 0, true
}

// WeightsFrom builds weights from catalog definitions. Ids outside the
// catalog are ignored.
func WeightsFrom(defs []Definition) Weights {
	w := make(Weights, len(defs))
	for _, d := range defs {
		if ValidID(d.ID) {
			w[d.ID] = d.Time
		}
	}
	return w
}

// Seconds returns the penalty accumulated by counts, in seconds.
// Missing weights count as zero. The sum is taken in float64 and never wraps.
func Seconds(counts Counts, weights Weights) float64 {
	var sum float64
	for id := 1; id <= NumViolations; id++ {
		sum += float64(counts.Get(id)) * float64(weights[id])
	}
	return sum
}

// TimeWithErrors is the raw time plus the penalty for counts.
func TimeWithErrors(time float64, counts Counts, weights Weights) float64 {
	return time + Seconds(counts, weights)
}
