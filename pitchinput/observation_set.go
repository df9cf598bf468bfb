// observation_set.go - Per-cycle set of detected pitches

package pitchinput

import (
	"math"
	"slices"
)

// ObservationSet holds the distinct rounded pitches seen in one cycle.
type ObservationSet struct {
	pitches map[int]struct{}
}

func NewObservationSet() *ObservationSet {
	return &ObservationSet{pitches: make(map[int]struct{})}
}

// RoundPitch rounds to the nearest whole pitch, halves to even. Values
// beyond the int range saturate at math.MaxInt or math.MinInt.
func RoundPitch(pitch float64) int {
	r := math.RoundToEven(pitch)
	switch {
	case r >= float64(math.MaxInt):
		return math.MaxInt
	case r <= float64(math.MinInt):
		return math.MinInt
	}
	return int(r)
}

// Add rounds pitch and inserts it, returning the rounded value.
// NaN and infinite values are ignored and return 0, false.
func (s *ObservationSet) Add(pitch float64) (int, bool) {
	if math.IsNaN(pitch) || math.IsInf(pitch, 0) {
		return 0, false
	}
	if s.pitches == nil {
		s.pitches = make(map[int]struct{})
	}
	p := RoundPitch(pitch)
	s.pitches[p] = struct{}{}
	return p, true
}

func (s *ObservationSet) Contains(pitch int) bool {
	_, ok := s.pitches[pitch]
	return ok
}

// AnyIn reports whether some member p satisfies minVal < p <= maxVal.
func (s *ObservationSet) AnyIn(minVal, maxVal int) bool {
	// span overflows to a negative value for ranges wider than MaxInt.
	if span := maxVal - minVal; span > 0 && span <= len(s.pitches) {
		for p := maxVal; p > minVal; p-- {
			if _, ok := s.pitches[p]; ok {
				return true
			}
		}
		return false
	}
	for p := range s.pitches {
		if p > minVal && p <= maxVal {
			return true
		}
	}
	return false
}

func (s *ObservationSet) Len() int {
	return len(s.pitches)
}

func (s *ObservationSet) Reset() {
	clear(s.pitches)
}

// Sorted returns the members in ascending order.
func (s *ObservationSet) Sorted() []int {
	out := make([]int, 0, len(s.pitches))
	for p := range s.pitches {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
