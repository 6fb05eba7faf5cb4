package analyzer

import "math"

// ConfidenceStats accumulates element confidences reported by a vendor.
type ConfidenceStats struct {
	sum      float64
	min, max float64
	n        int
}

// Add records one confidence. Non-finite values are ignored.
func (s *ConfidenceStats) Add(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	if s.n == 0 || v < s.min {
		s.min = v
	}
	if s.n == 0 || v > s.max {
		s.max = v
	}
	s.sum += v
	s.n++
}

// Summary returns the average, minimum and maximum, or nils when nothing was
// recorded.
func (s *ConfidenceStats) Summary() (avg, minimum, maximum *float64) {
	if s.n == 0 {
		return nil, nil, nil
	}
	a, lo, hi := s.sum/float64(s.n), s.min, s.max
	return &a, &lo, &hi
}
