package index

import (
	"math"
)

// similarity returns the cosine similarity of two vectors, or zero when the
// lengths differ or either vector has no magnitude. The norms are accumulated
// with scaling to avoid overflow.
func similarity(vals1, vals2 []float32) float64 {
	if len(vals1) != len(vals2) || len(vals1) == 0 {
		return 0
	}

	l2norm := func(v float64, s, t float64) (float64, float64) {
		if v == 0 {
			return s, t
		}
		a := math.Abs(v)
		if a > t {
			r := t / v
			s = 1 + s*r*r
			t = a
		} else {
			r := v / t
			s = s + r*r
		}
		return s, t
	}

	dot := float64(0)
	s1, t1 := float64(1), float64(0)
	s2, t2 := float64(1), float64(0)
	for i, v1f := range vals1 {
		v1 := float64(v1f)
		v2 := float64(vals2[i])
		dot += v1 * v2
		s1, t1 = l2norm(v1, s1, t1)
		s2, t2 = l2norm(v2, s2, t2)
	}

	l1 := t1 * math.Sqrt(s1)
	l2 := t2 * math.Sqrt(s2)
	if l1 == 0 || l2 == 0 {
		return 0
	}
	return dot / (l1 * l2)
}
