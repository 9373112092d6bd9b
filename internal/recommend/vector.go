package recommend

import "math"

// Vector is a dense feature vector.
type Vector []float64

// Dot returns the dot product, or 0 when the lengths differ.
func (v Vector) Dot(o Vector) float64 {
	if len(v) != len(o) {
		return 0
	}
	var sum float64
	for i := range v {
		sum += v[i] * o[i]
	}
	return sum
}

// Magnitude returns the Euclidean norm.
func (v Vector) Magnitude() float64 {
	return math.Sqrt(v.Dot(v))
}

// Cosine returns dot(a,b)/(|a||b|).
//
// The result is 0 when either vector has zero magnitude or the lengths differ.
func Cosine(a, b Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	ma, mb := a.Magnitude(), b.Magnitude()
	if ma == 0 || mb == 0 {
		return 0
	}

	return a.Dot(b) / (ma * mb)
}

// Mean returns the element-wise mean of vectors, which must share one length.
// It returns nil for no vectors.
func Mean(vectors []Vector) Vector {
	if len(vectors) == 0 {
		return nil
	}

	mean := make(Vector, len(vectors[0]))
	for _, v := range vectors {
		for i := range mean {
			if i < len(v) {
				mean[i] += v[i]
			}
		}
	}

	n := float64(len(vectors))
	for i := range mean {
		mean[i] /= n
	}
	return mean
}
