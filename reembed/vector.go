package reembed

import "math"

// NormalizeVector scales v to unit length so stored embeddings compare
// consistently under cosine distance regardless of the model's output
// magnitude. Returns a new slice; a zero vector stays zero since it has
// no direction to preserve.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	norm := float32(math.Sqrt(sumSquares))

	result := make([]float32, len(v))
	if norm == 0 {
		return result
	}
	for i, val := range v {
		result[i] = val / norm
	}
	return result
}
