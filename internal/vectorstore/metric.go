package vectorstore

import (
	"fmt"
	"math"
	"strings"
)

// Metric selects how the distance between two embeddings is measured.
type Metric string

const (
	// Cosine distance: 1 - cosine similarity.
	Cosine Metric = "cosine"
	// L2 is the squared Euclidean distance.
	L2 Metric = "l2"
	// InnerProduct distance: 1 - dot product.
	InnerProduct Metric = "ip"
)

// ParseMetric converts a config value into a Metric. Empty means cosine.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cosine":
		return Cosine, nil
	case "l2":
		return L2, nil
	case "ip":
		return InnerProduct, nil
	default:
		return "", fmt.Errorf("unknown distance metric %q (want cosine, l2 or ip)", s)
	}
}

// Distance returns the distance between a and b; lower is closer.
// Vectors of different length are compared over their common prefix.
func (m Metric) Distance(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	switch m {
	case L2:
		var sum float64
		for i := 0; i < n; i++ {
			d := a[i] - b[i]
			sum += d * d
		}
		return sum
	case InnerProduct:
		return 1 - dot(a[:n], b[:n])
	default:
		var na, nb float64
		for i := 0; i < n; i++ {
			na += a[i] * a[i]
			nb += b[i] * b[i]
		}
		if na == 0 || nb == 0 {
			return 1
		}
		return 1 - dot(a[:n], b[:n])/(math.Sqrt(na)*math.Sqrt(nb))
	}
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
