// Package salience picks a small, non-redundant set of representative posts.
//
// Select is a greedy approximation: posts are visited by descending saliency
// weight and a post is kept only if it is not too similar to anything already
// kept. It does not search for the globally best diverse subset, and it is
// fully deterministic for a given input.
package salience

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/chriscorrea/salient/internal/tfidf"
)

const (
	// DefaultK is the number of posts selected when no count is configured.
	DefaultK = 10
	// DefaultSimilarityThreshold is the default cosine similarity ceiling.
	DefaultSimilarityThreshold = 0.4
)

// CosineSimilarity returns the cosine of the angle between a and b. It is 0
// when either vector has zero norm and exactly 1 when a and b are equal.
// a and b must have the same length.
func CosineSimilarity(a, b tfidf.Vector) float64 {
	return cosine(a, b, floats.Norm(a, 2), floats.Norm(b, 2))
}

func cosine(a, b tfidf.Vector, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	// rounding can leave identical vectors just below 1
	if floats.Equal(a, b) {
		return 1
	}
	return floats.Dot(a, b) / (normA * normB)
}

// Select returns at most k indices into vectors, highest weight first, such
// that every returned post has cosine similarity strictly below
// similarityThreshold to each post returned before it.
//
// Candidates are ordered by descending weight with ties broken by ascending
// index. Comparisons against a zero-norm vector never reject a candidate.
// When fewer than k posts qualify, fewer than k indices are returned.
func Select(vectors []tfidf.Vector, weights []float64, k int, similarityThreshold float64) ([]int, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", tfidf.ErrInvalidConfiguration, k)
	}
	if math.IsNaN(similarityThreshold) || similarityThreshold < 0 || similarityThreshold > 1 {
		return nil, fmt.Errorf("%w: similarity threshold must be in [0,1], got %v", tfidf.ErrInvalidConfiguration, similarityThreshold)
	}
	if len(vectors) != len(weights) {
		return nil, fmt.Errorf("%w: %d vectors but %d weights", tfidf.ErrInvalidInput, len(vectors), len(weights))
	}
	if err := validate(vectors, weights); err != nil {
		return nil, err
	}

	order := make([]int, len(vectors))
	for i := range order {
		order[i] = i
	}
	// stable sort keeps ascending index order among equal weights
	sort.SliceStable(order, func(i, j int) bool {
		return weights[order[i]] > weights[order[j]]
	})

	norms := make([]float64, len(vectors))
	for i, vec := range vectors {
		norms[i] = floats.Norm(vec, 2)
	}

	selected := make([]int, 0, min(k, len(vectors)))
	for _, candidate := range order {
		if len(selected) >= k {
			break
		}
		if redundant(candidate, selected, vectors, norms, similarityThreshold) {
			continue
		}
		selected = append(selected, candidate)
	}

	slog.Debug("Salient posts selected", "candidates", len(vectors), "k", k, "similarityThreshold", similarityThreshold, "selected", len(selected))
	return selected, nil
}

// redundant reports whether candidate is at least threshold-similar to any
// selected post.
func redundant(candidate int, selected []int, vectors []tfidf.Vector, norms []float64, threshold float64) bool {
	if norms[candidate] == 0 {
		return false
	}
	for _, kept := range selected {
		if norms[kept] == 0 {
			continue
		}
		sim := cosine(vectors[candidate], vectors[kept], norms[candidate], norms[kept])
		if sim >= threshold {
			slog.Debug("Rejected redundant post", "candidate", candidate, "similarTo", kept, "similarity", sim)
			return true
		}
	}
	return false
}

// validate rejects ragged vectors and non-finite weights before any work starts.
func validate(vectors []tfidf.Vector, weights []float64) error {
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: weight %d is %v", tfidf.ErrInvalidInput, i, w)
		}
	}
	if len(vectors) == 0 {
		return nil
	}

	dim := len(vectors[0])
	for i, vec := range vectors {
		if len(vec) != dim {
			return fmt.Errorf("%w: vector %d has %d components, expected %d", tfidf.ErrInvalidInput, i, len(vec), dim)
		}
	}
	return nil
}
