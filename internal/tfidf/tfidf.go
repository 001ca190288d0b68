// Package tfidf implements Hybrid TF-IDF, a length-aware term weighting for
// collections of short documents such as social-media posts.
//
// Classical TF-IDF assumes documents are long enough for raw term counts to be
// informative. Hybrid TF-IDF keeps the IDF rarity signal but attenuates the
// term frequency of documents shorter than a configurable threshold:
//
//	weight(t, d) = count(t, d) * min(1, len(d)/threshold) * log(N / df(t))
//
// A Model is fitted once on a tokenized corpus. After fit it is read-only and
// can be shared between goroutines; Transform and TransformToWeights map
// documents to dense vectors over the fitted vocabulary and to scalar
// saliency weights respectively.
//
// Usage Example:
//
//	model, err := tfidf.Fit(documents, tfidf.DefaultThreshold)
//	vectors, err := model.Transform(documents)
//	weights, err := model.TransformToWeights(documents)
//
// Tokenization is the caller's job: documents are slices of tokens, and the
// package makes no assumption about casing, stemming or stopwords.
package tfidf

import (
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultThreshold is the document length below which term frequencies are attenuated.
const DefaultThreshold = 5.0

// parallelMinBatch is the smallest batch worth spreading across goroutines.
const parallelMinBatch = 64

// Vector is a dense hybrid TF-IDF vector with one component per vocabulary position.
type Vector []float64

// Option configures a Model.
type Option func(*Model)

// WithWorkers bounds the number of goroutines used by the transform family.
// Values below 1 mean sequential processing.
func WithWorkers(n int) Option {
	return func(m *Model) {
		m.workers = n
	}
}

// Model holds the length threshold and, once fitted, the corpus statistics.
type Model struct {
	threshold float64
	workers   int

	mu    sync.RWMutex
	stats *Statistics // nil until Fit succeeds
}

// New creates an unfitted model. threshold must be a positive, finite number.
func New(threshold float64, opts ...Option) (*Model, error) {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold <= 0 {
		return nil, fmt.Errorf("%w: threshold must be positive, got %v", ErrInvalidConfiguration, threshold)
	}

	m := &Model{
		threshold: threshold,
		workers:   runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Fit is shorthand for New followed by Model.Fit.
func Fit(documents [][]string, threshold float64, opts ...Option) (*Model, error) {
	m, err := New(threshold, opts...)
	if err != nil {
		return nil, err
	}
	if err := m.Fit(documents); err != nil {
		return nil, err
	}
	return m, nil
}

// Fit learns the vocabulary and corpus statistics from documents. Calling it
// again replaces the previous state entirely. Fit must not run concurrently
// with other calls on the same model.
func (m *Model) Fit(documents [][]string) error {
	stats, err := buildStatistics(documents)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.stats = stats
	m.mu.Unlock()

	slog.Debug("Hybrid TF-IDF model fitted", "documents", stats.N(), "vocabulary", stats.Vocabulary().Len(), "threshold", m.threshold)
	return nil
}

// FitTransform fits the model on documents and returns their vectors.
func (m *Model) FitTransform(documents [][]string) ([]Vector, error) {
	if err := m.Fit(documents); err != nil {
		return nil, err
	}
	return m.Transform(documents)
}

// Threshold returns the configured length threshold.
func (m *Model) Threshold() float64 {
	return m.threshold
}

// Statistics returns the fitted corpus statistics.
func (m *Model) Statistics() (*Statistics, error) {
	return m.fitted()
}

// FeatureNames returns the vocabulary in the order used by every vector.
func (m *Model) FeatureNames() ([]string, error) {
	stats, err := m.fitted()
	if err != nil {
		return nil, err
	}
	return stats.Vocabulary().Terms(), nil
}

// Transform returns one vector per document, in input order. Every vector has
// exactly Vocabulary().Len() components; out-of-vocabulary tokens are ignored.
func (m *Model) Transform(documents [][]string) ([]Vector, error) {
	stats, err := m.fitted()
	if err != nil {
		return nil, err
	}

	vectors := make([]Vector, len(documents))
	m.each(len(documents), func(i int) {
		vectors[i] = stats.vector(documents[i], m.threshold)
	})

	slog.Debug("Documents transformed", "documents", len(documents), "dimension", stats.Vocabulary().Len())
	return vectors, nil
}

// TransformToWeights returns one saliency weight per document, in input order.
// Weights are non-negative and exactly 0 for documents without fitted terms.
func (m *Model) TransformToWeights(documents [][]string) ([]float64, error) {
	stats, err := m.fitted()
	if err != nil {
		return nil, err
	}

	weights := make([]float64, len(documents))
	m.each(len(documents), func(i int) {
		weights[i] = stats.saliency(documents[i], m.threshold)
	})

	slog.Debug("Document weights computed", "documents", len(documents))
	return weights, nil
}

// Vector transforms a single document.
func (m *Model) Vector(document []string) (Vector, error) {
	stats, err := m.fitted()
	if err != nil {
		return nil, err
	}
	return stats.vector(document, m.threshold), nil
}

// Weight computes the saliency weight of a single document.
func (m *Model) Weight(document []string) (float64, error) {
	stats, err := m.fitted()
	if err != nil {
		return 0, err
	}
	return stats.saliency(document, m.threshold), nil
}

func (m *Model) fitted() (*Statistics, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.stats == nil {
		return nil, ErrNotFitted
	}
	return m.stats, nil
}

// each runs fn for every index in [0, n). Each call writes only its own slot,
// so results do not depend on scheduling.
func (m *Model) each(n int, fn func(i int)) {
	if m.workers <= 1 || n < parallelMinBatch {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(m.workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}
