package tfidf

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docs(texts ...string) [][]string {
	out := make([][]string, len(texts))
	for i, text := range texts {
		out[i] = strings.Fields(text)
	}
	return out
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		wantErr   bool
	}{
		{"default threshold", DefaultThreshold, false},
		{"fractional threshold", 0.5, false},
		{"zero threshold", 0, true},
		{"negative threshold", -3, true},
		{"NaN threshold", math.NaN(), true},
		{"infinite threshold", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.threshold)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfiguration)
				assert.Nil(t, m)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.threshold, m.Threshold())
		})
	}
}

func TestFit_EmptyCorpus(t *testing.T) {
	_, err := Fit(nil, 3)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = Fit([][]string{}, 3)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestFit_InvalidThresholdWinsOverEmptyCorpus(t *testing.T) {
	_, err := Fit(nil, 0)
	require.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestModel_NotFitted(t *testing.T) {
	m, err := New(3)
	require.NoError(t, err)

	corpus := docs("cat sat mat")

	_, err = m.Transform(corpus)
	assert.ErrorIs(t, err, ErrNotFitted)

	_, err = m.TransformToWeights(corpus)
	assert.ErrorIs(t, err, ErrNotFitted)

	_, err = m.FeatureNames()
	assert.ErrorIs(t, err, ErrNotFitted)

	_, err = m.Vector(corpus[0])
	assert.ErrorIs(t, err, ErrNotFitted)

	_, err = m.Weight(corpus[0])
	assert.ErrorIs(t, err, ErrNotFitted)

	_, err = m.Statistics()
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestModel_DuplicatePosts(t *testing.T) {
	corpus := docs("cat sat mat", "cat sat mat", "dog ran far fast today")

	m, err := Fit(corpus, 3)
	require.NoError(t, err)

	names, err := m.FeatureNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "sat", "mat", "dog", "ran", "far", "fast", "today"}, names)

	vectors, err := m.Transform(corpus)
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, vectors[0], vectors[1])
	assert.NotEqual(t, vectors[0], vectors[2])

	weights, err := m.TransformToWeights(corpus)
	require.NoError(t, err)
	require.Len(t, weights, 3)
	assert.Equal(t, weights[0], weights[1])

	// "cat" is in 2 of 3 documents, and doc 0 is not shorter than the threshold
	assert.InDelta(t, math.Log(1.5), vectors[0][0], 1e-12)
	// "dog" appears once in a 5-token document
	assert.InDelta(t, math.Log(3), vectors[2][3], 1e-12)
	// terms absent from a document weigh 0
	assert.Zero(t, vectors[0][3])
	assert.Zero(t, vectors[2][0])
}

func TestStatistics(t *testing.T) {
	corpus := [][]string{
		{"alpha", "beta", "alpha"},
		{},
		{"beta", "gamma", ""},
	}

	m, err := Fit(corpus, 2)
	require.NoError(t, err)

	stats, err := m.Statistics()
	require.NoError(t, err)

	assert.Equal(t, 3, stats.N())
	assert.Equal(t, 3, stats.Vocabulary().Len())
	assert.Equal(t, 5, stats.TotalTokens())
	assert.InDelta(t, 5.0/3.0, stats.AvgDocLength(), 1e-12)

	assert.Equal(t, 1, stats.DocFrequency("alpha"))
	assert.Equal(t, 2, stats.DocFrequency("beta"))
	assert.Equal(t, 1, stats.DocFrequency("gamma"))
	assert.Equal(t, 0, stats.DocFrequency("delta"))
	assert.Equal(t, 2, stats.CorpusFrequency("alpha"))

	assert.Equal(t, 3, stats.DocLength(0))
	assert.Equal(t, 0, stats.DocLength(1))
	assert.Equal(t, 2, stats.DocLength(2), "empty tokens are not counted")

	_, ok := stats.Vocabulary().Position("")
	assert.False(t, ok, "empty tokens never enter the vocabulary")

	for _, term := range stats.Vocabulary().Terms() {
		df := stats.DocFrequency(term)
		assert.GreaterOrEqual(t, df, 1, term)
		assert.LessOrEqual(t, df, stats.N(), term)
	}
}

func TestStatistics_IDFBounds(t *testing.T) {
	corpus := docs(
		"common rare1 shared",
		"common rare2 shared",
		"common rare3",
		"common",
	)

	m, err := Fit(corpus, 2)
	require.NoError(t, err)
	stats, err := m.Statistics()
	require.NoError(t, err)

	maxIDF := math.Log(float64(stats.N()))
	for _, term := range stats.Vocabulary().Terms() {
		idf := stats.IDF(term)
		assert.GreaterOrEqual(t, idf, 0.0, term)
		assert.LessOrEqual(t, idf, maxIDF, term)
		assert.Equal(t, stats.DocFrequency(term) == stats.N(), idf == 0, term)
	}

	assert.Equal(t, 0.0, stats.IDF("common"))
	assert.InDelta(t, maxIDF, stats.IDF("rare1"), 1e-12)
	assert.Equal(t, 0.0, stats.IDF("unknown"))
}

func TestLengthFactor(t *testing.T) {
	tests := []struct {
		name      string
		length    int
		threshold float64
		want      float64
	}{
		{"empty document", 0, 4, 0},
		{"half the threshold", 2, 4, 0.5},
		{"at the threshold", 4, 4, 1},
		{"above the threshold", 10, 4, 1},
		{"fractional threshold", 1, 0.5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, LengthFactor(tt.length, tt.threshold), 1e-12)
		})
	}
}

func TestWeight(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		length    int
		n, df     int
		threshold float64
		want      float64
	}{
		{"absent term", 0, 5, 10, 1, 5, 0},
		{"term in every document", 3, 5, 10, 10, 5, 0},
		{"long document", 2, 6, 10, 1, 5, 2 * math.Log(10)},
		{"short document is attenuated", 1, 2, 4, 1, 4, 0.5 * math.Log(4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Weight(tt.count, tt.length, tt.n, tt.df, tt.threshold)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestStatistics_TermWeight(t *testing.T) {
	corpus := docs("storm warning coast", "storm damage", "sunny day at the beach")
	m, err := Fit(corpus, 4)
	require.NoError(t, err)
	stats, err := m.Statistics()
	require.NoError(t, err)

	// two-token document against a threshold of 4 is halved
	got := stats.TermWeight("damage", corpus[1], m.Threshold())
	assert.InDelta(t, 0.5*math.Log(3), got, 1e-12)

	// matches the vector component
	vec, err := m.Vector(corpus[1])
	require.NoError(t, err)
	pos, ok := stats.Vocabulary().Position("damage")
	require.True(t, ok)
	assert.Equal(t, vec[pos], got)

	assert.Zero(t, stats.TermWeight("hail", corpus[1], m.Threshold()))
}

func TestModel_ThresholdFavoursLongerDocuments(t *testing.T) {
	corpus := docs("flood", "flood river bank burst", "quiet", "calm")

	low, err := Fit(corpus, 1)
	require.NoError(t, err)
	high, err := Fit(corpus, 4)
	require.NoError(t, err)

	lowVec, err := low.Vector(corpus[0])
	require.NoError(t, err)
	highVec, err := high.Vector(corpus[0])
	require.NoError(t, err)

	// the single-token document is attenuated to a quarter under threshold 4
	assert.InDelta(t, lowVec[0]/4, highVec[0], 1e-12)

	longLow, err := low.Vector(corpus[1])
	require.NoError(t, err)
	longHigh, err := high.Vector(corpus[1])
	require.NoError(t, err)
	assert.Equal(t, longLow, longHigh)
}

func TestModel_DimensionInvariant(t *testing.T) {
	corpus := docs("one two three", "three four", "five")
	m, err := Fit(corpus, 3)
	require.NoError(t, err)

	batch := [][]string{
		{},
		{"one"},
		{"unknown", "words", "only"},
		strings.Fields(strings.Repeat("one two three four five six ", 50)),
	}

	vectors, err := m.Transform(batch)
	require.NoError(t, err)
	require.Len(t, vectors, len(batch))
	for i, vec := range vectors {
		assert.Len(t, vec, 5, "document %d", i)
	}
}

func TestModel_ZeroVector(t *testing.T) {
	corpus := docs("apple banana", "banana cherry")
	m, err := Fit(corpus, 2)
	require.NoError(t, err)

	batch := [][]string{
		{"durian", "elderberry"},
		{},
		{"", ""},
	}

	vectors, err := m.Transform(batch)
	require.NoError(t, err)
	weights, err := m.TransformToWeights(batch)
	require.NoError(t, err)

	for i := range batch {
		for _, v := range vectors[i] {
			assert.Zero(t, v, "document %d", i)
		}
		assert.Equal(t, 0.0, weights[i], "document %d", i)
	}
}

func TestModel_WeightsNonNegative(t *testing.T) {
	corpus := docs(
		"covid deaths healthcare workers",
		"covid care home deaths",
		"love run",
		"rude order thank",
		"covid",
	)
	m, err := Fit(corpus, 5)
	require.NoError(t, err)

	weights, err := m.TransformToWeights(corpus)
	require.NoError(t, err)
	for i, w := range weights {
		assert.GreaterOrEqual(t, w, 0.0, "document %d", i)
		assert.False(t, math.IsNaN(w), "document %d", i)
	}
}

func TestModel_SharedTopicOutweighsDisjointTerms(t *testing.T) {
	corpus := docs(
		"vaccine rollout delay",
		"vaccine rollout delay",
		"zebra quark ferret",
		"a b c",
		"d e f",
		"g h i",
	)
	m, err := Fit(corpus, 3)
	require.NoError(t, err)

	weights, err := m.TransformToWeights(corpus)
	require.NoError(t, err)
	assert.Greater(t, weights[0], weights[2])
}

func TestModel_Determinism(t *testing.T) {
	corpus := docs(
		"suppose one way keep front line healthcare workers deaths covid",
		"worry anyone else fix term contract",
		"coronavirus pm face labour leader uk death toll become highest europe",
		"deaths thoughts lose love ones",
	)

	first, err := Fit(corpus, 7)
	require.NoError(t, err)
	second, err := Fit(corpus, 7)
	require.NoError(t, err)

	names1, _ := first.FeatureNames()
	names2, _ := second.FeatureNames()
	assert.Equal(t, names1, names2)

	vec1, err := first.Transform(corpus)
	require.NoError(t, err)
	vec2, err := second.Transform(corpus)
	require.NoError(t, err)
	assert.Equal(t, vec1, vec2)

	again, err := first.Transform(corpus)
	require.NoError(t, err)
	assert.Equal(t, vec1, again)

	w1, err := first.TransformToWeights(corpus)
	require.NoError(t, err)
	w2, err := second.TransformToWeights(corpus)
	require.NoError(t, err)
	assert.Equal(t, w1, w2)
}

func TestModel_ParallelMatchesSequential(t *testing.T) {
	words := []string{"storm", "rain", "wind", "sun", "cloud", "snow", "hail", "fog", "heat", "frost"}
	corpus := make([][]string, 300)
	for i := range corpus {
		doc := make([]string, 1+i%7)
		for j := range doc {
			doc[j] = words[(i*3+j*5)%len(words)]
		}
		corpus[i] = doc
	}

	sequential, err := Fit(corpus, 4, WithWorkers(1))
	require.NoError(t, err)
	parallel, err := Fit(corpus, 4, WithWorkers(8))
	require.NoError(t, err)

	seqVec, err := sequential.Transform(corpus)
	require.NoError(t, err)
	parVec, err := parallel.Transform(corpus)
	require.NoError(t, err)
	assert.Equal(t, seqVec, parVec)

	seqW, err := sequential.TransformToWeights(corpus)
	require.NoError(t, err)
	parW, err := parallel.TransformToWeights(corpus)
	require.NoError(t, err)
	assert.Equal(t, seqW, parW)
}

func TestModel_SingleDocumentForms(t *testing.T) {
	corpus := docs("red green", "green blue", "blue yellow purple")
	m, err := Fit(corpus, 2)
	require.NoError(t, err)

	vectors, err := m.Transform(corpus)
	require.NoError(t, err)
	weights, err := m.TransformToWeights(corpus)
	require.NoError(t, err)

	for i, doc := range corpus {
		vec, err := m.Vector(doc)
		require.NoError(t, err)
		assert.Equal(t, vectors[i], vec)

		w, err := m.Weight(doc)
		require.NoError(t, err)
		assert.Equal(t, weights[i], w)
	}
}

func TestModel_FitTransform(t *testing.T) {
	corpus := docs("red green", "green blue")
	m, err := New(2)
	require.NoError(t, err)

	vectors, err := m.FitTransform(corpus)
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Len(t, vectors[0], 3)
}

func TestModel_RefitReplacesState(t *testing.T) {
	m, err := Fit(docs("red green", "green blue"), 2)
	require.NoError(t, err)

	require.NoError(t, m.Fit(docs("one", "two", "three", "four")))

	names, err := m.FeatureNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three", "four"}, names)

	stats, err := m.Statistics()
	require.NoError(t, err)
	assert.Equal(t, 4, stats.N())
	assert.Equal(t, 0, stats.DocFrequency("green"))

	// a failed refit keeps the previous state
	require.ErrorIs(t, m.Fit(nil), ErrInvalidInput)
	names, err = m.FeatureNames()
	require.NoError(t, err)
	assert.Len(t, names, 4)
}

func TestModel_EmptyBatch(t *testing.T) {
	m, err := Fit(docs("red green"), 2)
	require.NoError(t, err)

	vectors, err := m.Transform(nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)

	weights, err := m.TransformToWeights(nil)
	require.NoError(t, err)
	assert.Empty(t, weights)
}
