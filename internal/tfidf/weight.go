package tfidf

import "math"

// IDF returns the inverse document frequency log(n/df). A term found in
// every document gets exactly 0; a term found in a single document gets log(n).
func IDF(n, df int) float64 {
	if n <= 0 || df <= 0 {
		return 0
	}
	return math.Log(float64(n) / float64(df))
}

// LengthFactor returns the attenuation applied to term frequencies of a
// document with the given token count. Documents at or above threshold are
// not attenuated; shorter ones are scaled by length/threshold.
func LengthFactor(length int, threshold float64) float64 {
	if float64(length) >= threshold {
		return 1
	}
	return float64(length) / threshold
}

// Weight returns the hybrid weight of a term that occurs count times in a
// document of the given length, in a corpus of n documents where the term
// appears in df of them.
//
//	weight = count * LengthFactor(length, threshold) * IDF(n, df)
func Weight(count, length, n, df int, threshold float64) float64 {
	if count <= 0 {
		return 0
	}
	return float64(count) * LengthFactor(length, threshold) * IDF(n, df)
}

// TermWeight applies Weight to term within doc using the fitted statistics.
// Out-of-vocabulary terms weigh 0.
func (s *Statistics) TermWeight(term string, doc []string, threshold float64) float64 {
	pos, ok := s.vocab.index[term]
	if !ok {
		return 0
	}

	_, counts, length := s.termCounts(doc)
	return float64(counts[pos]) * LengthFactor(length, threshold) * s.idf[pos]
}

// vector computes the dense hybrid vector of doc.
func (s *Statistics) vector(doc []string, threshold float64) Vector {
	vec := make(Vector, s.vocab.Len())

	order, counts, length := s.termCounts(doc)
	factor := LengthFactor(length, threshold)
	for _, pos := range order {
		vec[pos] = float64(counts[pos]) * factor * s.idf[pos]
	}
	return vec
}

// saliency reduces doc to its post weight: the hybrid term weights scaled by
// each term's share of the fitted corpus, normalised by max(length, threshold).
func (s *Statistics) saliency(doc []string, threshold float64) float64 {
	order, counts, length := s.termCounts(doc)
	if len(order) == 0 {
		return 0
	}

	factor := LengthFactor(length, threshold)
	var sum float64
	for _, pos := range order {
		sum += float64(counts[pos]) * factor * s.idf[pos] * s.share[pos]
	}

	return sum / math.Max(float64(length), threshold)
}
