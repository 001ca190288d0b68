package tfidf

import (
	"fmt"
	"log/slog"
)

// Vocabulary maps each distinct fitted term to a stable vector position.
// Positions are assigned in first-seen order and never change after fit.
type Vocabulary struct {
	terms []string
	index map[string]int
}

// Len returns the number of terms, which is also the dimension of every vector.
func (v *Vocabulary) Len() int {
	return len(v.terms)
}

// Position returns the vector position of term.
func (v *Vocabulary) Position(term string) (int, bool) {
	pos, ok := v.index[term]
	return pos, ok
}

// Term returns the term stored at pos.
func (v *Vocabulary) Term(pos int) string {
	return v.terms[pos]
}

// Terms returns a copy of the vocabulary in position order.
func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Statistics holds everything learned from a fitted corpus. It is built once
// by buildStatistics and never mutated afterwards, so it can be shared by
// concurrent readers.
type Statistics struct {
	vocab        *Vocabulary
	n            int
	df           []int // documents containing the term, by position
	cf           []int // occurrences across the corpus, by position
	totalTokens  int
	docLengths   []int
	avgDocLength float64

	// derived per-position values, cached at build time
	idf   []float64
	share []float64
}

// buildStatistics scans the corpus once and aggregates vocabulary, document
// frequency, corpus frequency and per-document length. Empty tokens are not
// terms and do not count toward a document's length.
func buildStatistics(documents [][]string) (*Statistics, error) {
	if len(documents) == 0 {
		return nil, fmt.Errorf("%w: corpus has no documents", ErrInvalidInput)
	}

	s := &Statistics{
		vocab:      &Vocabulary{index: make(map[string]int)},
		n:          len(documents),
		docLengths: make([]int, len(documents)),
	}

	// lastSeen[pos] holds docIdx+1 of the last document that counted pos toward df
	var lastSeen []int

	for docIdx, doc := range documents {
		length := 0
		for _, token := range doc {
			if token == "" {
				continue
			}
			length++

			pos, ok := s.vocab.index[token]
			if !ok {
				pos = len(s.vocab.terms)
				s.vocab.index[token] = pos
				s.vocab.terms = append(s.vocab.terms, token)
				s.df = append(s.df, 0)
				s.cf = append(s.cf, 0)
				lastSeen = append(lastSeen, 0)
			}

			s.cf[pos]++
			if lastSeen[pos] != docIdx+1 {
				lastSeen[pos] = docIdx + 1
				s.df[pos]++
			}
		}
		s.docLengths[docIdx] = length
		s.totalTokens += length
	}

	s.avgDocLength = float64(s.totalTokens) / float64(s.n)

	s.idf = make([]float64, len(s.df))
	s.share = make([]float64, len(s.cf))
	for pos := range s.df {
		s.idf[pos] = IDF(s.n, s.df[pos])
		// totalTokens > 0 whenever the vocabulary is non-empty
		s.share[pos] = float64(s.cf[pos]) / float64(s.totalTokens)
	}

	slog.Debug("Corpus statistics built", "documents", s.n, "vocabulary", len(s.vocab.terms), "tokens", s.totalTokens, "avgDocLength", s.avgDocLength)
	return s, nil
}

// Vocabulary returns the fitted vocabulary.
func (s *Statistics) Vocabulary() *Vocabulary {
	return s.vocab
}

// N returns the number of fitted documents.
func (s *Statistics) N() int {
	return s.n
}

// DocFrequency returns the number of fitted documents containing term, or 0
// for out-of-vocabulary terms.
func (s *Statistics) DocFrequency(term string) int {
	pos, ok := s.vocab.index[term]
	if !ok {
		return 0
	}
	return s.df[pos]
}

// CorpusFrequency returns how often term occurs across the fitted corpus.
func (s *Statistics) CorpusFrequency(term string) int {
	pos, ok := s.vocab.index[term]
	if !ok {
		return 0
	}
	return s.cf[pos]
}

// IDF returns log(N/df) for a fitted term and 0 for out-of-vocabulary terms.
func (s *Statistics) IDF(term string) float64 {
	pos, ok := s.vocab.index[term]
	if !ok {
		return 0
	}
	return s.idf[pos]
}

// TotalTokens returns the number of non-empty tokens in the fitted corpus.
func (s *Statistics) TotalTokens() int {
	return s.totalTokens
}

// DocLength returns the token count of fitted document i.
func (s *Statistics) DocLength(i int) int {
	return s.docLengths[i]
}

// AvgDocLength returns the mean token count of the fitted documents.
func (s *Statistics) AvgDocLength() float64 {
	return s.avgDocLength
}

// termCounts counts in-vocabulary occurrences in doc. Positions are returned
// in first-occurrence order so that sums over them are reproducible.
// length counts every non-empty token, in vocabulary or not.
func (s *Statistics) termCounts(doc []string) (order []int, counts map[int]int, length int) {
	counts = make(map[int]int)
	for _, token := range doc {
		if token == "" {
			continue
		}
		length++

		pos, ok := s.vocab.index[token]
		if !ok {
			continue // out-of-vocabulary tokens only count toward length
		}
		if counts[pos] == 0 {
			order = append(order, pos)
		}
		counts[pos]++
	}
	return order, counts, length
}
