package app

import (
	"log/slog"

	"github.com/chriscorrea/bm25md"
)

// focus returns, in ascending order, the indices of posts that BM25md scores
// above zero for query.
func focus(posts []Post, query string) []int {
	corpus := bm25md.NewCorpus()
	parser := bm25md.NewMarkdownFieldParser()
	for i, p := range posts {
		corpus.AddDocument(bm25md.Document{
			ID:       i,
			Fields:   parser.ParseDocument(p.Text),
			Original: p.Text,
		})
	}

	var matches []int
	for i := range posts {
		if score := corpus.Score(query, i); score > 0 {
			matches = append(matches, i)
		}
	}

	slog.Debug("Search focus applied", "query", query, "posts", len(posts), "matches", len(matches))
	return matches
}
