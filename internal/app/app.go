// Package app wires the salient pipeline together: it loads posts from the
// configured sources, weights them with the hybrid TF-IDF model and picks a
// short, diverse summary.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/chriscorrea/salient/internal/classify"
	"github.com/chriscorrea/salient/internal/counter"
	"github.com/chriscorrea/salient/internal/salience"
	"github.com/chriscorrea/salient/internal/spinner"
	"github.com/chriscorrea/salient/internal/tfidf"
	"github.com/chriscorrea/salient/internal/tokenize"
)

// ErrNoPosts is returned when nothing is left to summarize after loading and filtering.
var ErrNoPosts = errors.New("no posts to summarize")

// OutputFormat defines the output format for results
type OutputFormat int

const (
	// markdown output format (default)
	Markdown OutputFormat = iota
	// plaintext output format
	Text
	// JSON output format
	JSON
	// boxed table output format
	Table
)

// String returns the string representation of the output
func (f OutputFormat) String() string {
	switch f {
	case Markdown:
		return "Markdown"
	case Text:
		return "Text"
	case JSON:
		return "JSON"
	case Table:
		return "Table"
	default:
		return "Unknown"
	}
}

// ParseOutputFormat converts a format name (as used in the config file) into an OutputFormat.
func ParseOutputFormat(name string) (OutputFormat, error) {
	switch name {
	case "", "markdown", "md":
		return Markdown, nil
	case "text", "txt":
		return Text, nil
	case "json":
		return JSON, nil
	case "table":
		return Table, nil
	default:
		return Markdown, fmt.Errorf("unknown output format %q", name)
	}
}

// Config holds all configuration options for the salient application.
type Config struct {
	Sources      []string // URLs, file paths, or "-" for stdin
	Selector     string   // CSS selector, one matching element per post
	IncludeAll   bool     // skip readability and extraneous-post filtering
	MaxPostChars int      // split posts longer than this; 0 disables splitting

	Tokenizer      tokenize.Mode
	MinTokenLength int
	KeepStopwords  bool

	Threshold   float64 // length normalization threshold of the weight model
	Count       int     // maximum number of posts in the summary
	Similarity  float64 // cosine similarity at which a post counts as redundant
	SearchQuery string  // restrict candidates to posts matching this query

	MaxUnits       int                    // summary budget; 0 means unlimited
	CountingMethod counter.CountingMethod // unit for MaxUnits

	OutputFormat OutputFormat
	Quiet        bool // suppress progress and warnings
	Debug        bool
}

// Post is a single post with its hybrid TF-IDF weight.
type Post struct {
	Index  int     `json:"index"` // position among the posts that survived filtering
	Source string  `json:"source"`
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

// Summary is the result of Run before rendering.
type Summary struct {
	Posts      []Post `json:"posts"`      // selected posts, highest weight first
	Candidates int    `json:"candidates"` // posts considered by the selector
	Total      int    `json:"total"`      // posts loaded after filtering
	Query      string `json:"query,omitempty"`
}

// weighted holds the corpus after the weighting stages.
type weighted struct {
	posts   []Post
	vectors []tfidf.Vector
}

// Run executes the summarization pipeline and renders the selected posts.
//
// Processing Pipeline:
// 1. Load posts from every source (split long posts, drop extraneous ones)
// 2. Tokenize and weight posts with the hybrid TF-IDF model
// 3. Optionally restrict candidates to posts matching the search query
// 4. Greedily select the heaviest posts that are not redundant
// 5. Trim the selection to the summary budget and render it
//
// ctx allows for cancellation of source fetching and between stages.
func Run(ctx context.Context, cfg Config) (string, error) {
	summary, err := Summarize(ctx, cfg)
	if err != nil {
		return "", err
	}
	return renderSummary(summary, cfg.OutputFormat)
}

// Summarize runs the pipeline and returns the unrendered summary.
func Summarize(ctx context.Context, cfg Config) (*Summary, error) {
	progress := startProgress(ctx, cfg, 4)
	defer progress.Stop()

	w, err := load(ctx, cfg, progress)
	if err != nil {
		return nil, err
	}

	progress.Stage("selecting posts")
	candidates := make([]int, len(w.posts))
	for i := range candidates {
		candidates[i] = i
	}
	if cfg.SearchQuery != "" {
		candidates = focus(w.posts, cfg.SearchQuery)
		if len(candidates) == 0 {
			return nil, fmt.Errorf("no posts match search %q", cfg.SearchQuery)
		}
	}

	vectors := make([]tfidf.Vector, len(candidates))
	weights := make([]float64, len(candidates))
	for j, i := range candidates {
		vectors[j] = w.vectors[i]
		weights[j] = w.posts[i].Weight
	}

	chosen, err := salience.Select(vectors, weights, cfg.Count, cfg.Similarity)
	if err != nil {
		return nil, fmt.Errorf("failed to select posts: %w", err)
	}

	selected := make([]Post, len(chosen))
	texts := make([]string, len(chosen))
	for j, c := range chosen {
		selected[j] = w.posts[candidates[c]]
		texts[j] = selected[j].Text
	}

	if cfg.MaxUnits > 0 {
		progress.Stage("applying budget")
		c, err := counter.NewCounter(cfg.CountingMethod)
		if err != nil {
			return nil, fmt.Errorf("failed to create counter: %w", err)
		}
		selected = selected[:counter.Budget(c, texts, postSeparator, cfg.MaxUnits)]
	}

	slog.Debug("Summary ready", "total", len(w.posts), "candidates", len(candidates), "selected", len(selected))
	return &Summary{
		Posts:      selected,
		Candidates: len(candidates),
		Total:      len(w.posts),
		Query:      cfg.SearchQuery,
	}, nil
}

// Weights loads and weights every post and renders them in input order.
func Weights(ctx context.Context, cfg Config) (string, error) {
	progress := startProgress(ctx, cfg, 2)
	defer progress.Stop()

	w, err := load(ctx, cfg, progress)
	if err != nil {
		return "", err
	}
	progress.Stop()

	return renderWeights(w.posts, cfg.OutputFormat)
}

// load runs the stages shared by Run and Weights.
func load(ctx context.Context, cfg Config, progress *spinner.Spinner) (*weighted, error) {
	if len(cfg.Sources) == 0 {
		return nil, fmt.Errorf("no sources provided")
	}

	progress.Stage("reading sources")
	posts, err := loadPosts(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.MaxPostChars > 0 {
		posts = splitPosts(posts, cfg.MaxPostChars)
	}

	if !cfg.IncludeAll {
		kept := classify.NewClassifier().Filter(texts(posts))
		slog.Debug("Extraneous posts removed", "before", len(posts), "after", len(kept))
		filtered := make([]Post, len(kept))
		for j, i := range kept {
			filtered[j] = posts[i]
		}
		posts = filtered
	}

	if len(posts) == 0 {
		return nil, ErrNoPosts
	}
	for i := range posts {
		posts[i].Index = i
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	progress.Stage("weighting posts")
	tokenizer := tokenize.New(tokenize.Options{
		Mode:          cfg.Tokenizer,
		MinLength:     cfg.MinTokenLength,
		KeepStopwords: cfg.KeepStopwords,
	})
	documents, err := tokenizer.TokenizeAll(texts(posts))
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize posts: %w", err)
	}

	model, err := tfidf.New(cfg.Threshold)
	if err != nil {
		return nil, err
	}
	vectors, err := model.FitTransform(documents)
	if err != nil {
		return nil, fmt.Errorf("failed to weight posts: %w", err)
	}
	weights, err := model.TransformToWeights(documents)
	if err != nil {
		return nil, fmt.Errorf("failed to weight posts: %w", err)
	}
	for i := range posts {
		posts[i].Weight = weights[i]
	}

	if stats, err := model.Statistics(); err == nil {
		slog.Debug("Posts weighted", "posts", stats.N(), "vocabulary", stats.Vocabulary().Len(), "avgLength", stats.AvgDocLength())
	}

	return &weighted{posts: posts, vectors: vectors}, nil
}

// startProgress returns a running spinner on an interactive stderr, or an
// idle one that is never drawn.
func startProgress(ctx context.Context, cfg Config, stages int) *spinner.Spinner {
	sp := spinner.New(os.Stderr, stages)
	if !cfg.Quiet && !cfg.Debug && spinner.Enabled(os.Stderr) {
		sp.Start(ctx)
	}
	return sp
}

func texts(posts []Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Text
	}
	return out
}
