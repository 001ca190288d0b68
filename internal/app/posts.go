package app

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/chriscorrea/salient/internal/chunk"
	"github.com/chriscorrea/salient/internal/extract"
	"github.com/chriscorrea/salient/internal/fetch"
)

// maxLineBytes bounds a single line of a plain-text source.
const maxLineBytes = 1024 * 1024

// loadPosts reads every source in order. A failing source is reported and
// skipped; the error is returned only when no source yields any post.
func loadPosts(ctx context.Context, cfg Config) ([]Post, error) {
	var (
		posts   []Post
		lastErr error
	)

	for _, source := range cfg.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		texts, err := readSource(ctx, source, cfg.Selector, cfg.IncludeAll)
		if err != nil {
			lastErr = err
			slog.Debug("Source failed", "source", source, "error", err)
			if !cfg.Quiet {
				fmt.Fprintf(os.Stderr, "Warning: failed to process source %q: %v\n", source, err)
			}
			continue
		}

		slog.Debug("Source loaded", "source", source, "posts", len(texts))
		for _, text := range texts {
			posts = append(posts, Post{Source: source, Text: text})
		}
	}

	if len(posts) == 0 && lastErr != nil {
		return nil, fmt.Errorf("no content extracted from any source: %w", lastErr)
	}
	return posts, nil
}

// readSource returns the posts of one source: one per non-blank line for
// plain text, or the extracted posts for HTML.
func readSource(ctx context.Context, source, selector string, includeAll bool) ([]string, error) {
	src, err := fetch.Open(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}
	defer src.Close()

	if src.HTML {
		var baseURL *url.URL
		if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
			baseURL, _ = url.Parse(source) // nil is fine for readability
		}
		posts, err := extract.Posts(src, selector, includeAll, baseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to extract posts: %w", err)
		}
		return posts, nil
	}

	var posts []string
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			posts = append(posts, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", source, err)
	}
	return posts, nil
}

// splitPosts replaces every post longer than maxChars characters with its pieces.
func splitPosts(posts []Post, maxChars int) []Post {
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if utf8.RuneCountInString(p.Text) <= maxChars {
			out = append(out, p)
			continue
		}
		for _, piece := range chunk.Split(p.Text, maxChars) {
			out = append(out, Post{Source: p.Source, Text: piece})
		}
	}
	return out
}
