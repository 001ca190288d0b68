// Package chunk splits long text into post-sized pieces.
//
// Hybrid TF-IDF is tuned for short documents. When a source contains long
// paragraphs (blog posts, forum threads, transcripts), each paragraph is cut
// down to at most a configured number of characters using a cascade of
// boundaries, from the largest semantic unit to the smallest:
//  1. Paragraph boundaries (double newlines)
//  2. Sentence boundaries ('.', '?', '!')
//  3. Line boundaries (single newlines)
//  4. Word boundaries, the last resort
//
// Usage Example:
//
//	posts := chunk.Split(content, 280)
//	// every post is at most 280 characters unless it is a single long word
package chunk

import (
	"log/slog"
	"strings"
	"unicode/utf8"
)

// boundary is one level of the splitting cascade. restore is appended back to
// every piece but the last so that sentence punctuation and line structure
// survive the split.
type boundary struct {
	name      string
	delimiter string
	restore   string
}

// cascade is ordered from largest semantic unit to smallest.
var cascade = []boundary{
	{name: "paragraph", delimiter: "\n\n", restore: ""},
	{name: "sentence", delimiter: ". ", restore: "."},
	{name: "sentence-question", delimiter: "? ", restore: "?"},
	{name: "sentence-exclamation", delimiter: "! ", restore: "!"},
	{name: "line", delimiter: "\n", restore: ""},
	{name: "word", delimiter: " ", restore: ""},
}

// Split breaks text into pieces of at most maxChars characters (runes), in
// reading order.
// Oversized pieces are re-split with the next boundary in the cascade; a
// single word longer than maxChars is returned as is.
func Split(text string, maxChars int) []string {
	text = strings.TrimSpace(text)
	if maxChars <= 0 || text == "" {
		return []string{}
	}

	pieces := splitFrom(text, 0, maxChars)
	slog.Debug("Split completed", "textLength", utf8.RuneCountInString(text), "maxChars", maxChars, "pieces", len(pieces))
	return pieces
}

// splitFrom splits text starting at cascade level.
func splitFrom(text string, level, maxChars int) []string {
	if utf8.RuneCountInString(text) <= maxChars || level >= len(cascade) {
		return []string{text}
	}

	var out []string
	for _, piece := range splitOn(text, cascade[level], maxChars) {
		length := utf8.RuneCountInString(piece)
		if length <= maxChars {
			out = append(out, piece)
			continue
		}
		slog.Debug("Splitting oversized piece", "boundary", cascade[level].name, "length", length)
		out = append(out, splitFrom(piece, level+1, maxChars)...)
	}
	return out
}

// splitOn cuts text at b's delimiter and packs the parts back together up to maxChars.
func splitOn(text string, b boundary, maxChars int) []string {
	if !strings.Contains(text, b.delimiter) {
		return []string{text}
	}

	parts := strings.Split(text, b.delimiter)
	segments := make([]string, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if i < len(parts)-1 {
			part += b.restore
		}
		segments = append(segments, part)
	}

	sep := " "
	if b.name == "paragraph" || b.name == "line" {
		sep = "\n"
	}
	return pack(segments, sep, maxChars)
}

// pack greedily joins consecutive segments with sep while they fit in maxChars.
func pack(segments []string, sep string, maxChars int) []string {
	var out []string
	var current strings.Builder
	currentChars := 0
	sepChars := utf8.RuneCountInString(sep)

	for _, segment := range segments {
		segmentChars := utf8.RuneCountInString(segment)
		if currentChars > 0 && currentChars+sepChars+segmentChars > maxChars {
			out = append(out, current.String())
			current.Reset()
			currentChars = 0
		}
		if currentChars > 0 {
			current.WriteString(sep)
			currentChars += sepChars
		}
		current.WriteString(segment)
		currentChars += segmentChars
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return out
}
