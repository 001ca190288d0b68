// Package tokenize turns raw post text into the token slices consumed by the
// hybrid TF-IDF model.
//
// Two modes are available. Simple lowercases the text and splits it on
// anything that is not a letter, digit, '_', '-', '#' or '@'. Prose runs the
// prose word tokenizer, which handles contractions and punctuation more
// carefully at a higher cost. Both modes drop URLs, tokens shorter than the
// configured minimum, and English stopwords unless asked to keep them.
//
// Tokens are never stemmed.
package tokenize

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jdkato/prose/v2"
)

// Mode selects the tokenization strategy.
type Mode int

const (
	// Simple splits on non-word characters (default)
	Simple Mode = iota
	// Prose uses the prose word tokenizer
	Prose
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case Simple:
		return "simple"
	case Prose:
		return "prose"
	default:
		return "unknown"
	}
}

// ParseMode converts a mode name into a Mode.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "simple":
		return Simple, nil
	case "prose":
		return Prose, nil
	default:
		return Simple, fmt.Errorf("unknown tokenizer %q (want simple or prose)", name)
	}
}

// DefaultMinLength is the shortest token kept by default, in runes.
const DefaultMinLength = 2

var (
	urlRegex   = regexp.MustCompile(`(?i)\bhttps?://\S+|\bwww\.\S+`)
	splitRegex = regexp.MustCompile(`[^\p{L}\p{N}_#@-]+`)
)

// Options configures a Tokenizer.
type Options struct {
	Mode          Mode
	MinLength     int  // tokens with fewer runes are dropped; 0 means DefaultMinLength
	KeepStopwords bool // keep English stopwords
}

// Tokenizer converts post text to tokens. It is safe for concurrent use.
type Tokenizer struct {
	opts Options
}

// New creates a Tokenizer.
func New(opts Options) *Tokenizer {
	if opts.MinLength <= 0 {
		opts.MinLength = DefaultMinLength
	}
	return &Tokenizer{opts: opts}
}

// Tokens splits text into filtered lowercase tokens.
func (t *Tokenizer) Tokens(text string) ([]string, error) {
	text = urlRegex.ReplaceAllString(text, " ")
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	var raw []string
	switch t.opts.Mode {
	case Prose:
		doc, err := prose.NewDocument(text,
			prose.WithTagging(false),
			prose.WithSegmentation(false),
			prose.WithExtraction(false))
		if err != nil {
			return nil, fmt.Errorf("prose tokenization failed: %w", err)
		}
		for _, tok := range doc.Tokens() {
			raw = append(raw, strings.ToLower(tok.Text))
		}
	default:
		raw = splitRegex.Split(strings.ToLower(text), -1)
	}

	return t.filter(raw), nil
}

// TokenizeAll tokenizes every text, keeping input order.
func (t *Tokenizer) TokenizeAll(texts []string) ([][]string, error) {
	out := make([][]string, len(texts))
	for i, text := range texts {
		tokens, err := t.Tokens(text)
		if err != nil {
			return nil, fmt.Errorf("post %d: %w", i, err)
		}
		out[i] = tokens
	}

	slog.Debug("Posts tokenized", "posts", len(texts), "mode", t.opts.Mode.String())
	return out, nil
}

func (t *Tokenizer) filter(raw []string) []string {
	tokens := make([]string, 0, len(raw))
	for _, token := range raw {
		token = strings.Trim(token, "-_'’")
		if !hasWordRune(token) {
			continue
		}
		if utf8.RuneCountInString(token) < t.opts.MinLength {
			continue
		}
		if !t.opts.KeepStopwords && IsStopword(token) {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// hasWordRune reports whether s contains a letter or digit.
func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
