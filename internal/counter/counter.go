// Package counter measures rendered summary text so that a summary can be
// held to a budget of tokens, words or characters.
//
// Token counting uses tiktoken's cl100k_base encoding, which matches the
// tokenizer of most OpenAI models and is the usual unit when a summary is
// fed to a language model.
package counter

import (
	"fmt"
	"log/slog"
	"strings"
)

// Counter counts units in a piece of text.
type Counter interface {
	// Count returns the number of units (tokens, words, or characters) in text.
	Count(text string) int

	// Name returns a human-readable name for this counting method (for logging).
	Name() string
}

// CountingMethod represents the available counting strategies.
type CountingMethod int

const (
	// Tokens uses tiktoken with cl100k_base encoding (default)
	Tokens CountingMethod = iota
	// Words counts whitespace-separated words
	Words
	// Characters counts runes, whitespace included
	Characters
)

// String returns the string representation of the counting method.
func (cm CountingMethod) String() string {
	switch cm {
	case Tokens:
		return "tokens"
	case Words:
		return "words"
	case Characters:
		return "characters"
	default:
		return "unknown"
	}
}

// NewCounter returns the Counter for method. Unknown methods fall back to tokens.
func NewCounter(method CountingMethod) (Counter, error) {
	switch method {
	case Words:
		return WordCounter{}, nil
	case Characters:
		return CharCounter{}, nil
	default:
		return NewTokenCounter()
	}
}

// Budget returns how many leading entries of texts fit within maxUnits when
// each entry is joined to the previous one with sep. A non-positive maxUnits
// means no limit.
//
// Each text and separator is counted once, so the cost is linear in the
// input. For tokens this treats the join as additive, which can differ by a
// token or so from encoding the joined string.
func Budget(c Counter, texts []string, sep string, maxUnits int) int {
	if maxUnits <= 0 {
		return len(texts)
	}

	sepUnits := c.Count(sep)
	used := 0
	for i, text := range texts {
		if i > 0 {
			used += sepUnits
		}
		used += c.Count(text)

		if used > maxUnits {
			slog.Debug("Summary budget reached", "counter", c.Name(), "maxUnits", maxUnits, "used", used, "kept", i)
			return i
		}
	}
	return len(texts)
}

// ParseMethod converts a method name into a CountingMethod.
func ParseMethod(name string) (CountingMethod, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "tokens", "token":
		return Tokens, nil
	case "words", "word":
		return Words, nil
	case "characters", "character", "chars":
		return Characters, nil
	default:
		return Tokens, fmt.Errorf("unknown counting method %q", name)
	}
}
