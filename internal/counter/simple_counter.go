package counter

import (
	"strings"
	"unicode/utf8"
)

// WordCounter counts words separated by Unicode whitespace.
type WordCounter struct{}

// Count returns the number of words in text.
func (WordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

// Name returns the name of this counting method.
func (WordCounter) Name() string {
	return "words"
}

// CharCounter counts Unicode characters (runes), not bytes.
type CharCounter struct{}

// Count returns the number of runes in text.
func (CharCounter) Count(text string) int {
	return utf8.RuneCountInString(text)
}

// Name returns the name of this counting method.
func (CharCounter) Name() string {
	return "characters"
}
