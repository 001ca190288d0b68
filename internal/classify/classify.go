// Package classify flags extraneous posts before they reach the weighting model.
//
// Short-text collections are full of posts that carry no topical content:
// bare links, strings of mentions and hashtags, and engagement bait such as
// "follow and retweet to win". These inflate the vocabulary with one-off
// terms and compete with real discussion for summary slots, so they are
// dropped unless the caller asks to include everything.
package classify

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball"
)

// DefaultBoilerplateRatio is the share of boilerplate words above which a post is extraneous.
const DefaultBoilerplateRatio = 0.5

// boilerplateStems contains stemmed words typical of promotional and
// engagement-bait posts
var boilerplateStems = map[string]struct{}{
	// --- Engagement bait ---
	"follow":     {},
	"retweet":    {},
	"rt":         {},
	"share":      {},
	"tag":        {},
	"giveaway":   {},
	"win":        {},
	"enter":      {},
	"contest":    {},
	"subscrib":   {},
	"unsubscrib": {},

	// --- Calls to action ---
	"click":  {},
	"link":   {},
	"bio":    {},
	"dm":     {},
	"visit":  {},
	"check":  {},
	"signup": {},

	// --- Promotion ---
	"promo":    {},
	"discount": {},
	"coupon":   {},
	"sale":     {},
	"sponsor":  {},
	"advert":   {},
	"ad":       {},
	"offer":    {},
}

// Classifier identifies extraneous posts.
type Classifier struct {
	// wordRegex extracts word tokens once links, mentions and hashtags are gone
	wordRegex  *regexp.Regexp
	noiseRegex *regexp.Regexp
	ratio      float64
}

// NewClassifier creates a Classifier using DefaultBoilerplateRatio.
func NewClassifier() *Classifier {
	return &Classifier{
		wordRegex:  regexp.MustCompile(`\p{L}+`),
		noiseRegex: regexp.MustCompile(`(?i)https?://\S+|www\.\S+|[@#]\w+`),
		ratio:      DefaultBoilerplateRatio,
	}
}

// IsExtraneous reports whether post carries no topical content: it has no
// words outside links, mentions and hashtags, or more than half of its words
// are boilerplate.
func (c *Classifier) IsExtraneous(post string) bool {
	stripped := c.noiseRegex.ReplaceAllString(post, " ")
	words := c.wordRegex.FindAllString(strings.ToLower(stripped), -1)
	if len(words) == 0 {
		return true
	}

	boilerplate := 0
	for _, word := range words {
		stemmed, err := snowball.Stem(word, "english", true)
		if err != nil {
			stemmed = word
		}
		if _, ok := boilerplateStems[stemmed]; ok {
			boilerplate++
		}
	}

	return float64(boilerplate)/float64(len(words)) > c.ratio
}

// Filter returns the indices of posts that are not extraneous, in order.
func (c *Classifier) Filter(posts []string) []int {
	kept := make([]int, 0, len(posts))
	for i, post := range posts {
		if !c.IsExtraneous(post) {
			kept = append(kept, i)
		}
	}
	return kept
}
