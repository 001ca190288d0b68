package app

import (
	"regexp"
	"strings"
	"sync"
)

// markdownMarkers holds compiled patterns for Markdown syntax that plain-text
// output strips from extracted posts.
type markdownMarkers struct {
	heading    *regexp.Regexp
	bullet     *regexp.Regexp
	numbered   *regexp.Regexp
	fence      *regexp.Regexp
	inlineCode *regexp.Regexp
	bold       *regexp.Regexp
	italic     *regexp.Regexp
	link       *regexp.Regexp
}

var (
	markers     *markdownMarkers
	markersOnce sync.Once
)

func getMarkdownMarkers() *markdownMarkers {
	markersOnce.Do(func() {
		markers = &markdownMarkers{
			heading:    regexp.MustCompile(`^\s*#{1,6}\s+`),
			bullet:     regexp.MustCompile(`^\s*[-*+]\s+`),
			numbered:   regexp.MustCompile(`^\s*\d+\.\s+`),
			fence:      regexp.MustCompile("^\\s*`{3}.*$"),
			inlineCode: regexp.MustCompile("`([^`]+)`"),
			bold:       regexp.MustCompile(`\*\*([^*]+)\*\*|__([^_]+)__`),
			italic:     regexp.MustCompile(`\*([^*\s][^*]*)\*|\b_([^_\s][^_]*)_\b`),
			link:       regexp.MustCompile(`!?\[([^\]]*)\]\([^)]*\)`),
		}
	})
	return markers
}

// stripMarkdown removes Markdown markup from a post, keeping its words.
func stripMarkdown(post string) string {
	m := getMarkdownMarkers()

	lines := strings.Split(post, "\n")
	out := lines[:0]
	for _, line := range lines {
		if m.fence.MatchString(line) {
			continue
		}
		line = m.heading.ReplaceAllString(line, "")
		line = m.bullet.ReplaceAllString(line, "")
		line = m.numbered.ReplaceAllString(line, "")
		line = m.link.ReplaceAllString(line, "$1")
		line = m.inlineCode.ReplaceAllString(line, "$1")
		line = m.bold.ReplaceAllString(line, "$1$2")
		line = m.italic.ReplaceAllString(line, "$1$2")
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
