// Package extract turns HTML documents into individual posts.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

var (
	// paragraphBreak separates markdown blocks
	paragraphBreak = regexp.MustCompile(`\n\s*\n`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

// Posts extracts posts from an HTML document.
//
// Parameters:
//   - content: HTML document
//   - selector: CSS selector matching one element per post; empty for paragraph mode
//   - includeAll: in paragraph mode, convert the whole page instead of only its main content
//   - baseURL: optional URL used by readability to resolve relative links (can be nil)
//
// With a selector, the text of every matching element is one post (feeds,
// comment threads, timelines). Otherwise the page is converted to Markdown
// and each paragraph becomes a post. When readability finds no main content
// the whole page is converted instead.
func Posts(content io.Reader, selector string, includeAll bool, baseURL *url.URL) ([]string, error) {
	if selector != "" {
		return postsWithSelector(content, selector)
	}

	htmlBytes, err := io.ReadAll(content)
	if err != nil {
		return nil, fmt.Errorf("failed to read HTML content: %w", err)
	}

	var markdown string
	if !includeAll {
		markdown, err = extractMainContent(htmlBytes, baseURL)
		if err != nil {
			slog.Debug("Readability failed, converting whole page", "error", err)
		}
	}
	if strings.TrimSpace(markdown) == "" {
		markdown, err = convertToMarkdown(string(htmlBytes))
		if err != nil {
			return nil, err
		}
	}

	return Paragraphs(markdown), nil
}

// Paragraphs splits Markdown (or plain text) on blank lines, collapsing the
// whitespace inside each paragraph.
func Paragraphs(text string) []string {
	var out []string
	for _, block := range paragraphBreak.Split(text, -1) {
		block = strings.TrimSpace(whitespaceRun.ReplaceAllString(block, " "))
		if block != "" {
			out = append(out, block)
		}
	}
	return out
}

// postsWithSelector returns the text of every element matching selector.
func postsWithSelector(content io.Reader, selector string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	selection := doc.Find(selector)
	if selection.Length() == 0 {
		return nil, fmt.Errorf("no elements found matching selector: %s", selector)
	}

	posts := make([]string, 0, selection.Length())
	selection.Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(whitespaceRun.ReplaceAllString(s.Text(), " "))
		if text != "" {
			posts = append(posts, text)
		}
	})

	return posts, nil
}

// extractMainContent uses go-readability to keep only the main article content.
func extractMainContent(htmlBytes []byte, baseURL *url.URL) (string, error) {
	if baseURL == nil {
		baseURL = &url.URL{}
	}

	article, err := readability.FromReader(bytes.NewReader(htmlBytes), baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract main content: %w", err)
	}

	return convertToMarkdown(article.Content)
}

// convertToMarkdown converts an HTML string to Markdown.
func convertToMarkdown(htmlString string) (string, error) {
	converter := md.NewConverter("", true, nil)

	markdown, err := converter.ConvertString(htmlString)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	return strings.TrimSpace(markdown), nil
}
