package app

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// postSeparator joins posts in Markdown and Text output, and is what the
// summary budget counts between posts.
const postSeparator = "\n\n"

// tablePostWidth wraps the post column of table output.
const tablePostWidth = 80

func renderSummary(s *Summary, format OutputFormat) (string, error) {
	switch format {
	case JSON:
		return renderJSON(s)
	case Table:
		return renderTable(s.Posts, true) + "\n", nil
	case Text:
		parts := make([]string, len(s.Posts))
		for i, p := range s.Posts {
			parts[i] = stripMarkdown(p.Text)
		}
		return joinPosts(parts), nil
	default:
		parts := make([]string, len(s.Posts))
		for i, p := range s.Posts {
			parts[i] = "- " + strings.ReplaceAll(p.Text, "\n", "\n  ")
		}
		return joinPosts(parts), nil
	}
}

func renderWeights(posts []Post, format OutputFormat) (string, error) {
	switch format {
	case JSON:
		return renderJSON(posts)
	case Table:
		return renderTable(posts, false) + "\n", nil
	case Text:
		var b strings.Builder
		for _, p := range posts {
			fmt.Fprintf(&b, "%s\t%s\n", formatWeight(p.Weight), strings.ReplaceAll(stripMarkdown(p.Text), "\n", " "))
		}
		return b.String(), nil
	default:
		return weightsTable(posts, 0).RenderMarkdown() + "\n", nil
	}
}

func renderJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}
	return string(data) + "\n", nil
}

// renderTable draws posts in a rounded box; ranked adds a rank column for
// summaries.
func renderTable(posts []Post, ranked bool) string {
	var tw table.Writer
	if ranked {
		tw = table.NewWriter()
		tw.AppendHeader(table.Row{"Rank", "#", "Weight", "Post"})
		for rank, p := range posts {
			tw.AppendRow(table.Row{rank + 1, p.Index + 1, formatWeight(p.Weight), p.Text})
		}
		tw.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
			{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
			{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
			{Number: 4, WidthMax: tablePostWidth},
		})
	} else {
		tw = weightsTable(posts, tablePostWidth)
	}
	tw.SetStyle(table.StyleRounded)
	keepHeaderCase(tw)
	return tw.Render()
}

// weightsTable lists posts in input order with their weights. A positive
// postWidth wraps the post column.
func weightsTable(posts []Post, postWidth int) table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"#", "Weight", "Post"})
	for _, p := range posts {
		tw.AppendRow(table.Row{p.Index + 1, formatWeight(p.Weight), strings.ReplaceAll(p.Text, "\n", " ")})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, WidthMax: postWidth},
	})
	keepHeaderCase(tw)
	return tw
}

// keepHeaderCase stops go-pretty from upper-casing header titles. It must run
// after SetStyle, which replaces the style's format settings.
func keepHeaderCase(tw table.Writer) {
	tw.Style().Format.Header = text.FormatDefault
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', 4, 64)
}

func joinPosts(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, postSeparator) + "\n"
}
