package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/chriscorrea/salient/internal/app"
	"github.com/chriscorrea/salient/internal/config"
	"github.com/chriscorrea/salient/internal/counter"
	"github.com/chriscorrea/salient/internal/tokenize"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// buildConfig constructs an app.Config from the config file, command flags
// and arguments. Flags set on the command line override file values.
func buildConfig(cmd *cobra.Command, args []string) (app.Config, error) {
	flags := cmd.Flags()

	configPath, _ := flags.GetString("config")
	file, resolved, exists, err := config.Load(configPath)
	if err != nil {
		return app.Config{}, err
	}
	slog.Debug("Configuration loaded", "path", resolved, "exists", exists)

	cfg := app.Config{
		IncludeAll:     file.IncludeAll,
		MaxPostChars:   file.MaxPostChars,
		MinTokenLength: file.MinTokenLength,
		KeepStopwords:  file.KeepStopwords,
		Threshold:      file.Threshold,
		Count:          file.Count,
		Similarity:     file.Similarity,
	}

	cfg.Selector, _ = flags.GetString("selector")
	cfg.Quiet, _ = flags.GetBool("quiet")
	cfg.Debug, _ = flags.GetBool("debug")

	if changed(flags, "include-all") {
		cfg.IncludeAll, _ = flags.GetBool("include-all")
	}
	if changed(flags, "max-post-chars") {
		cfg.MaxPostChars, _ = flags.GetInt("max-post-chars")
	}
	if changed(flags, "min-token-length") {
		cfg.MinTokenLength, _ = flags.GetInt("min-token-length")
	}
	if changed(flags, "keep-stopwords") {
		cfg.KeepStopwords, _ = flags.GetBool("keep-stopwords")
	}
	if changed(flags, "threshold") {
		cfg.Threshold, _ = flags.GetFloat64("threshold")
	}
	if changed(flags, "count") {
		cfg.Count, _ = flags.GetInt("count")
	}
	if changed(flags, "similarity") {
		cfg.Similarity, _ = flags.GetFloat64("similarity")
	}
	if changed(flags, "search") {
		cfg.SearchQuery, _ = flags.GetString("search")
	}

	if cfg.MaxPostChars < 0 {
		return app.Config{}, fmt.Errorf("--max-post-chars must not be negative")
	}
	if cfg.MinTokenLength < 0 {
		return app.Config{}, fmt.Errorf("--min-token-length must not be negative")
	}

	tokenizerName := file.Tokenizer
	if changed(flags, "tokenizer") {
		tokenizerName, _ = flags.GetString("tokenizer")
	}
	if cfg.Tokenizer, err = tokenize.ParseMode(tokenizerName); err != nil {
		return app.Config{}, err
	}

	// determine counting method and max units; no limit flag means no budget
	for _, limit := range []struct {
		flag   string
		method counter.CountingMethod
	}{
		{"token-limit", counter.Tokens},
		{"word-limit", counter.Words},
		{"character-limit", counter.Characters},
	} {
		if !changed(flags, limit.flag) {
			continue
		}
		units, _ := flags.GetInt(limit.flag)
		if units <= 0 {
			return app.Config{}, fmt.Errorf("--%s must be positive", limit.flag)
		}
		cfg.MaxUnits = units
		cfg.CountingMethod = limit.method
	}

	// determine output format
	textFlag, _ := flags.GetBool("text")
	jsonFlag, _ := flags.GetBool("json")
	tableFlag, _ := flags.GetBool("table")
	mdFlag, _ := flags.GetBool("md")
	switch {
	case textFlag:
		cfg.OutputFormat = app.Text
	case jsonFlag:
		cfg.OutputFormat = app.JSON
	case tableFlag:
		cfg.OutputFormat = app.Table
	case mdFlag:
		cfg.OutputFormat = app.Markdown
	default:
		if cfg.OutputFormat, err = app.ParseOutputFormat(file.Format); err != nil {
			return app.Config{}, err
		}
	}

	// no arguments means stdin
	if len(args) == 0 {
		cfg.Sources = []string{"-"}
	} else {
		cfg.Sources = args
	}

	return cfg, nil
}

// changed reports whether the named flag exists on this command and was set.
func changed(flags *pflag.FlagSet, name string) bool {
	f := flags.Lookup(name)
	return f != nil && f.Changed
}

// setupLogger configures the default slog logger based on debug mode
func setupLogger(debug bool) {
	level := slog.LevelError
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// runWith builds the config and hands it to fn under an interrupt-aware context.
func runWith(fn func(context.Context, app.Config) (string, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		setupLogger(debug)

		cfg, err := buildConfig(cmd, args)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		result, err := fn(ctx, cfg)
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), result)
		return nil
	}
}

func newRootCmd() *cobra.Command {
	defaults := config.Default()

	rootCmd := &cobra.Command{
		Use:   "salient [sources...]",
		Short: "Summarize a collection of short posts",
		Long: `Salient picks the most informative posts from a collection of short texts
(tweets, comments, status updates) while skipping near-duplicates. Sources may
be URLs, local files, or standard input. Plain-text sources hold one post per
line; HTML sources are split by --selector or into paragraphs.

Examples:
  salient timeline.txt
  salient -k 5 --similarity 0.3 https://example.com/thread --selector ".comment"
  cat posts.txt | salient --search vaccine --json
  salient weights --table posts.txt`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runWith(app.Run),
	}

	weightsCmd := &cobra.Command{
		Use:   "weights [sources...]",
		Short: "List every post with its hybrid TF-IDF weight",
		Long: `Weights loads and filters posts exactly as the summary does and prints each
remaining post with its weight, in input order.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runWith(app.Weights),
	}
	rootCmd.AddCommand(weightsCmd)

	// loading and weighting flags shared with the weights command
	pf := rootCmd.PersistentFlags()
	pf.StringP("selector", "s", "", "CSS selector matching one element per post in HTML sources")
	pf.BoolP("include-all", "i", defaults.IncludeAll, "Keep boilerplate posts and the whole HTML page")
	pf.Int("max-post-chars", defaults.MaxPostChars, "Split posts longer than this many characters (0 disables)")
	pf.String("tokenizer", defaults.Tokenizer, "Tokenizer: simple or prose")
	pf.Int("min-token-length", defaults.MinTokenLength, "Drop tokens shorter than this many characters")
	pf.Bool("keep-stopwords", defaults.KeepStopwords, "Keep common English stopwords")
	pf.Float64("threshold", defaults.Threshold, "Length normalization threshold")
	pf.String("config", "", "Path to a TOML config file (default $XDG_CONFIG_HOME/salient/config.toml)")

	// output format flags are mutually exclusive
	pf.Bool("md", false, "Output in Markdown format (default)")
	pf.Bool("text", false, "Output in plain text format")
	pf.Bool("json", false, "Output in JSON format")
	pf.Bool("table", false, "Output as a table")
	rootCmd.MarkFlagsMutuallyExclusive("md", "text", "json", "table")

	pf.BoolP("quiet", "q", false, "Suppress progress and warnings")
	pf.BoolP("debug", "D", false, "Enable debug logging")
	_ = pf.MarkHidden("debug")

	// selection flags
	f := rootCmd.Flags()
	f.IntP("count", "k", defaults.Count, "Maximum number of posts in the summary")
	f.Float64("similarity", defaults.Similarity, "Skip posts at least this cosine-similar to a selected post")
	f.String("search", "", "Only summarize posts matching these keyword(s)")

	// limit flags are mutually exclusive
	f.IntP("token-limit", "t", 0, "Limit the summary to a number of tokens")
	f.IntP("word-limit", "w", 0, "Limit the summary to a number of words")
	f.IntP("character-limit", "c", 0, "Limit the summary to a number of characters")
	rootCmd.MarkFlagsMutuallyExclusive("token-limit", "word-limit", "character-limit")

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
