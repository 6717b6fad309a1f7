package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codeinsight/insight-agent/internal/analytics"
	"github.com/codeinsight/insight-agent/internal/collector"
	"github.com/codeinsight/insight-agent/internal/config"
	"github.com/codeinsight/insight-agent/internal/domain"
	apperrors "github.com/codeinsight/insight-agent/internal/errors"
	"github.com/codeinsight/insight-agent/internal/qa"
	"github.com/codeinsight/insight-agent/internal/storage"
)

var (
	cfg        *config.Config
	outputJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "insight-agent",
	Short: "Developer insight agent",
	Long: `A CLI tool that fetches repository and discussion data from GitHub and
Reddit, stores each batch as JSON in S3 (falling back to local files), and
analyzes or answers questions over a stored batch.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
		if err := config.InitLogger(cfg); err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch data from an external source",
	Long:  `Fetch records from a source, normalize them, and persist the batch.`,
}

var fetchGitHubCmd = &cobra.Command{
	Use:   "github [query] [limit]",
	Short: "Fetch GitHub repositories",
	Long:  `Search GitHub repositories by stars and store the normalized results.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runFetchGitHub,
}

var fetchRedditCmd = &cobra.Command{
	Use:   "reddit [subreddit] [query] [limit] [sort] [time]",
	Short: "Fetch Reddit posts",
	Long: `Search a subreddit and store the normalized results.

  sort (optional): relevance, hot, top, new, comments (default: relevance)
  time (optional): hour, day, week, month, year, all (default: all)`,
	Args: cobra.RangeArgs(2, 5),
	RunE: runFetchReddit,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [location] [term]",
	Short: "Analyze a stored batch",
	Long: `Load the batch at a storage location, print the top records by stars or
score and, when a term is given, a mention-frequency report.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAnalyze,
}

var askCmd = &cobra.Command{
	Use:   "ask [question] [location] [index]",
	Short: "Ask a question about one stored record",
	Long: `Load the batch at a storage location, pick the record at index (default
0), and answer the question from its best available text field.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runAsk,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")

	rootCmd.AddCommand(fetchCmd)
	fetchCmd.AddCommand(fetchGitHubCmd)
	fetchCmd.AddCommand(fetchRedditCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(askCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newStore builds the tiered store. A failed S3 probe disables the remote
// tier with a logged warning instead of failing the command.
func newStore(ctx context.Context) *storage.Store {
	var remote storage.RemoteStore
	if cfg.HasS3() {
		s3Store, err := storage.NewS3Store(ctx, cfg.S3Bucket)
		if err != nil {
			zap.L().Warn("s3 unavailable, remote tier disabled",
				zap.String("bucket", cfg.S3Bucket),
				zap.Error(err))
		} else {
			remote = s3Store
		}
	} else {
		zap.L().Info("S3_BUCKET_NAME not set, using local storage only")
	}
	return storage.NewStore(remote, storage.NewLocalStore(cfg.DataDir))
}

// parseCount parses an optional numeric argument, keeping def when the
// argument is absent or not a number
func parseCount(args []string, idx, def int) int {
	if len(args) > idx {
		if n, err := strconv.Atoi(args[idx]); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func runFetchGitHub(cmd *cobra.Command, args []string) error {
	if !cfg.HasGitHub() {
		return fmt.Errorf("GITHUB_TOKEN not set: GitHub fetch is disabled")
	}

	query := args[0]
	limit := parseCount(args, 1, 10)
	fetchID := uuid.New().String()

	zap.L().Info("fetching github data",
		zap.String("fetch_id", fetchID),
		zap.String("query", query),
		zap.Int("limit", limit))

	ctx := cmd.Context()
	coll := collector.NewGitHubCollector(cfg.GitHubToken, cfg.MaxReadmeChars)
	collection, err := coll.SearchRepositories(ctx, query, limit)
	if err != nil {
		return fmt.Errorf("github fetch failed: %w", err)
	}
	if collection.IsEmpty() {
		return fmt.Errorf("no GitHub data fetched for %q", query)
	}

	return persistAndReport(ctx, collection, query, fetchID)
}

func runFetchReddit(cmd *cobra.Command, args []string) error {
	if !cfg.HasReddit() {
		return fmt.Errorf("Reddit credentials not set: Reddit fetch is disabled")
	}

	subreddit := args[0]
	query := args[1]
	limit := parseCount(args, 2, 10)
	sort := "relevance"
	if len(args) > 3 {
		sort = args[3]
	}
	timeFilter := "all"
	if len(args) > 4 {
		timeFilter = args[4]
	}
	fetchID := uuid.New().String()

	zap.L().Info("fetching reddit data",
		zap.String("fetch_id", fetchID),
		zap.String("subreddit", subreddit),
		zap.String("query", query),
		zap.Int("limit", limit),
		zap.String("sort", sort),
		zap.String("time", timeFilter))

	ctx := cmd.Context()
	coll, err := collector.NewRedditCollector(
		cfg.RedditClientID, cfg.RedditClientSecret,
		cfg.RedditUsername, cfg.RedditPassword, cfg.RedditUserAgent)
	if err != nil {
		return fmt.Errorf("reddit client init failed: %w", err)
	}

	collection, err := coll.SearchPosts(ctx, subreddit, query, limit, sort, timeFilter)
	if err != nil {
		return fmt.Errorf("reddit fetch failed: %w", err)
	}
	if collection.IsEmpty() {
		return fmt.Errorf("no Reddit data fetched from r/%s for %q", subreddit, query)
	}

	return persistAndReport(ctx, collection, subreddit+"_"+query, fetchID)
}

func persistAndReport(ctx context.Context, c *domain.Collection, label, fetchID string) error {
	store := newStore(ctx)
	loc, err := store.Persist(ctx, c, label)
	if err != nil {
		return fmt.Errorf("failed to persist batch: %w", err)
	}

	zap.L().Info("fetch complete",
		zap.String("fetch_id", fetchID),
		zap.Int("records", c.Len()),
		zap.String("location", loc.String()))

	if outputJSON {
		return printJSON(map[string]any{
			"source":   c.Source,
			"records":  c.Len(),
			"location": loc.String(),
		})
	}
	fmt.Printf("Fetched %d records.\n", c.Len())
	fmt.Printf("Data stored at: %s\n", loc)
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	loc := storage.Location(args[0])
	term := ""
	if len(args) > 1 {
		term = args[1]
	}

	ctx := cmd.Context()
	collection := newStore(ctx).Load(ctx, loc)
	if collection.IsEmpty() {
		return fmt.Errorf("failed to load data from %q or data is empty", loc)
	}

	ranked, err := analytics.Rank(collection, analytics.DefaultTopN)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	mentions := analytics.CountMentions(collection, term)
	if len(mentions) > analytics.DefaultTopN {
		mentions = mentions[:analytics.DefaultTopN]
	}

	if outputJSON {
		return printJSON(analyzeReport(collection, ranked, term, mentions))
	}

	fmt.Printf("\n--- Analysis Report (%s) ---\n", collection.Source)
	printRankTable(collection.Source, ranked)
	if term != "" {
		printMentionTable(term, mentions)
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]
	loc := storage.Location(args[1])
	index := 0
	if len(args) > 2 {
		if n, err := strconv.Atoi(args[2]); err == nil {
			index = n
		}
	}

	ctx := cmd.Context()
	collection := newStore(ctx).Load(ctx, loc)
	if collection.IsEmpty() {
		return fmt.Errorf("failed to load data from %q or data is empty", loc)
	}
	if index < 0 || index >= collection.Len() {
		return apperrors.NewInputOutOfRangeError(fmt.Sprintf(
			"index %d is out of bounds for data from %q (%d records)",
			index, loc, collection.Len()))
	}

	contextText, ok := qa.SelectContext(collection.At(index))
	if !ok {
		return fmt.Errorf("no suitable text context found in record %d from %q", index, loc)
	}

	var model qa.Model
	if cfg.HasQA() {
		model = qa.NewAnthropicModel(cfg.AnthropicAPIKey, cfg.QAModel)
	}
	answer := qa.NewAdapter(model, cfg.MaxContextChars).Ask(ctx, question, contextText)

	if outputJSON {
		return printJSON(map[string]any{
			"question":   question,
			"answer":     answer.Text,
			"confidence": answer.Confidence,
		})
	}
	fmt.Printf("Q: %s\n", question)
	fmt.Printf("A: %s (Confidence: %.2f)\n", answer.Text, answer.Confidence)
	return nil
}

// reportRow renders one record as a table row for its source type
func reportRow(rec domain.Record) []string {
	switch r := rec.(type) {
	case *domain.RepoRecord:
		desc := ""
		if r.Description != nil {
			desc = *r.Description
		}
		return []string{r.Name, strconv.Itoa(r.Stars), domain.TruncateChars(desc, 100)}
	case *domain.PostRecord:
		return []string{domain.TruncateChars(r.Title, 80), strconv.Itoa(r.Score), r.URL}
	default:
		return []string{rec.Label(), strconv.Itoa(rec.RankValue()), ""}
	}
}

func rankHeader(source domain.SourceType) []string {
	if source == domain.SourceGitHub {
		return []string{"Repository", "Stars", "Description"}
	}
	return []string{"Title", "Score", "URL"}
}

func printRankTable(source domain.SourceType, ranked []domain.Record) {
	fmt.Printf("\nTop %d by %s:\n", len(ranked), rankHeader(source)[1])
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(rankHeader(source))
	for _, rec := range ranked {
		table.Append(reportRow(rec))
	}
	table.Render()
}

func printMentionTable(term string, mentions []analytics.Mention) {
	fmt.Printf("\nRecords mentioning %q:\n", term)
	if len(mentions) == 0 {
		fmt.Printf("  No records found mentioning %q.\n", term)
		return
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Record", "Mentions"})
	for _, m := range mentions {
		table.Append([]string{domain.TruncateChars(m.Record.Label(), 80), strconv.Itoa(m.Count)})
	}
	table.Render()
}

func analyzeReport(c *domain.Collection, ranked []domain.Record, term string, mentions []analytics.Mention) map[string]any {
	top := make([]map[string]any, 0, len(ranked))
	for _, rec := range ranked {
		top = append(top, map[string]any{
			"label": rec.Label(),
			"value": rec.RankValue(),
		})
	}
	report := map[string]any{
		"source": c.Source,
		"top":    top,
	}
	if term != "" {
		counts := make([]map[string]any, 0, len(mentions))
		for _, m := range mentions {
			counts = append(counts, map[string]any{
				"label":    m.Record.Label(),
				"mentions": m.Count,
			})
		}
		report["term"] = term
		report["mentions"] = counts
	}
	return report
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
