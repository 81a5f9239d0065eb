package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/everstacklabs/modelfuse/internal/cache"
	"github.com/everstacklabs/modelfuse/internal/config"
	"github.com/everstacklabs/modelfuse/internal/httpclient"
	"github.com/everstacklabs/modelfuse/internal/match"
	"github.com/everstacklabs/modelfuse/internal/merge"
	"github.com/everstacklabs/modelfuse/internal/query"
	"github.com/everstacklabs/modelfuse/internal/remote"
	"github.com/everstacklabs/modelfuse/internal/schema"
	"github.com/everstacklabs/modelfuse/internal/source/aa"
	"github.com/everstacklabs/modelfuse/internal/source/modelsdev"
	"github.com/everstacklabs/modelfuse/internal/store"
)

const version = "0.3.0"

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "modelfuse",
		Short: "Cross-source LLM catalog merger",
		Long:  "Merges Artificial Analysis benchmark data with models.dev capability data and exposes the result as queryable Parquet tables.",
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	rootCmd.AddCommand(
		refreshCmd(),
		modelsCmd(),
		mediaCmd(),
		compareCmd(),
		matchCmd(),
		queryCmd(),
		tablesCmd(),
		cacheCmd(),
		configCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func refreshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch fresh data and rebuild the merged tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			useAPI, _ := cmd.Flags().GetBool("api")
			force, _ := cmd.Flags().GetBool("force")

			fc, client, err := newRuntime(cfg)
			if err != nil {
				return err
			}

			if !useAPI {
				rc := remote.New(cmd.Context(), cfg.Remote.Owner, cfg.Remote.Repo, cfg.Remote.Tag, cfg.Remote.Token, fc.Dir())
				if err := rc.FetchAll(cmd.Context(), force); err == nil {
					fmt.Println("Tables refreshed from hosted data. Use 'modelfuse tables' to see available data.")
					return nil
				} else if cfg.AA.APIKey == "" {
					return fmt.Errorf("fetching hosted data: %w (set AA_API_KEY to fall back to the APIs)", err)
				} else {
					slog.Warn("hosted data unavailable, falling back to APIs", "error", err)
				}
			}

			return refreshFromAPIs(cmd.Context(), cfg, fc, client)
		},
	}

	cmd.Flags().Bool("api", false, "Fetch from the source APIs instead of hosted data")
	cmd.Flags().Bool("force", false, "Re-download even if cached data is fresh")

	return cmd
}

func refreshFromAPIs(ctx context.Context, cfg *config.Config, fc *cache.FileCache, client *httpclient.Client) error {
	ac := aa.New(cfg.AA.APIKey, cfg.AA.BaseURL, client, fc)

	benchmarks, err := ac.Models(ctx)
	if err != nil {
		return err
	}

	// A missing capability snapshot degrades to benchmark-only output
	// rather than failing the refresh.
	snapshot, err := modelsdev.New(cfg.MDev.URL, client).Fetch(ctx)
	if err != nil {
		slog.Warn("capability source unavailable, producing benchmark-only tables", "error", err)
		snapshot = modelsdev.Snapshot{}
	}

	rows := merge.Combine(benchmarks, snapshot)

	matched := 0
	for _, r := range rows {
		if r.Matched {
			matched++
		}
	}
	slog.Info("merge complete", "rows", len(rows), "matched", matched)

	st := store.New(fc)
	if err := st.WriteBenchmarks(benchmarks); err != nil {
		return err
	}
	if err := st.WriteCapabilities(snapshot); err != nil {
		return err
	}
	if err := st.WriteMerged(rows); err != nil {
		return err
	}

	// Media leaderboards are best-effort: a failed endpoint never fails
	// the refresh.
	for _, ep := range aa.MediaEndpoints {
		models, err := ac.Media(ctx, ep.Path)
		if err != nil {
			slog.Warn("media leaderboard unavailable", "table", ep.Table, "error", err)
			continue
		}
		if err := st.WriteMedia(ep.Table, models); err != nil {
			return err
		}
	}

	fmt.Printf("Tables refreshed (%d models, %d matched). Use 'modelfuse tables' to see available data.\n", len(rows), matched)
	return nil
}

func modelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List merged models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fc, _, err := newRuntime(cfg)
			if err != nil {
				return err
			}

			rows, err := store.New(fc).ReadMerged()
			if err != nil {
				return fmt.Errorf("no merged data: run 'modelfuse refresh' first (%w)", err)
			}

			modelFilter, _ := cmd.Flags().GetString("model")
			creatorFilter, _ := cmd.Flags().GetString("creator")
			unmatchedOnly, _ := cmd.Flags().GetBool("unmatched")
			sortBy, _ := cmd.Flags().GetString("sort")
			asJSON, _ := cmd.Flags().GetBool("json")

			rows = filterRows(rows, modelFilter, creatorFilter, unmatchedOnly)
			sortRows(rows, sortBy)

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			printRows(rows)
			return nil
		},
	}

	cmd.Flags().String("model", "", "Filter by model slug or name substring")
	cmd.Flags().String("creator", "", "Filter by creator slug or name substring")
	cmd.Flags().Bool("unmatched", false, "Only show models without a capability match")
	cmd.Flags().String("sort", "", "Sort by: intelligence, price, tps")
	cmd.Flags().Bool("json", false, "Output JSON instead of a table")

	return cmd
}

func mediaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "List media model leaderboards (image, video, speech)",
	}

	leaderboard := func(use, short, path string, categories bool) *cobra.Command {
		sub := &cobra.Command{
			Use:   use,
			Short: short,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				fc, client, err := newRuntime(cfg)
				if err != nil {
					return err
				}

				models, err := aa.New(cfg.AA.APIKey, cfg.AA.BaseURL, client, fc).Media(cmd.Context(), path)
				if err != nil {
					return err
				}

				asJSON, _ := cmd.Flags().GetBool("json")
				if asJSON {
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(models)
				}

				withCategories := false
				if categories {
					withCategories, _ = cmd.Flags().GetBool("categories")
				}
				printMedia(models, withCategories)
				return nil
			},
		}
		sub.Flags().Bool("json", false, "Output JSON instead of a table")
		if categories {
			sub.Flags().Bool("categories", false, "Show per-category ELO breakdown")
		}
		return sub
	}

	cmd.AddCommand(
		leaderboard("text-to-image", "Text-to-image leaderboard", aa.MediaTextToImage, true),
		leaderboard("image-editing", "Image-editing leaderboard", aa.MediaImageEditing, false),
		leaderboard("text-to-speech", "Text-to-speech leaderboard", aa.MediaTextToSpeech, false),
		leaderboard("text-to-video", "Text-to-video leaderboard", aa.MediaTextToVideo, true),
		leaderboard("image-to-video", "Image-to-video leaderboard", aa.MediaImageToVideo, true),
	)

	return cmd
}

func printMedia(models []aa.MediaModel, withCategories bool) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if withCategories {
		fmt.Fprintln(w, "RANK\tNAME\tCREATOR\tELO\tCATEGORIES")
	} else {
		fmt.Fprintln(w, "RANK\tNAME\tCREATOR\tELO")
	}
	for i := range models {
		m := &models[i]
		if withCategories {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", fmtRank(m.Rank), m.Name, m.Creator.Name, fmtELO(m.ELO), categoryList(m))
		} else {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", fmtRank(m.Rank), m.Name, m.Creator.Name, fmtELO(m.ELO))
		}
	}
	w.Flush()
	fmt.Printf("\n%d models\n", len(models))
}

func fmtRank(r *int32) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *r)
}

func fmtELO(e *float64) string {
	if e == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f", *e)
}

func categoryList(m *aa.MediaModel) string {
	names := make([]string, 0, len(m.CategoryBreakdown))
	for name := range m.CategoryBreakdown {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		if elo := m.CategoryBreakdown[name].ELO; elo != nil {
			parts = append(parts, fmt.Sprintf("%s:%.0f", name, *elo))
		}
	}
	return strings.Join(parts, ", ")
}

func compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <model>...",
		Short: "Compare models side by side",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fc, _, err := newRuntime(cfg)
			if err != nil {
				return err
			}

			rows, err := store.New(fc).ReadMerged()
			if err != nil {
				return fmt.Errorf("no merged data: run 'modelfuse refresh' first (%w)", err)
			}

			picked := make([]merge.Row, 0, len(args))
			for _, ref := range args {
				row := merge.Pick(rows, ref)
				if row == nil {
					return fmt.Errorf("no model matching %q: try 'modelfuse models' to list slugs", ref)
				}
				picked = append(picked, *row)
			}

			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(picked)
			}

			verbose, _ := cmd.Flags().GetBool("verbose")
			printComparison(picked, verbose)
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Output JSON instead of a table")
	cmd.Flags().BoolP("verbose", "v", false, "Show capability fields too")

	return cmd
}

func printComparison(rows []merge.Row, verbose bool) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	header := "FIELD"
	for _, r := range rows {
		header += "\t" + r.Name
	}
	fmt.Fprintln(w, header)

	line := func(label string, get func(*merge.Row) string) {
		out := label
		for i := range rows {
			out += "\t" + get(&rows[i])
		}
		fmt.Fprintln(w, out)
	}

	line("creator", func(r *merge.Row) string { return r.Creator })
	line("slug", func(r *merge.Row) string { return r.Slug })
	line("intelligence", func(r *merge.Row) string { return fmtFloat(r.Intelligence, "%.1f") })
	line("coding", func(r *merge.Row) string { return fmtFloat(r.Coding, "%.1f") })
	line("math", func(r *merge.Row) string { return fmtFloat(r.Math, "%.1f") })
	line("input $/M", func(r *merge.Row) string { return fmtFloat(r.InputPrice, "%.2f") })
	line("output $/M", func(r *merge.Row) string { return fmtFloat(r.OutputPrice, "%.2f") })
	line("tps", func(r *merge.Row) string { return fmtFloat(r.TPS, "%.1f") })
	line("latency", func(r *merge.Row) string { return fmtFloat(r.Latency, "%.2f") })
	line("context", func(r *merge.Row) string { return fmtInt(r.ContextWindow) })
	line("match", func(r *merge.Row) string { return matchLabel(r) })

	if verbose {
		line("reasoning", func(r *merge.Row) string { return fmtBool(r.Reasoning) })
		line("tool call", func(r *merge.Row) string { return fmtBool(r.ToolCall) })
		line("structured output", func(r *merge.Row) string { return fmtBool(r.StructuredOutput) })
		line("attachment", func(r *merge.Row) string { return fmtBool(r.Attachment) })
		line("open weights", func(r *merge.Row) string { return fmtBool(r.OpenWeights) })
		line("knowledge", func(r *merge.Row) string { return orDash(r.Knowledge) })
		line("max output", func(r *merge.Row) string { return fmtInt(r.MaxOutputTokens) })
		line("modalities", func(r *merge.Row) string {
			if r.InputModalities == "" && r.OutputModalities == "" {
				return "-"
			}
			return r.InputModalities + " -> " + r.OutputModalities
		})
	}

	w.Flush()
}

func matchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <slug>",
		Short: "Diagnose how one benchmark slug resolves against the capability data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			_, client, err := newRuntime(cfg)
			if err != nil {
				return err
			}

			creator, _ := cmd.Flags().GetString("creator")

			snapshot, err := modelsdev.New(cfg.MDev.URL, client).Fetch(cmd.Context())
			if err != nil {
				return err
			}

			idx := match.BuildIndex(snapshot)
			result := match.Find(creator, args[0], idx)
			if result == nil {
				fmt.Printf("%s: no match (%d candidates considered)\n", args[0], idx.Len())
				return nil
			}

			fmt.Printf("%s -> %s/%s (%s)\n", args[0], result.ProviderID, result.ModelID, result.Kind)
			return nil
		},
	}

	cmd.Flags().String("creator", "", "Creator slug of the benchmark record")

	return cmd
}

func queryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <sql>",
		Short: "Run SQL against the cached tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fc, _, err := newRuntime(cfg)
			if err != nil {
				return err
			}

			result, err := query.New(fc).Run(args[0])
			if err != nil {
				return err
			}

			if result.Empty() {
				fmt.Println("no rows")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, strings.Join(result.Columns, "\t"))
			for _, row := range result.Rows {
				fmt.Fprintln(w, strings.Join(row, "\t"))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("\n%d rows\n", len(result.Rows))
			return nil
		},
	}
}

func tablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables [name]",
		Short: "Show the queryable table schemas",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				t, ok := schema.Lookup(args[0])
				if !ok {
					names := make([]string, len(schema.All))
					for i, def := range schema.All {
						names[i] = def.Name
					}
					return fmt.Errorf("unknown table %q (available: %s)", args[0], strings.Join(names, ", "))
				}
				fmt.Println(t.CreateTableSQL())
				return nil
			}

			for i, t := range schema.All {
				if i > 0 {
					fmt.Println()
				}
				fmt.Println(t.CreateTableSQL())
			}
			return nil
		},
	}
}

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the local cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show cache location, size, and API quota",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fc, _, err := newRuntime(cfg)
			if err != nil {
				return err
			}

			stats, err := fc.Stat()
			if err != nil {
				return err
			}
			fmt.Printf("Location: %s\nEntries:  %d\nSize:     %s\n", stats.Dir, stats.Entries, stats.SizeHuman())

			if q := fc.GetQuota(); q != nil {
				fmt.Printf("Quota:    %d/%d remaining (as of %s)\n", q.Remaining, q.Limit, q.UpdatedAt.Format(time.RFC3339))
				if q.Low() {
					fmt.Println("Warning: API quota is low")
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove cached responses and tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fc, _, err := newRuntime(cfg)
			if err != nil {
				return err
			}
			if err := fc.Clear(); err != nil {
				return err
			}
			fmt.Println("Cache cleared.")
			return nil
		},
	})

	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfgFile
			if path == "" {
				path = "config.yaml"
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	})

	return cmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	setupLogging(cfg.LogLevel)
	return cfg, nil
}

func setupLogging(level string) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}

func newRuntime(cfg *config.Config) (*cache.FileCache, *httpclient.Client, error) {
	ttl, err := time.ParseDuration(cfg.CacheTTL)
	if err != nil {
		ttl = time.Hour
	}

	fc, err := cache.New(cfg.CacheDir, ttl)
	if err != nil {
		return nil, nil, fmt.Errorf("creating cache: %w", err)
	}

	opts := []httpclient.Option{
		httpclient.WithRateLimit(10),
		httpclient.WithUserAgent("modelfuse/" + version),
		httpclient.WithCache(fc),
	}
	if cfg.NoCache {
		opts = append(opts, httpclient.WithNoCache())
	}

	return fc, httpclient.New(opts...), nil
}

func filterRows(rows []merge.Row, model, creator string, unmatchedOnly bool) []merge.Row {
	if model == "" && creator == "" && !unmatchedOnly {
		return rows
	}
	out := rows[:0:0]
	for _, r := range rows {
		if unmatchedOnly && r.Matched {
			continue
		}
		if model != "" && !strings.Contains(r.Slug, model) && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(model)) {
			continue
		}
		if creator != "" && !strings.Contains(r.CreatorSlug, creator) && !strings.Contains(strings.ToLower(r.Creator), strings.ToLower(creator)) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func sortRows(rows []merge.Row, field string) {
	desc := func(get func(*merge.Row) *float64) {
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := get(&rows[i]), get(&rows[j])
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			return *a > *b
		})
	}

	switch strings.ToLower(field) {
	case "":
	case "intelligence", "intel":
		desc(func(r *merge.Row) *float64 { return r.Intelligence })
	case "tps", "speed":
		desc(func(r *merge.Row) *float64 { return r.TPS })
	case "price", "input":
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i].InputPrice, rows[j].InputPrice
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			return *a < *b
		})
	default:
		slog.Warn("unknown sort field, using default order", "field", field)
	}
}

func printRows(rows []merge.Row) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCREATOR\tINTEL\tIN $/M\tOUT $/M\tTPS\tCTX\tMATCH")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Name, r.CreatorSlug,
			fmtFloat(r.Intelligence, "%.1f"),
			fmtFloat(r.InputPrice, "%.2f"),
			fmtFloat(r.OutputPrice, "%.2f"),
			fmtFloat(r.TPS, "%.1f"),
			fmtInt(r.ContextWindow),
			matchLabel(&r),
		)
	}
	w.Flush()
	fmt.Printf("\n%d models\n", len(rows))
}

func fmtFloat(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func fmtInt(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func fmtBool(v *bool) string {
	if v == nil {
		return "-"
	}
	if *v {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func matchLabel(r *merge.Row) string {
	if !r.Matched {
		return "-"
	}
	return r.MatchKind
}
