package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	service "github.com/okian/xpoints/internal/app"
	"github.com/okian/xpoints/internal/config"
	"github.com/okian/xpoints/internal/domain/aggregate"
	"github.com/okian/xpoints/internal/domain/types"
)

const (
	outputText = "text"
	outputJSON = "json"
)

type analyzeOptions struct {
	input        string
	playerStats  string
	gameweek     int
	rulesVersion string
	rulesPath    string
	export       string
	table        string
	output       string
}

func newAnalyzeCmd(c *cli) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score a batch of player-match records and export the results",
		Long: `Reads player-match records from a CSV file (or Postgres when source_dsn is
set), merges gameweek bonus data, scores every record and prints a summary.
Results are exported to the configured blob and table sinks.`,
		Example: `  xpoints analyze --input player_match.csv
  xpoints analyze --input pm.csv --player-stats ./By\ Gameweek --gameweek 7 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			applyAnalyzeFlags(cmd, c.cfg, &opts)
			if err := c.cfg.Validate(); err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), c.cfg, opts.output)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "Player-match CSV file")
	f.StringVar(&opts.playerStats, "player-stats", "", "Directory searched for playerstats.csv files")
	f.IntVar(&opts.gameweek, "gameweek", 0, "Player stats gameweek to merge (0 joins on each record's gameweek; default from config)")
	f.StringVar(&opts.rulesVersion, "rules-version", "", "Built-in rule set version")
	f.StringVar(&opts.rulesPath, "rules", "", "YAML rule set file")
	f.StringVar(&opts.export, "export", "", "Blob export backend: none, local, s3, gcs")
	f.StringVar(&opts.table, "table", "", "Table export backend: none, postgres, sqlite")
	f.StringVarP(&opts.output, "output", "o", outputText, "Output format: text or json")

	return cmd
}

// applyAnalyzeFlags overrides configuration with explicitly set flags.
func applyAnalyzeFlags(cmd *cobra.Command, cfg *config.Config, opts *analyzeOptions) {
	f := cmd.Flags()
	if f.Changed("input") {
		cfg.InputPath = opts.input
	}
	if f.Changed("player-stats") {
		cfg.PlayerStatsDir = opts.playerStats
	}
	if f.Changed("gameweek") {
		cfg.Gameweek = opts.gameweek
	}
	if f.Changed("rules-version") {
		cfg.RulesVersion = opts.rulesVersion
	}
	if f.Changed("rules") {
		cfg.RulesPath = opts.rulesPath
	}
	if f.Changed("export") {
		cfg.ExportBackend = opts.export
	}
	if f.Changed("table") {
		cfg.TableBackend = opts.table
	}
}

// analysisOutput is the JSON document printed by analyze --output json.
type analysisOutput struct {
	RunID       string                      `json:"run_id"`
	RuleVersion string                      `json:"rule_version"`
	Duplicates  int                         `json:"duplicates"`
	MinMinutes  int                         `json:"min_minutes"`
	Short       int                         `json:"short_appearances"`
	Summary     aggregate.Summary           `json:"summary"`
	Positions   []aggregate.PositionSummary `json:"positions"`
	Top         []types.Entry               `json:"top_actual_total_points"`
	Over        []types.ResultView          `json:"overperformers"`
	Under       []types.ResultView          `json:"underperformers"`
}

func runAnalyze(ctx context.Context, w io.Writer, cfg *config.Config, format string) error {
	svc, report, err := analyzeOnce(ctx, cfg)
	if err != nil {
		return err
	}

	out := analysisOutput{
		RunID:       report.RunID,
		RuleVersion: report.RuleVersion,
		Duplicates:  report.Duplicates,
		MinMinutes:  report.MinMinutes,
		Short:       report.ShortAppearances,
		Summary:     report.Summary,
		Positions:   report.Positions,
	}
	if out.Top, err = svc.Leaderboard(ctx, aggregate.MetricActualTotal, cfg.TopN); err != nil {
		return err
	}
	if out.Over, err = svc.Performers(ctx, service.DirectionOver, cfg.TopN); err != nil {
		return err
	}
	if out.Under, err = svc.Performers(ctx, service.DirectionUnder, cfg.TopN); err != nil {
		return err
	}

	switch strings.ToLower(format) {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case outputText, "":
		return printAnalysis(w, &out)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func printAnalysis(w io.Writer, out *analysisOutput) error {
	s := out.Summary
	fmt.Fprintf(w, "Run %s (rules %s)\n", out.RunID, out.RuleVersion)
	fmt.Fprintf(w, "Records: %d  Players: %d  Matches: %d  Duplicates dropped: %d\n",
		s.Records, s.Players, s.Matches, out.Duplicates)
	if out.Short > 0 {
		fmt.Fprintf(w, "Left out %d appearances under %d minutes\n", out.Short, out.MinMinutes)
	}
	fmt.Fprintf(w, "Average base points: actual %.2f, expected %.2f\n", s.AvgActualBase, s.AvgExpectedBase)
	fmt.Fprintf(w, "Average total points: %.2f  Average bonus: actual %.2f, estimated %.2f\n",
		s.AvgActualTotal, s.AvgBonus, s.AvgEstimatedBonus)
	fmt.Fprintf(w, "Defensive contributors: %d\n", s.DefensiveContributors)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "\nPOSITION\tCOUNT\tMINUTES\tACTUAL\tEXPECTED\tTOTAL")
	for _, p := range out.Positions {
		fmt.Fprintf(tw, "%s\t%d\t%.1f\t%.2f\t%.2f\t%.2f\n",
			p.Position, p.Count, p.MinutesMean, p.ActualBase.Mean, p.ExpectedBase.Mean, p.ActualTotal.Mean)
	}

	fmt.Fprintln(tw, "\nRANK\tPLAYER\tPOSITION\tMATCH\tTOTAL")
	for _, e := range out.Top {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%g\n", e.Rank, e.PlayerName, e.Position, e.MatchID, e.Value)
	}

	printPerformers(tw, "OVERPERFORMER", out.Over)
	printPerformers(tw, "UNDERPERFORMER", out.Under)
	return tw.Flush()
}

func printPerformers(w io.Writer, title string, rows []types.ResultView) {
	fmt.Fprintf(w, "\n%s\tMATCH\tACTUAL\tEXPECTED\tDIFF\n", title)
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%+.2f\n",
			r.PlayerName, r.MatchID, r.ActualBasePoints, r.ExpectedBasePoints, r.BasePointsDifference)
	}
}
