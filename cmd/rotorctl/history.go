package main

import (
	"fmt"
	"time"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/rotorlabs/rotorctl/internal/journal"
)

var (
	historyLimit int
	historyJSON  bool
)

func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent render and rotate runs from the journal",
		RunE:  runHistory,
	}
	cmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum runs to show")
	cmd.Flags().BoolVar(&historyJSON, "json", false, "emit JSON instead of a listing")
	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.JournalPath == "" {
		return fmt.Errorf("no journal_path configured in %s", configPath)
	}
	j, err := journal.Open(cfg.JournalPath)
	if err != nil {
		return err
	}
	defer j.Close()

	runs, err := j.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if historyJSON {
		fmt.Fprintln(out, oj.JSON(runsAsValues(runs), &ojg.Options{Sort: true, Indent: 2}))
		return nil
	}
	for _, r := range runs {
		state := "ok"
		if !r.OK {
			state = fmt.Sprintf("failed (exit %d)", r.ExitCode)
		}
		fmt.Fprintf(out, "%s  %-6s  %-16s  %s\n", r.Started.Format(time.RFC3339), r.Kind, state, r.Duration)
	}
	return nil
}

func runsAsValues(runs []journal.Run) []any {
	out := make([]any, 0, len(runs))
	for _, r := range runs {
		out = append(out, map[string]any{
			"id":         r.ID,
			"kind":       string(r.Kind),
			"started":    r.Started.Format(time.RFC3339),
			"duration":   r.Duration.String(),
			"ok":         r.OK,
			"exit_code":  r.ExitCode,
			"detail":     r.Detail,
			"output_sha": r.OutputSHA,
		})
	}
	return out
}
