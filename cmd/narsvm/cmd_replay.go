package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/narsvm/internal/navm"
	"github.com/danielpatrickdp/narsvm/internal/replay"
)

func (a *app) replayCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "replay <glob>...",
		Short: "Replay fixture files and compare their outputs",
		Long: `Runs every fixture matched by the patterns (doublestar syntax, e.g.
fixtures/**/*.json) on a fresh session and reports unmet expectations.
Exits non-zero when any fixture mismatches.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := expandGlobs(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no fixtures match %v", args)
			}
			return a.replayAll(paths, verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every mismatch")
	return cmd
}

func expandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (a *app) replayAll(paths []string, verbose bool) error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIXTURE\tLINES\tOUTPUTS\tOUT\tANSWER\tERROR\tINVARIANTS\tMISMATCHES")

	failed := 0
	var details []string
	for _, path := range paths {
		f, err := replay.LoadFixture(path)
		if err != nil {
			return err
		}
		results, err := replay.Replay(f, a.logger)
		if err != nil {
			return err
		}
		mismatches := replay.Compare(results, f.Expected)
		s := replay.Summarize(results, mismatches)
		if s.Mismatches > 0 || s.InvariantFailures > 0 {
			failed++
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			path, s.TotalLines, s.TotalOutputs,
			s.ByType[navm.OutOut], s.ByType[navm.OutAnswer], s.ByType[navm.OutError],
			s.InvariantFailures, s.Mismatches)
		for _, m := range mismatches {
			details = append(details, fmt.Sprintf("%s line %d %q: %s", path, m.Expectation.Line, m.Command, m.Reason))
		}
		a.logger.Debug("fixture replayed", zap.String("path", path), zap.Int("mismatches", s.Mismatches))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if verbose {
		for _, d := range details {
			fmt.Fprintln(a.out, d)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d fixtures failed", failed, len(paths))
	}
	return nil
}
