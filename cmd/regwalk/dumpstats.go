package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/regwalk/internal/dumpstats"
	"github.com/joshuapare/regwalk/internal/logger"
)

func newDumpStatsCmd() *cobra.Command {
	var (
		jobs   int
		detail bool
		sorted bool
	)
	cmd := &cobra.Command{
		Use:   "dump-stats FILE...",
		Short: "Summarize registry editor text dumps",
		Long: `The dump-stats command analyses files exported from the registry
editor as "Text files" (UTF-16) and prints line, key and type statistics.

Example:
  regwalk dump-stats regdump_HKEY_CURRENT_USER.txt regdump_HKEY_USERS.txt
  regwalk dump-stats --detail --sort *.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := dumpstats.AnalyzeFiles(cmd.Context(), args, jobs)
			if err != nil {
				return err
			}
			logger.Debug("dumps analysed", "files", len(stats))
			if sorted {
				dumpstats.SortByLines(stats)
			}
			out := cmd.OutOrStdout()
			dumpstats.RenderTable(out, stats)
			if detail {
				for _, s := range stats {
					dumpstats.RenderDetail(out, s)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "files analysed concurrently (0 = unlimited)")
	cmd.Flags().BoolVar(&detail, "detail", false, "print per-file findings")
	cmd.Flags().BoolVar(&sorted, "sort", false, "order rows by line count")
	return cmd
}
