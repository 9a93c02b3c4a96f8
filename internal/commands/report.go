package commands

import (
	"fmt"

	"github.com/spendlog/spendlog/pkg/stats"
	"github.com/spf13/cobra"
)

func newReportCommand(opts *rootOptions) *cobra.Command {
	var last int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print daily and category totals as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if last < 0 {
				return fmt.Errorf("--last must not be negative")
			}

			application, err := opts.openApplication(cmd.Context())
			if err != nil {
				return err
			}
			defer application.Close()

			deps := application.Dependencies()
			report := deps.View.Report()
			if last > 0 {
				report.Daily = stats.LastDays(report.Daily, report.Today, last)
			}

			csv, err := deps.CsvStatsRenderer.RenderReport(report)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), csv)
			return err
		},
	}

	cmd.Flags().IntVar(&last, "last", 0, "only include the last N days of daily totals (0 means full history)")

	return cmd
}
