package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spendlog/spendlog/pkg/stats"
	"github.com/spf13/cobra"
)

func newDayCommand(opts *rootOptions) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "day",
		Short: "List the expenses of one day, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := opts.openApplication(cmd.Context())
			if err != nil {
				return err
			}
			defer application.Close()

			deps := application.Dependencies()
			state := deps.View.Current()
			if date != "" {
				day, err := stats.ParseDay(date)
				if err != nil {
					return err
				}
				state = deps.View.SelectDay(day.Start(deps.Location))
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "%s\n", state.SelectedDay.Key())
			for _, r := range state.Snapshot.Records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Timestamp.In(deps.Location).Format(time.TimeOnly), r.Title, r.Category, r.Amount.StringFixed(2))
			}
			fmt.Fprintf(w, "Total\t\t\t%s\n", state.Snapshot.Total.StringFixed(2))
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day to list as YYYY-MM-DD, defaults to today")

	return cmd
}
