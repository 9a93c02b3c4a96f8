package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spendlog/spendlog/pkg/expense"
	"github.com/spf13/cobra"
)

func newAddCommand(opts *rootOptions) *cobra.Command {
	var (
		title    string
		amount   string
		category string
		notes    string
		at       string
		confirm  bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := expense.ParseAmount(amount)
			if err != nil {
				return err
			}
			candidate := expense.Candidate{
				Title:            title,
				Amount:           value,
				Category:         category,
				Notes:            notes,
				ConfirmDuplicate: confirm,
			}
			if at != "" {
				ts, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at value, expected RFC3339: %w", err)
				}
				candidate.Timestamp = ts
			}

			application, err := opts.openApplication(cmd.Context())
			if err != nil {
				return err
			}
			defer application.Close()

			submission, err := application.Dependencies().ExpenseService.Submit(cmd.Context(), candidate)
			var warning *expense.DuplicateWarning
			if errors.As(err, &warning) {
				return fmt.Errorf("%w (pass --confirm to record it anyway)", err)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			r := submission.Record
			fmt.Fprintf(out, "Recorded #%d %s %s [%s] at %s\n", r.Id, r.Title, r.Amount.StringFixed(2), r.Category,
				r.Timestamp.In(application.Dependencies().Location).Format(time.DateTime))
			if submission.LikelyDuplicate {
				fmt.Fprintln(out, "Note: a similar expense was recorded within the duplicate window")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "expense title (required)")
	_ = cmd.MarkFlagRequired("title")
	cmd.Flags().StringVar(&amount, "amount", "", "positive decimal amount (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&category, "category", expense.CategoryFood, "category, e.g. Staff, Travel, Food or Utility")
	cmd.Flags().StringVar(&notes, "notes", "", "optional notes, at most 100 characters")
	cmd.Flags().StringVar(&at, "at", "", "timestamp in RFC3339, defaults to now")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "record even when it looks like a duplicate")

	return cmd
}
