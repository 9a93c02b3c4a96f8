package stats

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCsvStatsRendererImpl_RenderReport(t *testing.T) {
	tests := []struct {
		name   string
		report Report
		want   string
	}{
		{
			name: "RenderReport with valid data",
			report: Report{
				Today: Day{2024, time.March, 11},
				Daily: []DayTotal{
					{Day: Day{2024, time.March, 10}, Total: decimal.NewFromInt(300)},
					{Day: Day{2024, time.March, 11}, Total: decimal.RequireFromString("50.5")},
				},
				Categories: []CategoryTotal{
					{Category: "Food", Total: decimal.NewFromInt(300)},
					{Category: "Travel, local", Total: decimal.RequireFromString("50.5")},
				},
			},
			want: "Daily Totals\n" +
				"Date,Total\n" +
				"2024-03-10,300.00\n" +
				"2024-03-11,50.50\n" +
				"\n" +
				"Category Totals\n" +
				"Category,Total\n" +
				"Food,300.00\n" +
				"\"Travel, local\",50.50\n",
		},
		{
			name:   "RenderReport without expenses",
			report: Report{},
			want:   "Daily Totals\nDate,Total\n\nCategory Totals\nCategory,Total\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := NewCsvStatsRenderer()

			got, err := renderer.RenderReport(tt.report)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
