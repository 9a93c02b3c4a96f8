package stats

import (
	"bytes"
	"encoding/csv"

	log "github.com/sirupsen/logrus"
)

type CsvStatsRendererImpl struct {
}

func NewCsvStatsRenderer() *CsvStatsRendererImpl {
	return &CsvStatsRendererImpl{}
}

// RenderReport writes a "Daily Totals" section followed by a blank line and a
// "Category Totals" section. Amounts have two decimal places.
func (t *CsvStatsRendererImpl) RenderReport(report Report) (string, error) {
	data := make([][]string, 0, len(report.Daily)+len(report.Categories)+5)

	data = append(data, []string{"Daily Totals"}, []string{"Date", "Total"})
	for _, day := range report.Daily {
		data = append(data, []string{day.Day.Key(), day.Total.StringFixed(2)})
	}

	data = append(data, []string{})

	data = append(data, []string{"Category Totals"}, []string{"Category", "Total"})
	for _, category := range report.Categories {
		data = append(data, []string{category.Category, category.Total.StringFixed(2)})
	}

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}
