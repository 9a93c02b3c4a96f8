package stats

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/spendlog/spendlog/internal/rest"
)

const defaultLastDays = 7

// ReportProvider supplies the current aggregated history.
type ReportProvider interface {
	Report() Report
}

type DayTotalDTO struct {
	Date  string          `json:"date"`
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
}

type CategoryTotalDTO struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

type ReportDTO struct {
	Today      string             `json:"today"`
	Daily      []DayTotalDTO      `json:"daily"`
	Categories []CategoryTotalDTO `json:"categories"`
	GrandTotal decimal.Decimal    `json:"grandTotal"`
}

type StatsHandler struct {
	reports          ReportProvider
	csvStatsRenderer StatsRenderer
}

func NewStatsHandler(reports ReportProvider, csvStatsRenderer StatsRenderer) *StatsHandler {
	return &StatsHandler{reports, csvStatsRenderer}
}

// GetDaily returns the last N days (default 7) of totals ending today,
// including days without expenses.
func (handler *StatsHandler) GetDaily(w http.ResponseWriter, r *http.Request) {
	last := defaultLastDays
	if raw := r.URL.Query().Get("last"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 366 {
			rest.WriteError(w, http.StatusBadRequest, "Invalid last parameter", "last must be a number between 1 and 366")
			return
		}
		last = n
	}

	report := handler.reports.Report()
	rest.WriteJSON(w, http.StatusOK, DayTotalsToDTO(LastDays(report.Daily, report.Today, last)))
}

func (handler *StatsHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	report := handler.reports.Report()
	rest.WriteJSON(w, http.StatusOK, CategoryTotalsToDTO(report.Categories))
}

// GetReport returns the full history, as CSV when the client accepts text/csv.
func (handler *StatsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report := handler.reports.Report()

	if r.Header.Get("Accept") == "text/csv" {
		csv, err := handler.csvStatsRenderer.RenderReport(report)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename=\"expense-report-"+report.Today.Key()+".csv\"")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(csv)); err != nil {
			log.Errorf("failed to write csv report: %v", err)
		}
		return
	}

	rest.WriteJSON(w, http.StatusOK, ReportToDTO(report))
}

func DayTotalsToDTO(totals []DayTotal) []DayTotalDTO {
	dtos := make([]DayTotalDTO, 0, len(totals))
	for _, t := range totals {
		dtos = append(dtos, DayTotalDTO{Date: t.Day.Key(), Label: t.Day.Label(), Total: t.Total})
	}
	return dtos
}

func CategoryTotalsToDTO(totals []CategoryTotal) []CategoryTotalDTO {
	dtos := make([]CategoryTotalDTO, 0, len(totals))
	for _, t := range totals {
		dtos = append(dtos, CategoryTotalDTO{Category: t.Category, Total: t.Total})
	}
	return dtos
}

func ReportToDTO(report Report) ReportDTO {
	return ReportDTO{
		Today:      report.Today.Key(),
		Daily:      DayTotalsToDTO(report.Daily),
		Categories: CategoryTotalsToDTO(report.Categories),
		GrandTotal: report.GrandTotal,
	}
}
