package view_state

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/spendlog/spendlog/internal/rest"
	"github.com/spendlog/spendlog/pkg/expense"
	"github.com/spendlog/spendlog/pkg/stats"
)

type SnapshotDTO struct {
	Date     string              `json:"date"`
	Start    time.Time           `json:"start"`
	End      time.Time           `json:"end"`
	Expenses []expense.RecordDTO `json:"expenses"`
	Total    decimal.Decimal     `json:"total"`
}

type StateDTO struct {
	Version        uint64                   `json:"version"`
	SelectedDay    string                   `json:"selectedDay"`
	FollowsToday   bool                     `json:"followsToday"`
	Snapshot       SnapshotDTO              `json:"snapshot"`
	DailyTotals    []stats.DayTotalDTO      `json:"dailyTotals"`
	CategoryTotals []stats.CategoryTotalDTO `json:"categoryTotals"`
}

type DuplicateCheckDTO struct {
	LikelyDuplicate bool `json:"likelyDuplicate"`
}

type Handler struct {
	view   *View
	window time.Duration
}

func NewHandler(view *View, window time.Duration) *Handler {
	return &Handler{view: view, window: window}
}

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, StateToDTO(h.view.Current()))
}

// SelectDay switches the selected day to the "date" query parameter (YYYY-MM-DD).
func (h *Handler) SelectDay(w http.ResponseWriter, r *http.Request) {
	day, err := stats.ParseDay(r.URL.Query().Get("date"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date format", err.Error())
		return
	}

	state := h.view.SelectDay(day.Start(h.view.Location()))
	log.Debugf("Selected day %s", state.SelectedDay)
	rest.WriteJSON(w, http.StatusOK, StateToDTO(state))
}

// CheckDuplicate reports whether an expense would be flagged as a likely
// duplicate. Nothing is stored.
func (h *Handler) CheckDuplicate(w http.ResponseWriter, r *http.Request) {
	var dto expense.ExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	candidate := expense.Candidate{Title: dto.Title, Amount: dto.Amount}
	if dto.Timestamp != nil {
		candidate.Timestamp = *dto.Timestamp
	}
	rest.WriteJSON(w, http.StatusOK, DuplicateCheckDTO{
		LikelyDuplicate: h.view.IsLikelyDuplicate(candidate, h.window),
	})
}

func StateToDTO(state State) StateDTO {
	expenses := make([]expense.RecordDTO, 0, len(state.Snapshot.Records))
	for _, r := range state.Snapshot.Records {
		expenses = append(expenses, expense.RecordToDTO(r))
	}
	return StateDTO{
		Version:      state.Version,
		SelectedDay:  state.SelectedDay.Key(),
		FollowsToday: state.FollowsToday,
		Snapshot: SnapshotDTO{
			Date:     state.SelectedDay.Key(),
			Start:    state.Snapshot.Start,
			End:      state.Snapshot.End,
			Expenses: expenses,
			Total:    state.Snapshot.Total,
		},
		DailyTotals:    stats.DayTotalsToDTO(state.DailyTotals),
		CategoryTotals: stats.CategoryTotalsToDTO(state.CategoryTotals),
	}
}
