package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/spendlog/spendlog/internal/rest"
)

type ExpenseDTO struct {
	Title            string          `json:"title"`
	Amount           decimal.Decimal `json:"amount"`
	Category         string          `json:"category"`
	Notes            string          `json:"notes,omitempty"`
	Timestamp        *time.Time      `json:"timestamp,omitempty"`
	ConfirmDuplicate bool            `json:"confirmDuplicate,omitempty"`
}

type RecordDTO struct {
	Id        int64           `json:"id"`
	Uid       string          `json:"uid"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category"`
	Notes     string          `json:"notes,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type SubmissionDTO struct {
	Expense         RecordDTO `json:"expense"`
	LikelyDuplicate bool      `json:"likelyDuplicate"`
}

type DuplicateWarningDTO struct {
	Error   string          `json:"error"`
	Title   string          `json:"title"`
	Amount  decimal.Decimal `json:"amount"`
	Similar int             `json:"similar"`
	Window  string          `json:"window"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var dto ExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		log.Debugf("invalid expense request: %v", err)
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	submission, err := h.service.Submit(r.Context(), dto.toCandidate())
	if err != nil {
		var validationErr *ValidationError
		var duplicateWarning *DuplicateWarning
		switch {
		case errors.As(err, &validationErr):
			rest.WriteError(w, http.StatusBadRequest, "Invalid expense", validationErr.Error())
		case errors.As(err, &duplicateWarning):
			rest.WriteJSON(w, http.StatusConflict, DuplicateWarningDTO{
				Error:   "Likely duplicate expense",
				Title:   duplicateWarning.Title,
				Amount:  duplicateWarning.Amount,
				Similar: duplicateWarning.Similar,
				Window:  duplicateWarning.Window.String(),
			})
		default:
			log.Errorf("failed to submit expense: %v", err)
			rest.WriteError(w, http.StatusInternalServerError, "Failed to store expense", "")
		}
		return
	}

	rest.WriteJSON(w, http.StatusCreated, SubmissionDTO{
		Expense:         RecordToDTO(submission.Record),
		LikelyDuplicate: submission.LikelyDuplicate,
	})
}

// Categories lists the known expense categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, KnownCategories)
}

func (dto ExpenseDTO) toCandidate() Candidate {
	candidate := Candidate{
		Title:            dto.Title,
		Amount:           dto.Amount,
		Category:         dto.Category,
		Notes:            dto.Notes,
		ConfirmDuplicate: dto.ConfirmDuplicate,
	}
	if dto.Timestamp != nil {
		candidate.Timestamp = *dto.Timestamp
	}
	return candidate
}

func RecordToDTO(record Record) RecordDTO {
	return RecordDTO{
		Id:        record.Id,
		Uid:       record.Uid.String(),
		Title:     record.Title,
		Amount:    record.Amount,
		Category:  record.Category,
		Notes:     record.Notes,
		Timestamp: record.Timestamp,
	}
}
