package expense

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spendlog/spendlog/internal/utils"
)

// DuplicatePolicy decides what happens when a valid candidate looks like an
// expense recorded within the duplicate window.
type DuplicatePolicy string

const (
	// DuplicatePolicyIgnore records the signal and inserts anyway.
	DuplicatePolicyIgnore DuplicatePolicy = "ignore"
	// DuplicatePolicyConfirm refuses to insert a likely duplicate unless the
	// candidate carries ConfirmDuplicate.
	DuplicatePolicyConfirm DuplicatePolicy = "confirm"
)

func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", DuplicatePolicyIgnore:
		return DuplicatePolicyIgnore, nil
	case DuplicatePolicyConfirm:
		return DuplicatePolicyConfirm, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q", s)
	}
}

// Submission is the outcome of a successful Submit.
type Submission struct {
	Record          Record
	LikelyDuplicate bool
}

type Service interface {
	Submit(ctx context.Context, candidate Candidate) (Submission, error)
}

type ServiceImpl struct {
	store  *Store
	clock  utils.Clock
	policy DuplicatePolicy
	window time.Duration
}

func NewService(store *Store, clock utils.Clock, policy DuplicatePolicy, window time.Duration) *ServiceImpl {
	if policy == "" {
		policy = DuplicatePolicyIgnore
	}
	if window <= 0 {
		window = DefaultDuplicateWindow
	}
	return &ServiceImpl{store: store, clock: clock, policy: policy, window: window}
}

// Submit validates the candidate, checks it against expenses recorded within
// the duplicate window and writes it to the store at most once. Invalid
// candidates never reach the store.
func (s *ServiceImpl) Submit(ctx context.Context, candidate Candidate) (Submission, error) {
	if err := candidate.Validate(); err != nil {
		log.Debugf("Rejected expense candidate: %v", err)
		return Submission{}, err
	}

	at := candidate.Timestamp
	if at.IsZero() {
		at = s.clock.Now()
	}

	similar, err := s.store.CountSimilar(ctx, candidate.Title, candidate.Amount, at.Add(-s.window), at)
	if err != nil {
		return Submission{}, err
	}
	likelyDuplicate := similar > 0

	if likelyDuplicate {
		switch s.policy {
		case DuplicatePolicyConfirm:
			if !candidate.ConfirmDuplicate {
				return Submission{}, &DuplicateWarning{
					Title:   candidate.Title,
					Amount:  candidate.Amount,
					Similar: similar,
					Window:  s.window,
				}
			}
			log.Infof("Recording confirmed duplicate expense %q (%s)", candidate.Title, candidate.Amount)
		default:
			log.Infof("Expense %q (%s) looks like a duplicate of %d recent expense(s), recording anyway",
				candidate.Title, candidate.Amount, similar)
		}
	}

	record, err := s.store.Insert(ctx, candidate.record(at))
	if err != nil {
		return Submission{}, err
	}
	return Submission{Record: record, LikelyDuplicate: likelyDuplicate}, nil
}
