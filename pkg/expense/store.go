package expense

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/spendlog/spendlog/internal/event_bus"
)

// Store is the boundary between the domain and a Repository. Every successful
// insert is announced on the bus as an expense.recorded event, after the write
// has completed. Repository failures come back as *StoreError.
type Store struct {
	repo Repository
	bus  *event_bus.EventBus
}

func NewStore(repo Repository, bus *event_bus.EventBus) *Store {
	return &Store{repo: repo, bus: bus}
}

func (s *Store) Insert(ctx context.Context, record Record) (Record, error) {
	stored, err := s.repo.Insert(ctx, record)
	if err != nil {
		return Record{}, &StoreError{Op: "insert", Err: err}
	}
	log.Debugf("Stored expense %d (%s, %s)", stored.Id, stored.Title, stored.Amount)

	if s.bus != nil {
		// The record is durable at this point; subscriber failures are only logged.
		event := event_bus.NewEvent(context.WithoutCancel(ctx), event_bus.ExpenseRecordedTopic, stored.toEvent())
		if err := s.bus.Publish(event); err != nil {
			log.Errorf("failed to publish %s for expense %d: %v", event_bus.ExpenseRecordedTopic, stored.Id, err)
		}
	}
	return stored, nil
}

func (s *Store) All(ctx context.Context) ([]Record, error) {
	records, err := s.repo.All(ctx)
	if err != nil {
		return nil, &StoreError{Op: "query all", Err: err}
	}
	return records, nil
}

func (s *Store) ForDay(ctx context.Context, start, end time.Time) ([]Record, error) {
	records, err := s.repo.ForDay(ctx, start, end)
	if err != nil {
		return nil, &StoreError{Op: "query day", Err: err}
	}
	return records, nil
}

func (s *Store) CountSimilar(ctx context.Context, title string, amount decimal.Decimal, since, until time.Time) (int, error) {
	count, err := s.repo.CountSimilar(ctx, title, amount, since, until)
	if err != nil {
		return 0, &StoreError{Op: "count similar", Err: err}
	}
	return count, nil
}
