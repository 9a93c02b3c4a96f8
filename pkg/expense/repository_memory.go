package expense

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemoryRepository keeps the log in process memory. It backs tests and the
// "memory" database driver.
type MemoryRepository struct {
	mu      sync.RWMutex
	records []Record
	nextId  int64
	// FailWith makes every operation fail with the given error when set.
	FailWith error
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextId: 1}
}

func (r *MemoryRepository) Insert(ctx context.Context, record Record) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return Record{}, r.FailWith
	}

	record.Id = r.nextId
	record.Uid = uuid.New()
	record.Timestamp = truncateMillis(record.Timestamp)
	r.nextId++
	r.records = append(r.records, record)
	return record, nil
}

func (r *MemoryRepository) All(ctx context.Context) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	all := make([]Record, len(r.records))
	copy(all, r.records)
	return all, nil
}

func (r *MemoryRepository) ForDay(ctx context.Context, start, end time.Time) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	day := make([]Record, 0)
	for _, record := range r.records {
		if !record.Timestamp.Before(start) && record.Timestamp.Before(end) {
			day = append(day, record)
		}
	}
	sort.SliceStable(day, func(i, j int) bool {
		if day[i].Timestamp.Equal(day[j].Timestamp) {
			return day[i].Id > day[j].Id
		}
		return day[i].Timestamp.After(day[j].Timestamp)
	})
	return day, nil
}

func (r *MemoryRepository) CountSimilar(ctx context.Context, title string, amount decimal.Decimal, since, until time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailWith != nil {
		return 0, r.FailWith
	}

	count := 0
	for _, record := range r.records {
		if record.SimilarTo(title, amount, since, until) {
			count++
		}
	}
	return count, nil
}

// Len returns the number of stored records.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Cleanup removes all records.
func (r *MemoryRepository) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
	r.nextId = 1
}
