package view_state

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/spendlog/spendlog/internal/event_bus"
	"github.com/spendlog/spendlog/internal/utils"
	"github.com/spendlog/spendlog/pkg/expense"
	"github.com/spendlog/spendlog/pkg/stats"
)

// UpdatedTopic is published with the new State after every recomputation.
const UpdatedTopic event_bus.EventType = "view.updated"

// State is an immutable snapshot of everything the view derives. A new State
// replaces the previous one as a whole; readers never see a partial update.
type State struct {
	Version        uint64
	SelectedDay    stats.Day
	FollowsToday   bool
	Snapshot       stats.DaySnapshot
	DailyTotals    []stats.DayTotal
	CategoryTotals []stats.CategoryTotal
}

// RecordSource loads the full expense log.
type RecordSource interface {
	All(ctx context.Context) ([]expense.Record, error)
}

// View keeps the derived state consistent with the expense log. It holds the
// log in memory, extends it from expense.recorded notifications and recomputes
// synchronously inside the notification handler. Writers are serialized by mu;
// readers load the current State without locking.
type View struct {
	source RecordSource
	bus    *event_bus.EventBus
	clock  utils.Clock
	loc    *time.Location

	mu      sync.Mutex
	records []expense.Record
	seen    map[int64]struct{}
	state   atomic.Pointer[State]

	unsubscribe func()
}

// NewView subscribes to expense.recorded and loads the current log. The
// initially selected day is today in loc.
func NewView(ctx context.Context, source RecordSource, bus *event_bus.EventBus, clock utils.Clock, loc *time.Location) (*View, error) {
	if loc == nil {
		loc = time.Local
	}
	v := &View{
		source: source,
		bus:    bus,
		clock:  clock,
		loc:    loc,
		seen:   make(map[int64]struct{}),
	}
	v.state.Store(&State{
		SelectedDay:  stats.DayOf(clock.Now(), loc),
		FollowsToday: true,
	})

	// Subscribing before the initial load means no insert can fall between the two.
	v.unsubscribe = event_bus.SubscribeTyped(bus, event_bus.ExpenseRecordedTopic, v.onExpenseRecorded)

	if err := v.Refresh(ctx); err != nil {
		v.unsubscribe()
		return nil, err
	}
	return v, nil
}

// Refresh reloads the full log from the source and recomputes all values.
func (v *View) Refresh(ctx context.Context) error {
	records, err := v.source.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to load expenses: %w", err)
	}

	v.mu.Lock()
	for _, r := range records {
		v.appendLocked(r)
	}
	state := v.recomputeLocked(v.current().SelectedDay, v.current().FollowsToday, true)
	v.mu.Unlock()

	log.Debugf("View refreshed with %d expense(s)", len(records))
	v.publish(ctx, state)
	return nil
}

func (v *View) onExpenseRecorded(e event_bus.EventT[event_bus.ExpenseRecorded]) error {
	v.mu.Lock()
	if !v.appendLocked(expense.FromRecordedEvent(e.Data)) {
		v.mu.Unlock()
		return nil
	}
	current := v.current()
	state := v.recomputeLocked(current.SelectedDay, current.FollowsToday, true)
	v.mu.Unlock()

	v.publish(e.Context(), state)
	return nil
}

// SelectDay replaces the selected-day snapshot with the calendar day
// containing instant. History totals are left as they are.
func (v *View) SelectDay(instant time.Time) State {
	day := stats.DayOf(instant, v.loc)

	v.mu.Lock()
	today := stats.DayOf(v.clock.Now(), v.loc)
	state := v.recomputeLocked(day, day == today, false)
	v.mu.Unlock()

	v.publish(context.Background(), state)
	return *state
}

// RollOver moves the selection to the new today when the view was following
// today. It reports whether the selection changed.
func (v *View) RollOver() bool {
	v.mu.Lock()
	current := v.current()
	today := stats.DayOf(v.clock.Now(), v.loc)
	if !current.FollowsToday || current.SelectedDay == today {
		v.mu.Unlock()
		return false
	}
	state := v.recomputeLocked(today, true, true)
	v.mu.Unlock()

	log.Infof("View rolled over to %s", today)
	v.publish(context.Background(), state)
	return true
}

// Current returns the latest State.
func (v *View) Current() State {
	return *v.current()
}

// Report returns the full-history aggregates for export.
func (v *View) Report() stats.Report {
	s := v.current()
	return stats.Report{
		Today:      stats.DayOf(v.clock.Now(), v.loc),
		Daily:      s.DailyTotals,
		Categories: s.CategoryTotals,
		GrandTotal: sumDaily(s.DailyTotals),
	}
}

// IsLikelyDuplicate checks candidate against the cached log without touching the store.
func (v *View) IsLikelyDuplicate(candidate expense.Candidate, window time.Duration) bool {
	at := candidate.Timestamp
	if at.IsZero() {
		at = v.clock.Now()
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return stats.IsLikelyDuplicate(candidate, v.records, window, at)
}

func (v *View) Location() *time.Location {
	return v.loc
}

// Close stops listening for expense notifications.
func (v *View) Close() {
	if v.unsubscribe != nil {
		v.unsubscribe()
	}
}

func (v *View) current() *State {
	return v.state.Load()
}

// appendLocked adds r unless a record with the same id is already known.
func (v *View) appendLocked(r expense.Record) bool {
	if _, ok := v.seen[r.Id]; ok {
		return false
	}
	v.seen[r.Id] = struct{}{}

	// Keep the log in Id order even when a notification arrives before the initial load.
	i := sort.Search(len(v.records), func(i int) bool { return v.records[i].Id > r.Id })
	v.records = append(v.records, expense.Record{})
	copy(v.records[i+1:], v.records[i:])
	v.records[i] = r
	return true
}

func (v *View) recomputeLocked(day stats.Day, followsToday bool, history bool) *State {
	previous := v.current()
	next := &State{
		Version:        previous.Version + 1,
		SelectedDay:    day,
		FollowsToday:   followsToday,
		Snapshot:       stats.DaySnapshotOf(v.records, day.Start(v.loc), day.End(v.loc)),
		DailyTotals:    previous.DailyTotals,
		CategoryTotals: previous.CategoryTotals,
	}
	if history || previous.DailyTotals == nil {
		next.DailyTotals = stats.DailyTotals(v.records, v.loc)
		next.CategoryTotals = stats.CategoryTotals(v.records)
	}
	v.state.Store(next)
	return next
}

func sumDaily(totals []stats.DayTotal) decimal.Decimal {
	total := decimal.Zero
	for _, t := range totals {
		total = total.Add(t.Total)
	}
	return total
}

func (v *View) publish(ctx context.Context, state *State) {
	if v.bus == nil {
		return
	}
	if err := v.bus.Publish(event_bus.NewEvent(context.WithoutCancel(ctx), UpdatedTopic, *state)); err != nil {
		log.Errorf("failed to publish %s: %v", UpdatedTopic, err)
	}
}
