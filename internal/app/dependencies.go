package app

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spendlog/spendlog/internal/config"
	"github.com/spendlog/spendlog/internal/database"
	"github.com/spendlog/spendlog/internal/event_bus"
	"github.com/spendlog/spendlog/internal/utils"
	"github.com/spendlog/spendlog/pkg/expense"
	"github.com/spendlog/spendlog/pkg/stats"
	"github.com/spendlog/spendlog/pkg/view_state"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Clock    utils.Clock
	Location *time.Location

	ExpenseRepo    expense.Repository
	ExpenseStore   *expense.Store
	ExpenseService *expense.ServiceImpl
	ExpenseHandler *expense.Handler

	View        *view_state.View
	ViewHandler *view_state.Handler

	CsvStatsRenderer *stats.CsvStatsRendererImpl
	StatsHandler     *stats.StatsHandler

	close []func()
}

// OpenRepository opens the expense repository selected by cfg.Driver and
// applies its migrations. The returned function releases the connection.
func OpenRepository(ctx context.Context, cfg config.Database) (expense.Repository, func(), error) {
	switch cfg.Driver {
	case "memory":
		log.Warn("Using in-memory expense storage, nothing will be persisted")
		return expense.NewMemoryRepository(), func() {}, nil
	case "", "sqlite":
		db, err := database.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		if err := database.MigrateSQLite(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Infof("Using SQLite database at %s", cfg.Path)
		return expense.NewSQLiteRepository(db), func() { db.Close() }, nil
	case "postgres":
		if err := database.Migrate(cfg); err != nil {
			return nil, nil, err
		}
		pool, err := database.Open(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Infof("Using PostgreSQL database %s at %s:%d", cfg.Name, cfg.Host, cfg.Port)
		return expense.NewPostgresRepository(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(ctx context.Context, cfg config.Application, clock utils.Clock) (*Dependencies, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	policy, err := expense.ParseDuplicatePolicy(cfg.Dedupe.Policy)
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{
		EventBus: event_bus.NewEventBus(),
		Clock:    clock,
		Location: loc,
	}

	repo, closeRepo, err := OpenRepository(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	deps.close = append(deps.close, closeRepo)

	deps.ExpenseRepo = repo
	deps.ExpenseStore = expense.NewStore(repo, deps.EventBus)
	deps.ExpenseService = expense.NewService(deps.ExpenseStore, clock, policy, cfg.Dedupe.Window)
	deps.ExpenseHandler = expense.NewHandler(deps.ExpenseService)

	deps.View, err = view_state.NewView(ctx, deps.ExpenseStore, deps.EventBus, clock, loc)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.close = append(deps.close, deps.View.Close)
	deps.ViewHandler = view_state.NewHandler(deps.View, cfg.Dedupe.Window)

	deps.CsvStatsRenderer = stats.NewCsvStatsRenderer()
	deps.StatsHandler = stats.NewStatsHandler(deps.View, deps.CsvStatsRenderer)

	return deps, nil
}

// OnClose registers fn to run on Close, before previously registered functions.
func (d *Dependencies) OnClose(fn func()) {
	d.close = append(d.close, fn)
}

// Close releases resources in reverse order of acquisition.
func (d *Dependencies) Close() {
	for i := len(d.close) - 1; i >= 0; i-- {
		d.close[i]()
	}
	d.close = nil
}
