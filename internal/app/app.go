package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spendlog/spendlog/internal/broker"
	"github.com/spendlog/spendlog/internal/config"
	"github.com/spendlog/spendlog/internal/utils"
	"github.com/spendlog/spendlog/pkg/view_state"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Application wires configuration, storage, router, and server lifecycle.
type Application struct {
	cfg    config.Application
	deps   *Dependencies
	router *mux.Router
	srv    *http.Server
	cron   *cron.Cron
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication(ctx context.Context, cfg config.Application) (*Application, error) {
	deps, err := BuildDependencies(ctx, cfg, utils.SystemClock{})
	if err != nil {
		return nil, err
	}

	if cfg.Broker.Enabled {
		client, err := broker.NewClient(cfg.Broker.URL, cfg.Broker.Exchange)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to connect to broker: %w", err)
		}
		deps.OnClose(func() { client.Close() })
		deps.OnClose(broker.Forward(deps.EventBus, client, cfg.Broker.RoutingKey))
		log.Infof("Forwarding recorded expenses to exchange %s", cfg.Broker.Exchange)
	}

	var scheduler *cron.Cron
	if cfg.Rollover.Enabled {
		scheduler = cron.New(cron.WithLocation(deps.Location))
		if _, err := view_state.ScheduleRollover(scheduler, deps.View, cfg.Rollover.Schedule); err != nil {
			deps.Close()
			return nil, err
		}
	}

	r := mux.NewRouter()

	// Middleware chain
	SetupMiddleware(r)

	// Routes
	RegisterRoutes(r, deps)

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Address,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, deps: deps, router: r, srv: srv, cron: scheduler}, nil
}

// Router exposes the configured HTTP handler.
func (a *Application) Router() http.Handler {
	return a.router
}

// Run serves HTTP and runs scheduled jobs until ctx is cancelled or the server
// fails, then shuts everything down and releases storage.
func (a *Application) Run(ctx context.Context) error {
	defer a.deps.Close()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("Starting server on %s", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if a.cron != nil {
		a.cron.Start()
	}

	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down")

		if a.cron != nil {
			<-a.cron.Stop().Done()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Close releases resources without running the server.
func (a *Application) Close() {
	a.deps.Close()
}

func (a *Application) Dependencies() *Dependencies {
	return a.deps
}
