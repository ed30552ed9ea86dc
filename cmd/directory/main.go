package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/activity-directory/internal/application"
	"github.com/example/activity-directory/internal/backend"
	"github.com/example/activity-directory/internal/config"
	httptransport "github.com/example/activity-directory/internal/http"
	"github.com/example/activity-directory/internal/logging"
	"github.com/example/activity-directory/internal/seed"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger, err := logging.New(stdout, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	dir, err := initialize(ctx, cfg, logger, nil)
	if err != nil {
		logger.Error("failed to initialize directory", "error", err)
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cerr := dir.Close(closeCtx); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := dir.reportStatus(ctx); err != nil {
		return err
	}
	if cfg.HTTPAddr == "" {
		return nil
	}
	return dir.serve(ctx, cfg.HTTPAddr, dir.handler())
}

// directory is the initialised data layer with the services built on it.
type directory struct {
	backend    *backend.Backend
	activities *application.ActivityService
	auth       *application.AuthService
	seed       seed.Report
	logger     *slog.Logger
}

// initialize binds storage, seeds it and wires the services. Seeding failures
// are logged and do not stop initialization. hash may be nil.
func initialize(ctx context.Context, cfg config.Config, logger *slog.Logger, hash application.PasswordHasher) (*directory, error) {
	b, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	report, err := seed.NewInitializer(hash, logger).Initialize(ctx, b.Activities, b.Teachers)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Join(ctxErr, b.Close(context.Background()))
		}
		logger.ErrorContext(ctx, "seeding incomplete", "error", err)
	}

	return &directory{
		backend:    b,
		activities: application.NewActivityServiceWithLogger(b.Activities, logger),
		auth:       application.NewAuthServiceWithLogger(b.Teachers, nil, logger),
		seed:       report,
		logger:     logger,
	}, nil
}

func (d *directory) reportStatus(ctx context.Context) error {
	activities, err := d.backend.Activities.CountDocuments(ctx, nil)
	if err != nil {
		return fmt.Errorf("count activities: %w", err)
	}
	teachers, err := d.backend.Teachers.CountDocuments(ctx, nil)
	if err != nil {
		return fmt.Errorf("count teachers: %w", err)
	}
	d.logger.InfoContext(ctx, "directory ready",
		"storage", string(d.backend.Kind),
		"activities", activities,
		"teachers", teachers,
		"activities_seeded", d.seed.ActivitiesInserted,
		"teachers_seeded", d.seed.TeachersInserted,
		"repaired", d.seed.Repaired,
	)
	return nil
}

// handler returns the JSON API over the directory services.
func (d *directory) handler() http.Handler {
	return httptransport.NewRouter(httptransport.RouterConfig{
		Activities: httptransport.NewActivityHandler(d.activities, d.logger),
		Auth:       httptransport.NewAuthHandler(d.auth, d.logger),
		Middleware: []func(http.Handler) http.Handler{httptransport.RequestLogger(d.logger)},
	})
}

// serve runs handler on addr until ctx is done. It returns once in-flight
// requests have drained, so storage can be closed afterwards.
func (d *directory) serve(ctx context.Context, addr string, handler http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(ln)
	}()
	d.logger.InfoContext(ctx, "directory API listening", "addr", ln.Addr().String())

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		d.logger.Error("failed to shutdown server", "error", err)
		return fmt.Errorf("shutdown http: %w", err)
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}
	d.logger.Info("directory API stopped")
	return nil
}

// Close releases the storage backend.
func (d *directory) Close(ctx context.Context) error {
	if d == nil {
		return nil
	}
	return d.backend.Close(ctx)
}
