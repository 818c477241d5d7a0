package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.temporal.io/sdk/client"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"regiond/config"
	"regiond/internal/api"
	"regiond/internal/db"
	"regiond/internal/health"
	"regiond/internal/logs"
	"regiond/internal/middleware"
	"regiond/internal/secrets"
	"regiond/internal/uow"
	"regiond/internal/workflow"
)

// WorkflowKeyPath is where the payload encryption key of the workflow
// client lives in the secrets store.
const WorkflowKeyPath = "global/workflow-encryption-key"

type App struct {
	cfg        *config.Config
	Router     *mux.Router
	httpServer *http.Server

	db       *gorm.DB
	secrets  *secrets.Factory
	temporal client.Client
}

// Initialize connects the database, the secrets backend and the workflow
// engine, then mounts every route.
func (a *App) Initialize(ctx context.Context, cfg *config.Config) error {
	a.cfg = cfg

	logs.Init(logs.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})

	d, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	a.db = d
	if err := db.Migrate(a.db); err != nil {
		return fmt.Errorf("db migrate: %w", err)
	}

	if err := a.initSecrets(); err != nil {
		return err
	}
	executor, err := a.initWorkflow(ctx)
	if err != nil {
		return err
	}

	a.Router = mux.NewRouter()
	a.Router.Use(middleware.RequestID)
	a.Router.Use(middleware.Recoverer)
	a.Router.Use(middleware.LoggerMW)

	if err := health.RegisterRoutesWithDB(a.Router, a.db); err != nil {
		return err
	}
	a.Router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	units := uow.NewManager(a.db, executor, logs.Logger)
	api.NewHandler(units).RegisterRoutes(a.Router)

	_ = a.Router.Walk(func(rt *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, _ := rt.GetPathTemplate()
		methods, _ := rt.GetMethods()
		logs.Logger.Debugf("route: %-6v %s", methods, path)
		return nil
	})
	return nil
}

func (a *App) initSecrets() error {
	opts := secrets.Options{
		Backend: a.cfg.Secrets.Backend,
		Vault: secrets.VaultOptions{
			Address:  a.cfg.Secrets.Vault.Address,
			Token:    a.cfg.Secrets.Vault.Token,
			Mount:    a.cfg.Secrets.Vault.Mount,
			CacheTTL: a.cfg.Secrets.Vault.CacheTTL,
		},
	}
	if opts.Backend == secrets.BackendLocal || opts.Backend == "" {
		key, err := a.cfg.Secrets.KeyBytes()
		if err != nil {
			return err
		}
		opts.Key = key
	}
	a.secrets = secrets.NewFactory(opts, a.db)
	return nil
}

// initWorkflow returns the executor used for post-commit workflow calls.
// With the engine disabled calls are only logged.
func (a *App) initWorkflow(ctx context.Context) (workflow.Executor, error) {
	wf := a.cfg.Workflow
	if !wf.Enabled {
		logs.Logger.Warn("workflow engine disabled; DHCP configuration changes will not be pushed")
		return workflow.LogExecutor{Log: logs.Logger}, nil
	}

	key, err := a.workflowKey(ctx)
	if err != nil {
		return nil, err
	}
	c, err := workflow.DialTemporal(ctx, workflow.TemporalOptions{
		HostPort:      wf.HostPort,
		Namespace:     wf.Namespace,
		DialTimeout:   wf.DialTimeout,
		EncryptionKey: key,
	}, logs.Logger)
	if err != nil {
		return nil, err
	}
	a.temporal = c
	return workflow.NewTemporalExecutor(c, wf.TaskQueue), nil
}

// workflowKey loads the payload key from the secrets store, creating it
// on first start.
func (a *App) workflowKey(ctx context.Context) ([]byte, error) {
	store, err := a.secrets.Get()
	if err != nil {
		return nil, fmt.Errorf("secrets: %w", err)
	}
	raw, err := secrets.GetSimple(ctx, store, WorkflowKeyPath)
	if errors.Is(err, secrets.ErrNotFound) {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
		raw = hex.EncodeToString(key)
		if err := secrets.SetSimple(ctx, store, WorkflowKeyPath, raw); err != nil {
			return nil, fmt.Errorf("store workflow key: %w", err)
		}
		logs.Logger.Info("generated workflow encryption key")
	} else if err != nil {
		return nil, fmt.Errorf("load workflow key: %w", err)
	}
	return hex.DecodeString(raw)
}

// Run serves HTTP until ctx is cancelled or SIGINT/SIGTERM arrives.
func (a *App) Run(ctx context.Context) error {
	if a.Router == nil || a.cfg == nil {
		return ErrNotInitialized
	}
	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.httpServer = &http.Server{
		Addr:         bind,
		Handler:      a.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logs.Logger.Infof("HTTP listening on %s", bind)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(shutdownCtx)
	})
	err := g.Wait()
	a.Close()
	return err
}

// Close releases the workflow client and the database.
func (a *App) Close() {
	if a.temporal != nil {
		a.temporal.Close()
		a.temporal = nil
	}
	if a.secrets != nil {
		a.secrets.Clear()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		a.db = nil
	}
}

var ErrNotInitialized = &initError{"server not initialized (call Initialize first)"}

type initError struct{ s string }

func (e *initError) Error() string { return e.s }
