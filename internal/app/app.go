package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MogaPreet/maccindia/internal/catalog"
	"github.com/MogaPreet/maccindia/internal/config"
	"github.com/MogaPreet/maccindia/internal/content"
	"github.com/MogaPreet/maccindia/internal/controllers"
	"github.com/MogaPreet/maccindia/internal/dbkeeper"
	"github.com/MogaPreet/maccindia/internal/firestorekeeper"
	"github.com/MogaPreet/maccindia/internal/leads"
	"github.com/MogaPreet/maccindia/internal/logger"
	"github.com/MogaPreet/maccindia/internal/memkeeper"
	"github.com/MogaPreet/maccindia/internal/middleware"
	"github.com/MogaPreet/maccindia/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// leadWindow is the fixed rate-limit window for lead submissions.
const leadWindow = time.Minute

type Server struct {
	srv     *http.Server
	ctx     context.Context
	option  *config.Options
	storage *storage.Storage
	cron    *cron.Cron
	redis   *redis.Client
	Log     *logger.Logger
}

// NewServer parses the options and builds the logger. Everything else is
// wired by Serve.
func NewServer(ctx context.Context) (*Server, error) {
	// create and initialize a new option instance
	option := config.NewOptions()
	option.ParseFlags()

	// get a new logger
	nLogger, err := logger.NewLogger(logger.Options{Level: option.LogLevel(), File: option.LogFile()})
	if err != nil {
		return nil, err
	}

	return &Server{ctx: ctx, option: option, Log: nLogger}, nil
}

// Serve wires the storage, services and routes, then blocks serving HTTP until
// Shutdown is called.
func (server *Server) Serve() error {
	option := server.option

	keeper, err := server.newKeeper()
	if err != nil {
		return err
	}
	server.storage = storage.NewStorage(keeper, server.Log, option.CatalogTTL())
	if !server.storage.Ping(server.ctx) {
		server.Log.Warn("Storage is not reachable, serving empty collections until it recovers")
	}
	if err := server.storage.Refresh(server.ctx); err != nil {
		server.Log.Warn("Initial catalog load failed", zap.Error(err))
	}

	if err := server.startRefresh(option.RefreshSchedule()); err != nil {
		return err
	}

	leadService, err := leads.NewService(leads.Deps{Store: server.storage})
	if err != nil {
		return err
	}

	pages, err := content.NewStore(option.ContentDir())
	if err != nil {
		return err
	}

	basecontr, err := controllers.NewBaseController(controllers.Deps{
		Storage:    server.storage,
		Leads:      leadService,
		Pages:      pages,
		Facets:     &catalog.FacetCache{},
		LeadLimit:  middleware.RateLimit(server.newCounter(), option.LeadRateLimit(), leadWindow, server.Log),
		BaseURL:    option.BaseURL(),
		TrustProxy: option.TrustProxy(),
		Log:        server.Log,
	})
	if err != nil {
		return err
	}

	// configure and start the server
	server.srv = &http.Server{
		Addr:              option.RunAddr(),
		Handler:           basecontr.Route(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	server.Log.Info("Server started", zap.String("address", option.RunAddr()))
	if err := server.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

// newKeeper picks the catalog backend: PostgreSQL, then Firestore, then the
// YAML seed held in memory.
func (server *Server) newKeeper() (storage.Keeper, error) {
	option := server.option

	switch {
	case option.DataBaseDSN() != "":
		db, err := dbkeeper.NewDBKeeper(server.ctx, option.DataBaseDSN, server.Log)
		if err != nil {
			return nil, err
		}
		if option.SeedFile() != "" {
			if err := server.seedDatabase(db); err != nil {
				db.Close()
				return nil, err
			}
		}
		return db, nil

	case option.FirestoreProject() != "":
		provider := firestorekeeper.NewProvider(firestorekeeper.Config{
			ProjectID:    option.FirestoreProject(),
			EmulatorHost: option.FirestoreEmulator(),
		})
		server.Log.Info("Using Firestore", zap.String("project", option.FirestoreProject()))
		return firestorekeeper.New(provider, server.Log), nil
	}

	mem, err := memkeeper.New(option.SeedFile(), server.Log)
	if err != nil {
		return nil, err
	}
	return mem, nil
}

// seedDatabase upserts the seed catalog into PostgreSQL.
func (server *Server) seedDatabase(db *dbkeeper.DBKeeper) error {
	seed, err := memkeeper.New(server.option.SeedFile(), server.Log)
	if err != nil {
		return err
	}
	ctx := server.ctx
	brands, _ := seed.Brands(ctx)
	categories, _ := seed.Categories(ctx)
	products, _ := seed.Products(ctx)
	if err := db.UpsertCatalog(ctx, brands, categories, products); err != nil {
		return fmt.Errorf("seed database: %w", err)
	}
	server.Log.Info("Database seeded", zap.Int("products", len(products)))
	return nil
}

// newCounter shares rate-limit windows through Redis when configured.
func (server *Server) newCounter() middleware.Counter {
	if url := server.option.RedisURL(); url != "" {
		opts, err := redis.ParseURL(url)
		if err == nil {
			server.redis = redis.NewClient(opts)
			return middleware.NewRedisCounter(server.redis)
		}
		server.Log.Error("Invalid REDIS_URL, limiting per instance", zap.Error(err))
	}
	return middleware.NewMemoryCounter()
}

// startRefresh reloads the catalog snapshot on schedule.
func (server *Server) startRefresh(schedule string) error {
	server.cron = cron.New()
	_, err := server.cron.AddFunc(schedule, func() {
		if err := server.storage.Refresh(server.ctx); err != nil {
			server.Log.Warn("Scheduled catalog refresh failed", zap.Error(err))
			return
		}
		server.Log.Info("Catalog refreshed")
	})
	if err != nil {
		return fmt.Errorf("refresh schedule %q: %w", schedule, err)
	}
	server.cron.Start()
	return nil
}

// Shutdown gracefully stops the HTTP server and releases the storage
func (server *Server) Shutdown(timeout time.Duration) {
	ctxShutDown, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if server.srv != nil {
		if err := server.srv.Shutdown(ctxShutDown); err != nil {
			server.Log.Error("Server shutdown failed", zap.Error(err))
		}
	}
	if server.cron != nil {
		select {
		case <-server.cron.Stop().Done():
		case <-ctxShutDown.Done():
			server.Log.Warn("Catalog refresh still running at shutdown")
		}
	}
	if server.redis != nil {
		if err := server.redis.Close(); err != nil {
			server.Log.Warn("Redis close failed", zap.Error(err))
		}
	}
	if server.storage != nil && !server.storage.Close() {
		server.Log.Warn("Storage close failed")
	}

	server.Log.Info("Server stopped")
	server.Log.Sync()
}
