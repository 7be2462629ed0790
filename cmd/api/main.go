package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanwahyu/checkdeck/internal/application"
	appchecks "github.com/bryanwahyu/checkdeck/internal/application/checks"
	"github.com/bryanwahyu/checkdeck/internal/config"
	domain "github.com/bryanwahyu/checkdeck/internal/domain/checks"
	mysqlp "github.com/bryanwahyu/checkdeck/internal/infra/db/mysql"
	pgp "github.com/bryanwahyu/checkdeck/internal/infra/db/postgres"
	"github.com/bryanwahyu/checkdeck/internal/infra/httpserver"
	"github.com/bryanwahyu/checkdeck/internal/infra/notify"
	"github.com/bryanwahyu/checkdeck/internal/infra/oracle"
	minioStore "github.com/bryanwahyu/checkdeck/internal/infra/storage"
	"github.com/bryanwahyu/checkdeck/internal/infra/stream"
	"github.com/bryanwahyu/checkdeck/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	explicit := false
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
		explicit = true
	}

	// load config
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		log.Printf("config not found: path=%s, using defaults", path)
		cfg, err = config.Default(), nil
	}
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()
	clock := application.SystemClock{}

	// init registry
	defs := cfg.Definitions()
	reg, err := appchecks.NewRegistry(defs)
	if err != nil {
		log.Fatalf("registry init error: %v", err)
	}

	// init oracle
	probe, err := oracle.FromConfig(cfg, clock, defs)
	if err != nil {
		log.Fatalf("oracle init error: %v", err)
	}
	log.Printf("oracle ready: kind=%s checks=%d", cfg.Oracle.Kind, len(defs))

	// websocket hub: notifications + state changes
	hub := stream.NewHub(reg.List, cfg.Server.CORSOrigins)
	reg.Subscribe(hub.Publish)

	runner := appchecks.NewRunner(reg, probe, notify.Multi{notify.Log{}, hub}, clock, appchecks.Options{
		ProbeTimeout: cfg.Oracle.Timeout,
	})
	runner.OnSettle(middleware.RecordSettlement)

	// init journal (optional)
	health := map[string]middleware.HealthChecker{}
	journal, db, err := openJournal(ctx, cfg)
	if err != nil {
		log.Fatalf("journal init error: driver=%s err=%v", cfg.Journal.Driver, err)
	}
	if db != nil {
		defer db.Close()
		health["journal"] = &middleware.DatabaseHealthChecker{DB: db}
	}

	// init minio (optional)
	var archive domain.ReportArchive
	if cfg.ArchiveEnabled() {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.Prefix,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		archive = store
	}

	// init service
	svc := appchecks.NewService(reg, runner, journal, archive, cfg.FeatureList())

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillRate)
	defer limiter.Stop()

	// init router
	handler := httpserver.NewRouter(svc, httpserver.Options{
		APIKeys:     cfg.Server.APIKeys,
		CORSOrigins: cfg.Server.CORSOrigins,
		RateLimiter: limiter,
		Stream:      hub,
		Health:      health,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// run-all blocks until every check settles
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// openJournal returns a nil journal when the driver is "none".
func openJournal(ctx context.Context, cfg *config.Config) (domain.Journal, *sql.DB, error) {
	switch cfg.Journal.Driver {
	case config.JournalMySQL:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, err
		}
		repo := mysqlp.NewRunRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, db, nil
	case config.JournalPostgres:
		db, err := pgp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		repo := pgp.NewRunRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, db, nil
	}
	return nil, nil, nil
}
