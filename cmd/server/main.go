package main

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/featherpost/courier/internal/api"
	"github.com/featherpost/courier/internal/catalog"
	"github.com/featherpost/courier/internal/config"
	"github.com/featherpost/courier/internal/pkg/logger"
	"github.com/featherpost/courier/internal/pkg/sendlock"
	"github.com/featherpost/courier/internal/render"
	"github.com/featherpost/courier/internal/repository/memory"
	"github.com/featherpost/courier/internal/repository/postgres"
	"github.com/featherpost/courier/internal/service/delivery"
	"github.com/featherpost/courier/internal/service/directory"
	"github.com/featherpost/courier/internal/service/draft"
	"github.com/featherpost/courier/internal/service/inventory"
	"github.com/featherpost/courier/internal/service/letter"
	"github.com/featherpost/courier/internal/service/note"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"
)

// stores groups the repository implementations behind the service contracts
// so the two storage modes wire identically.
type stores struct {
	accounts interface {
		directory.Repository
		inventory.Repository
	}
	letters interface {
		letter.Repository
		delivery.Repository
	}
	drafts  draft.Repository
	notes   note.Repository
	catalog catalog.Repository
}

// checkPortAvailable verifies that the target port is not already in use
// before services spin up.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		logger.Error("pre-flight check failed", "err", err)
		os.Exit(1)
	}

	var (
		st  stores
		db  *sql.DB
		rdb *redis.Client
	)

	switch cfg.Database.Mode {
	case config.ModePostgres:
		db, err = sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			logger.Error("open database", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.PingContext(pingCtx); err != nil {
			cancel()
			logger.Error("database unreachable", "err", err)
			os.Exit(1)
		}
		cancel()
		st = stores{
			accounts: postgres.NewAccountRepo(db),
			letters:  postgres.NewLetterRepo(db),
			drafts:   postgres.NewDraftRepo(db),
			notes:    postgres.NewNoteRepo(db),
			catalog:  postgres.NewCatalogRepo(db),
		}
		logger.Info("storage ready", "mode", "postgres")
	case config.ModeMemory:
		mem := memory.NewStore()
		st = stores{
			accounts: mem.Accounts(),
			letters:  mem.Letters(),
			drafts:   mem.Drafts(),
			notes:    mem.Notes(),
			catalog:  mem.Catalog(),
		}
		logger.Info("storage ready", "mode", "memory")
	}

	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable, cache and send locks degraded", "addr", cfg.Redis.Addr, "err", err)
			rdb = nil
		}
		cancel()
	}

	inv := inventory.NewService(st.accounts)
	dir := directory.NewService(st.accounts, inv)
	sched := delivery.NewService(st.letters, dir, cfg.Delivery.CooldownWindow(), cfg.Delivery.DeliveryDelay())

	var renderer letter.Renderer
	if cfg.Render.Enabled {
		renderer = render.New()
	}
	locks := sendlock.NewFactory(rdb, db, cfg.Delivery.LockTTL())
	letters := letter.NewService(st.letters, sched, inv, dir, renderer, locks)
	drafts := draft.NewService(st.drafts, letters)
	notes := note.NewService(st.notes, dir)

	cat := catalog.NewService(st.catalog, rdb)
	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := cat.Seed(seedCtx); err != nil {
		cancel()
		logger.Error("catalog seed failed", "err", err)
		os.Exit(1)
	}
	cancel()

	router := api.SetupRoutes(api.NewHandlers(dir, letters, inv, drafts, notes, cat))
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server listening", "addr", server.Addr,
			"cooldown", cfg.Delivery.CooldownWindow().String(),
			"delay", cfg.Delivery.DeliveryDelay().String())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
	if rdb != nil {
		rdb.Close()
	}
	logger.Info("server stopped")
}
