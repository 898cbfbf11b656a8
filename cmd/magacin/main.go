package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"github.com/erazemk/magacin/internal/api"
	"github.com/erazemk/magacin/internal/auth"
	"github.com/erazemk/magacin/internal/config"
	"github.com/erazemk/magacin/internal/db"
	"github.com/erazemk/magacin/internal/inventory"
	"github.com/erazemk/magacin/internal/metrics"
	"github.com/erazemk/magacin/internal/model"
	"github.com/erazemk/magacin/internal/store"
)

const usage = `Usage: magacin [flags]

Flags:
  -c, --config <path>      YAML config file (default: none)
  -d, --db <path>          SQLite database path (default: magacin.sqlite3)
  -a, --addr <host:port>   listen address (default: :8080)
  -u, --user <name>        admin username on first run (default: Admin)
  -l, --log <path>         log file path (default: no file, stdout/stderr only)
  -h, --help               show this help and exit

Environment (also read from .env):
  MAGACIN_DB, MAGACIN_ADDR, MAGACIN_ADMIN, MAGACIN_LOG,
  MAGACIN_REDIS_ADDR, MAGACIN_REVEAL_CODE
`

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		fmt.Fprint(os.Stdout, usage)
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	// Set up structured logging: INFO/WARN → stdout, ERROR → stderr.
	// Optionally also write to a log file.
	closeLog, err := setupLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg); err != nil {
		slog.Error("server error", "error", err)
		closeLog()
		os.Exit(1)
	}
}

// loadConfig layers flags over the config file and environment.
func loadConfig(args []string) (*config.Config, error) {
	fs := pflag.NewFlagSet("magacin", pflag.ContinueOnError)
	fs.Usage = func() {}

	configPath := fs.StringP("config", "c", "", "")
	dbPath := fs.StringP("db", "d", "", "")
	addr := fs.StringP("addr", "a", "", "")
	adminUser := fs.StringP("user", "u", "", "")
	logPath := fs.StringP("log", "l", "", "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	cfg, err := config.Load(*configPath, ".env")
	if err != nil {
		return nil, err
	}

	if fs.Changed("db") {
		cfg.DB = *dbPath
	}
	if fs.Changed("addr") {
		cfg.Addr = *addr
	}
	if fs.Changed("user") {
		cfg.Admin = *adminUser
	}
	if fs.Changed("log") {
		cfg.Log = *logPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(cfg *config.Config) error {
	// Check if DB exists, auto-init if not.
	if _, err := os.Stat(cfg.DB); os.IsNotExist(err) {
		database, password, err := initDatabase(cfg.DB, cfg.Admin)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		database.Close()

		printInitResult(cfg.DB, cfg.Admin, password)
		fmt.Println()
	}

	database, err := db.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Ensure schema exists (idempotent).
	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring database schema: %w", err)
	}
	slog.Info("database ready", "path", cfg.DB)

	// Load JWT secret from database (auto-generated on first run).
	jwtSecret, err := store.GetJWTSecret(context.Background(), database)
	if err != nil {
		return fmt.Errorf("getting JWT secret: %w", err)
	}

	locker, closeLocker, err := newLocker(cfg.Redis)
	if err != nil {
		return err
	}
	defer closeLocker()

	ledger := metrics.NewLedger()
	engine := api.NewEngine(database, locker, cfg.Pickup.RevealCode, ledger)
	handler := api.LoggingMiddleware(api.NewRouter(database, jwtSecret, engine, ledger))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr, "reveal_code", cfg.Pickup.RevealCode)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	slog.Info("server stopped, closing database")
	return nil
}

// newLocker returns the shared Redis item lock when Redis is configured,
// and nil (an in-process lock) otherwise.
func newLocker(cfg config.RedisConfig) (inventory.Locker, func(), error) {
	if cfg.Addr == "" {
		slog.Info("locking items in-process")
		return nil, func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}

	slog.Info("locking items in redis", "addr", cfg.Addr, "ttl", cfg.LockTTL)
	return inventory.NewRedisLocker(rdb, cfg.LockTTL, cfg.LockWait), func() { rdb.Close() }, nil
}

// initDatabase creates a new database, ensures the schema, and creates the admin user.
func initDatabase(path, adminName string) (*sql.DB, string, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}

	fail := func(err error) (*sql.DB, string, error) {
		database.Close()
		os.Remove(path)
		return nil, "", err
	}

	if err := db.EnsureSchema(database); err != nil {
		return fail(fmt.Errorf("ensuring schema: %w", err))
	}

	password, err := auth.GeneratePassword(16)
	if err != nil {
		return fail(fmt.Errorf("generating password: %w", err))
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fail(err)
	}

	if _, err := store.CreateUser(context.Background(), database, adminName, hash, model.RoleAdmin, ""); err != nil {
		return fail(fmt.Errorf("creating admin user: %w", err))
	}

	return database, password, nil
}

// printInitResult prints the database initialization result to stdout.
func printInitResult(dbPath, username, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Schema initialized.")
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
}
