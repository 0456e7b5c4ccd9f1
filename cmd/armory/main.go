package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/erazemk/armory/internal/api"
	"github.com/erazemk/armory/internal/auth"
	"github.com/erazemk/armory/internal/backend"
	"github.com/erazemk/armory/internal/config"
	"github.com/erazemk/armory/internal/db"
	"github.com/erazemk/armory/internal/session"
	"github.com/erazemk/armory/internal/store"
	"github.com/erazemk/armory/internal/web"
)

// pruneInterval is how often expired sessions are removed.
const pruneInterval = time.Hour

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{stdout: lr.stdout.WithAttrs(attrs), stderr: lr.stderr.WithAttrs(attrs)}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{stdout: lr.stdout.WithGroup(name), stderr: lr.stderr.WithGroup(name)}
}

// setupLogger sends INFO/WARN to stdout and ERROR to stderr, and every level
// to logPath as well when it is set. The returned func closes the log file.
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	cleanup := func() {}

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	slog.SetDefault(slog.New(&levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}))
	return cleanup, nil
}

func fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}

func main() {
	fs := flag.NewFlagSet("armory", flag.ContinueOnError)

	var configPath, addr, dbPath, logPath string
	fs.StringVar(&configPath, "config", "", "")
	fs.StringVar(&configPath, "c", "", "")
	fs.StringVar(&addr, "addr", "", "")
	fs.StringVar(&addr, "a", "", "")
	fs.StringVar(&dbPath, "db", "", "")
	fs.StringVar(&dbPath, "d", "", "")
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: armory [flags]

Flags:
  -c, -config <path>      YAML config file (default: armory.yaml if present)
  -a, -addr <host:port>   listen address (default: :8080)
  -d, -db <path>          SQLite session database (default: armory.sqlite3)
  -l, -log <path>         log file path (default: stdout/stderr only)
  -h, -help               show this help and exit

Settings may also come from ARMORY_* environment variables or a .env file,
e.g. ARMORY_BACKEND_URL. Flags take precedence.
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(configPath, ".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if dbPath != "" {
		cfg.DB = dbPath
	}
	if logPath != "" {
		cfg.Log = logPath
	}

	closeLog, err := setupLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	database, err := db.Open(cfg.DB)
	if err != nil {
		fatal("failed to open database", "error", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		fatal("failed to migrate database", "error", err)
	}
	slog.Info("database ready", "path", cfg.DB)

	ctx := context.Background()
	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		fatal("failed to get JWT secret", "error", err)
	}
	key, err := store.GetSessionKey(ctx, database)
	if err != nil {
		fatal("failed to get session key", "error", err)
	}
	sessionStore := store.NewSessions(database, key)

	authURL := cfg.Auth.URL
	if authURL == "" {
		authURL = cfg.Backend.URL + "/auth/v1"
	}

	sessions := &session.Manager{
		Secret:   jwtSecret,
		Store:    sessionStore,
		Provider: auth.NewProvider(authURL, cfg.Auth.APIKey, nil),
		Backend:  backend.New(cfg.Backend.URL, nil, backend.WithTimeout(cfg.Backend.Timeout)),
		Rules:    cfg.Rules,
		SiteURL:  cfg.SiteURL,
	}

	apiRouter := api.NewRouter(sessions)
	webRouter, err := web.NewRouter(sessions, strings.HasPrefix(cfg.SiteURL, "https://"))
	if err != nil {
		fatal("failed to set up web router", "error", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LoggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	pruneCtx, stopPrune := context.WithCancel(ctx)
	defer stopPrune()
	go pruneSessions(pruneCtx, sessionStore)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())
		stopPrune()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr, "backend", cfg.Backend.URL)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped, closing database")
}

// pruneSessions removes expired sessions until ctx is cancelled.
func pruneSessions(ctx context.Context, s *store.Sessions) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		n, err := s.Prune(ctx)
		if err != nil && ctx.Err() == nil {
			slog.Error("failed to prune sessions", "error", err)
		} else if n > 0 {
			slog.Info("pruned expired sessions", "count", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
