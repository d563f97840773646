package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"
	"github.com/tunneldeck/tunneldeck/internal/config"
	"github.com/tunneldeck/tunneldeck/internal/database"
	"github.com/tunneldeck/tunneldeck/internal/executor"
	"github.com/tunneldeck/tunneldeck/internal/handlers"
	"github.com/tunneldeck/tunneldeck/internal/logging"
	"github.com/tunneldeck/tunneldeck/internal/metrics"
	"github.com/tunneldeck/tunneldeck/internal/middleware"
	"github.com/tunneldeck/tunneldeck/internal/tunnel"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// Handle CLI commands before starting the server
	if len(os.Args) > 1 && os.Args[1] == "--hash-password" {
		runHashPassword()
		return
	}

	config.Load()
	logging.Init()

	if err := database.Init(); err != nil {
		log.Fatalf("Database init: %v", err)
	}
	defer database.Close()

	runner := executor.New(config.Cfg.DaemonBin)
	mgr := tunnel.NewManager(runner, tunnel.Config{
		CertPath:       config.Cfg.CertPath,
		CommandTimeout: parseDuration(config.Cfg.CommandTimeout, executor.DefaultTimeout),
		LoginTimeout:   parseDuration(config.Cfg.LoginTimeout, 5*time.Minute),
	})
	collector := metrics.NewCollector(config.Cfg.DaemonBin)
	handlers.Manager = mgr
	handlers.Metrics = collector
	log.Printf("Tunnel manager initialized (daemon=%s, cert=%s)", config.Cfg.DaemonBin, config.Cfg.CertPath)

	// Seed the advisory auth cache and keep it fresh in the background.
	// The cache is display-only; operations always probe live.
	go mgr.RefreshAuthCache(context.Background())
	refresh := parseDuration(config.Cfg.AuthRefreshInterval, 10*time.Minute)
	sched := cron.New()
	if _, err := sched.AddFunc(fmt.Sprintf("@every %s", refresh), func() {
		mgr.RefreshAuthCache(context.Background())
	}); err != nil {
		log.Printf("WARNING: auth refresh job not scheduled: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	// Health (no gate)
	r.Get("/health", handlers.HealthCheck)

	r.Group(func(r chi.Router) {
		r.Use(middleware.ConsoleGate(config.Cfg.PasswordHash))

		r.Get("/", handlers.Dashboard)

		r.Get("/api/tunnels", handlers.ListTunnels)
		r.Post("/api/action", handlers.Action)
		r.Post("/api/create", handlers.CreateTunnel)
		r.Post("/api/delete", handlers.DeleteTunnel)
		r.Post("/api/route", handlers.RouteTunnel)

		r.Post("/api/authenticate", handlers.Authenticate)
		r.Post("/api/auth", handlers.Authenticate)
		r.Get("/api/auth-status", handlers.AuthStatus)

		r.Get("/api/metrics", handlers.GetMetrics)
		r.Get("/api/metrics/ws", handlers.MetricsWS)
		r.Get("/api/ingress", handlers.GetIngress)
		r.Get("/api/actions", handlers.RecentActions)
		r.Get("/api/logs", handlers.GetServerLogs)
		r.Delete("/api/logs", handlers.ClearServerLogs)
	})

	// Graceful shutdown
	srv := &http.Server{
		Addr:    config.Cfg.ListenAddr,
		Handler: r,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server starting on %s", config.Cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-sigCtx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

// parseDuration is forgiving: config values are operator-supplied strings
// and a bad one should fall back, not crash the console.
func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// runHashPassword prints a bcrypt hash suitable for TUNNELDECK_PASSWORD_HASH.
func runHashPassword() {
	fs := flag.NewFlagSet("hash-password", flag.ExitOnError)
	password := fs.String("password", "", "Password to hash")
	fs.Parse(os.Args[2:])

	if *password == "" {
		fmt.Fprintln(os.Stderr, "Usage: tunneldeck --hash-password --password <pass>")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	fmt.Println(string(hash))
}
