package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/triplan/internal/auth"
	"github.com/mmynk/triplan/internal/billscan"
	"github.com/mmynk/triplan/internal/config"
	"github.com/mmynk/triplan/internal/feed"
	"github.com/mmynk/triplan/internal/middleware"
	"github.com/mmynk/triplan/internal/objectstore"
	"github.com/mmynk/triplan/internal/scheduler"
	"github.com/mmynk/triplan/internal/service"
	"github.com/mmynk/triplan/internal/storage/sqlite"
	"github.com/mmynk/triplan/pkg/api/apiconnect"
	"github.com/mmynk/triplan/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

// setup loads configuration, installs the logger and opens the store.
func setup() (*config.Config, *sqlite.SQLiteStore, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	logging.Setup(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON})

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	slog.Info("Storage initialized", "database", cfg.DBPath)
	return cfg, store, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	_, store, err := setup()
	if err != nil {
		return err
	}
	defer store.Close()

	completed, err := scheduler.New(store, nil, "").Sweep(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "completed %d project(s)\n", len(completed))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, store, err := setup()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := feed.NewHub()
	if cfg.RedisURL != "" {
		bridge, err := feed.NewRedisBridge(ctx, cfg.RedisURL, hub)
		if err != nil {
			return err
		}
		defer bridge.Close()
		go func() {
			if err := bridge.Run(ctx); err != nil {
				slog.Error("Feed bridge stopped", "error", err)
			}
		}()
	}

	media, err := objectstore.NewLocal(cfg.MediaDir, cfg.MediaURL())
	if err != nil {
		return err
	}

	expenseOpts := service.ExpenseOptions{Media: media, IncludeOwner: cfg.SplitIncludeOwner}
	if cfg.BillScanURL != "" {
		expenseOpts.Scanner = billscan.New(cfg.BillScanURL, cfg.BillScanTimeout)
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, store, slog.Default())
	projectService := service.NewProjectService(store, hub, media)
	itineraryService := service.NewItineraryService(store, hub)
	expenseService := service.NewExpenseService(store, hub, expenseOpts)
	chatService := service.NewChatService(store, hub)
	photoService := service.NewPhotoService(store, media)

	public := connect.WithInterceptors(
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(),
		middleware.OptionalAuth(jwtManager),
	)
	protected := connect.WithInterceptors(
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(),
		middleware.RequireAuth(jwtManager),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(authService, public))
	mux.Handle(apiconnect.NewProjectServiceHandler(projectService, protected))
	mux.Handle(apiconnect.NewItineraryServiceHandler(itineraryService, protected))
	mux.Handle(apiconnect.NewExpenseServiceHandler(expenseService, protected))
	mux.Handle(apiconnect.NewChatServiceHandler(chatService, protected))
	mux.Handle(apiconnect.NewPhotoServiceHandler(photoService, protected))

	access := service.NewAccess(store)
	mux.Handle("GET /ws", middleware.RequireAuthHTTP(jwtManager, feed.NewHandler(hub, access.Authorize)))
	mux.Handle("GET /final-plan/{file}", middleware.RequireAuthHTTP(jwtManager, http.HandlerFunc(itineraryService.FinalPlanPDF)))
	mux.Handle("GET /media/", http.StripPrefix("/media/", media.Handler()))
	mux.Handle("GET /metrics", promhttp.Handler())

	staticHandler, err := newStaticHandler(cfg.StaticPath)
	if err != nil {
		return err
	}
	mux.Handle("/", staticHandler)

	sweeper := scheduler.New(store, hub, cfg.SweepSchedule)
	if err := sweeper.Start(); err != nil {
		return err
	}
	defer sweeper.Stop()

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	handler := h2c.NewHandler(loggingMiddleware(corsMiddleware(mux)), &http2.Server{})
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", cfg.Addr(), "url", cfg.PublicURL)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
	}
	return nil
}

// newStaticHandler serves the web client. Unknown paths fall back to
// index.html so client-side routes (invite links, /projects/...) resolve.
func newStaticHandler(staticPath string) (http.Handler, error) {
	staticDir, err := filepath.Abs(staticPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve static path: %w", err)
	}
	slog.Info("Serving static files", "path", staticDir)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/triplan.v1.") {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(staticDir, filepath.Clean(urlPath))
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}
		http.ServeFile(w, r, filePath)
	}), nil
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms, Content-Disposition")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
