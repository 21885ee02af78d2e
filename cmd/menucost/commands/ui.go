package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/menucost/engine/internal/auth"
	"github.com/menucost/engine/internal/http/middleware"
	"github.com/menucost/engine/internal/importer"
	"github.com/menucost/engine/internal/metrics"
	"github.com/menucost/engine/internal/rate"
	"github.com/menucost/engine/internal/watcher"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Run the watcher and HTTP surface in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUI(cmd)
	},
}

func init() {
	rootCmd.AddCommand(uiCmd)
}

// runUI starts the file watcher over the project root and a minimal
// HTTP surface guarded by a dev-mode token, both stopped by the same
// signal-driven shutdown the server entrypoint uses.
func runUI(cmd *cobra.Command) error {
	a := current
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	pipeline := importer.New(importer.Options{
		ProjectRoot: a.cfg.App.ProjectRoot,
		Processors:  a.svcs.Processors(),
	}, a.log)
	w, err := watcher.New(pipeline, a.log, 0)
	if err != nil {
		return withCode(ExitRuntimeFailure, err)
	}
	defer w.Close()

	if err := w.AddRoot(a.cfg.App.ProjectRoot); err != nil {
		return withCode(ExitRuntimeFailure, err)
	}

	tokens := auth.NewManager(a.cfg.JWT.Secret, a.cfg.JWT.Issuer, a.cfg.JWT.AccessTokenDuration)
	session, err := tokens.IssueSession("operator")
	if err != nil {
		return withCode(ExitRuntimeFailure, err)
	}
	a.log.Info().Str("token", session.AccessToken).Msg("dev-mode session token minted")

	reg := metrics.NewRegistry()

	var limiter *rate.Limiter
	if a.redisClient != nil {
		limiter = rate.NewLimiter(a.redisClient)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthHandler(tokens, limiter))
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:      middleware.Logger(a.log)(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", srv.Addr).Msg("http surface listening")
		serverErrors <- srv.ListenAndServe()
	}()

	watcherErrors := make(chan error, 1)
	go func() { watcherErrors <- w.Run(ctx) }()

	go drainWatcherEvents(ctx, w, a, reg)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return withCode(ExitRuntimeFailure, err)
		}
	case err := <-watcherErrors:
		if err != nil && !errors.Is(err, context.Canceled) {
			return withCode(ExitRuntimeFailure, err)
		}
	case sig := <-shutdown:
		a.log.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			srv.Close()
			return withCode(ExitRuntimeFailure, err)
		}
	}

	return nil
}

func drainWatcherEvents(ctx context.Context, w *watcher.Watcher, a *app, reg *metrics.Registry) {
	assetsEnabled := a.images != nil
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-w.Events():
			reg.WatcherEvents.WithLabelValues(string(ev.Action)).Inc()
			a.log.Info().Str("action", string(ev.Action)).Str("path", ev.Path).Str("slug", ev.Slug).
				Bool("assetsEnabled", assetsEnabled).Msg("watcher event")
		}
	}
}

func healthHandler(tokens *auth.Manager, limiter *rate.Limiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if limiter != nil {
			allowed, err := limiter.Allow(r.Context(), r.RemoteAddr, 60, time.Minute)
			if err == nil && !allowed {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
		}

		authz := r.Header.Get("Authorization")
		if len(authz) < 8 || authz[:7] != "Bearer " {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		if _, err := tokens.ValidateToken(authz[7:]); err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
