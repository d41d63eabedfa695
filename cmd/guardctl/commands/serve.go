package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/config"
	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/hardening"
	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/log"
	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/middleware"
	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/ratelimit"
	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/version"
)

const shutdownTimeout = 3 * time.Second

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	var (
		configFile string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the guarded webhook endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := config.LoadWithPath(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			log.SetVersion(version.Version)
			cleanupLogger, err := log.Init(cfg.Logger)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer cleanupLogger()

			return runServer(cfg, addr)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")
	cmd.Flags().StringVarP(&addr, "addr", "a", ":8787", "listen address")
	return cmd
}

// runServer wires the guards in front of the webhook surface and runs the
// HTTP server until interrupted.
func runServer(cfg *config.Config, addr string) error {
	ctx := context.Background()

	orch := hardening.New()
	if hardening.IsEnabled(cfg.Security.Hardening) {
		st := orch.Init(&hardening.Options{
			Config:   cfg.Security.Hardening,
			StateDir: cfg.StateDir,
		})
		log.Infof(ctx, "hardening up: singleUser=%v network=%v fs=%v log=%s",
			st.SingleUser, st.NetworkMonitor, st.FSMonitor, st.LogPath)
	} else {
		log.Warn(ctx, "hardening disabled; running with no guards")
	}
	defer orch.Teardown()

	limiter := ratelimit.NewKeyed(nil)
	defer limiter.Close()

	rl := cfg.Security.RateLimit
	authRule := ratelimit.Rule{Max: rl.Auth.Max, Window: rl.Auth.Window}
	reqRule := ratelimit.Rule{Max: rl.Request.Max, Window: rl.Request.Window}

	// With a shared Redis the auth budget is split across instances; the
	// local limiter stays as the fallback when Redis is unreachable.
	authLimit := middleware.RateLimit(limiter, "auth", authRule, orch.Audit())
	if rl.RedisAddr != "" {
		store, err := ratelimit.NewRedisStore(ratelimit.RedisConfig{
			Addr:     rl.RedisAddr,
			Password: rl.RedisPassword,
		})
		if err != nil {
			log.Warnf(ctx, "redis unavailable, auth limiting stays local: %v", err)
		} else {
			defer store.Close()
			authLimit = middleware.RateLimitDistributed(
				ratelimit.NewDistributed(store, limiter), "auth", authRule, orch.Audit())
		}
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID())

	r.GET("/status", middleware.Diagnostics(orch, func() any {
		return cfg.Viper.AllSettings()
	}))

	webhook := r.Group("/webhook",
		middleware.RateLimit(limiter, "req", reqRule, orch.Audit()),
		middleware.SenderGuard(orch.Enforcer()),
	)
	webhook.POST("", func(c *gin.Context) {
		c.Status(http.StatusAccepted)
	})

	r.POST("/pair",
		authLimit,
		func(c *gin.Context) { c.Status(http.StatusAccepted) },
	)

	srv := &http.Server{Addr: addr, Handler: r}

	errCh := make(chan error, 1)
	go func() {
		log.Infof(ctx, "listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Infof(ctx, "received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
