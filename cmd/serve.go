package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Rion4/FedGrid-AIINNOVATION/internal/api"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/chat"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/config"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/identity"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/resilience"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/shell"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/snapshot"
	"github.com/Rion4/FedGrid-AIINNOVATION/pkg/anthropic"
	"github.com/Rion4/FedGrid-AIINNOVATION/pkg/gemini"
	"github.com/Rion4/FedGrid-AIINNOVATION/pkg/supabase"
)

const (
	roleCacheEntries = 10000
	shutdownTimeout  = 10 * time.Second
)

var (
	servePort     int
	serveSimulate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		src, closeSrc, err := openSource(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeSrc() //nolint:errcheck

		var sink snapshot.Sink
		if serveSimulate {
			var ok bool
			if sink, ok = src.(snapshot.Sink); !ok {
				return eris.Errorf("serve: --simulate needs a writable snapshot source, got %q", cfg.Snapshot.Source)
			}
		}

		srv, err := buildServer(cfg, src)
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		httpSrv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: srv.Router(),
			// No WriteTimeout: the insight stream stays open.
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return httpSrv.Shutdown(sctx)
		})
		if sink != nil {
			g.Go(func() error {
				err := newSimulator(cfg.Simulate).Run(gctx, sink, cfg.Simulate.Files, time.Duration(cfg.Simulate.IntervalSecs)*time.Second)
				if err != nil && gctx.Err() == nil {
					return err
				}
				return nil
			})
		}

		return g.Wait()
	},
}

// buildServer wires the identity provider, chat backend and snapshot loader
// into the API server.
func buildServer(c *config.Config, src snapshot.Source) (*api.Server, error) {
	opts := []supabase.Option{supabase.WithProfileTable(c.Supabase.ProfileTable)}
	if c.Supabase.JWTSecret != "" {
		opts = append(opts, supabase.WithJWTSecret(c.Supabase.JWTSecret))
	}
	provider := supabase.NewClient(c.Supabase.URL, c.Supabase.AnonKey, opts...)

	var roles *identity.RoleCache
	if c.Supabase.RoleCacheTTL > 0 {
		roles = identity.NewRoleCache(roleCacheEntries, time.Duration(c.Supabase.RoleCacheTTL)*time.Second)
	}

	backend, err := newBackend(c.Chat)
	if err != nil {
		return nil, err
	}

	bcfg := resilience.BreakerConfigFrom(c.Chat.FailureThreshold, c.Chat.ResetTimeoutSecs)
	bcfg.Counts = resilience.IsBackendFailure
	breakers := resilience.NewBreakers(bcfg)
	guard := resilience.NewGuard(breakers.Get(backend.Name()), c.Chat.RatePerSec, c.Chat.Burst)

	return &api.Server{
		Shell:          shell.New(provider, roles),
		Loader:         snapshot.NewLoader(src, c.Snapshot.MaxIdx),
		Assistant:      chat.NewAssistant(backend, guard),
		Breakers:       breakers,
		AllowedOrigins: c.Server.AllowedOrigins,
		HeatmapSeed:    c.Heatmap.Seed,
	}, nil
}

func newBackend(c config.ChatConfig) (chat.Backend, error) {
	switch c.Provider {
	case "gemini":
		var opts []gemini.Option
		if c.Gemini.BaseURL != "" {
			opts = append(opts, gemini.WithBaseURL(c.Gemini.BaseURL))
		}
		if c.Gemini.Model != "" {
			opts = append(opts, gemini.WithModel(c.Gemini.Model))
		}
		return chat.Gemini{Client: gemini.NewClient(c.Gemini.Key, opts...)}, nil
	case "anthropic":
		var opts []anthropic.Option
		if c.Anthropic.Model != "" {
			opts = append(opts, anthropic.WithModel(c.Anthropic.Model))
		}
		if c.Anthropic.MaxTokens > 0 {
			opts = append(opts, anthropic.WithMaxTokens(c.Anthropic.MaxTokens))
		}
		return chat.Anthropic{Client: anthropic.NewClient(c.Anthropic.Key, opts...)}, nil
	default:
		return nil, eris.Errorf("chat: unknown provider %q", c.Provider)
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveSimulate, "simulate", false, "write simulated snapshots alongside the server")
	rootCmd.AddCommand(serveCmd)
}
