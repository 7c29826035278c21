package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/solatis/vizcore/internal/core/api"
	"github.com/solatis/vizcore/internal/core/auth"
	"github.com/solatis/vizcore/internal/core/config"
	"github.com/solatis/vizcore/internal/core/db"
	"github.com/solatis/vizcore/internal/core/metrics"
	"github.com/solatis/vizcore/internal/core/server"
	"github.com/solatis/vizcore/internal/rules"
)

const shutdownGrace = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gRPC style API service",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "0.0.0.0", "gRPC server host")
	serveCmd.Flags().Int("port", 50061, "gRPC server port")
	serveCmd.Flags().String("metrics-addr", ":9464", "Prometheus /metrics listen address (empty disables)")
	serveCmd.Flags().Bool("no-auth", false, "disable API key authentication")
}

func runServe(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("host") {
		cfg.StyleAPI.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.StyleAPI.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.StyleAPI.MetricsAddr, _ = cmd.Flags().GetString("metrics-addr")
	}
	if noAuth, _ := cmd.Flags().GetBool("no-auth"); noAuth {
		cfg.Auth.Enabled = false
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	engine := rules.NewEngine(logger.Named("rules"), rules.WithObserver(m))

	serviceOpts := []api.Option{api.WithLogger(logger.Named("api"))}
	if cfg.Database.URL != "" {
		provider, err := openProvider(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer provider.Close()
		serviceOpts = append(serviceOpts, api.WithProvider(provider))
	}

	service, err := api.NewStyleAPIService(&cfg.StyleAPI, engine, serviceOpts...)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer service.Close()

	serverOpts := []server.Option{
		server.WithMetrics(m),
		server.WithLogger(logger.Named("grpc")),
	}
	if cfg.Auth.Enabled {
		authenticator, err := newAuthenticator(cfg.Auth)
		if err != nil {
			return err
		}
		serverOpts = append(serverOpts, server.WithAuthenticator(authenticator))
	} else {
		logger.Warn("API key authentication disabled")
	}

	grpcServer, err := server.NewGRPCServer(&cfg.StyleAPI, service, serverOpts...)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("starting vizcore style API",
		zap.String("version", Version),
		zap.String("addr", grpcServer.Addr()),
		zap.String("metrics_addr", cfg.StyleAPI.MetricsAddr),
		zap.Bool("data_source", cfg.Database.URL != ""))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return grpcServer.Start(gctx)
	})

	var metricsServer *http.Server
	if cfg.StyleAPI.MetricsAddr != "" {
		metricsServer = m.NewServer(cfg.StyleAPI.MetricsAddr)
		g.Go(func() error {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		var errs []error
		if metricsServer != nil {
			errs = append(errs, metricsServer.Shutdown(shutdownCtx))
		}
		errs = append(errs, grpcServer.Shutdown(shutdownCtx))
		return errors.Join(errs...)
	})

	return g.Wait()
}

// openProvider connects the SQL data provider.
func openProvider(ctx context.Context, c config.DatabaseConfig) (*db.Provider, error) {
	conn, err := db.Open(ctx, c.URL, db.Pool{
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	provider, err := db.NewProvider(conn,
		db.WithMaxRows(cfg.StyleAPI.MaxRows),
		db.WithQueryTimeout(c.QueryTimeout),
		db.WithLogger(logger.Named("db")))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to load queries: %w", err)
	}
	return provider, nil
}

// newAuthenticator pairs the environment's HMAC secrets with the key
// hashes listed in config.
func newAuthenticator(c config.AuthConfig) (*auth.Authenticator, error) {
	secrets, err := config.HMACSecrets()
	if err != nil {
		return nil, fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	if len(secrets) == 0 {
		return nil, fmt.Errorf("no HMAC secrets configured (set VZ_HMAC_SECRET environment variable or pass --no-auth)")
	}

	keys := make([]auth.StaticKey, len(c.Keys))
	for i, k := range c.Keys {
		keys[i] = auth.StaticKey{Workspace: k.Workspace, Hash: k.Hash, Revoked: k.Revoked}
	}
	store, err := auth.NewStaticKeyStore(keys)
	if err != nil {
		return nil, fmt.Errorf("auth.keys: %w", err)
	}
	if len(keys) == 0 {
		logger.Warn("authentication enabled but no API keys configured; every call will be rejected")
	}
	return auth.NewAuthenticator(secrets, store), nil
}
