package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/optkit/flowplan/internal/api"
	"github.com/optkit/flowplan/pkg/cache"
	"github.com/optkit/flowplan/pkg/pipeline"
)

// serveConfig is the TOML configuration for the serve command.
type serveConfig struct {
	Addr  string      `toml:"addr"`
	Cache cacheConfig `toml:"cache"`
}

type cacheConfig struct {
	Backend string      `toml:"backend"` // none, file, redis, mongo
	Dir     string      `toml:"dir"`     // file backend; defaults to the XDG cache dir
	Redis   redisConfig `toml:"redis"`
	Mongo   mongoConfig `toml:"mongo"`
}

type redisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type mongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

func defaultServeConfig() serveConfig {
	return serveConfig{
		Addr: ":8080",
		Cache: cacheConfig{
			Backend: "file",
			Redis:   redisConfig{Addr: "localhost:6379"},
			Mongo: mongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   appName,
				Collection: "reports",
			},
		},
	}
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the model editing and solve API over HTTP",
		Long: `Serve the model editing and solve API over HTTP.

The server holds a single model in memory and exposes REST endpoints for
editing nodes and edges, exchanging the whole model, and solving. Solve
reports are cached; the backend (file, redis, mongo, or none) is selected
in the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := defaultServeConfig()
			if configPath != "" {
				if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
					return fmt.Errorf("load config %s: %w", configPath, err)
				}
			}
			if addr != "" {
				cfg.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a TOML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}

// runServe builds the cache backend and runs the HTTP server until the
// context is cancelled.
func (c *CLI) runServe(ctx context.Context, cfg serveConfig) error {
	backend, err := c.openCache(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("open cache backend %q: %w", cfg.Cache.Backend, err)
	}

	runner := pipeline.NewRunner(backend, nil, c.Logger)
	defer runner.Close()

	server := api.NewServer(runner, c.Logger)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", cfg.Addr, "cache", cfg.Cache.Backend)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

// openCache builds the configured cache backend.
func (c *CLI) openCache(ctx context.Context, cfg cacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "", "none":
		return cache.NewNullCache(), nil
	case "file":
		dir := cfg.Dir
		if dir == "" {
			var err error
			dir, err = cacheDir()
			if err != nil {
				return nil, err
			}
		}
		return cache.NewFileCache(dir)
	case "redis":
		return cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	case "mongo":
		return cache.NewMongoCache(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
	default:
		return nil, fmt.Errorf("unknown backend %q, want none, file, redis, or mongo", cfg.Backend)
	}
}
