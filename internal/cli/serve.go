package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kolamstudio/kolamstudio/internal/config"
	"github.com/kolamstudio/kolamstudio/internal/server"
	"github.com/kolamstudio/kolamstudio/internal/store"
	"github.com/kolamstudio/kolamstudio/pkg/cache"
	"github.com/kolamstudio/kolamstudio/pkg/eval"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var configPath string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to TOML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg *config.Config) error {
	opts := []server.Option{server.WithLogger(c.Logger)}

	// Posts: MongoDB when configured, in-memory otherwise.
	if cfg.Mongo.URI != "" {
		c.Logger.Info("connecting to mongodb", "database", cfg.Mongo.Database)
		ps, err := store.NewMongoStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return err
		}
		defer ps.Close(context.Background())
		opts = append(opts, server.WithPostStore(ps))
	} else {
		c.Logger.Warn("no mongo.uri configured, posts are in-memory only")
	}

	// Render cache: Redis when configured, local files otherwise.
	if cfg.Redis.Addr != "" {
		c.Logger.Info("connecting to redis", "addr", cfg.Redis.Addr)
		rc, err := cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer rc.Close()
		opts = append(opts, server.WithCache(rc))
	} else if fc, err := newCache(false); err == nil {
		defer fc.Close()
		opts = append(opts, server.WithCache(fc))
	}

	if cfg.Evaluator.URL != "" {
		client, err := eval.NewClient(cfg.Evaluator.URL, eval.WithTimeout(cfg.Evaluator.Timeout.Duration))
		if err != nil {
			return err
		}
		opts = append(opts, server.WithEvaluator(client))
	}

	return server.New(cfg, opts...).Run(ctx)
}
