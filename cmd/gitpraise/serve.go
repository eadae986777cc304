package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gitpraise/gitpraise/pkg/cache/sqlite"
	"github.com/gitpraise/gitpraise/pkg/config"
	"github.com/gitpraise/gitpraise/pkg/llm"
	"github.com/gitpraise/gitpraise/pkg/server"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the analysis HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			var cache *sqlite.Cache
			if cfg.Cache.Enabled {
				cache, err = sqlite.New(cfg.DBPath, cfg.Cache.TTL)
				if err != nil {
					// Serve uncached rather than refuse to start.
					log.Printf("cache unavailable, serving without it: %v", err)
					cache = nil
				} else {
					defer func() { _ = cache.Close() }()
				}
			}

			client := llm.New(cfg.LLM)
			srv := server.New(cfg, cache, client)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Printf("starting gitpraise with config: %s", configPath)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "gitpraise.yaml", "path to config file")
	return cmd
}
