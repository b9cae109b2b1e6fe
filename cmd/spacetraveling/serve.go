package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eringen/spacetraveling"
	"github.com/eringen/spacetraveling/logger"
	"github.com/eringen/spacetraveling/views"
)

func serveCmd() *cobra.Command {
	var addr string
	var staticDir string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the blog over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := spacetraveling.ConfigFromEnv()
			if addr != "" {
				cfg.Addr = addr
			}

			log, flush := logger.New(os.Stdout, cfg.IsDevelopment(), cfg.SentryDSN)
			defer flush()

			app := spacetraveling.New(cfg, views.Funcs(),
				spacetraveling.WithLogger(log),
				spacetraveling.WithStaticDir(staticDir),
			)
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := app.Start(ctx); err != nil {
				log.Error("server stopped", "error", err)
				return err
			}
			return nil
		},
	}

	c.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides ADDR)")
	c.Flags().StringVar(&staticDir, "static", "public", "directory served under /public/")
	return c
}
