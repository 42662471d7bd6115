package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/zjrosen/toolasset/internal/log"
	"github.com/zjrosen/toolasset/internal/watcher"
	"github.com/zjrosen/toolasset/internal/web"
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web front end",
		Long: `Serve the JSON API under /api on web.addr (default 127.0.0.1:8080).

Changes to log.debug in the config file are applied without a restart.

Example:
  toolasset serve --addr :8080`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationLog: "stderr"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := c.services(ctx)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = c.cfg.Web.Addr
			}

			stopWatch := c.watchConfig()
			defer stopWatch()

			if !c.debug && !c.cfg.Log.Debug {
				gin.SetMode(gin.ReleaseMode)
			}
			srv := web.New(svc, c.dict, web.Options{
				Addr:           addr,
				LabelCacheTTL:  c.cfg.Web.LabelCacheTTL,
				TracerProvider: c.tracer.TracerProvider(),
			})
			if err := srv.Run(ctx); err != nil {
				return fmt.Errorf("serving %s: %w", addr, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "address to listen on (overrides web.addr)")
	return cmd
}

// watchConfig re-reads the config file when it changes and applies
// log.debug. It returns a function that stops watching.
func (c *cli) watchConfig() func() {
	path := c.v.ConfigFileUsed()
	if path == "" {
		return func() {}
	}
	w, err := watcher.New(watcher.DefaultConfig(path))
	if err != nil {
		log.ErrorErr(log.CatConfig, "config watch disabled", err)
		return func() {}
	}
	onChange, err := w.Start()
	if err != nil {
		_ = w.Stop()
		log.ErrorErr(log.CatConfig, "config watch disabled", err)
		return func() {}
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case _, ok := <-onChange:
				if !ok {
					return
				}
				c.reloadConfig()
			}
		}
	}()
	return func() {
		close(done)
		_ = w.Stop()
	}
}

func (c *cli) reloadConfig() {
	if err := c.v.ReadInConfig(); err != nil {
		log.ErrorErr(log.CatConfig, "config reload failed", err, "path", c.v.ConfigFileUsed())
		return
	}
	debug := c.debug || c.v.GetBool("log.debug") || os.Getenv("TOOLASSET_DEBUG") != ""
	if debug {
		log.SetMinLevel(log.LevelDebug)
	} else {
		log.SetMinLevel(log.LevelInfo)
	}
	log.Info(log.CatConfig, "config reloaded", "path", c.v.ConfigFileUsed(), "debug", debug)
}
