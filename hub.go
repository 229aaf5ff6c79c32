/*
Package main
File: hub.go
Description: The `serve` command. Runs the HTTP API and the real-time
WebSocket hub, drives passive accrual on an interval while the player has
passive income, and reloads content on SIGHUP without a restart.
*/

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/salvarecuero/tap-cat/internal/accrual"
	"github.com/salvarecuero/tap-cat/internal/api"
	"github.com/salvarecuero/tap-cat/internal/session"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the game server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.ListenAddr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides listen_addr)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	// 1. Session
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			a.log.Warn("failed to close save", "error", err)
		}
	}()

	// 2. Real-time hub
	hub := api.NewHub(a.log)
	go hub.Run(ctx)
	server := api.NewServer(store, hub, a.cfg.Debug, a.log)

	// 3. Passive accrual: only scheduled while the per-second rate is positive
	driver := accrual.NewDriver(func() {
		store.Tick(a.cfg.AccrualInterval)
	})
	defer driver.Stop()
	store.Subscribe(func(session.View) {
		driver.Schedule(store.AccrualInterval())
	})
	driver.Schedule(store.AccrualInterval())

	// 4. Hot reload on SIGHUP
	go a.reloadOnHangup(ctx, store)

	// 5. HTTP
	httpServer := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	a.log.Info("tap-cat server live", "addr", a.cfg.ListenAddr, "session", store.ID(), "debug", a.cfg.Debug)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	a.log.Info("tap-cat server stopped")
	return nil
}

// reloadOnHangup reloads content on every SIGHUP. A reload that fails
// validation is logged and the running content is kept.
func (a *app) reloadOnHangup(ctx context.Context, store *session.Store) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sigChan:
			a.log.Info("SIGHUP: reloading content")
			catalog, err := a.loadCatalog()
			if err != nil {
				a.log.Error("content reload failed, keeping current content", "error", err)
				continue
			}
			store.ReplaceCatalog(catalog)
		}
	}
}
