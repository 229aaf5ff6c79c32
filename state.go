/*
Package main
File: state.go
Description: Runtime wiring shared by every command: configuration, logging,
content and the session store.

Content errors are fatal here: a command never runs with invalid
definitions. Save errors only fail when the backend cannot be opened at
all (for instance another process holds the save lock).
*/

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/salvarecuero/tap-cat/internal/config"
	"github.com/salvarecuero/tap-cat/internal/content"
	"github.com/salvarecuero/tap-cat/internal/game"
	"github.com/salvarecuero/tap-cat/internal/save"
	"github.com/salvarecuero/tap-cat/internal/session"
)

type app struct {
	configPath string
	cfg        *config.Config
	log        *slog.Logger
}

// setup loads the config and installs the logger.
func (a *app) setup() error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFromPath(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	level, err := config.ParseLevel(a.cfg.LogLevel)
	if err != nil {
		return err
	}
	a.log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.log)
	return nil
}

// loadCatalog loads and validates the configured content.
func (a *app) loadCatalog() (*game.Catalog, error) {
	catalog, err := content.Load(a.cfg.ContentDir, a.cfg.DefaultCharacter)
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

// openStore opens the save backend and returns a ready store. The caller
// must Close it to flush the last write and release the save lock.
func (a *app) openStore(ctx context.Context) (*session.Store, error) {
	// 1. Content first: invalid content aborts before touching the save
	catalog, err := a.loadCatalog()
	if err != nil {
		return nil, err
	}

	// 2. Durable backend
	path, err := a.cfg.SavePath()
	if err != nil {
		return nil, err
	}
	backend, err := save.OpenBackend(ctx, a.cfg.Save.Backend, path, a.cfg.Save.Key)
	if err != nil {
		return nil, fmt.Errorf("open save %s: %w", path, err)
	}
	a.log.Debug("save opened", "backend", a.cfg.Save.Backend, "path", path)

	// 3. Session
	store := session.New(session.Options{
		Catalog:         catalog,
		Adapter:         save.NewAdapter(backend, a.log),
		Debounce:        a.cfg.Save.Debounce,
		AccrualInterval: a.cfg.AccrualInterval,
		Logger:          a.log,
	})
	store.Open()
	return store, nil
}

// withStore runs fn against an open store and closes it afterwards.
func (a *app) withStore(ctx context.Context, fn func(*session.Store) error) error {
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			a.log.Warn("failed to close save", "error", err)
		}
	}()
	return fn(store)
}
