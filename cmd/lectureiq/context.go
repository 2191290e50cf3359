package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"lectureiq/internal/api"
	"lectureiq/internal/config"
	"lectureiq/internal/logging"
	"lectureiq/internal/session"
	"lectureiq/internal/watch"
)

type commandContext struct {
	configFlag *string
	apiURLFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	setupOnce sync.Once
	logger    *slog.Logger
	store     *session.Store
	client    *api.Client
	setupErr  error
}

func newCommandContext(configFlag, apiURLFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag, apiURLFlag: apiURLFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.apiURLFlag != nil {
			if override := strings.TrimRight(strings.TrimSpace(*c.apiURLFlag), "/"); override != "" {
				cfg.API.BaseURL = override
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureClient wires the session store and API client once per invocation.
// Every 401 anywhere clears the stored session so the next command starts
// signed out.
func (c *commandContext) ensureClient() (*api.Client, *session.Store, error) {
	c.setupOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.setupErr = err
			return
		}

		logger, err := logging.New(logging.Options{
			Level:    cfg.Logging.Level,
			Format:   cfg.Logging.Format,
			Output:   io.Discard,
			FilePath: filepath.Join(cfg.Paths.LogDir, "lectureiq.log"),
		})
		if err != nil {
			c.setupErr = fmt.Errorf("configure logging: %w", err)
			return
		}
		c.logger = logger

		store := session.NewStore(session.NewFileBlobStore(cfg.SessionFile()))
		store.Restore()
		c.store = store

		c.client = api.New(cfg.API.BaseURL, api.TokenFunc(store.Token),
			api.WithTimeout(cfg.API.Timeout()),
			api.WithLogger(logger),
			api.WithOnUnauthorized(func() {
				if err := store.Clear(); err != nil {
					logger.Warn("clear session after unauthorized response", logging.Error(err))
				}
			}))
	})
	return c.client, c.store, c.setupErr
}

// requireAuth fails fast when no session is stored, before any request.
func (c *commandContext) requireAuth() (*api.Client, *session.Store, error) {
	client, store, err := c.ensureClient()
	if err != nil {
		return nil, nil, err
	}
	if !store.SignedIn() {
		return nil, nil, fmt.Errorf("not signed in; run `lectureiq login` first")
	}
	return client, store, nil
}

// newController builds a polling controller from the loaded config.
func (c *commandContext) newController() (*watch.Controller, error) {
	client, _, err := c.requireAuth()
	if err != nil {
		return nil, err
	}
	cfg, _ := c.ensureConfig()
	return watch.New(client, watch.Options{
		DetailInterval: cfg.Polling.DetailInterval(),
		ListInterval:   cfg.Polling.ListInterval(),
		Logger:         c.logger,
	}), nil
}
