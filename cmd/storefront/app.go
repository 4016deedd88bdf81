package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/storefront/internal/adapter/api"
	"github.com/rl1809/storefront/internal/adapter/handler"
	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/logging"
	"github.com/rl1809/storefront/internal/port"
)

// app holds everything one storefront process owns.
type app struct {
	cfg   config.Config
	log   *logrus.Logger
	store port.KeyValueStore
	svc   handler.Services
}

func loadConfig() (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

func newApp(ctx context.Context) (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, cfg.Storage, logging.Component(log, "storage"))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	sessions := service.NewSessionStore(store, logging.Component(log, "session"))
	sessions.Hydrate(ctx)

	client := api.NewClient(cfg.Backend, sessions.Token, logging.Component(log, "backend"))
	cart := service.NewCartStore(logging.Component(log, "cart"))

	return &app{
		cfg:   cfg,
		log:   log,
		store: store,
		svc: handler.Services{
			Sessions: sessions,
			Guard:    service.NewRouteGuard(sessions),
			Cart:     cart,
			Orders:   service.NewOrderService(client, cart, sessions, logging.Component(log, "orders")),
			Auth:     service.NewAuthService(client, store, sessions, logging.Component(log, "auth")),
			Catalog:  service.NewCatalogService(client, cart, logging.Component(log, "catalog")),
			History:  service.NewHistoryService(client, client, logging.Component(log, "history")),
			Points:   service.NewPointService(client, logging.Component(log, "points")),
			Prefs:    service.NewPreferenceService(store, logging.Component(log, "preferences")),
		},
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.WithError(err).Warn("closing storage")
	}
}
