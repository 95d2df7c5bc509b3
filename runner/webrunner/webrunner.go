package webrunner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"dinewheel/places"
	"dinewheel/runner"
	"dinewheel/search"
	"dinewheel/web"
)

const statsInterval = time.Minute

type webrunner struct {
	srv   *web.Server
	cache *search.Cache
	cfg   *runner.Config
}

func New(cfg *runner.Config) (runner.Runner, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("listen address is required")
	}

	logger := slog.Default()
	cache := search.NewCache()

	factory := func(context.Context) (search.Provider, error) {
		client := places.NewClient(cfg.GoogleMapsAPIKey)
		if err := client.Ready(); err != nil {
			return nil, err
		}

		return client, nil
	}

	ctrl := search.NewController(factory, cache, logger)
	svc := web.NewService(ctrl, places.NewGeocoder(), cfg.GoogleMapsAPIKey, logger)
	srv := web.New(svc, web.Options{
		Addr:        cfg.Addr,
		CorsOrigins: cfg.CorsOrigins,
	}, logger)

	ans := webrunner{
		srv:   srv,
		cache: cache,
		cfg:   cfg,
	}

	return &ans, nil
}

func (w *webrunner) Run(ctx context.Context) error {
	egroup, ctx := errgroup.WithContext(ctx)

	egroup.Go(func() error {
		return w.srv.Start(ctx)
	})

	egroup.Go(func() error {
		w.logStats(ctx)

		return nil
	})

	return egroup.Wait()
}

func (w *webrunner) Close(context.Context) error {
	return nil
}

func (w *webrunner) logStats(ctx context.Context) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			slog.Debug("session stats", "cached_searches", w.cache.Len())
		}
	}
}
