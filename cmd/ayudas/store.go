package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/ougirez/ayudas/internal/config"
	"github.com/ougirez/ayudas/internal/pkg/store"
	"github.com/ougirez/ayudas/internal/pkg/store/memory"
	"github.com/ougirez/ayudas/internal/pkg/store/xpgx"
)

// openStore returns the configured store and a func releasing its connections.
func openStore(ctx context.Context, c config.Config) (store.Store, func(), error) {
	if c.Store.Driver == config.DriverMemory {
		return memory.New(), func() {}, nil
	}

	pool, raw, err := xpgx.Connect(ctx, c.Database.URL, c.Database.MaxConns)
	if err != nil {
		return nil, nil, eris.Wrap(err, "connect database")
	}

	return store.NewStore(pool), raw.Close, nil
}

// openSourceDB connects to the operational database raw records are extracted
// from, the analytics database when no source url is set.
func openSourceDB(ctx context.Context, c config.Config) (*xpgx.Pool, func(), error) {
	url := c.Source.URL
	if url == "" {
		url = c.Database.URL
	}
	if url == "" {
		return nil, nil, eris.New("no source.url or database.url to extract from")
	}

	pool, raw, err := xpgx.Connect(ctx, url, c.Database.MaxConns)
	if err != nil {
		return nil, nil, eris.Wrap(err, "connect source database")
	}

	return pool, raw.Close, nil
}
