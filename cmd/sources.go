package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/Rion4/FedGrid-AIINNOVATION/internal/config"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/snapshot"
)

const ftpTimeout = 10 * time.Second

// store is a database-backed snapshot source that can also be written to.
type store interface {
	snapshot.Source
	snapshot.Sink
	Migrate(ctx context.Context) error
	Close() error
}

func openStore(ctx context.Context, c config.StoreConfig) (store, error) {
	var (
		st  store
		err error
	)
	switch c.Driver {
	case "sqlite":
		st, err = snapshot.NewSQLite(c.DatabaseURL)
	case "postgres":
		st, err = snapshot.NewPostgres(ctx, c.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unsupported driver %q", c.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "store: migrate")
	}
	return st, nil
}

// openSource builds the configured snapshot source. The returned close
// func is never nil.
func openSource(ctx context.Context, c *config.Config) (snapshot.Source, func() error, error) {
	noop := func() error { return nil }
	switch c.Snapshot.Source {
	case "dir":
		return snapshot.NewDirSource(c.Snapshot.Dir), noop, nil
	case "http":
		return snapshot.NewHTTPSource(c.Snapshot.BaseURL), noop, nil
	case "ftp":
		src, err := snapshot.NewFTPSource(c.Snapshot.FTPURL, c.Snapshot.FTPUser, c.Snapshot.FTPPass, ftpTimeout)
		if err != nil {
			return nil, noop, err
		}
		return src, noop, nil
	case "store":
		st, err := openStore(ctx, c.Store)
		if err != nil {
			return nil, noop, err
		}
		return st, st.Close, nil
	default:
		return nil, noop, eris.Errorf("snapshot: unknown source %q", c.Snapshot.Source)
	}
}

// openSink builds the writer the simulator publishes to. HTTP sources are
// read-only.
func openSink(ctx context.Context, c *config.Config) (snapshot.Sink, func() error, error) {
	src, closeFn, err := openSource(ctx, c)
	if err != nil {
		return nil, closeFn, err
	}
	sink, ok := src.(snapshot.Sink)
	if !ok {
		closeFn() //nolint:errcheck
		return nil, func() error { return nil }, eris.Errorf("snapshot: source %q is read-only", c.Snapshot.Source)
	}
	return sink, closeFn, nil
}
