package storage

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/storefront/internal/port"
)

type BadgerConfig struct {
	Path     string
	InMemory bool
	Logger   logrus.FieldLogger
}

// BadgerAdapter stores values in a local badger database, which is what a
// single-user storefront uses by default.
type BadgerAdapter struct {
	db *badger.DB
}

type badgerLogger struct {
	log logrus.FieldLogger
}

func (l badgerLogger) Errorf(format string, args ...interface{})   { l.log.Errorf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...interface{}) { l.log.Warnf(format, args...) }
func (l badgerLogger) Infof(format string, args ...interface{})    { l.log.Debugf(format, args...) }
func (l badgerLogger) Debugf(format string, args ...interface{})   { l.log.Debugf(format, args...) }

func OpenBadger(cfg BadgerConfig) (*BadgerAdapter, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path).WithSyncWrites(true)
	}
	opts = opts.WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(badgerLogger{log: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &BadgerAdapter{db: db}, nil
}

func (b *BadgerAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("badger get %s: %w", key, err)
	}
	return out, nil
}

func (b *BadgerAdapter) Set(ctx context.Context, key string, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("badger set %s: %w", key, err)
	}
	return nil
}

func (b *BadgerAdapter) Delete(ctx context.Context, key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("badger delete %s: %w", key, err)
	}
	return nil
}

func (b *BadgerAdapter) Close() error {
	return b.db.Close()
}
