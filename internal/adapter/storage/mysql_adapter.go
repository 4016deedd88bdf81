package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/storefront/internal/port"
)

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// EnsureSchema creates the key-value table when it does not exist yet.
func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kv_store (
			k VARCHAR(191) NOT NULL PRIMARY KEY,
			v MEDIUMBLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("create kv_store: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := m.db.QueryRowContext(ctx, `SELECT v FROM kv_store WHERE k = ?`, key).Scan(&v)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query kv_store: %w", err)
	}
	return v, nil
}

func (m *MySQLAdapter) Set(ctx context.Context, key string, value []byte) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO kv_store (k, v) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE v = VALUES(v), updated_at = NOW()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("upsert kv_store: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) Delete(ctx context.Context, key string) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM kv_store WHERE k = ?`, key); err != nil {
		return fmt.Errorf("delete kv_store: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) Close() error {
	return m.db.Close()
}
