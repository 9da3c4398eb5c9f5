package settings

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"gr4vydemo/internal/common/database"
)

// PostgresStore persists settings in the settings table.
type PostgresStore struct {
	db *database.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a store backed by db.
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get retrieves a single setting
func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if database.IsNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("getting setting %s: %w", key, err)
	}
	return value, true, nil
}

// SetMany upserts all values in one transaction
func (s *PostgresStore) SetMany(ctx context.Context, values map[string]string) error {
	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		for k, v := range values {
			if _, err := tx.Exec(ctx, query, k, v); err != nil {
				return fmt.Errorf("saving setting %s: %w", k, err)
			}
		}
		return nil
	})
}

// All lists every stored setting
func (s *PostgresStore) All(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.Query(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning setting: %w", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	return out, nil
}
