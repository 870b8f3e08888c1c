package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"worksheet-quiz/internal/domain"
)

// BlobStore keeps the serialized worksheet table as a JSONB row keyed by name.
type BlobStore struct {
	pool *pgxpool.Pool
	key  string
}

func NewBlobStore(pool *pgxpool.Pool, key string) *BlobStore {
	return &BlobStore{pool: pool, key: key}
}

func (s *BlobStore) Load(ctx context.Context) ([]byte, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM worksheet_blobs WHERE key=$1`, s.key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load worksheets: %w", err)
	}
	return raw, nil
}

func (s *BlobStore) Save(ctx context.Context, data []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO worksheet_blobs (key, data, updated_at) VALUES ($1, $2::jsonb, now())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		s.key, string(data))
	if err != nil {
		return fmt.Errorf("save worksheets: %w", err)
	}
	return nil
}
