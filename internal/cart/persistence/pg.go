package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/abgdnv/gocart/internal/cart"
	carterrors "github.com/abgdnv/gocart/internal/cart/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgAdapter implements Adapter using PostgreSQL as the durable mirror.
// One row per cart key, items stored verbatim as JSONB.
type PgAdapter struct {
	db *pgxpool.Pool
}

// NewPgAdapter creates a new Adapter backed by a PostgreSQL connection pool.
func NewPgAdapter(dbp *pgxpool.Pool) *PgAdapter {
	return &PgAdapter{db: dbp}
}

// Load fetches the persisted item list for the key.
// A missing row or a row whose payload no longer parses yields an empty list.
func (p *PgAdapter) Load(ctx context.Context, key cart.Key) ([]cart.Item, error) {
	var raw []byte
	err := p.db.QueryRow(ctx,
		`SELECT items FROM carts WHERE tenant_id = $1 AND session_id = $2`,
		key.TenantID, key.SessionID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []cart.Item{}, nil
		}
		return nil, fmt.Errorf("%w: %v", carterrors.ErrLoadCart, err)
	}

	items, err := decodeItems(raw)
	if err != nil {
		// Corrupt payloads degrade to an empty cart instead of failing hydration.
		return []cart.Item{}, nil
	}
	return items, nil
}

// Save upserts the full item list for the key.
func (p *PgAdapter) Save(ctx context.Context, key cart.Key, items []cart.Item) error {
	raw, err := encodeItems(items)
	if err != nil {
		return fmt.Errorf("%w: %v", carterrors.ErrSaveCart, err)
	}
	_, err = p.db.Exec(ctx,
		`INSERT INTO carts (tenant_id, session_id, items, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (tenant_id, session_id)
		 DO UPDATE SET items = EXCLUDED.items, updated_at = now()`,
		key.TenantID, key.SessionID, raw,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", carterrors.ErrSaveCart, err)
	}
	return nil
}
