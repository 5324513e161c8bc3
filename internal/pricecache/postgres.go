package pricecache

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists the price snapshot in a price_entries table, one row
// per (market, product_key). Used instead of the local document store when a
// database URL is configured.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates the store and ensures the schema exists.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	s := &PostgresStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS price_entries (
			market                TEXT NOT NULL,
			product_key           TEXT NOT NULL,
			name                  TEXT NOT NULL,
			price                 DOUBLE PRECISION NOT NULL,
			price_per_unit        DOUBLE PRECISION,
			unit                  TEXT,
			brand                 TEXT,
			promo                 TEXT,
			promo_effective_price DOUBLE PRECISION,
			available             BOOLEAN,
			product_url           TEXT,
			cached_at             TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (market, product_key)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create price_entries table: %w", err)
	}
	return nil
}

// Load reads all rows into a snapshot.
func (s *PostgresStore) Load(ctx context.Context) (Snapshot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT market, product_key, name, price, price_per_unit, unit, brand,
		       promo, promo_effective_price, available, product_url, cached_at
		FROM price_entries
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query price entries: %w", err)
	}
	defer rows.Close()

	snap := make(Snapshot)
	for rows.Next() {
		var (
			market, key  string
			entry        Entry
			pricePerUnit *float64
			unit         *string
			brand        *string
			promo        *string
			productURL   *string
			cachedAt     time.Time
		)
		if err := rows.Scan(&market, &key, &entry.Name, &entry.Price, &pricePerUnit,
			&unit, &brand, &promo, &entry.PromoEffectivePrice, &entry.Available,
			&productURL, &cachedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price entry: %w", err)
		}
		if pricePerUnit != nil {
			entry.PricePerUnit = *pricePerUnit
		}
		if unit != nil {
			entry.Unit = *unit
		}
		if brand != nil {
			entry.Brand = *brand
		}
		if promo != nil {
			entry.Promo = *promo
		}
		if productURL != nil {
			entry.ProductURL = *productURL
		}
		entry.CachedAt = cachedAt

		if snap[market] == nil {
			snap[market] = make(map[string]Entry)
		}
		snap[market][key] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read price entries: %w", err)
	}
	return snap, nil
}

// Save upserts every entry in the snapshot in one transaction. Rows absent
// from the snapshot are not deleted; stale rows age out via the TTL on read.
func (s *PostgresStore) Save(ctx context.Context, snap Snapshot) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for market, entries := range snap {
		for key, entry := range entries {
			batch.Queue(`
				INSERT INTO price_entries (market, product_key, name, price, price_per_unit,
					unit, brand, promo, promo_effective_price, available, product_url, cached_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
				ON CONFLICT (market, product_key) DO UPDATE SET
					name = EXCLUDED.name,
					price = EXCLUDED.price,
					price_per_unit = EXCLUDED.price_per_unit,
					unit = EXCLUDED.unit,
					brand = EXCLUDED.brand,
					promo = EXCLUDED.promo,
					promo_effective_price = EXCLUDED.promo_effective_price,
					available = EXCLUDED.available,
					product_url = EXCLUDED.product_url,
					cached_at = EXCLUDED.cached_at
			`, market, key, entry.Name, entry.Price, entry.PricePerUnit, entry.Unit,
				entry.Brand, entry.Promo, entry.PromoEffectivePrice, entry.Available,
				entry.ProductURL, entry.CachedAt)
		}
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert price entries: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit price entries: %w", err)
	}
	return nil
}
