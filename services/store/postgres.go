package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"litoralnorte/imovelworker/internal/property"
	"litoralnorte/imovelworker/logger"
	errs "litoralnorte/imovelworker/pkg/errors"
)

// PostgresStore persists canonical property records to PostgreSQL.
type PostgresStore struct {
	db  *sql.DB
	log *logger.Logger
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema
// migrations, and returns a ready-to-use store. maxRetries bounds the
// initial ping attempts against a database that is still coming up.
func NewPostgresStore(dsn string, maxRetries int) (*PostgresStore, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errs.NewStorage("open connection", err)
	}

	log := logger.ForStore()
	for i := 0; i < maxRetries; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", i+1).Msg("Database not reachable yet")
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		return nil, errs.NewStorage(fmt.Sprintf("ping failed after %d attempts", maxRetries), err)
	}

	ps := &PostgresStore{db: db, log: log}
	if err := ps.migrate(); err != nil {
		return nil, errs.NewStorage("migrate schema", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS properties (
			id            SERIAL PRIMARY KEY,
			external_id   TEXT         UNIQUE NOT NULL,
			source        VARCHAR(20)  NOT NULL,
			url           TEXT         NOT NULL,
			transaction_type VARCHAR(10)  NOT NULL DEFAULT 'venda',
			property_type VARCHAR(20)  NOT NULL DEFAULT 'outro',
			title         TEXT         NOT NULL,
			price         BIGINT       NOT NULL DEFAULT 0,
			city          TEXT         NOT NULL,
			neighborhood  TEXT         NOT NULL DEFAULT '',
			address       TEXT         NOT NULL DEFAULT '',
			description   TEXT         NOT NULL DEFAULT '',
			photo_urls    TEXT[]       NOT NULL DEFAULT '{}',
			features      TEXT[]       NOT NULL DEFAULT '{}',
			created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_properties_city   ON properties(city);
		CREATE INDEX IF NOT EXISTS idx_properties_price  ON properties(price);
		CREATE INDEX IF NOT EXISTS idx_properties_source ON properties(source);
	`)
	return err
}

// Upsert inserts the full record or, on external-id conflict, refreshes
// price and updated_at only. The untouched fields may have been corrected
// by a human editor and must not be clobbered by re-scrapes.
func (ps *PostgresStore) Upsert(ctx context.Context, p property.Property) (UpsertResult, error) {
	var inserted bool
	err := ps.db.QueryRowContext(ctx, `
		INSERT INTO properties
			(external_id, source, url, transaction_type, property_type, title,
			 price, city, neighborhood, address, description, photo_urls, features)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (external_id) DO UPDATE
			SET price = EXCLUDED.price, updated_at = NOW()
		RETURNING (xmax = 0)
	`,
		p.ExternalID, string(p.Source), p.URL, p.Transaction, p.PropertyType,
		p.Title, p.Price, p.City, p.Neighborhood, p.Address, p.Description,
		pq.Array(p.PhotoURLs), pq.Array(p.Features),
	).Scan(&inserted)
	if err != nil {
		return UpsertResult{}, errs.NewStorage(fmt.Sprintf("upsert %s", p.ExternalID), err)
	}
	return UpsertResult{Inserted: inserted}, nil
}

// Close closes the database connection
func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
