package store

import (
	"context"

	"litoralnorte/imovelworker/internal/property"
)

// UpsertResult reports which branch an upsert took
type UpsertResult struct {
	Inserted bool
}

// Store is the only persistence contract the pipeline requires:
// upsert by external id. The pipeline never reads back, reconciles or
// deletes stale listings.
type Store interface {
	// Upsert inserts the full record, or — when a record with the same
	// external id already exists — updates its price and timestamps only,
	// leaving the other fields untouched.
	Upsert(ctx context.Context, p property.Property) (UpsertResult, error)

	// Close releases the underlying connection
	Close() error
}
