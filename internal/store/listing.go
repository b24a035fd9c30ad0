package store

import (
	"context"
	"database/sql"

	"github.com/sgladkov/admoderation/internal/domain"
)

// ListingStore defines the interface for advertisement persistence.
// The moderation pipeline only reads advertisements; the single write
// path is closure, which removes the row.
type ListingStore interface {
	// Create inserts a new advertisement and returns the full record
	// including the generated id. The seller must already exist.
	Create(ctx context.Context, listing *domain.Listing) (*domain.Listing, error)

	// GetByID retrieves an advertisement by id with the seller's
	// verification flag joined in.
	// Returns ErrListingNotFound if the advertisement does not exist.
	GetByID(ctx context.Context, itemID int64) (*domain.Listing, error)

	// Close deletes the advertisement and reports whether exactly one row
	// was removed. A false return means the row was already gone, which
	// callers tolerate when the advertisement was confirmed to exist
	// moments earlier (a concurrent close is possible).
	Close(ctx context.Context, itemID int64) (bool, error)

	// WithTx returns a new ListingStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) ListingStore
}
