package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sgladkov/admoderation/internal/domain"
	"github.com/sgladkov/admoderation/internal/platform/logger"
	"github.com/sgladkov/admoderation/internal/store"
)

// ListingStore implements the store.ListingStore interface using PostgreSQL.
type ListingStore struct {
	db store.DBTX
}

// NewListingStore creates a new PostgreSQL implementation of store.ListingStore.
func NewListingStore(db store.DBTX) *ListingStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &ListingStore{db: db}
}

// Ensure ListingStore implements store.ListingStore
var _ store.ListingStore = (*ListingStore)(nil)

// WithTx returns a new ListingStore bound to the provided transaction.
func (s *ListingStore) WithTx(tx *sql.Tx) store.ListingStore {
	return &ListingStore{db: tx}
}

// Create inserts a new advertisement and returns the stored record with the
// seller verification flag resolved.
func (s *ListingStore) Create(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	log := logger.FromContext(ctx)

	if err := listing.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO advertisements (seller_id, name, description, category, images_qty)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := s.db.QueryRowContext(ctx, query,
		listing.SellerID,
		listing.Name,
		listing.Description,
		listing.Category,
		listing.ImagesQty,
	).Scan(&id)
	if err != nil {
		log.Error("failed to create advertisement",
			"seller_id", listing.SellerID,
			"error", err)
		return nil, fmt.Errorf("failed to create advertisement: %w", MapError(err))
	}

	return s.GetByID(ctx, id)
}

// GetByID retrieves an advertisement with the seller verification flag
// joined from the seller record.
// Returns store.ErrListingNotFound if the advertisement does not exist.
func (s *ListingStore) GetByID(ctx context.Context, itemID int64) (*domain.Listing, error) {
	query := `
		SELECT a.id, a.seller_id, a.name, a.description, a.category, a.images_qty, u.is_verified_seller
		FROM advertisements a
		JOIN users u ON a.seller_id = u.id
		WHERE a.id = $1
	`

	var listing domain.Listing
	err := s.db.QueryRowContext(ctx, query, itemID).Scan(
		&listing.ID,
		&listing.SellerID,
		&listing.Name,
		&listing.Description,
		&listing.Category,
		&listing.ImagesQty,
		&listing.SellerVerified,
	)
	if err != nil {
		if IsNotFoundError(MapError(err)) {
			return nil, store.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get advertisement: %w", MapError(err))
	}

	return &listing, nil
}

// Close deletes the advertisement and reports whether a row was removed.
// A false return without error means the row was already gone; callers
// decide whether that matters (a concurrent close is possible).
func (s *ListingStore) Close(ctx context.Context, itemID int64) (bool, error) {
	log := logger.FromContext(ctx)

	query := `DELETE FROM advertisements WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, itemID)
	if err != nil {
		log.Error("failed to close advertisement",
			"item_id", itemID,
			"error", err)
		return false, fmt.Errorf("failed to close advertisement: %w", MapError(err))
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}
