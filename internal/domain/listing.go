package domain

import (
	"errors"
)

// Common validation errors for Listing
var (
	ErrListingEmptyName     = errors.New("advertisement name cannot be empty")
	ErrListingInvalidSeller = errors.New("advertisement seller id must be positive")
	ErrListingNegativeField = errors.New("advertisement category and images_qty cannot be negative")
)

// Listing represents a marketplace advertisement as the moderation
// pipeline sees it. SellerVerified is not stored on the advertisement row;
// it is joined from the seller record on every read.
type Listing struct {
	ID             int64  `json:"id"`
	SellerID       int64  `json:"seller_id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Category       int    `json:"category"`
	ImagesQty      int    `json:"images_qty"`
	SellerVerified bool   `json:"is_verified_seller"`
}

// Validate checks if the Listing has valid data.
// Returns an error if any field fails validation.
func (l *Listing) Validate() error {
	if l.SellerID <= 0 {
		return ErrListingInvalidSeller
	}
	if l.Name == "" {
		return ErrListingEmptyName
	}
	if l.Category < 0 || l.ImagesQty < 0 {
		return ErrListingNegativeField
	}
	return nil
}
