package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Owujuah/apex-living/internal/models"
)

func TestCreateListing(t *testing.T) {
	db := setupTestDB(t)
	svc := NewListingService(db, nil, nil)
	ctx := context.Background()

	listing, err := svc.CreateListing(ctx, CreateListingInput{
		Kind:     models.ListingKindVehicle,
		Price:    decimal.RequireFromString("24000"),
		SellerID: "seller-1",
		Brand:    "Toyota",
		Model:    "Land Cruiser",
		Year:     2021,
		Mileage:  42000,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ListingStatusOpen, listing.Status)
	assert.Equal(t, "Toyota Land Cruiser", listing.Label())

	_, err = svc.CreateListing(ctx, CreateListingInput{
		Kind:  models.ListingKindProperty,
		Price: decimal.Zero,
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestUpdateListing_GuardsStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := NewListingService(db, nil, nil)
	ctx := context.Background()

	listing := seedListing(t, db, "50000")

	// Lifecycle fields cannot be written through the edit path.
	updated, err := svc.UpdateListing(ctx, listing.ID, map[string]interface{}{
		"title":       "Sunset Villa II",
		"status":      models.ListingStatusSold,
		"reserved_by": "someone",
	})
	require.NoError(t, err)
	assert.Equal(t, "Sunset Villa II", updated.Title)
	assert.Equal(t, models.ListingStatusOpen, updated.Status)
	assert.Empty(t, updated.ReservedBy)

	// Reserved listings are frozen.
	require.NoError(t, db.Model(&models.Listing{}).Where("id = ?", listing.ID).
		Update("status", models.ListingStatusReserved).Error)
	_, err = svc.UpdateListing(ctx, listing.ID, map[string]interface{}{"title": "Nope"})
	assert.ErrorIs(t, err, ErrListingNotOpen)

	_, err = svc.UpdateListing(ctx, "missing", map[string]interface{}{"title": "x"})
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestDeleteListing(t *testing.T) {
	db := setupTestDB(t)
	svc := NewListingService(db, nil, nil)
	ctx := context.Background()

	open := seedListing(t, db, "50000")
	require.NoError(t, svc.DeleteListing(ctx, open.ID))

	var count int64
	db.Model(&models.Listing{}).Where("id = ?", open.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	reserved := seedListing(t, db, "50000")
	require.NoError(t, db.Model(&models.Listing{}).Where("id = ?", reserved.ID).
		Update("status", models.ListingStatusReserved).Error)
	assert.ErrorIs(t, svc.DeleteListing(ctx, reserved.ID), ErrListingNotOpen)

	assert.ErrorIs(t, svc.DeleteListing(ctx, "missing"), ErrListingNotFound)
}

func TestFindListings_Filters(t *testing.T) {
	db := setupTestDB(t)
	svc := NewListingService(db, nil, nil)
	ctx := context.Background()

	seedListing(t, db, "10000")
	seedListing(t, db, "50000")
	expensive := seedListing(t, db, "90000")
	require.NoError(t, db.Model(&models.Listing{}).Where("id = ?", expensive.ID).
		Update("kind", models.ListingKindVehicle).Error)

	kind := models.ListingKindProperty
	listings, total, err := svc.FindListings(ctx, ListingFilter{Kind: &kind})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, listings, 2)

	minPrice := decimal.RequireFromString("40000")
	listings, total, err = svc.FindListings(ctx, ListingFilter{MinPrice: &minPrice})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	maxPrice := decimal.RequireFromString("40000")
	listings, total, err = svc.FindListings(ctx, ListingFilter{MinPrice: &minPrice, MaxPrice: &maxPrice})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, listings)

	listings, total, err = svc.FindListings(ctx, ListingFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, listings, 1)
}
