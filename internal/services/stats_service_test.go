package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Owujuah/apex-living/internal/models"
)

func TestUserStats(t *testing.T) {
	db := setupTestDB(t)
	wallet := NewWalletService(db, nil, nil, testSecret)
	contracts := NewContractService(db, nil, nil, testSecret)
	stats := NewStatsService(db, nil)
	ctx := context.Background()

	buyer := seedUser(t, db, "0")
	listing := seedListing(t, db, "50000")

	_, err := wallet.Deposit(ctx, buyer.ID, decimal.RequireFromString("15000"), "")
	require.NoError(t, err)
	reserved, err := contracts.Reserve(ctx, listing.ID, buyer.ID)
	require.NoError(t, err)
	_, err = contracts.PurchaseInstallment(ctx, reserved.ID, buyer.ID, 5, models.PaymentMethodWallet)
	require.NoError(t, err)

	userStats, err := stats.UserStats(ctx, buyer.ID)
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("10000").Equal(userStats.TotalInvested))
	assert.Equal(t, int64(1), userStats.ActiveContracts)
	assert.Equal(t, int64(4), userStats.PendingPayments)
	assert.True(t, decimal.RequireFromString("5000").Equal(userStats.TotalDeposits))
}

func TestUserStats_UnknownUser(t *testing.T) {
	db := setupTestDB(t)
	stats := NewStatsService(db, nil)

	_, err := stats.UserStats(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPlatformStats_RefreshedByWrites(t *testing.T) {
	db := setupTestDB(t)
	rdb := setupTestRedis(t)
	stats := NewStatsService(db, rdb)
	wallet := NewWalletService(db, nil, stats, testSecret)
	contracts := NewContractService(db, nil, stats, testSecret)
	ctx := context.Background()

	buyer := seedUser(t, db, "0")
	seedUser(t, db, "0") // a second, inactive user
	listing := seedListing(t, db, "50000")
	seedListing(t, db, "30000")

	_, err := wallet.Deposit(ctx, buyer.ID, decimal.RequireFromString("15000"), "")
	require.NoError(t, err)
	reserved, err := contracts.Reserve(ctx, listing.ID, buyer.ID)
	require.NoError(t, err)
	_, err = contracts.PurchaseInstallment(ctx, reserved.ID, buyer.ID, 5, models.PaymentMethodWallet)
	require.NoError(t, err)

	snapshot, err := stats.PlatformStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), snapshot.TotalUsers)
	assert.Equal(t, int64(1), snapshot.ActiveUsers)
	assert.Equal(t, int64(2), snapshot.TotalListings)
	assert.Equal(t, int64(2), snapshot.TotalProperties)
	assert.Equal(t, int64(0), snapshot.TotalVehicles)
	assert.Equal(t, int64(1), snapshot.ActiveContracts)
	assert.Equal(t, int64(4), snapshot.PendingPayments)
	assert.True(t, decimal.RequireFromString("10000").Equal(snapshot.TotalInvested))
	assert.True(t, decimal.RequireFromString("5000").Equal(snapshot.TotalDeposits))
	assert.True(t, decimal.RequireFromString("40000").Equal(snapshot.AveragePrice))
}

func TestPlatformStats_ServedFromCache(t *testing.T) {
	db := setupTestDB(t)
	rdb := setupTestRedis(t)
	stats := NewStatsService(db, rdb)
	ctx := context.Background()

	seedUser(t, db, "100")

	first, err := stats.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.TotalUsers)

	// A new user does not show up until the cache is gone: reads are
	// served from the snapshot, not recomputed.
	seedUser(t, db, "100")

	cached, err := stats.PlatformStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cached.TotalUsers)

	refreshed, err := stats.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), refreshed.TotalUsers)
}

func TestPlatformStats_EmptyDatabase(t *testing.T) {
	db := setupTestDB(t)
	stats := NewStatsService(db, nil)

	snapshot, err := stats.PlatformStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), snapshot.TotalUsers)
	assert.Equal(t, int64(0), snapshot.TotalListings)
	assert.True(t, snapshot.AveragePrice.IsZero())
}
