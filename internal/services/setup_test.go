package services

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Owujuah/apex-living/internal/models"
)

const testSecret = "test-ledger-secret"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	// A single connection keeps the shared in-memory database from
	// tripping over itself under concurrent test goroutines.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	allModels := []interface{}{
		&models.User{},
		&models.Listing{},
		&models.Contract{},
		&models.Transaction{},
		&models.PlatformStats{},
		&models.GatewayConfig{},
	}
	db.Migrator().DropTable(allModels...)
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func seedUser(t *testing.T, db *gorm.DB, balance string) *models.User {
	t.Helper()

	user := &models.User{
		ID:             uuid.New().String(),
		Email:          uuid.New().String() + "@test.local",
		DisplayName:    "Test Buyer",
		Password:       "irrelevant",
		Role:           models.RoleBuyer,
		DepositBalance: decimal.RequireFromString(balance),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func seedListing(t *testing.T, db *gorm.DB, price string) *models.Listing {
	t.Helper()

	listing := &models.Listing{
		ID:       uuid.New().String(),
		Kind:     models.ListingKindProperty,
		Title:    "Sunset Villa",
		Location: "Palm Coast",
		Price:    decimal.RequireFromString(price),
		Status:   models.ListingStatusOpen,
		SellerID: uuid.New().String(),
		Bedrooms: 4,
	}
	if err := db.Create(listing).Error; err != nil {
		t.Fatalf("failed to seed listing: %v", err)
	}
	return listing
}
