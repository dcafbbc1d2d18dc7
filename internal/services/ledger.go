package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Owujuah/apex-living/internal/models"
)

// appendTransaction writes one immutable ledger entry inside the caller's
// transaction. The HMAC hash seals the row against after-the-fact edits.
func appendTransaction(tx *gorm.DB, secret string, t *models.Transaction) error {
	t.ID = uuid.New().String()
	t.CreatedAt = time.Now()
	if t.Status == "" {
		t.Status = models.TransactionStatusCompleted
	}
	t.Hash = t.GenerateHash(secret)
	return tx.Create(t).Error
}

// debit takes amount off the user's deposit balance, failing without
// mutation when the balance does not cover it. The caller persists the user
// row and records the paired ledger entry in the same transaction.
func debit(user *models.User, amount decimal.Decimal) error {
	if user.DepositBalance.LessThan(amount) {
		return ErrInsufficientBalance
	}
	user.DepositBalance = user.DepositBalance.Sub(amount)
	return nil
}

// recalcUserCounters rederives the user's aggregate counters from the
// contracts on record and sets them on the struct. It runs inside the same
// transaction that mutated the underlying rows, so the counters can never
// drift from what they are derived from.
func recalcUserCounters(tx *gorm.DB, user *models.User) error {
	var contracts []models.Contract
	if err := tx.Where("buyer_id = ?", user.ID).Find(&contracts).Error; err != nil {
		return err
	}

	active := 0
	pending := 0
	invested := decimal.Zero
	for _, c := range contracts {
		if c.Status == models.ContractStatusActive {
			active++
		}
		if c.Status != models.ContractStatusCompleted {
			pending += c.UnpaidInstallments()
		}
		invested = invested.Add(c.AmountPaid)
	}

	user.ActiveContracts = active
	user.PendingInstallments = pending
	user.TotalInvested = invested
	return nil
}

// saveUser persists the user row, bumping the version counter.
func saveUser(tx *gorm.DB, user *models.User) error {
	user.Version++
	user.UpdatedAt = time.Now()
	return tx.Save(user).Error
}

// refreshPlatformStats recomputes the global stats snapshot from scratch
// and upserts the well-known row. Missing numeric data reads as zero; the
// aggregation itself never fails on inconsistent records.
func refreshPlatformStats(tx *gorm.DB) (*models.PlatformStats, error) {
	var users []models.User
	if err := tx.Find(&users).Error; err != nil {
		return nil, err
	}
	var contracts []models.Contract
	if err := tx.Find(&contracts).Error; err != nil {
		return nil, err
	}
	var listings []models.Listing
	if err := tx.Find(&listings).Error; err != nil {
		return nil, err
	}

	stats := &models.PlatformStats{
		ID:         "global",
		TotalUsers: int64(len(users)),
		UpdatedAt:  time.Now(),
	}

	for _, u := range users {
		stats.TotalDeposits = stats.TotalDeposits.Add(u.DepositBalance)
		if u.DepositBalance.GreaterThan(decimal.Zero) {
			stats.ActiveUsers++
		}
	}

	for _, c := range contracts {
		stats.TotalRevenue = stats.TotalRevenue.Add(c.AmountPaid)
		stats.TotalInvested = stats.TotalInvested.Add(c.AmountPaid)
		if c.Status == models.ContractStatusActive {
			stats.ActiveContracts++
		}
		if c.Status != models.ContractStatusCompleted {
			stats.PendingPayments += int64(c.UnpaidInstallments())
		}
	}

	priceSum := decimal.Zero
	for _, l := range listings {
		stats.TotalListings++
		switch l.Kind {
		case models.ListingKindVehicle:
			stats.TotalVehicles++
		default:
			stats.TotalProperties++
		}
		priceSum = priceSum.Add(l.Price)
	}
	if stats.TotalListings > 0 {
		stats.AveragePrice = priceSum.Div(decimal.NewFromInt(stats.TotalListings)).Round(2)
	}

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
