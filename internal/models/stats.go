package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlatformStats is the cached platform-wide aggregation, stored as a single
// well-known row keyed "global" and refreshed after every mutating
// operation.
type PlatformStats struct {
	ID              string          `gorm:"primarykey;type:varchar(20)" json:"-"`
	TotalUsers      int64           `json:"totalUsers"`
	ActiveUsers     int64           `json:"activeUsers"`
	TotalListings   int64           `json:"totalListings"`
	TotalProperties int64           `json:"totalProperties"`
	TotalVehicles   int64           `json:"totalVehicles"`
	TotalRevenue    decimal.Decimal `gorm:"type:decimal(20,2)" json:"totalRevenue"`
	TotalDeposits   decimal.Decimal `gorm:"type:decimal(20,2)" json:"totalDeposits"`
	TotalInvested   decimal.Decimal `gorm:"type:decimal(20,2)" json:"totalInvested"`
	AveragePrice    decimal.Decimal `gorm:"type:decimal(20,2)" json:"averagePrice"`
	ActiveContracts int64           `json:"activeContracts"`
	PendingPayments int64           `json:"pendingPayments"`
	UpdatedAt       time.Time       `json:"lastUpdated"`
}

// UserStats is the per-user dashboard aggregation, computed on demand from
// the user's contracts and transactions.
type UserStats struct {
	TotalDeposits   decimal.Decimal `json:"totalDeposits"`
	ActiveContracts int64           `json:"activeContracts"`
	TotalInvested   decimal.Decimal `json:"totalInvested"`
	PendingPayments int64           `json:"pendingPayments"`
}
