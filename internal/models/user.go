package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

type User struct {
	ID          string `gorm:"primarykey;type:varchar(36)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Email       string `gorm:"uniqueIndex;not null"`
	DisplayName string `gorm:"type:varchar(100)"`
	Password    string `gorm:"not null"`
	Role        string `gorm:"not null;default:'buyer'"`

	// Denormalized bookkeeping counters. These are only written inside the
	// same database transaction that mutates the contracts/transactions they
	// derive from, never as an independently timed second write.
	DepositBalance      decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	ActiveContracts     int             `gorm:"not null;default:0"`
	TotalInvested       decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	PendingInstallments int             `gorm:"not null;default:0"`

	Version int `gorm:"default:1"`
}
