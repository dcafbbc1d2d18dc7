package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ContractStatus string

const (
	ContractStatusPending   ContractStatus = "pending"
	ContractStatusActive    ContractStatus = "active"
	ContractStatusCompleted ContractStatus = "completed"
)

type PaymentType string

const (
	PaymentTypeFull        PaymentType = "full"
	PaymentTypeInstallment PaymentType = "installment"
)

type InstallmentStatus string

const (
	InstallmentStatusUpcoming InstallmentStatus = "upcoming"
	InstallmentStatusPending  InstallmentStatus = "pending"
	InstallmentStatusPaid     InstallmentStatus = "paid"
)

// Installment is one scheduled partial payment of a contract. The whole
// schedule is materialized at plan-creation time and stored on the contract
// row as a JSON column, mirroring how the schedule travels with the
// contract document.
type Installment struct {
	ID      string            `json:"id"`
	Number  int               `json:"number"`
	Amount  decimal.Decimal   `json:"amount"`
	DueDate string            `json:"dueDate"` // YYYY-MM-DD
	Status  InstallmentStatus `json:"status"`
	PaidAt  string            `json:"paidAt,omitempty"` // YYYY-MM-DD, set only when paid
}

// InstallmentList serializes the schedule to a JSON column.
type InstallmentList []Installment

// Value implements the driver.Valuer interface
func (l InstallmentList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface
func (l *InstallmentList) Scan(value interface{}) error {
	if value == nil {
		*l = InstallmentList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("failed to unmarshal installment list value:", value))
	}

	if len(bytes) == 0 {
		*l = InstallmentList{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// Contract records a buyer's commitment to purchase a listing and tracks
// payment progress against it.
type Contract struct {
	ID           string `gorm:"primarykey;type:varchar(36)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	BuyerID      string          `gorm:"type:varchar(36);index;not null"`
	ListingID    string          `gorm:"type:varchar(36);index;not null"`
	ListingTitle string          `gorm:"type:varchar(255)"`
	ListingKind  ListingKind     `gorm:"type:varchar(20)"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	AmountPaid   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	Status       ContractStatus  `gorm:"type:varchar(20);index;not null;default:'pending'"`
	PaymentType  PaymentType     `gorm:"type:varchar(20)"`
	Installments InstallmentList `gorm:"type:json"`
	LastPaymentAt *time.Time
	Version      int `gorm:"default:1"`
}

// Installment returns the schedule entry with the given id, or nil.
func (c *Contract) Installment(id string) *Installment {
	for i := range c.Installments {
		if c.Installments[i].ID == id {
			return &c.Installments[i]
		}
	}
	return nil
}

// UnpaidInstallments counts schedule entries not yet paid.
func (c *Contract) UnpaidInstallments() int {
	n := 0
	for _, inst := range c.Installments {
		if inst.Status != InstallmentStatusPaid {
			n++
		}
	}
	return n
}

// PaidTotal sums the amounts of paid installments. The invariant
// AmountPaid == PaidTotal holds for installment contracts after every
// mutation.
func (c *Contract) PaidTotal() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range c.Installments {
		if inst.Status == InstallmentStatusPaid {
			total = total.Add(inst.Amount)
		}
	}
	return total
}
