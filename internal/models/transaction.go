package models

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeInstallment TransactionType = "installment"
	TransactionTypeFullPayment TransactionType = "full_payment"
	TransactionTypeWithdrawal  TransactionType = "withdrawal"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

const (
	PaymentMethodWallet = "wallet"
	PaymentMethodCrypto = "crypto"
)

// Transaction is one immutable ledger entry recording a financial event.
// Rows are append-only: nothing in the codebase updates or deletes them.
type Transaction struct {
	ID            string          `gorm:"primarykey;type:varchar(36)"`
	CreatedAt     time.Time       `gorm:"precision:3"` // Millisecond precision
	UserID        string          `gorm:"type:varchar(36);index;not null"`
	ContractID    string          `gorm:"type:varchar(36);index;default:''"`
	InstallmentID string          `gorm:"type:varchar(64);default:''"`
	ListingID     string          `gorm:"type:varchar(36);default:''"`
	ListingTitle  string          `gorm:"type:varchar(255)"`
	Type          TransactionType `gorm:"type:varchar(30);index;not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Method        string          `gorm:"type:varchar(20)"`
	Status        TransactionStatus `gorm:"type:varchar(20);index;default:'completed'"`
	Description   string          `gorm:"type:text"`
	CryptoHash    string          `gorm:"type:varchar(100)"` // simulated on-chain reference
	Hash          string          `gorm:"type:varchar(64);default:''"` // HMAC SHA256
}

// GenerateHash generates a tamper-proof hash for the transaction
func (t *Transaction) GenerateHash(secret string) string {
	data := fmt.Sprintf("%s|%d|%s|%s|%s|%s|%s|%s",
		t.UserID, t.CreatedAt.UnixNano(), t.Amount.String(),
		t.BalanceBefore.String(), t.BalanceAfter.String(),
		t.Type, t.ContractID, t.InstallmentID)

	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
