package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionListItem struct {
	ID            string          `json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	UserID        string          `json:"user_id"`
	ContractID    string          `json:"contract_id,omitempty"`
	InstallmentID string          `json:"installment_id,omitempty"`
	ListingTitle  string          `json:"listing_title,omitempty"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Method        string          `json:"method"`
	Status        string          `json:"status"`
	CryptoHash    string          `json:"crypto_hash,omitempty"`
	Hash          string          `json:"hash"`
}

type TransactionListResponse struct {
	Transactions []TransactionListItem `json:"transactions"`
	Total        int64                 `json:"total"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
}
