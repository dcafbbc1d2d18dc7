package wallet

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Owujuah/apex-living/internal/models"
)

type DepositRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

type BalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

type DepositAddressResponse struct {
	Address string `json:"address"`
	Network string `json:"network"`
}

type DepositMethodResponse struct {
	UUID   string `json:"uuid"`
	Name   string `json:"name"`
	Driver string `json:"driver"`
}

type TransactionResponse struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Method        string          `json:"method"`
	Status        string          `json:"status"`
	ContractID    string          `json:"contract_id,omitempty"`
	InstallmentID string          `json:"installment_id,omitempty"`
	ListingTitle  string          `json:"listing_title,omitempty"`
	Description   string          `json:"description,omitempty"`
	CryptoHash    string          `json:"crypto_hash,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Total        int                   `json:"total"`
}

func toTransactionResponse(t *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID,
		Type:          string(t.Type),
		Amount:        t.Amount,
		BalanceBefore: t.BalanceBefore,
		BalanceAfter:  t.BalanceAfter,
		Method:        t.Method,
		Status:        string(t.Status),
		ContractID:    t.ContractID,
		InstallmentID: t.InstallmentID,
		ListingTitle:  t.ListingTitle,
		Description:   t.Description,
		CryptoHash:    t.CryptoHash,
		CreatedAt:     t.CreatedAt,
	}
}
