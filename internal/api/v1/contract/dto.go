package contract

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Owujuah/apex-living/internal/models"
)

type ReserveRequest struct {
	ListingID string `json:"listing_id" binding:"required"`
}

type PurchaseFullRequest struct {
	Method string `json:"method" binding:"omitempty,oneof=wallet crypto"`
}

type PurchaseInstallmentRequest struct {
	Periods int    `json:"periods" binding:"required,min=1,max=360"`
	Method  string `json:"method" binding:"omitempty,oneof=wallet crypto"`
}

type PayInstallmentRequest struct {
	Method string `json:"method" binding:"omitempty,oneof=wallet crypto"`
}

type InstallmentResponse struct {
	ID      string          `json:"id"`
	Number  int             `json:"number"`
	Amount  decimal.Decimal `json:"amount"`
	DueDate string          `json:"due_date"`
	Status  string          `json:"status"`
	PaidAt  string          `json:"paid_at,omitempty"`
}

type ContractResponse struct {
	ID            string                `json:"id"`
	BuyerID       string                `json:"buyer_id"`
	ListingID     string                `json:"listing_id"`
	ListingTitle  string                `json:"listing_title"`
	ListingKind   string                `json:"listing_kind"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	AmountPaid    decimal.Decimal       `json:"amount_paid"`
	Status        string                `json:"status"`
	PaymentType   string                `json:"payment_type,omitempty"`
	Installments  []InstallmentResponse `json:"installments,omitempty"`
	LastPaymentAt *time.Time            `json:"last_payment_at,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

type ContractListResponse struct {
	Contracts []ContractResponse `json:"contracts"`
	Total     int                `json:"total"`
}

func toResponse(ct *models.Contract) ContractResponse {
	installments := make([]InstallmentResponse, 0, len(ct.Installments))
	for _, inst := range ct.Installments {
		installments = append(installments, InstallmentResponse{
			ID:      inst.ID,
			Number:  inst.Number,
			Amount:  inst.Amount,
			DueDate: inst.DueDate,
			Status:  string(inst.Status),
			PaidAt:  inst.PaidAt,
		})
	}
	return ContractResponse{
		ID:            ct.ID,
		BuyerID:       ct.BuyerID,
		ListingID:     ct.ListingID,
		ListingTitle:  ct.ListingTitle,
		ListingKind:   string(ct.ListingKind),
		TotalAmount:   ct.TotalAmount,
		AmountPaid:    ct.AmountPaid,
		Status:        string(ct.Status),
		PaymentType:   string(ct.PaymentType),
		Installments:  installments,
		LastPaymentAt: ct.LastPaymentAt,
		CreatedAt:     ct.CreatedAt,
	}
}
