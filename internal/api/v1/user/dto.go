package user

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Owujuah/apex-living/internal/models"
)

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,max=100"`
	Password    *string `json:"password" binding:"omitempty,min=8"`
}

type ProfileResponse struct {
	ID                  string          `json:"id"`
	Email               string          `json:"email"`
	DisplayName         string          `json:"display_name"`
	Role                string          `json:"role"`
	DepositBalance      decimal.Decimal `json:"deposit_balance"`
	ActiveContracts     int             `json:"active_contracts"`
	TotalInvested       decimal.Decimal `json:"total_invested"`
	PendingInstallments int             `json:"pending_installments"`
	CreatedAt           time.Time       `json:"created_at"`
}

func toProfileResponse(u *models.User) ProfileResponse {
	return ProfileResponse{
		ID:                  u.ID,
		Email:               u.Email,
		DisplayName:         u.DisplayName,
		Role:                u.Role,
		DepositBalance:      u.DepositBalance,
		ActiveContracts:     u.ActiveContracts,
		TotalInvested:       u.TotalInvested,
		PendingInstallments: u.PendingInstallments,
		CreatedAt:           u.CreatedAt,
	}
}
