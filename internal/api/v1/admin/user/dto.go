package user

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Owujuah/apex-living/internal/models"
)

type UpdateUserRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,max=100"`
	Password    *string `json:"password" binding:"omitempty,min=8"`
	Role        *string `json:"role" binding:"omitempty,oneof=buyer seller admin"`
}

type UserResponse struct {
	ID                  string          `json:"id"`
	Email               string          `json:"email"`
	DisplayName         string          `json:"display_name"`
	Role                string          `json:"role"`
	DepositBalance      decimal.Decimal `json:"deposit_balance"`
	ActiveContracts     int             `json:"active_contracts"`
	TotalInvested       decimal.Decimal `json:"total_invested"`
	PendingInstallments int             `json:"pending_installments"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:                  u.ID,
		Email:               u.Email,
		DisplayName:         u.DisplayName,
		Role:                u.Role,
		DepositBalance:      u.DepositBalance,
		ActiveContracts:     u.ActiveContracts,
		TotalInvested:       u.TotalInvested,
		PendingInstallments: u.PendingInstallments,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}
