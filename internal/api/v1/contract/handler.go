package contract

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Owujuah/apex-living/internal/middleware"
	"github.com/Owujuah/apex-living/internal/models"
	"github.com/Owujuah/apex-living/internal/services"
	"github.com/Owujuah/apex-living/internal/utils"
	"github.com/Owujuah/apex-living/pkg/logger"
)

type Handler struct {
	contracts *services.ContractService
}

func NewHandler(contracts *services.ContractService) *Handler {
	return &Handler{contracts: contracts}
}

// Reserve takes an open listing off the market and opens a pending
// contract for the caller.
func (h *Handler) Reserve(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Authentication required"))
		return
	}

	var req ReserveRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	contract, err := h.contracts.Reserve(c.Request.Context(), req.ListingID, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrListingNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Listing not found"))
		case errors.Is(err, services.ErrAlreadyReserved):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, "Listing is already reserved"))
		case errors.Is(err, services.ErrAlreadySold):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, "Listing is already sold"))
		default:
			logger.Error("failed to reserve listing", zap.Error(err), zap.String("listing_id", req.ListingID), zap.String("buyer_id", user.ID))
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to reserve listing"))
		}
		return
	}
	c.JSON(http.StatusCreated, utils.NewResponse(http.StatusCreated, "Listing reserved successfully", toResponse(contract)))
}

// PurchaseFull settles a pending contract with a single payment.
func (h *Handler) PurchaseFull(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Authentication required"))
		return
	}

	var req PurchaseFullRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	contract, err := h.contracts.PurchaseFull(c.Request.Context(), c.Param("id"), user.ID, paymentMethod(req.Method))
	if err != nil {
		h.renderPaymentError(c, err, "full payment", user.ID)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Purchase completed successfully", toResponse(contract)))
}

// PurchaseInstallment activates a pending contract on an installment
// plan, paying the first installment immediately.
func (h *Handler) PurchaseInstallment(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Authentication required"))
		return
	}

	var req PurchaseInstallmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	contract, err := h.contracts.PurchaseInstallment(c.Request.Context(), c.Param("id"), user.ID, req.Periods, paymentMethod(req.Method))
	if err != nil {
		if errors.Is(err, services.ErrInvalidPeriodCount) {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid number of installment periods"))
			return
		}
		h.renderPaymentError(c, err, "installment purchase", user.ID)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Installment plan activated successfully", toResponse(contract)))
}

// PayInstallment settles one pending installment of an active contract.
func (h *Handler) PayInstallment(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Authentication required"))
		return
	}

	var req PayInstallmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	contract, err := h.contracts.PayInstallment(c.Request.Context(), c.Param("id"), c.Param("instId"), user.ID, paymentMethod(req.Method))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInstallmentNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Installment not found"))
		case errors.Is(err, services.ErrAlreadyPaid):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, "Installment has already been paid"))
		default:
			h.renderPaymentError(c, err, "installment payment", user.ID)
		}
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Installment paid successfully", toResponse(contract)))
}

// Get returns one contract. Buyers can only see their own contracts.
func (h *Handler) Get(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Authentication required"))
		return
	}

	contract, err := h.contracts.GetContract(c.Request.Context(), c.Param("id"), user.ID, user.Role == models.RoleAdmin)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrContractNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Contract not found"))
		case errors.Is(err, services.ErrNotContractOwner):
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "You do not own this contract"))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to retrieve contract"))
		}
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Contract retrieved successfully", toResponse(contract)))
}

// List returns all of the caller's contracts, newest first.
func (h *Handler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Authentication required"))
		return
	}

	contracts, err := h.contracts.ListUserContracts(c.Request.Context(), user.ID)
	if err != nil {
		logger.Error("failed to list contracts", zap.Error(err), zap.String("buyer_id", user.ID))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to retrieve contracts"))
		return
	}

	responses := make([]ContractResponse, 0, len(contracts))
	for i := range contracts {
		responses = append(responses, toResponse(&contracts[i]))
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Contracts retrieved successfully", ContractListResponse{
		Contracts: responses,
		Total:     len(responses),
	}))
}

func (h *Handler) renderPaymentError(c *gin.Context, err error, action, userID string) {
	switch {
	case errors.Is(err, services.ErrContractNotFound):
		c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Contract not found"))
	case errors.Is(err, services.ErrNotContractOwner):
		c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "You do not own this contract"))
	case errors.Is(err, services.ErrContractNotPending):
		c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, "Contract is not awaiting payment setup"))
	case errors.Is(err, services.ErrInsufficientBalance):
		c.JSON(http.StatusPaymentRequired, utils.NewErrorResponse(http.StatusPaymentRequired, "Insufficient wallet balance"))
	default:
		logger.Error("payment operation failed", zap.Error(err), zap.String("action", action), zap.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Payment could not be processed"))
	}
}

func paymentMethod(method string) string {
	if method == "" {
		return models.PaymentMethodWallet
	}
	return method
}
