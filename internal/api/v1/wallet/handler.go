package wallet

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Owujuah/apex-living/internal/middleware"
	"github.com/Owujuah/apex-living/internal/services"
	"github.com/Owujuah/apex-living/internal/utils"
	"github.com/Owujuah/apex-living/pkg/logger"
)

type Handler struct {
	wallet   *services.WalletService
	gateways *services.GatewayService
}

func NewHandler(wallet *services.WalletService, gateways *services.GatewayService) *Handler {
	return &Handler{wallet: wallet, gateways: gateways}
}

// Deposit credits the caller's wallet directly. This is the manual
// top-up path; gateway settlements arrive through Notify.
func (h *Handler) Deposit(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Authentication required"))
		return
	}

	var req DepositRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	transaction, err := h.wallet.Deposit(c.Request.Context(), user.ID, req.Amount, "")
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Deposit amount must be greater than zero"))
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "User not found"))
		default:
			logger.Error("deposit failed", zap.Error(err), zap.String("user_id", user.ID))
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to process deposit"))
		}
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Deposit completed successfully", toTransactionResponse(transaction)))
}

// Balance returns the caller's wallet balance replayed from the ledger.
func (h *Handler) Balance(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Authentication required"))
		return
	}

	balance, err := h.wallet.Balance(c.Request.Context(), user.ID)
	if err != nil {
		logger.Error("failed to compute balance", zap.Error(err), zap.String("user_id", user.ID))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to retrieve balance"))
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Balance retrieved successfully", BalanceResponse{Balance: balance}))
}

// Transactions lists the caller's ledger history, newest first.
func (h *Handler) Transactions(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Authentication required"))
		return
	}

	transactions, err := h.wallet.Transactions(c.Request.Context(), user.ID)
	if err != nil {
		logger.Error("failed to list transactions", zap.Error(err), zap.String("user_id", user.ID))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to retrieve transactions"))
		return
	}

	responses := make([]TransactionResponse, 0, len(transactions))
	for i := range transactions {
		responses = append(responses, toTransactionResponse(&transactions[i]))
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Transactions retrieved successfully", TransactionListResponse{
		Transactions: responses,
		Total:        len(responses),
	}))
}

// DepositAddress returns the platform address the caller sends USDT to.
func (h *Handler) DepositAddress(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Authentication required"))
		return
	}

	driver, err := h.gateways.DefaultDriver(c.Request.Context())
	if err != nil {
		logger.Error("no deposit gateway available", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, utils.NewErrorResponse(http.StatusServiceUnavailable, "Deposit service temporarily unavailable"))
		return
	}

	address, err := driver.DepositAddress(user.ID)
	if err != nil {
		logger.Error("failed to derive deposit address", zap.Error(err), zap.String("user_id", user.ID))
		c.JSON(http.StatusServiceUnavailable, utils.NewErrorResponse(http.StatusServiceUnavailable, "Deposit service temporarily unavailable"))
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Deposit address retrieved successfully", DepositAddressResponse{
		Address: address,
		Network: "TRC20",
	}))
}

// DepositMethods lists the enabled deposit gateways.
func (h *Handler) DepositMethods(c *gin.Context) {
	gateways, err := h.gateways.GetEnabledGateways(c.Request.Context())
	if err != nil {
		logger.Error("failed to list deposit methods", zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to retrieve deposit methods"))
		return
	}

	methods := make([]DepositMethodResponse, 0, len(gateways))
	for _, g := range gateways {
		methods = append(methods, DepositMethodResponse{
			UUID:   g.UUID,
			Name:   g.Name,
			Driver: g.Driver,
		})
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Deposit methods retrieved successfully", methods))
}

// Notify handles gateway settlement callbacks. The route is public; the
// driver's signature check is the authentication.
func (h *Handler) Notify(c *gin.Context) {
	var params map[string]interface{}
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid callback payload"))
		return
	}

	driver, err := h.gateways.DriverFor(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrGatewayNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Gateway not found"))
		case errors.Is(err, services.ErrGatewayDisabled):
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "Gateway is disabled"))
		default:
			logger.Error("failed to load gateway driver", zap.Error(err), zap.String("gateway", c.Param("uuid")))
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to process callback"))
		}
		return
	}

	valid, userID, reference, err := driver.VerifyNotify(params)
	if !valid || err != nil {
		logger.Warn("rejected gateway callback",
			zap.String("gateway", c.Param("uuid")),
			zap.String("user_id", userID),
			zap.Error(err))
		c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "Invalid signature"))
		return
	}

	amountStr, _ := params["amount"].(string)
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid amount in callback"))
		return
	}

	if _, err := h.wallet.Deposit(c.Request.Context(), userID, amount, reference); err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateDeposit):
			// Replayed callback: acknowledge so the gateway stops
			// retrying, but credit nothing.
			logger.Warn("duplicate gateway callback ignored",
				zap.String("user_id", userID),
				zap.String("reference", reference))
			c.String(http.StatusOK, "success")
		case errors.Is(err, services.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid amount in callback"))
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "User not found"))
		default:
			logger.Error("failed to settle deposit", zap.Error(err), zap.String("user_id", userID), zap.String("reference", reference))
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to process callback"))
		}
		return
	}

	logger.Info("gateway deposit settled",
		zap.String("user_id", userID),
		zap.String("reference", reference),
		zap.String("amount", amount.String()))
	c.String(http.StatusOK, "success")
}
