package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Owujuah/apex-living/internal/services"
	"github.com/Owujuah/apex-living/internal/utils"
	"github.com/Owujuah/apex-living/pkg/logger"
)

type Handler struct {
	users  *services.UserService
	wallet *services.WalletService
}

func NewHandler(users *services.UserService, wallet *services.WalletService) *Handler {
	return &Handler{users: users, wallet: wallet}
}

// List returns a paginated page of all users.
func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	users, total, err := h.users.FindUsers(c.Request.Context(), page, limit)
	if err != nil {
		logger.Error("failed to list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to retrieve users"))
		return
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, toUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Users retrieved successfully", UserListResponse{
		Users: responses,
		Total: total,
		Page:  page,
		Limit: limit,
	}))
}

// Get returns one user by id.
func (h *Handler) Get(c *gin.Context) {
	user, err := h.users.FindUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "User not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to retrieve user"))
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("User retrieved successfully", toUserResponse(&user)))
}

// Update applies admin edits to a user's profile or role.
func (h *Handler) Update(c *gin.Context) {
	var req UpdateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if req.Password != nil {
		updates["password"] = *req.Password
	}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "No fields to update"))
		return
	}

	userID := c.Param("id")
	updated, err := h.users.UpdateUser(c.Request.Context(), userID, updates)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "User not found"))
		case errors.Is(err, services.ErrOptimisticLock):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, "User was modified concurrently, please retry"))
		default:
			logger.Error("failed to update user", zap.Error(err), zap.String("user_id", userID))
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to update user"))
		}
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("User updated successfully", toUserResponse(updated)))
}

// Ledger audits a user's transaction history: recomputes the balance
// from the ledger and reports rows whose integrity hash does not match.
func (h *Handler) Ledger(c *gin.Context) {
	userID := c.Param("id")
	report, err := h.wallet.VerifyLedger(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "User not found"))
			return
		}
		logger.Error("ledger audit failed", zap.Error(err), zap.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to audit ledger"))
		return
	}
	if !report.Consistent {
		logger.Warn("ledger inconsistency detected",
			zap.String("user_id", userID),
			zap.String("stored", report.StoredBalance.String()),
			zap.String("computed", report.ComputedBalance.String()),
			zap.Int("tampered_rows", len(report.TamperedRows)))
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Ledger audit completed", report))
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("", h.List)
	router.GET("/:id", h.Get)
	router.PUT("/:id", h.Update)
	router.GET("/:id/ledger", h.Ledger)
}
