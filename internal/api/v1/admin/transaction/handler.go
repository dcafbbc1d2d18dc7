package transaction

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Owujuah/apex-living/internal/models"
	"github.com/Owujuah/apex-living/internal/services"
	"github.com/Owujuah/apex-living/internal/utils"
	"github.com/Owujuah/apex-living/pkg/logger"
)

type Handler struct {
	transactions *services.TransactionService
}

func NewHandler(transactions *services.TransactionService) *Handler {
	return &Handler{transactions: transactions}
}

// List returns a paginated, filtered page of ledger entries.
func (h *Handler) List(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid page number"))
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid limit number"))
		return
	}

	filter, ok := filterFromQuery(c)
	if !ok {
		return
	}
	filter.Page = page
	filter.Limit = limit

	transactions, total, err := h.transactions.FindTransactions(c.Request.Context(), filter)
	if err != nil {
		logger.Error("failed to fetch transactions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch transactions"))
		return
	}

	items := make([]TransactionListItem, 0, len(transactions))
	for _, t := range transactions {
		items = append(items, TransactionListItem{
			ID:            t.ID,
			CreatedAt:     t.CreatedAt,
			UserID:        t.UserID,
			ContractID:    t.ContractID,
			InstallmentID: t.InstallmentID,
			ListingTitle:  t.ListingTitle,
			Type:          string(t.Type),
			Amount:        t.Amount,
			BalanceBefore: t.BalanceBefore,
			BalanceAfter:  t.BalanceAfter,
			Method:        t.Method,
			Status:        string(t.Status),
			CryptoHash:    t.CryptoHash,
			Hash:          t.Hash,
		})
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Transactions retrieved successfully", TransactionListResponse{
		Transactions: items,
		Total:        total,
		Page:         page,
		Limit:        limit,
	}))
}

// Export streams the matching ledger entries as a CSV attachment.
func (h *Handler) Export(c *gin.Context) {
	filter, ok := filterFromQuery(c)
	if !ok {
		return
	}
	filter.Page = 1
	filter.Limit = 10000 // Hard limit for safety

	transactions, _, err := h.transactions.FindTransactions(c.Request.Context(), filter)
	if err != nil {
		logger.Error("failed to fetch transactions for export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch transactions"))
		return
	}

	csvContent, err := services.GenerateTransactionCSV(transactions)
	if err != nil {
		logger.Error("failed to generate CSV", zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to generate CSV"))
		return
	}

	filename := fmt.Sprintf("transactions_%s.csv", time.Now().Format("20060102150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv", csvContent)
}

func filterFromQuery(c *gin.Context) (services.TransactionFilter, bool) {
	filter := services.TransactionFilter{}

	if userID, exists := c.GetQuery("user_id"); exists {
		filter.UserID = &userID
	}
	if contractID, exists := c.GetQuery("contract_id"); exists {
		filter.ContractID = &contractID
	}
	if typeStr, exists := c.GetQuery("type"); exists {
		t := models.TransactionType(typeStr)
		filter.Type = &t
	}
	if startTimeStr, exists := c.GetQuery("start_time"); exists {
		startTime, err := time.Parse(time.RFC3339, startTimeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid start_time format"))
			return filter, false
		}
		filter.StartTime = &startTime
	}
	if endTimeStr, exists := c.GetQuery("end_time"); exists {
		endTime, err := time.Parse(time.RFC3339, endTimeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid end_time format"))
			return filter, false
		}
		filter.EndTime = &endTime
	}
	if minAmountStr, exists := c.GetQuery("min_amount"); exists {
		minAmount, err := decimal.NewFromString(minAmountStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid min_amount"))
			return filter, false
		}
		filter.MinAmount = &minAmount
	}
	if maxAmountStr, exists := c.GetQuery("max_amount"); exists {
		maxAmount, err := decimal.NewFromString(maxAmountStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid max_amount"))
			return filter, false
		}
		filter.MaxAmount = &maxAmount
	}
	return filter, true
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("", h.List)
	router.GET("/export", h.Export)
}
