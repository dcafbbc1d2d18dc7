package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Owujuah/apex-living/internal/middleware"
	"github.com/Owujuah/apex-living/internal/services"
	"github.com/Owujuah/apex-living/internal/utils"
	"github.com/Owujuah/apex-living/pkg/logger"
)

type Handler struct {
	stats *services.StatsService
}

func NewHandler(stats *services.StatsService) *Handler {
	return &Handler{stats: stats}
}

// Stats returns the caller's dashboard aggregates: total deposits,
// active contracts, invested amount and outstanding installments.
func (h *Handler) Stats(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Authentication required"))
		return
	}

	stats, err := h.stats.UserStats(c.Request.Context(), user.ID)
	if err != nil {
		logger.Error("failed to compute user stats", zap.Error(err), zap.String("user_id", user.ID))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to retrieve dashboard stats"))
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Dashboard stats retrieved successfully", stats))
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/stats", h.Stats)
}
