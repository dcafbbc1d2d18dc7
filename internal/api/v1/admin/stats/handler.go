package stats

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

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

// Get returns the platform-wide aggregation, served from cache when fresh.
func (h *Handler) Get(c *gin.Context) {
	stats, err := h.stats.PlatformStats(c.Request.Context())
	if err != nil {
		logger.Error("failed to load platform stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to retrieve platform stats"))
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Platform stats retrieved successfully", stats))
}

// Refresh recomputes the platform aggregation from the base tables.
func (h *Handler) Refresh(c *gin.Context) {
	stats, err := h.stats.Refresh(c.Request.Context())
	if err != nil {
		logger.Error("failed to refresh platform stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to refresh platform stats"))
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Platform stats refreshed successfully", stats))
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("", h.Get)
	router.POST("/refresh", h.Refresh)
}
