package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Owujuah/apex-living/internal/services"
	"github.com/Owujuah/apex-living/internal/utils"
)

type Handler struct {
	gateways *services.GatewayService
}

func NewHandler(gateways *services.GatewayService) *Handler {
	return &Handler{gateways: gateways}
}

// List returns all configured deposit gateways.
func (h *Handler) List(c *gin.Context) {
	configs, err := h.gateways.GetAllGateways(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	response := make([]GatewayResponse, 0, len(configs))
	for _, cfg := range configs {
		var configMap map[string]interface{}
		_ = json.Unmarshal(cfg.Config, &configMap)

		response = append(response, GatewayResponse{
			ID:        cfg.ID,
			UUID:      cfg.UUID,
			Name:      cfg.Name,
			Driver:    cfg.Driver,
			Config:    configMap,
			Enable:    cfg.Enable,
			CreatedAt: cfg.CreatedAt.Format(time.RFC3339),
			UpdatedAt: cfg.UpdatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", response))
}

// Create adds a new deposit gateway configuration.
func (h *Handler) Create(c *gin.Context) {
	var req CreateGatewayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	cfg, err := h.gateways.CreateGateway(c.Request.Context(), req.Name, req.Driver, req.Config, req.Enable)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", gin.H{"id": cfg.ID, "uuid": cfg.UUID}))
}

// Update edits an existing gateway configuration.
func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid ID"))
		return
	}

	var req UpdateGatewayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	if _, err := h.gateways.UpdateGateway(c.Request.Context(), uint(id), req.Name, req.Config, req.Enable); err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", nil))
}

// Delete removes a gateway configuration.
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid ID"))
		return
	}

	if err := h.gateways.DeleteGateway(c.Request.Context(), uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", nil))
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("", h.List)
	router.POST("", h.Create)
	router.PUT("/:id", h.Update)
	router.DELETE("/:id", h.Delete)
}
