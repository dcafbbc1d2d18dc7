package contract

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("", h.List)
	router.POST("/reserve", h.Reserve)
	router.GET("/:id", h.Get)
	router.POST("/:id/purchase", h.PurchaseFull)
	router.POST("/:id/installments", h.PurchaseInstallment)
	router.POST("/:id/installments/:instId/pay", h.PayInstallment)
}
