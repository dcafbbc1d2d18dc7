package wallet

import "github.com/gin-gonic/gin"

// RegisterRoutes wires the authenticated wallet endpoints.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/deposit", h.Deposit)
	router.GET("/balance", h.Balance)
	router.GET("/transactions", h.Transactions)
	router.GET("/deposit-address", h.DepositAddress)
	router.GET("/deposit-methods", h.DepositMethods)
}

// RegisterNotifyRoutes wires the public settlement callback.
func (h *Handler) RegisterNotifyRoutes(router *gin.RouterGroup) {
	router.POST("/notify/:uuid", h.Notify)
}
