package listing

import "github.com/gin-gonic/gin"

// RegisterPublicRoutes wires the unauthenticated browsing endpoints.
func (h *Handler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.GET("", h.Browse)
	router.GET("/:id", h.Get)
}

// RegisterAuthorizedRoutes wires the seller-facing write endpoints.
func (h *Handler) RegisterAuthorizedRoutes(router *gin.RouterGroup) {
	router.POST("", h.Create)
	router.PUT("/:id", h.Update)
	router.DELETE("/:id", h.Delete)
}
