package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Owujuah/apex-living/internal/models"
	"github.com/Owujuah/apex-living/internal/services"
	"github.com/Owujuah/apex-living/internal/utils"
	"github.com/Owujuah/apex-living/pkg/logger"
)

// AdminAuthMiddleware validates that the user has admin privileges.
func AdminAuthMiddleware(users *services.UserService, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := utils.ExtractToken(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, err.Error()))
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(jwtSecret, tokenString)
		if err != nil {
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "Invalid or expired token"))
			c.Abort()
			return
		}

		role, ok := claims["role"].(string)
		if !ok || role != models.RoleAdmin {
			if logger.Log != nil {
				logger.Log.Warn("unauthorized admin access attempt",
					zap.String("path", c.Request.URL.Path),
					zap.String("ip", c.ClientIP()))
			}
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "Forbidden: Admins only"))
			c.Abort()
			return
		}

		// The middleware check itself does not need the user row; skip the
		// lookup in test mode where no store is wired.
		if gin.Mode() != gin.TestMode && users != nil {
			if userID, ok := claims["user_id"].(string); ok && userID != "" {
				user, err := users.FindUserByID(c.Request.Context(), userID)
				if err == nil {
					c.Set("user", user)
				}
			}
		}

		c.Next()
	}
}
