package middleware

import (
	"net/http"
	"skybox/file-api/internal/model"
	"skybox/file-api/pkg/response"
	"skybox/file-api/pkg/security"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewAuthMiddleware gates a request on a valid access token taken from
// the access_token cookie or an Authorization bearer header. On
// success the user's ID and record land in the gin context as userID
// and user.
func NewAuthMiddleware(d *gorm.DB, t *security.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		tokenStr, err := c.Cookie("access_token")
		if err != nil || tokenStr == "" {
			auth := c.GetHeader("Authorization")
			tokenStr = strings.TrimPrefix(auth, "Bearer ")

			if tokenStr == "" || tokenStr == auth {
				response.Fail(c, http.StatusUnauthorized, "Missing access token")
				return
			}
		}

		claims, err := t.VerifyAccess(tokenStr)
		if err != nil {
			response.Fail(c, http.StatusUnauthorized, "Invalid or expired access token")
			return
		}

		// A valid token may outlive its account
		var user model.User
		err = d.Where("id = ?", claims.UserID).First(&user).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				response.Fail(c, http.StatusUnauthorized, "Invalid or expired access token")
				return
			}

			response.Fail(c, http.StatusInternalServerError, "Internal server error")
			zap.L().Error("Failed to check if user exists", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.Set("userID", user.ID)
		c.Set("user", &user)
		c.Next()
	}
}
