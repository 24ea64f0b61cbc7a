package user

import (
	"net/http"
	"skybox/file-api/internal"
	"skybox/file-api/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Logout(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	// Dropping the session row makes the stored refresh token
	// permanently unusable, expired or not
	if err := d.Tokens.Revoke(d.DB, userID); err != nil {
		response.Fail(c, http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to revoke session", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	clearTokenCookies(c)
	response.OK(c, http.StatusOK, nil, "Logged out successfully")
}
