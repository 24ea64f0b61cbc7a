package user

import (
	"errors"
	"net/http"
	"skybox/file-api/internal"
	"skybox/file-api/pkg/response"
	"skybox/file-api/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type refreshBody struct {
	RefreshToken string `json:"refreshToken"`
}

func Refresh(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	old, err := c.Cookie("refresh_token")
	if err != nil || old == "" {
		var data refreshBody
		if err := c.ShouldBind(&data); err == nil {
			old = data.RefreshToken
		}
	}

	if old == "" {
		response.Fail(c, http.StatusUnauthorized, "Missing refresh token")
		return
	}

	access, refresh, user, err := d.Tokens.Rotate(d.DB, old)
	if err != nil {
		if errors.Is(err, security.ErrUnauthorized) {
			response.Fail(c, http.StatusUnauthorized, "Invalid or expired refresh token")
			return
		}

		response.Fail(c, http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to rotate token pair", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	setTokenCookies(c, access, refresh)
	response.OK(c, http.StatusOK, gin.H{
		"user":         user,
		"accessToken":  access,
		"refreshToken": refresh,
	}, "Token pair refreshed")
}
