package user

import (
	"net/http"
	"skybox/file-api/internal"
	"skybox/file-api/internal/model"
	"skybox/file-api/pkg/response"
	"skybox/file-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Login(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data loginBody
	if err := c.ShouldBind(&data); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		zap.L().Error("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if data.Email == "" {
		response.Fail(c, http.StatusBadRequest, "Email field can't be empty")
		return
	}

	if data.Password == "" {
		response.Fail(c, http.StatusBadRequest, "Password field can't be empty")
		return
	}

	var user model.User

	err := d.DB.Where("email = ?", validators.NormalizeEmail(data.Email)).First(&user).Error
	if err != nil {
		response.Fail(c, http.StatusNotFound, "User not found. Register first")
		return
	}

	ok, err := d.Argon.VerifyPasswd(data.Password, user.PasswordHash)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to verify password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	access, refresh, err := d.Tokens.IssuePair(d.DB, &user)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to issue token pair", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	setTokenCookies(c, access, refresh)
	response.OK(c, http.StatusOK, gin.H{
		"user":         user,
		"accessToken":  access,
		"refreshToken": refresh,
	}, "Logged in successfully")
}

// Both tokens travel as http-only cookies. The refresh endpoint also
// accepts the refresh token in the request body for clients that
// don't keep cookies
func setTokenCookies(c *gin.Context, access, refresh string) {
	secure := viper.GetBool("host.ssl.enabled")
	domain := viper.GetString("host.domain")

	accessTTL := viper.GetInt("jwt.access_ttl") * 60
	refreshTTL := viper.GetInt("jwt.refresh_ttl") * 24 * 60 * 60

	c.SetCookie("access_token", access, accessTTL, "/", domain, secure, true)
	c.SetCookie("refresh_token", refresh, refreshTTL, "/", domain, secure, true)
}

func clearTokenCookies(c *gin.Context) {
	secure := viper.GetBool("host.ssl.enabled")
	domain := viper.GetString("host.domain")

	c.SetCookie("access_token", "", -1, "/", domain, secure, true)
	c.SetCookie("refresh_token", "", -1, "/", domain, secure, true)
}
