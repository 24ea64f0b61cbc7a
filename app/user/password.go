package user

import (
	"net/http"
	"skybox/file-api/internal"
	"skybox/file-api/internal/model"
	"skybox/file-api/pkg/response"
	"skybox/file-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type changePasswordBody struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func ChangePassword(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user := c.MustGet("user").(*model.User)

	var data changePasswordBody
	if err := c.ShouldBind(&data); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		zap.L().Error("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if data.OldPassword == "" {
		response.Fail(c, http.StatusBadRequest, "Old password field can't be empty")
		return
	}

	if err := validators.PasswordValidator(data.NewPassword); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	ok, err := d.Argon.VerifyPasswd(data.OldPassword, user.PasswordHash)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to verify password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Old password is incorrect")
		return
	}

	hash, err := d.Argon.GenerateFromPassword(data.NewPassword)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	err = d.DB.Model(&model.User{}).
		Where("id = ?", user.ID).
		Update("password_hash", hash).
		Error
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to update password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	response.OK(c, http.StatusOK, nil, "Password changed successfully")
}
