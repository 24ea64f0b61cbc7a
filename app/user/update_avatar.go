package user

import (
	"context"
	"net/http"
	"path"
	"skybox/file-api/internal"
	"skybox/file-api/internal/model"
	"skybox/file-api/pkg/response"
	"skybox/file-api/pkg/util"
	"skybox/file-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func UpdateAvatar(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user := c.MustGet("user").(*model.User)

	fh, err := c.FormFile("avatar")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "No avatar file provided")
		return
	}

	code, f, mime, err := validators.FileValidator(fh)
	if err != nil {
		if code == http.StatusInternalServerError {
			response.Fail(c, code, "Internal server error")
			zap.L().Error("Failed to validate avatar", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		response.Fail(c, code, err.Error())
		return
	}
	defer f.Close()

	// A fresh key per upload so a cached old URL can't shadow the new
	// object
	key := "avatar_" + user.ID + "_" + util.RandStr(4) + path.Ext(fh.Filename)

	url, err := d.Storage.Upload(context.Background(), key, mime, fh.Size, f)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to upload avatar", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	oldKey := user.AvatarKey

	err = d.DB.Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"avatar":     url,
			"avatar_key": key,
		}).
		Error
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to update avatar", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Best effort, a stale object is not worth failing the request
	if oldKey != "" {
		if err := d.Storage.Delete(context.Background(), oldKey); err != nil {
			zap.L().Error("Failed to delete old avatar", zap.Error(err), zap.String("requestID", requestID))
		}
	}

	user.Avatar = url
	user.AvatarKey = key
	response.OK(c, http.StatusOK, user, "Avatar updated successfully")
}
