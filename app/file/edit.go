package file

import (
	"net/http"
	"skybox/file-api/internal"
	"skybox/file-api/internal/model"
	"skybox/file-api/pkg/policy"
	"skybox/file-api/pkg/response"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type editBody struct {
	Name       *string `json:"name,omitempty"`
	IsFavorite *bool   `json:"isFavorite,omitempty"`
}

func Edit(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fileID := c.Param("id")
	if fileID == "" {
		response.Fail(c, http.StatusBadRequest, "No file ID provided")
		return
	}

	var data editBody
	if err := c.ShouldBind(&data); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		zap.L().Error("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if data.Name == nil && data.IsFavorite == nil {
		response.Fail(c, http.StatusBadRequest, "Nothing to update")
		return
	}

	var f model.File

	err := d.DB.Where("id = ?", fileID).First(&f).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			response.Fail(c, http.StatusNotFound, "File not found")
			return
		}

		response.Fail(c, http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to lookup file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !policy.CanWrite(&f, userID) {
		response.Fail(c, http.StatusForbidden, "Only the owner can edit this file")
		return
	}

	updates := map[string]any{}

	if data.Name != nil {
		name := strings.TrimSpace(*data.Name)
		if name == "" {
			response.Fail(c, http.StatusBadRequest, "Name can't be empty")
			return
		}

		updates["name"] = name
		f.Name = name
	}

	if data.IsFavorite != nil {
		updates["is_favorite"] = *data.IsFavorite
		f.IsFavorite = *data.IsFavorite
	}

	err = d.DB.Model(&model.File{}).Where("id = ?", f.ID).Updates(updates).Error
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to update file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	response.OK(c, http.StatusOK, f, "File updated successfully")
}
