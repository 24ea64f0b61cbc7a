package file

import (
	"net/http"
	"skybox/file-api/internal"
	"skybox/file-api/internal/model"
	"skybox/file-api/pkg/policy"
	"skybox/file-api/pkg/response"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type shareBody struct {
	TargetUserID string `json:"targetUserId"`
	Permission   string `json:"permission"`
}

func Share(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fileID := c.Param("id")
	if fileID == "" {
		response.Fail(c, http.StatusBadRequest, "No file ID provided")
		return
	}

	var data shareBody
	if err := c.ShouldBind(&data); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		zap.L().Error("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if data.TargetUserID == "" {
		response.Fail(c, http.StatusBadRequest, "No target user provided")
		return
	}

	var f model.File

	err := d.DB.Preload("Shares").Where("id = ?", fileID).First(&f).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			response.Fail(c, http.StatusNotFound, "File not found")
			return
		}

		response.Fail(c, http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to lookup file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !policy.CanShare(&f, userID) {
		response.Fail(c, http.StatusForbidden, "Only the owner can share this file")
		return
	}

	var target model.User

	err = d.DB.Where("id = ?", data.TargetUserID).First(&target).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			response.Fail(c, http.StatusNotFound, "Target user not found")
			return
		}

		response.Fail(c, http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to lookup target user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Re-sharing is a conflict, not an update
	for _, s := range f.Shares {
		if s.UserID == target.ID {
			response.Fail(c, http.StatusConflict, "File is already shared with this user")
			return
		}
	}

	permission := model.PermissionRead
	if data.Permission == model.PermissionWrite {
		permission = model.PermissionWrite
	}

	share := model.Share{
		FileID:     f.ID,
		UserID:     target.ID,
		Permission: permission,
		CreatedAt:  time.Now().Unix(),
	}

	if err := d.DB.Create(&share).Error; err != nil {
		response.Fail(c, http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to create share entry", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	f.Shares = append(f.Shares, share)
	response.OK(c, http.StatusOK, f, "File shared successfully")
}
