package file

import (
	"net/http"
	"skybox/file-api/internal"
	"skybox/file-api/internal/model"
	"skybox/file-api/pkg/policy"
	"skybox/file-api/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Fetch(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fileID := c.Param("id")
	if fileID == "" {
		response.Fail(c, http.StatusBadRequest, "No file ID provided")
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

	if !policy.CanRead(&f, userID) {
		response.Fail(c, http.StatusForbidden, "You are not authorized to access this file")
		return
	}

	response.OK(c, http.StatusOK, f, "File fetched successfully")
}
