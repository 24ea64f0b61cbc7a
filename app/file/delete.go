package file

import (
	"context"
	"net/http"
	"skybox/file-api/internal"
	"skybox/file-api/internal/model"
	"skybox/file-api/pkg/policy"
	"skybox/file-api/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Delete(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fileID := c.Param("id")
	if fileID == "" {
		response.Fail(c, http.StatusBadRequest, "No file ID provided")
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

	if !policy.CanDelete(&f, userID) {
		response.Fail(c, http.StatusForbidden, "Only the owner can delete this file")
		return
	}

	err = d.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("file_id = ?", f.ID).Delete(&model.Share{}).Error; err != nil {
			return err
		}

		return tx.Delete(&f).Error
	})
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to delete file record", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Metadata is gone, the object delete is best effort. Worst case
	// an orphaned object stays in the bucket
	if err := d.Storage.Delete(context.Background(), f.StorageKey); err != nil {
		zap.L().Error("Failed to delete object from the store", zap.Error(err),
			zap.String("key", f.StorageKey), zap.String("requestID", requestID))
	}

	response.OK(c, http.StatusOK, f, "File has been deleted successfully")
}
