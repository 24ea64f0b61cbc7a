package file

import (
	"net/http"
	"skybox/file-api/internal"
	"skybox/file-api/internal/model"
	"skybox/file-api/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Favorites lists favorite files the caller can see: their own plus
// the ones shared with them
func Favorites(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var entries []model.File

	shared := d.DB.Model(&model.Share{}).Select("file_id").Where("user_id = ?", userID)

	err := d.DB.
		Where("is_favorite = ?", true).
		Where("owner_id = ? OR id IN (?)", userID, shared).
		Order("created_at desc").
		Find(&entries).
		Error
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to lookup favorite files", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	response.OK(c, http.StatusOK, entries, "Favorite files fetched successfully")
}
