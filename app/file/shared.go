package file

import (
	"net/http"
	"skybox/file-api/internal"
	"skybox/file-api/internal/model"
	"skybox/file-api/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Shared lists the files other users gave the caller access to. The
// relation lives only in the shares table, there is no stored inverse
// list on the user.
func Shared(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var entries []model.File

	err := d.DB.
		Where("id IN (?)", d.DB.Model(&model.Share{}).Select("file_id").Where("user_id = ?", userID)).
		Order("created_at desc").
		Find(&entries).
		Error
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to lookup shared files", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	response.OK(c, http.StatusOK, entries, "Shared files fetched successfully")
}
