package file

import (
	"net/http"
	"skybox/file-api/internal"
	"skybox/file-api/internal/model"
	"skybox/file-api/pkg/response"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func FetchBulk(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		response.Fail(c, http.StatusBadRequest, "Page must be a positive number")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		response.Fail(c, http.StatusBadRequest, "Limit must be greater than 0")
		return
	}

	if limit > 250 {
		response.Fail(c, http.StatusBadRequest, "Limit must be smaller than 250")
		return
	}

	var entries []model.File

	err = d.DB.
		Where("owner_id = ?", userID).
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&entries).
		Error
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to lookup user files", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	response.OK(c, http.StatusOK, gin.H{
		"files": entries,
		"page":  page,
		"limit": limit,
	}, "Files fetched successfully")
}
