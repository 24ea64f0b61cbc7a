package user

import (
	"net/http"
	"skybox/file-api/internal"
	"skybox/file-api/internal/model"
	"skybox/file-api/pkg/response"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type updateNameBody struct {
	FullName string `json:"fullName"`
}

func UpdateName(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user := c.MustGet("user").(*model.User)

	var data updateNameBody
	if err := c.ShouldBind(&data); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		zap.L().Error("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	name := strings.TrimSpace(data.FullName)
	if name == "" {
		response.Fail(c, http.StatusBadRequest, "Full name field can't be empty")
		return
	}

	err := d.DB.Model(&model.User{}).
		Where("id = ?", user.ID).
		Update("full_name", name).
		Error
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to update name", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	user.FullName = name
	response.OK(c, http.StatusOK, user, "Name updated successfully")
}
