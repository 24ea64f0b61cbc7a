package user

import (
	"net/http"
	"skybox/file-api/internal/model"
	"skybox/file-api/pkg/response"

	"github.com/gin-gonic/gin"
)

// Me returns the identity loaded by the auth middleware
func Me(c *gin.Context) {
	user := c.MustGet("user").(*model.User)

	response.OK(c, http.StatusOK, user, "Current user fetched successfully")
}
