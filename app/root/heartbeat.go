// Package root holds endpoints that don't belong to any resource
package root

import (
	"net/http"
	"skybox/file-api/pkg/response"

	"github.com/gin-gonic/gin"
)

func Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Validate only runs after the auth middleware, so reaching it means
// the access token checked out
func Validate(c *gin.Context) {
	response.OK(c, http.StatusOK, gin.H{
		"userID": c.GetString("userID"),
	}, "Token is valid")
}
