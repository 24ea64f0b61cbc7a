// Package response renders the envelope every endpoint answers with
package response

import "github.com/gin-gonic/gin"

type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func OK(c *gin.Context, code int, data any, message string) {
	c.JSON(code, Envelope{
		StatusCode: code,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// Fail writes an error envelope and aborts the handler chain
func Fail(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Envelope{
		StatusCode: code,
		Message:    message,
	})
}
