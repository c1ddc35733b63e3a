package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
)

// SuccessResponse wraps data in the standard success envelope.
func SuccessResponse(message string, data interface{}) gin.H {
	response := gin.H{
		"success":   true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	if data != nil {
		response["data"] = data
	}

	return response
}

func ErrorResponse(code string, message string) gin.H {
	return gin.H{
		"success":   false,
		"error":     code,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}
}
