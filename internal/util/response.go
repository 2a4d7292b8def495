package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the data payload of the common JSON envelope.
type Response map[string]interface{}

// Success writes {success: true, data: ...}.
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// SuccessMessage writes {success: true, message: ..., data: ...}.
func SuccessMessage(c *gin.Context, message string, data Response) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// Error writes {success: false, message: ...} with the given HTTP status.
func Error(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, gin.H{
		"success": false,
		"message": msg,
	})
}

// ValidationError writes a 400 with per-field error messages.
func ValidationError(c *gin.Context, errs []FieldError) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": "validation failed",
		"errors":  errs,
	})
}
