package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Every endpoint answers with the same envelope:
// {"success": true, "data": ...} or
// {"success": false, "error": {"code": ..., "message": ...}}.

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// Internal reports an unexpected failure without leaking its cause.
func Internal(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
}
