package response

import (
	"github.com/gin-gonic/gin"
	domainerrors "open-wallet.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error maps any error to its HTTP shape. Domain sentinels resolve to
// their registered status and code; anything unrecognized becomes an
// opaque 500 so store internals never leak.
func Error(c *gin.Context, err error) {
	appErr := domainerrors.FromDomain(err)
	c.JSON(appErr.Status, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}

// ErrorWithError sends an error response with a specific status and message
func ErrorWithError(c *gin.Context, status int, code string, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}
