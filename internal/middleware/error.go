package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// InternalErrorMessage is the only detail a client sees for an unexpected failure
const InternalErrorMessage = "An internal server error occurred."

// ErrorHandler recovers from panics in later handlers, logs them and returns
// a generic JSON 500. Once a streaming response has started the status can
// no longer change, so the connection is just dropped.
func ErrorHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err interface{}) {
		log.Printf("[Recovery] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		if c.Writer.Written() {
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: InternalErrorMessage})
	})
}
