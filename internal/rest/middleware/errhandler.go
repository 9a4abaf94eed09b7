package middleware

import (
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error a handler attached with c.Error
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		c.JSON(ierr.HTTPStatusFromErr(err), ierr.NewErrorResponse(err))
	}
}
