package middleware

import (
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// AccountMiddleware scopes the request to the account named by the X-Account-ID header.
// Authentication happens upstream; the user id defaults to the anonymous user.
func AccountMiddleware(c *gin.Context) {
	accountID := c.GetHeader(types.HeaderAccountID)
	if accountID == "" {
		_ = c.Error(ierr.NewError("account header missing").
			WithHintf("The %s header is required", types.HeaderAccountID).
			Mark(ierr.ErrPermissionDenied))
		c.Abort()
		return
	}

	ctx := c.Request.Context()
	ctx = types.SetAccountID(ctx, accountID)
	ctx = types.SetUserID(ctx, lo.CoalesceOrEmpty(c.GetHeader(types.HeaderUserID), types.DefaultUserID))
	c.Request = c.Request.WithContext(ctx)

	c.Next()
}
