package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/taqyim-dev/taqyim-api/internal/middleware"
	"github.com/taqyim-dev/taqyim-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextClaimsKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// CurrentUser returns the resolved profile for the request, or nil.
func CurrentUser(c *gin.Context) *models.User {
	return userFromContext(c)
}

func userFromContext(c *gin.Context) *models.User {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
