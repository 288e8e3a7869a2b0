package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shareit/service-booking/internal/platform/apperror"
	"github.com/shareit/service-booking/internal/platform/auth"
	"github.com/shareit/service-booking/internal/platform/response"
)

// UserIDHeader names the caller on every booking request.
const UserIDHeader = "X-Sharer-User-Id"

const userIDKey = "user_id"

// Identity modes.
const (
	AuthModeHeader = "header"
	AuthModeJWT    = "jwt"
)

// HeaderIdentity requires a positive integer X-Sharer-User-Id header.
func HeaderIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(UserIDHeader)
		if raw == "" {
			response.BadRequest(c, "Missing "+UserIDHeader+" header")
			return
		}
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || id <= 0 {
			response.BadRequest(c, "Invalid "+UserIDHeader+" header")
			return
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

// JWTIdentity requires a valid bearer token whose subject is the user id.
func JWTIdentity(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.Error(c, apperror.NewUnauthorizedError("missing bearer token"))
			return
		}
		claims, err := jwtManager.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response.Error(c, apperror.NewUnauthorizedError("invalid token"))
			return
		}
		id, err := claims.UserID()
		if err != nil {
			response.Error(c, apperror.NewUnauthorizedError("invalid token subject"))
			return
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

// Identity picks the identity middleware for mode.
func Identity(mode string, jwtManager *auth.JWTManager) gin.HandlerFunc {
	if mode == AuthModeJWT {
		return JWTIdentity(jwtManager)
	}
	return HeaderIdentity()
}

// GetUserID returns the caller id set by an identity middleware.
func GetUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
