package middleware

import (
	"net/http"

	"github.com/damoang/tourlog-backend/internal/common"
	"github.com/gin-gonic/gin"
)

// AdminLevel 관리자(편집자) 최소 레벨
const AdminLevel = 10

// IsAdmin reports whether the authenticated user has admin level
func IsAdmin(c *gin.Context) bool {
	return GetUserLevel(c) >= AdminLevel
}

// RequireAdmin checks that the authenticated user has admin level (>= 10)
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			common.ErrorResponse(c, http.StatusForbidden, common.CodePermissionDenied, "관리자 권한이 필요합니다")
			c.Abort()
			return
		}
		c.Next()
	}
}
