package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"FlertaAI_ReplyAssistant/internal/auth"
)

const (
	CtxUserID    = "userID"
	CtxRequestID = "requestID"
)

func abortError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg, "requestId": c.GetString(CtxRequestID)})
}

// AuthMiddleware Bearer 토큰 검증 후 userID 저장
// 웹소켓은 헤더를 못 보내므로 token 쿼리 파라미터 허용
func AuthMiddleware(m *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			if !strings.HasPrefix(authHeader, "Bearer ") {
				abortError(c, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
		if tokenString == "" {
			abortError(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		claims, err := m.ValidateToken(tokenString)
		if err != nil {
			var vErr *jwt.ValidationError
			if errors.As(err, &vErr) && vErr.Errors&jwt.ValidationErrorExpired != 0 {
				abortError(c, http.StatusUnauthorized, "Token has expired")
				return
			}
			abortError(c, http.StatusUnauthorized, "Invalid token")
			return
		}
		c.Set(CtxUserID, claims.UserID())
		c.Next()
	}
}

// UserID 인증된 사용자 id
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserID)
}
