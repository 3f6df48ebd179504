package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ClientKeyMiddleware 앱 공개 키(apikey 헤더) 확인, key가 비어있으면 통과
// 웹소켓은 헤더를 못 보내므로 apikey 쿼리 파라미터 허용
func ClientKeyMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		clientKey := c.GetHeader("apikey")
		if clientKey == "" {
			clientKey = c.Query("apikey")
		}
		if subtle.ConstantTimeCompare([]byte(clientKey), []byte(key)) != 1 {
			abortError(c, http.StatusForbidden, "Invalid API key")
			return
		}
		c.Next()
	}
}
