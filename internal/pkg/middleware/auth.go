package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/presstimer/PressTimer-BE/pkg/util"
)

// JWTAuth JWT鉴权：带 token 的客户端（localStorage 方案）走这里，
// 解析成功后用 token 里的 vid 覆盖 cookie 来源的 visitor_id
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少Token或格式错误"})
			c.Abort()
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := util.ParseToken(tokenStr)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token无效或过期"})
			c.Abort()
			return
		}

		// 将用户信息放入请求的上下文
		c.Set("visitor_id", claims.VisitorID)
		c.Set("user_name", claims.UserName)
		c.Set("is_guest", claims.IsGuest)
		c.Next()
	}
}
