package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const VisitorCookie = "ptid"

// Visitor 中间件：为每个游客分配唯一 ID（存储在 cookie 中）
// 浏览器没有 ptid cookie 时生成一个新的 UUID 并设置，有效期一年
func Visitor() gin.HandlerFunc {
	return func(c *gin.Context) {
		vid, err := c.Cookie(VisitorCookie)
		if err != nil || vid == "" {
			vid = uuid.NewString()
			// HttpOnly 防止 JS 读取；开发环境 Secure=false，上线改 true（需要 HTTPS）
			c.SetCookie(VisitorCookie, vid, 3600*24*365, "/", "", false, true)
		}
		c.Set("visitor_id", vid)
		c.Next()
	}
}
