package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit 按游客限流：每个 key 每秒 5 次，瞬时突发 10 次
// 主要挡住按钮连点和脚本刷接口
func RateLimit() gin.HandlerFunc {
	var mu sync.Mutex
	limiters := map[string]*rate.Limiter{}

	get := func(k string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		if l, ok := limiters[k]; ok {
			return l
		}
		l := rate.NewLimiter(5, 10)
		limiters[k] = l
		return l
	}

	return func(c *gin.Context) {
		k := c.GetString("visitor_id")
		if k == "" {
			k = c.ClientIP()
		}
		if !get(k).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"message": "请求频繁"})
			c.Abort()
			return
		}
		c.Next()
	}
}
