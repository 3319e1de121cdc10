package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/presstimer/PressTimer-BE/internal/users"
)

type Auth struct {
	Users *users.Service
}

func NewAuth(s *users.Service) *Auth { return &Auth{Users: s} }

// GuestLogin 游客登录
// POST /guest-login  cookie 里的游客 ID 由 Visitor 中间件保证存在
func (a *Auth) GuestLogin(c *gin.Context) {
	vid := c.GetString("visitor_id")
	if vid == "" {
		c.JSON(500, gin.H{"code": 500, "message": "visitor id missing"})
		return
	}
	data, err := a.Users.GuestLogin(vid)
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "游客登录失败"})
		return
	}
	c.JSON(200, data)
}

// Me 仅用于校验/拿 visitorId
// GET /api/v1/me
func (a *Auth) Me(c *gin.Context) {
	vid := c.GetString("visitor_id")
	if vid == "" {
		c.JSON(401, gin.H{"code": 401, "message": "unauthorized"})
		return
	}
	c.JSON(200, gin.H{"visitorId": vid})
}
