package users

import (
	"fmt"
	"strings"

	"github.com/presstimer/PressTimer-BE/internal/models"
	"github.com/presstimer/PressTimer-BE/pkg/util"
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// GuestLogin 生成或复用游客账号，签发 JWT
// 同一个 visitor cookie 再次登录复用已有账号
func (s *Service) GuestLogin(visitorID string) (map[string]interface{}, error) {
	user, err := s.repo.GetByVisitorID(visitorID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// 取 uuid 前缀做展示用户名
		short := visitorID
		if i := strings.IndexByte(visitorID, '-'); i > 0 {
			short = visitorID[:i]
		}
		user = &models.User{
			UserName:  fmt.Sprintf("guest-%s", short),
			VisitorID: visitorID,
			IsGuest:   true,
		}
		if err := s.repo.CreateUser(user); err != nil {
			return nil, err
		}
	}

	token, err := util.GenerateToken(visitorID, user.UserName, true)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"id":        user.ID,
		"user_name": user.UserName,
		"token":     token,
	}, nil
}
