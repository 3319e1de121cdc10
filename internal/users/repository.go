package users

import (
	"errors"

	"gorm.io/gorm"

	"github.com/presstimer/PressTimer-BE/internal/models"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// CreateUser 创建用户
func (r *Repository) CreateUser(user *models.User) error {
	return r.DB.Create(user).Error
}

// GetByVisitorID 按游客 ID 查用户，没有时返回 nil（不算错误）
func (r *Repository) GetByVisitorID(visitorID string) (*models.User, error) {
	var user models.User
	err := r.DB.Where("visitor_id = ?", visitorID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
