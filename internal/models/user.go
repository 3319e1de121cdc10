package models

import (
	"time"
)

type User struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id,omitempty"`
	UserName  string    `gorm:"unique;type:varchar(64)" json:"user_name,omitempty"`
	VisitorID string    `gorm:"type:uuid;index" json:"visitor_id,omitempty"` // 绑定 cookie 里的游客 ID
	IsGuest   bool      `json:"is_guest" gorm:"default:false"`               // 检验是否为游客，后续开发正式用户或许能用到
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
