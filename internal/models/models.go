package models

import (
	"time"

	"gorm.io/gorm"
)

// 展示方式：进度条或圆环
const (
	DisplayBar   = "bar"
	DisplayWheel = "wheel"
)

// 一个计时器：用户定义的打卡活动，带最短/目标间隔目标
type Timer struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	VisitorID        string         `json:"visitor_id" gorm:"type:uuid;index"`
	Label            string         `json:"label"`
	Category         string         `json:"category"`
	MinTime          int64          `json:"min_time"`           // 最短间隔（秒），>=0
	MaxTime          *int64         `json:"max_time,omitempty"` // 目标间隔（秒），可空；有值时必须 > MinTime（写入时校验）
	IsEnabled        bool           `json:"is_enabled" gorm:"default:true"`
	PlaySound        bool           `json:"play_sound"`
	Color            string         `json:"color"`
	DisplayType      string         `json:"display_type"` // bar、wheel
	ShowTotalSeconds bool           `json:"show_total_seconds"`
	IsArchived       bool           `json:"is_archived" gorm:"default:false;index"` // 软删除标记，硬删除只通过清空归档
	CreatedAt        time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

// 一次按下记录（历史条目）
// IsActive=true 的条目按时间排序构成“真实”按下序列
// IsActive=false 表示被撤销但保留着，用于重做
type PressEvent struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TimerID   uint      `json:"timer_id" gorm:"index"`
	PressedAt time.Time `json:"pressed_at" gorm:"index"`
	IsActive  bool      `json:"is_active" gorm:"index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
