package store

import (
	"context"
	"errors"
	"time"

	"github.com/presstimer/PressTimer-BE/internal/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// TimerPatch 部分更新：只合并调用方给到的字段
// MaxTime 置空要显式带 ClearMaxTime，避免“没传”和“传 null”混在一起
type TimerPatch struct {
	Label            *string `json:"label,omitempty"`
	Category         *string `json:"category,omitempty"`
	MinTime          *int64  `json:"min_time,omitempty"`
	MaxTime          *int64  `json:"max_time,omitempty"`
	ClearMaxTime     bool    `json:"clear_max_time,omitempty"`
	IsEnabled        *bool   `json:"is_enabled,omitempty"`
	PlaySound        *bool   `json:"play_sound,omitempty"`
	Color            *string `json:"color,omitempty"`
	DisplayType      *string `json:"display_type,omitempty"`
	ShowTotalSeconds *bool   `json:"show_total_seconds,omitempty"`
	IsArchived       *bool   `json:"is_archived,omitempty"`
}

// Store 统一存储接口：GORM 关系库实现和内存实现都走这套
// 历史条目的三种状态迁移（press/undo/redo）都是单行写入，
// 不做乐观锁，并发冲突按 last-write-wins 处理
type Store interface {
	// 计时器
	GetTimer(ctx context.Context, id uint) (models.Timer, error)
	ListTimers(ctx context.Context, visitorID string, includeArchived bool) ([]models.Timer, error)
	CreateTimer(ctx context.Context, t *models.Timer) error
	UpdateTimer(ctx context.Context, id uint, patch TimerPatch) (models.Timer, error)
	ClearArchived(ctx context.Context, visitorID string) (int64, error)

	// 历史
	CreateHistory(ctx context.Context, timerID uint, pressedAt time.Time) (models.PressEvent, error)
	GetHistory(ctx context.Context, id uint) (models.PressEvent, error)
	SetHistoryActive(ctx context.Context, id uint, active bool) (models.PressEvent, error)
	EditHistoryTimestamp(ctx context.Context, id uint, ts time.Time) (models.PressEvent, error)
	DeleteHistory(ctx context.Context, id uint) error

	// 读取派生输入
	LastPressed(ctx context.Context, timerID uint) (*time.Time, error)
	ActiveHistory(ctx context.Context, timerID uint) ([]models.PressEvent, error)
	HistoryRange(ctx context.Context, visitorID string, start, end time.Time) ([]models.PressEvent, error)
	HistoryFlags(ctx context.Context, timerID uint) (canUndo, canRedo bool, err error)

	// 撤销/重做：永远挑时间最新的那一条
	Undo(ctx context.Context, timerID uint) (models.PressEvent, error)
	Redo(ctx context.Context, timerID uint) (models.PressEvent, error)
}
