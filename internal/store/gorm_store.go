package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/presstimer/PressTimer-BE/internal/models"
)

// GormStore 关系库实现（生产走 postgres，测试走 sqlite 内存库）
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{DB: db} }

func (s *GormStore) GetTimer(ctx context.Context, id uint) (models.Timer, error) {
	var t models.Timer
	err := s.DB.WithContext(ctx).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return t, ErrNotFound
	}
	return t, err
}

func (s *GormStore) ListTimers(ctx context.Context, visitorID string, includeArchived bool) ([]models.Timer, error) {
	q := s.DB.WithContext(ctx).Where("visitor_id = ?", visitorID)
	if !includeArchived {
		q = q.Where("is_archived = ?", false)
	}
	var ts []models.Timer
	err := q.Order("created_at ASC").Find(&ts).Error
	return ts, err
}

func (s *GormStore) CreateTimer(ctx context.Context, t *models.Timer) error {
	return s.DB.WithContext(ctx).Create(t).Error
}

// UpdateTimer 只更新补丁里带值的字段
func (s *GormStore) UpdateTimer(ctx context.Context, id uint, patch TimerPatch) (models.Timer, error) {
	updates := map[string]any{}
	if patch.Label != nil {
		updates["label"] = *patch.Label
	}
	if patch.Category != nil {
		updates["category"] = *patch.Category
	}
	if patch.MinTime != nil {
		updates["min_time"] = *patch.MinTime
	}
	if patch.MaxTime != nil {
		updates["max_time"] = *patch.MaxTime
	}
	if patch.ClearMaxTime {
		updates["max_time"] = nil
	}
	if patch.IsEnabled != nil {
		updates["is_enabled"] = *patch.IsEnabled
	}
	if patch.PlaySound != nil {
		updates["play_sound"] = *patch.PlaySound
	}
	if patch.Color != nil {
		updates["color"] = *patch.Color
	}
	if patch.DisplayType != nil {
		updates["display_type"] = *patch.DisplayType
	}
	if patch.ShowTotalSeconds != nil {
		updates["show_total_seconds"] = *patch.ShowTotalSeconds
	}
	if patch.IsArchived != nil {
		updates["is_archived"] = *patch.IsArchived
	}
	t, err := s.GetTimer(ctx, id)
	if err != nil {
		return t, err
	}
	if len(updates) == 0 {
		return t, nil
	}
	if err := s.DB.WithContext(ctx).Model(&models.Timer{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return models.Timer{}, err
	}
	return s.GetTimer(ctx, id)
}

// ClearArchived 硬删除该游客所有已归档的计时器及其历史
func (s *GormStore) ClearArchived(ctx context.Context, visitorID string) (int64, error) {
	var ids []uint
	if err := s.DB.WithContext(ctx).Model(&models.Timer{}).
		Where("visitor_id = ? AND is_archived = ?", visitorID, true).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("timer_id IN ?", ids).Delete(&models.PressEvent{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("id IN ?", ids).Delete(&models.Timer{}).Error
	})
	return int64(len(ids)), err
}

func (s *GormStore) CreateHistory(ctx context.Context, timerID uint, pressedAt time.Time) (models.PressEvent, error) {
	ev := models.PressEvent{TimerID: timerID, PressedAt: pressedAt, IsActive: true}
	err := s.DB.WithContext(ctx).Create(&ev).Error
	return ev, err
}

func (s *GormStore) GetHistory(ctx context.Context, id uint) (models.PressEvent, error) {
	var ev models.PressEvent
	err := s.DB.WithContext(ctx).First(&ev, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ev, ErrNotFound
	}
	return ev, err
}

func (s *GormStore) SetHistoryActive(ctx context.Context, id uint, active bool) (models.PressEvent, error) {
	ev, err := s.GetHistory(ctx, id)
	if err != nil {
		return ev, err
	}
	if err := s.DB.WithContext(ctx).Model(&models.PressEvent{}).Where("id = ?", id).
		Update("is_active", active).Error; err != nil {
		return ev, err
	}
	ev.IsActive = active
	return ev, nil
}

func (s *GormStore) EditHistoryTimestamp(ctx context.Context, id uint, ts time.Time) (models.PressEvent, error) {
	ev, err := s.GetHistory(ctx, id)
	if err != nil {
		return ev, err
	}
	if err := s.DB.WithContext(ctx).Model(&models.PressEvent{}).Where("id = ?", id).
		Update("pressed_at", ts).Error; err != nil {
		return ev, err
	}
	ev.PressedAt = ts
	return ev, nil
}

func (s *GormStore) DeleteHistory(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.PressEvent{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) LastPressed(ctx context.Context, timerID uint) (*time.Time, error) {
	var ev models.PressEvent
	err := s.DB.WithContext(ctx).
		Where("timer_id = ? AND is_active = ?", timerID, true).
		Order("pressed_at DESC").Take(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t := ev.PressedAt
	return &t, nil
}

func (s *GormStore) ActiveHistory(ctx context.Context, timerID uint) ([]models.PressEvent, error) {
	var evs []models.PressEvent
	err := s.DB.WithContext(ctx).
		Where("timer_id = ? AND is_active = ?", timerID, true).
		Order("pressed_at DESC").Find(&evs).Error
	return evs, err
}

// HistoryRange 闭区间查询，只返回 active 条目（图表用）
func (s *GormStore) HistoryRange(ctx context.Context, visitorID string, start, end time.Time) ([]models.PressEvent, error) {
	var evs []models.PressEvent
	err := s.DB.WithContext(ctx).
		Joins("JOIN timers ON timers.id = press_events.timer_id").
		Where("timers.visitor_id = ? AND press_events.is_active = ?", visitorID, true).
		Where("press_events.pressed_at >= ? AND press_events.pressed_at <= ?", start, end).
		Order("press_events.pressed_at ASC").
		Find(&evs).Error
	return evs, err
}

func (s *GormStore) HistoryFlags(ctx context.Context, timerID uint) (bool, bool, error) {
	var active, inactive int64
	if err := s.DB.WithContext(ctx).Model(&models.PressEvent{}).
		Where("timer_id = ? AND is_active = ?", timerID, true).Count(&active).Error; err != nil {
		return false, false, err
	}
	if err := s.DB.WithContext(ctx).Model(&models.PressEvent{}).
		Where("timer_id = ? AND is_active = ?", timerID, false).Count(&inactive).Error; err != nil {
		return false, false, err
	}
	return active > 0, inactive > 0, nil
}

// Undo 把最新的 active 条目翻成 inactive
func (s *GormStore) Undo(ctx context.Context, timerID uint) (models.PressEvent, error) {
	return s.flipNewest(ctx, timerID, true, false, ErrNothingToUndo)
}

// Redo 把最新的 inactive 条目翻回 active
func (s *GormStore) Redo(ctx context.Context, timerID uint) (models.PressEvent, error) {
	return s.flipNewest(ctx, timerID, false, true, ErrNothingToRedo)
}

func (s *GormStore) flipNewest(ctx context.Context, timerID uint, from, to bool, empty error) (models.PressEvent, error) {
	var ev models.PressEvent
	err := s.DB.WithContext(ctx).
		Where("timer_id = ? AND is_active = ?", timerID, from).
		Order("pressed_at DESC").Take(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ev, empty
	}
	if err != nil {
		return ev, err
	}
	if err := s.DB.WithContext(ctx).Model(&models.PressEvent{}).Where("id = ?", ev.ID).
		Update("is_active", to).Error; err != nil {
		return ev, err
	}
	ev.IsActive = to
	return ev, nil
}
