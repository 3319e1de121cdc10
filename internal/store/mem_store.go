package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/presstimer/PressTimer-BE/internal/models"
)

// MemStore 内存实现：开发和测试用，语义与 GormStore 保持一致
// 一把互斥锁串行化所有写入，天然满足单行原子性
type MemStore struct {
	mu        sync.Mutex
	timers    map[uint]models.Timer
	history   map[uint]models.PressEvent
	nextTimer uint
	nextEvent uint
}

func NewMemStore() *MemStore {
	return &MemStore{
		timers:    map[uint]models.Timer{},
		history:   map[uint]models.PressEvent{},
		nextTimer: 1,
		nextEvent: 1,
	}
}

func (s *MemStore) GetTimer(_ context.Context, id uint) (models.Timer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[id]
	if !ok {
		return models.Timer{}, ErrNotFound
	}
	return t, nil
}

func (s *MemStore) ListTimers(_ context.Context, visitorID string, includeArchived bool) ([]models.Timer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Timer{}
	for _, t := range s.timers {
		if t.VisitorID != visitorID {
			continue
		}
		if t.IsArchived && !includeArchived {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemStore) CreateTimer(_ context.Context, t *models.Timer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextTimer
	s.nextTimer++
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	s.timers[t.ID] = *t
	return nil
}

func (s *MemStore) UpdateTimer(_ context.Context, id uint, patch TimerPatch) (models.Timer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[id]
	if !ok {
		return models.Timer{}, ErrNotFound
	}
	if patch.Label != nil {
		t.Label = *patch.Label
	}
	if patch.Category != nil {
		t.Category = *patch.Category
	}
	if patch.MinTime != nil {
		t.MinTime = *patch.MinTime
	}
	if patch.MaxTime != nil {
		v := *patch.MaxTime
		t.MaxTime = &v
	}
	if patch.ClearMaxTime {
		t.MaxTime = nil
	}
	if patch.IsEnabled != nil {
		t.IsEnabled = *patch.IsEnabled
	}
	if patch.PlaySound != nil {
		t.PlaySound = *patch.PlaySound
	}
	if patch.Color != nil {
		t.Color = *patch.Color
	}
	if patch.DisplayType != nil {
		t.DisplayType = *patch.DisplayType
	}
	if patch.ShowTotalSeconds != nil {
		t.ShowTotalSeconds = *patch.ShowTotalSeconds
	}
	if patch.IsArchived != nil {
		t.IsArchived = *patch.IsArchived
	}
	t.UpdatedAt = time.Now()
	s.timers[id] = t
	return t, nil
}

func (s *MemStore) ClearArchived(_ context.Context, visitorID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, t := range s.timers {
		if t.VisitorID != visitorID || !t.IsArchived {
			continue
		}
		delete(s.timers, id)
		for eid, ev := range s.history {
			if ev.TimerID == id {
				delete(s.history, eid)
			}
		}
		n++
	}
	return n, nil
}

func (s *MemStore) CreateHistory(_ context.Context, timerID uint, pressedAt time.Time) (models.PressEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timers[timerID]; !ok {
		return models.PressEvent{}, ErrNotFound
	}
	ev := models.PressEvent{
		ID:        s.nextEvent,
		TimerID:   timerID,
		PressedAt: pressedAt,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	s.nextEvent++
	s.history[ev.ID] = ev
	return ev, nil
}

func (s *MemStore) GetHistory(_ context.Context, id uint) (models.PressEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.history[id]
	if !ok {
		return models.PressEvent{}, ErrNotFound
	}
	return ev, nil
}

func (s *MemStore) SetHistoryActive(_ context.Context, id uint, active bool) (models.PressEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.history[id]
	if !ok {
		return models.PressEvent{}, ErrNotFound
	}
	ev.IsActive = active
	s.history[id] = ev
	return ev, nil
}

func (s *MemStore) EditHistoryTimestamp(_ context.Context, id uint, ts time.Time) (models.PressEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.history[id]
	if !ok {
		return models.PressEvent{}, ErrNotFound
	}
	ev.PressedAt = ts
	s.history[id] = ev
	return ev, nil
}

func (s *MemStore) DeleteHistory(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.history[id]; !ok {
		return ErrNotFound
	}
	delete(s.history, id)
	return nil
}

func (s *MemStore) LastPressed(_ context.Context, timerID uint) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.newestLocked(timerID, true)
	if !ok {
		return nil, nil
	}
	t := ev.PressedAt
	return &t, nil
}

func (s *MemStore) ActiveHistory(_ context.Context, timerID uint) ([]models.PressEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.PressEvent{}
	for _, ev := range s.history {
		if ev.TimerID == timerID && ev.IsActive {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PressedAt.After(out[j].PressedAt) })
	return out, nil
}

func (s *MemStore) HistoryRange(_ context.Context, visitorID string, start, end time.Time) ([]models.PressEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.PressEvent{}
	for _, ev := range s.history {
		if !ev.IsActive {
			continue
		}
		t, ok := s.timers[ev.TimerID]
		if !ok || t.VisitorID != visitorID {
			continue
		}
		// 闭区间
		if ev.PressedAt.Before(start) || ev.PressedAt.After(end) {
			continue
		}
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PressedAt.Before(out[j].PressedAt) })
	return out, nil
}

func (s *MemStore) HistoryFlags(_ context.Context, timerID uint) (bool, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var canUndo, canRedo bool
	for _, ev := range s.history {
		if ev.TimerID != timerID {
			continue
		}
		if ev.IsActive {
			canUndo = true
		} else {
			canRedo = true
		}
	}
	return canUndo, canRedo, nil
}

func (s *MemStore) Undo(_ context.Context, timerID uint) (models.PressEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.newestLocked(timerID, true)
	if !ok {
		return models.PressEvent{}, ErrNothingToUndo
	}
	ev.IsActive = false
	s.history[ev.ID] = ev
	return ev, nil
}

func (s *MemStore) Redo(_ context.Context, timerID uint) (models.PressEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.newestLocked(timerID, false)
	if !ok {
		return models.PressEvent{}, ErrNothingToRedo
	}
	ev.IsActive = true
	s.history[ev.ID] = ev
	return ev, nil
}

// newestLocked 找该计时器下指定状态里时间最新的一条，调用前必须已持锁
func (s *MemStore) newestLocked(timerID uint, active bool) (models.PressEvent, bool) {
	var best models.PressEvent
	found := false
	for _, ev := range s.history {
		if ev.TimerID != timerID || ev.IsActive != active {
			continue
		}
		if !found || ev.PressedAt.After(best.PressedAt) ||
			(ev.PressedAt.Equal(best.PressedAt) && ev.ID > best.ID) {
			best = ev
			found = true
		}
	}
	return best, found
}
