package handlers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/presstimer/PressTimer-BE/internal/models"
	pkgerr "github.com/presstimer/PressTimer-BE/internal/pkg/err"
	"github.com/presstimer/PressTimer-BE/internal/pkg/middleware"
	"github.com/presstimer/PressTimer-BE/internal/store"
	"github.com/presstimer/PressTimer-BE/internal/timer"
)

type Timers struct {
	Store store.Store
	Now   func() time.Time // 测试里替换成假时钟
}

func NewTimers(s store.Store) *Timers {
	return &Timers{Store: s, Now: time.Now}
}

// visitorID 取游客 ID：中间件放进上下文的优先，退回 cookie
func (h *Timers) visitorID(c *gin.Context) (string, bool) {
	if vid := c.GetString("visitor_id"); vid != "" {
		return vid, true
	}
	vid, err := c.Cookie(middleware.VisitorCookie)
	return vid, err == nil && vid != ""
}

// mustOwnTimer 解析 :id、取计时器并校验归属
// 不是自己的按不存在处理，避免泄漏别人的 ID 空间
func (h *Timers) mustOwnTimer(c *gin.Context) (models.Timer, bool) {
	vid, ok := h.visitorID(c)
	if !ok {
		c.JSON(401, gin.H{"message": "no visitor"})
		return models.Timer{}, false
	}
	id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		pkgerr.Msg(c, pkgerr.CodeBadParam, "bad timer id")
		return models.Timer{}, false
	}
	t, err := h.Store.GetTimer(c.Request.Context(), uint(id64))
	if errors.Is(err, store.ErrNotFound) {
		pkgerr.Msg(c, pkgerr.CodeNotFound, "timer not found")
		return models.Timer{}, false
	}
	if err != nil {
		c.JSON(500, gin.H{"message": err.Error()})
		return models.Timer{}, false
	}
	if t.VisitorID != vid {
		pkgerr.Msg(c, pkgerr.CodeNotFound, "timer not found")
		return models.Timer{}, false
	}
	return t, true
}

// enhance 跑一遍投影：最近按下时间 + 撤销/重做标记 + 派生字段
func (h *Timers) enhance(ctx context.Context, t models.Timer) (timer.Enhanced, error) {
	last, err := h.Store.LastPressed(ctx, t.ID)
	if err != nil {
		return timer.Enhanced{}, err
	}
	canUndo, canRedo, err := h.Store.HistoryFlags(ctx, t.ID)
	if err != nil {
		return timer.Enhanced{}, err
	}
	e := timer.Project(t, last, h.Now())
	e.CanUndo = canUndo
	e.CanRedo = canRedo
	return e, nil
}

// GET /api/v1/timers?include_archived=1
func (h *Timers) List(c *gin.Context) {
	vid, ok := h.visitorID(c)
	if !ok {
		c.JSON(401, gin.H{"message": "no visitor"})
		return
	}
	includeArchived := c.Query("include_archived") == "1" || c.Query("include_archived") == "true"
	ts, err := h.Store.ListTimers(c.Request.Context(), vid, includeArchived)
	if err != nil {
		c.JSON(500, gin.H{"message": err.Error()})
		return
	}
	out := make([]timer.Enhanced, 0, len(ts))
	for _, t := range ts {
		e, err := h.enhance(c.Request.Context(), t)
		if err != nil {
			c.JSON(500, gin.H{"message": err.Error()})
			return
		}
		out = append(out, e)
	}
	c.JSON(200, out)
}

type createReq struct {
	Label            string `json:"label"`
	Category         string `json:"category"`
	MinTime          int64  `json:"min_time"`
	MaxTime          *int64 `json:"max_time"`
	IsEnabled        *bool  `json:"is_enabled"`
	PlaySound        bool   `json:"play_sound"`
	Color            string `json:"color"`
	DisplayType      string `json:"display_type"`
	ShowTotalSeconds bool   `json:"show_total_seconds"`
}

// POST /api/v1/timers
func (h *Timers) Create(c *gin.Context) {
	vid, ok := h.visitorID(c)
	if !ok {
		c.JSON(401, gin.H{"message": "no visitor"})
		return
	}
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		pkgerr.Msg(c, pkgerr.CodeBadParam, "bad body")
		return
	}
	if req.Label == "" {
		pkgerr.Msg(c, pkgerr.CodeBadParam, "label is required")
		return
	}
	if req.MinTime < 0 {
		pkgerr.Msg(c, pkgerr.CodeBadParam, "min_time must be >= 0")
		return
	}
	if req.MaxTime != nil && *req.MaxTime <= req.MinTime {
		pkgerr.Msg(c, pkgerr.CodeBadParam, "max_time must be greater than min_time")
		return
	}
	if req.DisplayType == "" {
		req.DisplayType = models.DisplayBar
	}
	if req.DisplayType != models.DisplayBar && req.DisplayType != models.DisplayWheel {
		pkgerr.Msg(c, pkgerr.CodeBadParam, "display_type must be bar or wheel")
		return
	}
	enabled := true
	if req.IsEnabled != nil {
		enabled = *req.IsEnabled
	}
	t := models.Timer{
		VisitorID:        vid,
		Label:            req.Label,
		Category:         req.Category,
		MinTime:          req.MinTime,
		MaxTime:          req.MaxTime,
		IsEnabled:        enabled,
		PlaySound:        req.PlaySound,
		Color:            req.Color,
		DisplayType:      req.DisplayType,
		ShowTotalSeconds: req.ShowTotalSeconds,
	}
	if err := h.Store.CreateTimer(c.Request.Context(), &t); err != nil {
		c.JSON(500, gin.H{"message": err.Error()})
		return
	}
	e, err := h.enhance(c.Request.Context(), t)
	if err != nil {
		c.JSON(500, gin.H{"message": err.Error()})
		return
	}
	c.JSON(200, e)
}

// PATCH /api/v1/timers/:id  只更新带上来的字段
func (h *Timers) Update(c *gin.Context) {
	t, ok := h.mustOwnTimer(c)
	if !ok {
		return
	}
	var patch store.TimerPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		pkgerr.Msg(c, pkgerr.CodeBadParam, "bad body")
		return
	}
	// 校验合并后的 min/max 关系
	min := t.MinTime
	if patch.MinTime != nil {
		min = *patch.MinTime
	}
	max := t.MaxTime
	if patch.MaxTime != nil {
		max = patch.MaxTime
	}
	if patch.ClearMaxTime {
		max = nil
	}
	if min < 0 {
		pkgerr.Msg(c, pkgerr.CodeBadParam, "min_time must be >= 0")
		return
	}
	if max != nil && *max <= min {
		pkgerr.Msg(c, pkgerr.CodeBadParam, "max_time must be greater than min_time")
		return
	}
	if patch.DisplayType != nil && *patch.DisplayType != models.DisplayBar && *patch.DisplayType != models.DisplayWheel {
		pkgerr.Msg(c, pkgerr.CodeBadParam, "display_type must be bar or wheel")
		return
	}
	updated, err := h.Store.UpdateTimer(c.Request.Context(), t.ID, patch)
	if err != nil {
		c.JSON(500, gin.H{"message": err.Error()})
		return
	}
	e, err := h.enhance(c.Request.Context(), updated)
	if err != nil {
		c.JSON(500, gin.H{"message": err.Error()})
		return
	}
	c.JSON(200, e)
}

// POST /api/v1/timers/:id/archive  软删除
func (h *Timers) Archive(c *gin.Context) {
	t, ok := h.mustOwnTimer(c)
	if !ok {
		return
	}
	yes := true
	if _, err := h.Store.UpdateTimer(c.Request.Context(), t.ID, store.TimerPatch{IsArchived: &yes}); err != nil {
		c.JSON(500, gin.H{"message": err.Error()})
		return
	}
	c.JSON(200, gin.H{"ok": true, "archived": t.ID})
}

// DELETE /api/v1/timers/archived  唯一的硬删除入口
func (h *Timers) ClearArchived(c *gin.Context) {
	vid, ok := h.visitorID(c)
	if !ok {
		c.JSON(401, gin.H{"message": "no visitor"})
		return
	}
	n, err := h.Store.ClearArchived(c.Request.Context(), vid)
	if err != nil {
		c.JSON(500, gin.H{"message": err.Error()})
		return
	}
	c.JSON(200, gin.H{"ok": true, "deleted": n})
}

type pressReq struct {
	PressedAt *time.Time `json:"pressed_at"` // 手动补录过去的按下用
}

// POST /api/v1/timers/:id/press
// 间隔没到 minTime 时拒绝，但第一次按下永远放行；补录历史不受限制
func (h *Timers) Press(c *gin.Context) {
	t, ok := h.mustOwnTimer(c)
	if !ok {
		return
	}
	var req pressReq
	_ = c.ShouldBindJSON(&req)

	last, err := h.Store.LastPressed(c.Request.Context(), t.ID)
	if err != nil {
		c.JSON(500, gin.H{"message": err.Error()})
		return
	}
	e := timer.Project(t, last, h.Now())
	if last != nil && !e.CanPress && req.PressedAt == nil {
		c.JSON(400, gin.H{"message": "too soon", "elapsed_time": e.ElapsedTime, "min_time": t.MinTime})
		return
	}

	at := h.Now()
	if req.PressedAt != nil {
		at = *req.PressedAt
	}
	ev, err := h.Store.CreateHistory(c.Request.Context(), t.ID, at)
	if err != nil {
		c.JSON(500, gin.H{"message": err.Error()})
		return
	}
	out, err := h.enhance(c.Request.Context(), t)
	if err != nil {
		c.JSON(500, gin.H{"message": err.Error()})
		return
	}
	c.JSON(200, gin.H{"entry": ev, "timer": out})
}

// POST /api/v1/timers/:id/undo
// 撤销最新的 active 条目；没有可撤销的按良性无操作返回
func (h *Timers) Undo(c *gin.Context) {
	h.flip(c, h.Store.Undo, store.ErrNothingToUndo, "nothing to undo")
}

// POST /api/v1/timers/:id/redo
// 重做最新的 inactive 条目
func (h *Timers) Redo(c *gin.Context) {
	h.flip(c, h.Store.Redo, store.ErrNothingToRedo, "nothing to redo")
}

func (h *Timers) flip(c *gin.Context, op func(context.Context, uint) (models.PressEvent, error), noop error, msg string) {
	t, ok := h.mustOwnTimer(c)
	if !ok {
		return
	}
	ev, err := op(c.Request.Context(), t.ID)
	if errors.Is(err, noop) {
		c.JSON(200, gin.H{"ok": false, "message": msg})
		return
	}
	if err != nil {
		c.JSON(500, gin.H{"message": err.Error()})
		return
	}
	out, err := h.enhance(c.Request.Context(), t)
	if err != nil {
		c.JSON(500, gin.H{"message": err.Error()})
		return
	}
	c.JSON(200, gin.H{"ok": true, "entry": ev, "timer": out})
}
