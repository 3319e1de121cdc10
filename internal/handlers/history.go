package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/presstimer/PressTimer-BE/internal/models"
	pkgerr "github.com/presstimer/PressTimer-BE/internal/pkg/err"
	"github.com/presstimer/PressTimer-BE/internal/store"
	"github.com/presstimer/PressTimer-BE/internal/timer"
)

// mustOwnHistory 取历史条目并沿着 timer 校验归属
func (h *Timers) mustOwnHistory(c *gin.Context) (models.PressEvent, bool) {
	vid, ok := h.visitorID(c)
	if !ok {
		c.JSON(401, gin.H{"message": "no visitor"})
		return models.PressEvent{}, false
	}
	id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		pkgerr.Msg(c, pkgerr.CodeBadParam, "bad history id")
		return models.PressEvent{}, false
	}
	ev, err := h.Store.GetHistory(c.Request.Context(), uint(id64))
	if errors.Is(err, store.ErrNotFound) {
		pkgerr.Msg(c, pkgerr.CodeNotFound, "history entry not found")
		return models.PressEvent{}, false
	}
	if err != nil {
		c.JSON(500, gin.H{"message": err.Error()})
		return models.PressEvent{}, false
	}
	t, err := h.Store.GetTimer(c.Request.Context(), ev.TimerID)
	if err != nil || t.VisitorID != vid {
		pkgerr.Msg(c, pkgerr.CodeNotFound, "history entry not found")
		return models.PressEvent{}, false
	}
	return ev, true
}

type historyPatchReq struct {
	IsActive  *bool      `json:"is_active"`
	PressedAt *time.Time `json:"pressed_at"`
}

// PATCH /api/v1/history/:id
// is_active 翻转实现撤销/重做，pressed_at 修正时间戳；两者可以同时带
// 返回更新后的条目和刷新过的计时器列表，前端一次换掉本地状态
func (h *Timers) UpdateHistory(c *gin.Context) {
	ev, ok := h.mustOwnHistory(c)
	if !ok {
		return
	}
	var req historyPatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		pkgerr.Msg(c, pkgerr.CodeBadParam, "bad body")
		return
	}
	if req.IsActive == nil && req.PressedAt == nil {
		pkgerr.Msg(c, pkgerr.CodeBadParam, "nothing to update")
		return
	}
	var err error
	if req.PressedAt != nil {
		ev, err = h.Store.EditHistoryTimestamp(c.Request.Context(), ev.ID, *req.PressedAt)
		if err != nil {
			c.JSON(500, gin.H{"message": err.Error()})
			return
		}
	}
	if req.IsActive != nil {
		ev, err = h.Store.SetHistoryActive(c.Request.Context(), ev.ID, *req.IsActive)
		if err != nil {
			c.JSON(500, gin.H{"message": err.Error()})
			return
		}
	}
	timers, err := h.enhanceAll(c)
	if err != nil {
		c.JSON(500, gin.H{"message": err.Error()})
		return
	}
	c.JSON(200, gin.H{"entry": ev, "timers": timers})
}

// DELETE /api/v1/history/:id  单条硬删除，不可恢复
func (h *Timers) DeleteHistory(c *gin.Context) {
	ev, ok := h.mustOwnHistory(c)
	if !ok {
		return
	}
	if err := h.Store.DeleteHistory(c.Request.Context(), ev.ID); err != nil {
		c.JSON(500, gin.H{"message": err.Error()})
		return
	}
	c.JSON(200, gin.H{"ok": true, "deleted": ev.ID})
}

// GET /api/v1/history?start=&end=
// 闭区间，只返回 active 条目（图表页用）
func (h *Timers) HistoryRange(c *gin.Context) {
	vid, ok := h.visitorID(c)
	if !ok {
		c.JSON(401, gin.H{"message": "no visitor"})
		return
	}
	start, err1 := time.Parse(time.RFC3339, c.Query("start"))
	end, err2 := time.Parse(time.RFC3339, c.Query("end"))
	if err1 != nil || err2 != nil {
		pkgerr.Msg(c, pkgerr.CodeBadParam, "start and end must be RFC3339 timestamps")
		return
	}
	if end.Before(start) {
		pkgerr.Msg(c, pkgerr.CodeBadParam, "end must not be before start")
		return
	}
	evs, err := h.Store.HistoryRange(c.Request.Context(), vid, start, end)
	if err != nil {
		c.JSON(500, gin.H{"message": err.Error()})
		return
	}
	c.JSON(200, evs)
}

// enhanceAll 把该游客所有未归档计时器投影一遍
func (h *Timers) enhanceAll(c *gin.Context) ([]timer.Enhanced, error) {
	vid, _ := h.visitorID(c)
	ts, err := h.Store.ListTimers(c.Request.Context(), vid, false)
	if err != nil {
		return nil, err
	}
	out := make([]timer.Enhanced, 0, len(ts))
	for _, t := range ts {
		e, err := h.enhance(c.Request.Context(), t)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
