package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Summary 获取统计：今日按下次数、近 7 天每天次数、全历史总次数
// GET /api/v1/stats/summary
func (h *Timers) Summary(c *gin.Context) {
	vid, ok := h.visitorID(c)
	if !ok {
		c.JSON(401, gin.H{"message": "no visitor"})
		return
	}
	now := h.Now()
	// 当天零点按 now 的时区算，别用 Truncate（那是 UTC 的零点）
	loc := now.Location()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	// 今日按下
	today, err := h.Store.HistoryRange(c.Request.Context(), vid, startOfDay, now)
	if err != nil {
		c.JSON(500, gin.H{"message": err.Error()})
		return
	}

	// 近 7 天（含今天），没有数据的日期也显示为 0
	weekAgo := startOfDay.AddDate(0, 0, -6)
	week, err := h.Store.HistoryRange(c.Request.Context(), vid, weekAgo, now)
	if err != nil {
		c.JSON(500, gin.H{"message": err.Error()})
		return
	}
	dayMap := map[string]int{}
	for _, ev := range week {
		// 分桶也统一用同一个时区的日期
		d := ev.PressedAt.In(loc).Format("2006-01-02")
		dayMap[d]++
	}
	last7 := make([]map[string]any, 0, 7)
	for i := 6; i >= 0; i-- {
		d := now.AddDate(0, 0, -i).Format("2006-01-02")
		last7 = append(last7, map[string]any{
			"date":    d,
			"presses": dayMap[d],
		})
	}

	// 总次数（全历史）
	all, err := h.Store.HistoryRange(c.Request.Context(), vid, time.Unix(0, 0), now)
	if err != nil {
		c.JSON(500, gin.H{"message": err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"today_presses": len(today),
		"last7d":        last7,
		"total_presses": len(all),
	})
}
