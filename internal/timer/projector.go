package timer

import (
	"time"

	"github.com/presstimer/PressTimer-BE/internal/models"
)

// Enhanced 是只读的派生视图，每次读取现算，从不落库
type Enhanced struct {
	models.Timer
	LastPressed *time.Time `json:"last_pressed"`
	ElapsedTime int64      `json:"elapsed_time"` // 距上次按下的秒数，没按过为 0
	Progress    float64    `json:"progress"`     // 0-100
	CanPress    bool       `json:"can_press"`
	CanUndo     bool       `json:"can_undo"`
	CanRedo     bool       `json:"can_redo"`
}

// Project 由 (计时器, 最近一次有效按下时间, 当前时间) 推出派生字段
// 纯算术，服务端和客户端跑同一份逻辑，结果只差时钟偏移
func Project(t models.Timer, lastPressed *time.Time, now time.Time) Enhanced {
	e := Enhanced{Timer: t, LastPressed: lastPressed}
	if lastPressed != nil {
		sec := int64(now.Sub(*lastPressed).Seconds())
		if sec < 0 {
			sec = 0 // 未来时间戳（手动补录）按 0 算
		}
		e.ElapsedTime = sec
	}
	e.Progress = progress(e.ElapsedTime, t.MinTime, t.MaxTime)
	e.CanPress = e.ElapsedTime >= t.MinTime
	return e
}

// progress 计算 0-100 的进度
// minTime 是 50% 的刻度，maxTime 是 100% 的刻度
func progress(elapsed, minTime int64, maxTime *int64) float64 {
	if maxTime != nil && *maxTime > minTime {
		mx := *maxTime
		switch {
		case minTime == 0:
			// minTime=0 时前半段没有意义，从 50% 起步直接向 maxTime 爬
			if elapsed >= mx {
				return 100
			}
			return 50 + float64(elapsed)/float64(mx)*50
		case elapsed <= minTime:
			return float64(elapsed) / float64(minTime) * 50
		case elapsed >= mx:
			return 100
		default:
			return 50 + float64(elapsed-minTime)/float64(mx-minTime)*50
		}
	}
	if minTime > 0 {
		p := float64(elapsed) / float64(minTime) * 100
		if p > 100 {
			return 100
		}
		return p
	}
	return 0
}
