package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/presstimer/PressTimer-BE/internal/pkg/middleware"
	"github.com/presstimer/PressTimer-BE/internal/store"
)

type testEnv struct {
	router *gin.Engine
	store  *store.MemStore
	th     *Timers
	now    time.Time // th.Now 返回这个值，测试里手动拨表
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	env := &testEnv{
		store: store.NewMemStore(),
		now:   time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC),
	}
	env.th = NewTimers(env.store)
	env.th.Now = func() time.Time { return env.now }

	r := gin.New()
	r.GET("/api/v1/timers", env.th.List)
	r.POST("/api/v1/timers", env.th.Create)
	r.PATCH("/api/v1/timers/:id", env.th.Update)
	r.POST("/api/v1/timers/:id/archive", env.th.Archive)
	r.DELETE("/api/v1/timers/archived", env.th.ClearArchived)
	r.POST("/api/v1/timers/:id/press", env.th.Press)
	r.POST("/api/v1/timers/:id/undo", env.th.Undo)
	r.POST("/api/v1/timers/:id/redo", env.th.Redo)
	r.PATCH("/api/v1/history/:id", env.th.UpdateHistory)
	r.DELETE("/api/v1/history/:id", env.th.DeleteHistory)
	r.GET("/api/v1/history", env.th.HistoryRange)
	r.GET("/api/v1/stats/summary", env.th.Summary)
	env.router = r
	return env
}

// do 带上游客 cookie 发请求
func (env *testEnv) do(t *testing.T, method, path, vid string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: middleware.VisitorCookie, Value: vid})
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return m
}

func (env *testEnv) createTimer(t *testing.T, vid string, minTime int64, maxTime *int64) uint {
	t.Helper()
	body := map[string]any{"label": "water", "min_time": minTime}
	if maxTime != nil {
		body["max_time"] = *maxTime
	}
	w := env.do(t, "POST", "/api/v1/timers", vid, body)
	if w.Code != 200 {
		t.Fatalf("create timer: status %d body %s", w.Code, w.Body.String())
	}
	m := decode(t, w)
	return uint(m["id"].(float64))
}

func TestCreateTimerValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, "POST", "/api/v1/timers", "v1", map[string]any{"min_time": 60})
	if w.Code != 400 {
		t.Fatalf("missing label should be 400, got %d", w.Code)
	}
	w = env.do(t, "POST", "/api/v1/timers", "v1", map[string]any{"label": "x", "min_time": 600, "max_time": 600})
	if w.Code != 400 {
		t.Fatalf("max_time == min_time should be 400, got %d", w.Code)
	}
	w = env.do(t, "POST", "/api/v1/timers", "v1", map[string]any{"label": "x", "min_time": -1})
	if w.Code != 400 {
		t.Fatalf("negative min_time should be 400, got %d", w.Code)
	}
}

func TestFirstPressAlwaysAllowed(t *testing.T) {
	env := newTestEnv(t)
	id := env.createTimer(t, "v1", 600, nil)

	// 从未按过：canPress=false 但第一次按下放行
	w := env.do(t, "GET", "/api/v1/timers", "v1", nil)
	var list []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list[0]["can_press"].(bool) {
		t.Fatal("fresh timer should have can_press=false")
	}
	if list[0]["last_pressed"] != nil {
		t.Fatalf("fresh timer should have null last_pressed, got %v", list[0]["last_pressed"])
	}

	w = env.do(t, "POST", fmt.Sprintf("/api/v1/timers/%d/press", id), "v1", nil)
	if w.Code != 200 {
		t.Fatalf("first press must succeed, got %d: %s", w.Code, w.Body.String())
	}

	// 间隔没到：第二次按被拒
	env.now = env.now.Add(100 * time.Second)
	w = env.do(t, "POST", fmt.Sprintf("/api/v1/timers/%d/press", id), "v1", nil)
	if w.Code != 400 {
		t.Fatalf("press below min_time should be 400, got %d", w.Code)
	}

	// 过了 minTime 就能按
	env.now = env.now.Add(600 * time.Second)
	w = env.do(t, "POST", fmt.Sprintf("/api/v1/timers/%d/press", id), "v1", nil)
	if w.Code != 200 {
		t.Fatalf("press past min_time should succeed, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPressUndoRedoRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	id := env.createTimer(t, "v1", 600, nil)

	w := env.do(t, "POST", fmt.Sprintf("/api/v1/timers/%d/press", id), "v1", nil)
	if w.Code != 200 {
		t.Fatalf("press: %d", w.Code)
	}
	pressed := decode(t, w)["timer"].(map[string]any)

	env.now = env.now.Add(30 * time.Second)

	w = env.do(t, "POST", fmt.Sprintf("/api/v1/timers/%d/undo", id), "v1", nil)
	m := decode(t, w)
	if w.Code != 200 || m["ok"] != true {
		t.Fatalf("undo failed: %d %v", w.Code, m)
	}
	if m["timer"].(map[string]any)["last_pressed"] != nil {
		t.Fatal("after undo last_pressed should be null")
	}

	w = env.do(t, "POST", fmt.Sprintf("/api/v1/timers/%d/redo", id), "v1", nil)
	m = decode(t, w)
	if w.Code != 200 || m["ok"] != true {
		t.Fatalf("redo failed: %d %v", w.Code, m)
	}
	// 重做后回到按下时的 lastPressed
	got := m["timer"].(map[string]any)["last_pressed"]
	if got != pressed["last_pressed"] {
		t.Fatalf("redo should restore last_pressed: %v vs %v", got, pressed["last_pressed"])
	}
}

func TestUndoNothingIsBenign(t *testing.T) {
	env := newTestEnv(t)
	id := env.createTimer(t, "v1", 600, nil)

	w := env.do(t, "POST", fmt.Sprintf("/api/v1/timers/%d/undo", id), "v1", nil)
	m := decode(t, w)
	if w.Code != 200 {
		t.Fatalf("no-op undo should still be 200, got %d", w.Code)
	}
	if m["ok"] != false || m["message"] != "nothing to undo" {
		t.Fatalf("expected benign no-op, got %v", m)
	}
}

func TestTimerOwnershipHidesOthers(t *testing.T) {
	env := newTestEnv(t)
	id := env.createTimer(t, "v1", 600, nil)

	// 别的游客按同一个 ID：按不存在处理
	w := env.do(t, "POST", fmt.Sprintf("/api/v1/timers/%d/press", id), "v2", nil)
	if w.Code != 404 {
		t.Fatalf("foreign timer should 404, got %d", w.Code)
	}
	w = env.do(t, "POST", "/api/v1/timers/9999/press", "v1", nil)
	if w.Code != 404 {
		t.Fatalf("unknown timer should 404, got %d", w.Code)
	}
}

func TestPastPressAndHistoryEdit(t *testing.T) {
	env := newTestEnv(t)
	id := env.createTimer(t, "v1", 600, nil)

	// 手动补录一条过去的按下
	past := env.now.Add(-2 * time.Hour)
	w := env.do(t, "POST", fmt.Sprintf("/api/v1/timers/%d/press", id), "v1",
		map[string]any{"pressed_at": past.Format(time.RFC3339)})
	if w.Code != 200 {
		t.Fatalf("past press: %d %s", w.Code, w.Body.String())
	}
	entry := decode(t, w)["entry"].(map[string]any)
	entryID := uint(entry["id"].(float64))

	// 改时间戳
	newAt := env.now.Add(-1 * time.Hour)
	w = env.do(t, "PATCH", fmt.Sprintf("/api/v1/history/%d", entryID), "v1",
		map[string]any{"pressed_at": newAt.Format(time.RFC3339)})
	if w.Code != 200 {
		t.Fatalf("edit timestamp: %d %s", w.Code, w.Body.String())
	}
	m := decode(t, w)
	if m["timers"] == nil {
		t.Fatal("history patch should return refreshed timers")
	}

	// is_active=false 等价撤销
	w = env.do(t, "PATCH", fmt.Sprintf("/api/v1/history/%d", entryID), "v1",
		map[string]any{"is_active": false})
	if w.Code != 200 {
		t.Fatalf("deactivate: %d", w.Code)
	}

	// 单条硬删除
	w = env.do(t, "DELETE", fmt.Sprintf("/api/v1/history/%d", entryID), "v1", nil)
	if w.Code != 200 {
		t.Fatalf("delete: %d", w.Code)
	}
	w = env.do(t, "DELETE", fmt.Sprintf("/api/v1/history/%d", entryID), "v1", nil)
	if w.Code != 404 {
		t.Fatalf("double delete should 404, got %d", w.Code)
	}
}

func TestHistoryRangeEndpoint(t *testing.T) {
	env := newTestEnv(t)
	id := env.createTimer(t, "v1", 0, nil)

	at := env.now.Add(-30 * time.Minute)
	w := env.do(t, "POST", fmt.Sprintf("/api/v1/timers/%d/press", id), "v1",
		map[string]any{"pressed_at": at.Format(time.RFC3339)})
	if w.Code != 200 {
		t.Fatalf("press: %d", w.Code)
	}

	start := env.now.Add(-time.Hour).Format(time.RFC3339)
	end := env.now.Format(time.RFC3339)
	w = env.do(t, "GET", "/api/v1/history?start="+start+"&end="+end, "v1", nil)
	if w.Code != 200 {
		t.Fatalf("range: %d %s", w.Code, w.Body.String())
	}
	var evs []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &evs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(evs) != 1 {
		t.Fatalf("expected 1 entry in range, got %d", len(evs))
	}

	// 缺参数 → 400
	w = env.do(t, "GET", "/api/v1/history?start="+start, "v1", nil)
	if w.Code != 400 {
		t.Fatalf("missing end should 400, got %d", w.Code)
	}
}

func TestArchiveFlow(t *testing.T) {
	env := newTestEnv(t)
	keep := env.createTimer(t, "v1", 600, nil)
	gone := env.createTimer(t, "v1", 600, nil)

	w := env.do(t, "POST", fmt.Sprintf("/api/v1/timers/%d/archive", gone), "v1", nil)
	if w.Code != 200 {
		t.Fatalf("archive: %d", w.Code)
	}

	var list []map[string]any
	w = env.do(t, "GET", "/api/v1/timers", "v1", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list) != 1 || uint(list[0]["id"].(float64)) != keep {
		t.Fatalf("default list should hide archived: %v", list)
	}

	w = env.do(t, "GET", "/api/v1/timers?include_archived=1", "v1", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list) != 2 {
		t.Fatalf("include_archived should show both, got %d", len(list))
	}

	w = env.do(t, "DELETE", "/api/v1/timers/archived", "v1", nil)
	m := decode(t, w)
	if w.Code != 200 || m["deleted"].(float64) != 1 {
		t.Fatalf("clear archived: %d %v", w.Code, m)
	}
}

func TestUpdateTimerPatch(t *testing.T) {
	env := newTestEnv(t)
	id := env.createTimer(t, "v1", 600, nil)

	w := env.do(t, "PATCH", fmt.Sprintf("/api/v1/timers/%d", id), "v1",
		map[string]any{"label": "tea", "max_time": 1200})
	if w.Code != 200 {
		t.Fatalf("patch: %d %s", w.Code, w.Body.String())
	}
	m := decode(t, w)
	if m["label"] != "tea" || m["max_time"].(float64) != 1200 {
		t.Fatalf("patch not applied: %v", m)
	}
	if m["min_time"].(float64) != 600 {
		t.Fatalf("untouched field changed: %v", m)
	}

	// 合并后 max <= min 拒绝
	w = env.do(t, "PATCH", fmt.Sprintf("/api/v1/timers/%d", id), "v1",
		map[string]any{"min_time": 1200})
	if w.Code != 400 {
		t.Fatalf("merged max<=min should 400, got %d", w.Code)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	env := newTestEnv(t)
	id := env.createTimer(t, "v1", 0, nil)

	today := env.now.Add(-2 * time.Hour)
	threeDaysAgo := env.now.AddDate(0, 0, -3)
	for _, at := range []time.Time{today, threeDaysAgo} {
		w := env.do(t, "POST", fmt.Sprintf("/api/v1/timers/%d/press", id), "v1",
			map[string]any{"pressed_at": at.Format(time.RFC3339)})
		if w.Code != 200 {
			t.Fatalf("press: %d", w.Code)
		}
	}

	w := env.do(t, "GET", "/api/v1/stats/summary", "v1", nil)
	if w.Code != 200 {
		t.Fatalf("summary: %d", w.Code)
	}
	m := decode(t, w)
	if m["today_presses"].(float64) != 1 {
		t.Fatalf("expected 1 press today, got %v", m["today_presses"])
	}
	if m["total_presses"].(float64) != 2 {
		t.Fatalf("expected 2 total, got %v", m["total_presses"])
	}
	if len(m["last7d"].([]any)) != 7 {
		t.Fatalf("last7d must have 7 buckets")
	}
}

func TestSummaryUsesLocalDayBoundary(t *testing.T) {
	env := newTestEnv(t)
	// 东八区早上九点：UTC 还是昨天，当天零点必须按本地时区算
	loc := time.FixedZone("UTC+8", 8*3600)
	env.now = time.Date(2026, 8, 26, 9, 0, 0, 0, loc)
	id := env.createTimer(t, "v1", 0, nil)

	// 本地今天 00:30（UTC 的 25 号 16:30）按下的一条，今日统计要算进来
	earlyToday := time.Date(2026, 8, 26, 0, 30, 0, 0, loc)
	// 本地昨天 23:30 的一条，不能混进今日
	lateYesterday := time.Date(2026, 8, 25, 23, 30, 0, 0, loc)
	for _, at := range []time.Time{earlyToday, lateYesterday} {
		w := env.do(t, "POST", fmt.Sprintf("/api/v1/timers/%d/press", id), "v1",
			map[string]any{"pressed_at": at.Format(time.RFC3339)})
		if w.Code != 200 {
			t.Fatalf("press: %d %s", w.Code, w.Body.String())
		}
	}

	w := env.do(t, "GET", "/api/v1/stats/summary", "v1", nil)
	if w.Code != 200 {
		t.Fatalf("summary: %d", w.Code)
	}
	m := decode(t, w)
	if m["today_presses"].(float64) != 1 {
		t.Fatalf("expected exactly the 00:30 press today, got %v", m["today_presses"])
	}
	// 两条都落在近 7 天里，且分到相邻的两个本地日期桶
	buckets := m["last7d"].([]any)
	last := buckets[6].(map[string]any)
	prev := buckets[5].(map[string]any)
	if last["date"] != "2026-08-26" || last["presses"].(float64) != 1 {
		t.Fatalf("today bucket wrong: %v", last)
	}
	if prev["date"] != "2026-08-25" || prev["presses"].(float64) != 1 {
		t.Fatalf("yesterday bucket wrong: %v", prev)
	}
}
