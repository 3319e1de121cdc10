package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/presstimer/PressTimer-BE/internal/timer"
)

// Ticker 客户端本地走表：每秒在本地重跑一遍投影让界面动起来，
// 只在较长的同步间隔（或按下成功后）才找服务端要权威数据
// 显式持有可取消的生命周期，不搞包级全局定时器
type Ticker struct {
	BaseURL  string
	HTTP     *http.Client
	Tick     time.Duration // 本地重算间隔，默认 1s
	Sync     time.Duration // 服务端对账间隔，默认 30s
	OnUpdate func([]timer.Enhanced)

	mu         sync.Mutex
	cached     []timer.Enhanced
	lastSynced time.Time
	cancel     context.CancelFunc
	now        func() time.Time
}

func NewTicker(baseURL string, onUpdate func([]timer.Enhanced)) *Ticker {
	return &Ticker{
		BaseURL:  baseURL,
		HTTP:     http.DefaultClient,
		Tick:     time.Second,
		Sync:     30 * time.Second,
		OnUpdate: onUpdate,
		now:      time.Now,
	}
}

// Start 先拉一次权威数据，然后起走表循环；重复调用前先 Stop
func (tk *Ticker) Start(ctx context.Context) error {
	if err := tk.Refetch(ctx); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	tk.mu.Lock()
	tk.cancel = cancel
	tk.mu.Unlock()
	go tk.loop(ctx)
	return nil
}

// Stop 停止走表循环
func (tk *Ticker) Stop() {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	if tk.cancel != nil {
		tk.cancel()
		tk.cancel = nil
	}
}

func (tk *Ticker) loop(ctx context.Context) {
	tick := time.NewTicker(tk.Tick)
	reconcile := time.NewTicker(tk.Sync)
	defer tick.Stop()
	defer reconcile.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			tk.recompute()
		case <-reconcile.C:
			// 对账失败不中断走表，下个周期再试
			_ = tk.Refetch(ctx)
		}
	}
}

// recompute 用缓存的 lastPressed 在本地重跑投影
// 只读已提交的状态，不会和网络层抢写
func (tk *Ticker) recompute() {
	tk.mu.Lock()
	now := tk.now()
	out := make([]timer.Enhanced, len(tk.cached))
	for i, e := range tk.cached {
		p := timer.Project(e.Timer, e.LastPressed, now)
		p.CanUndo = e.CanUndo
		p.CanRedo = e.CanRedo
		out[i] = p
	}
	tk.cached = out
	cb := tk.OnUpdate
	tk.mu.Unlock()
	if cb != nil {
		cb(out)
	}
}

// Refetch 从服务端拉权威数据并整体替换本地缓存
func (tk *Ticker) Refetch(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tk.BaseURL+"/api/v1/timers", nil)
	if err != nil {
		return err
	}
	resp, err := tk.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("refetch: unexpected status %d", resp.StatusCode)
	}
	var ts []timer.Enhanced
	if err := json.NewDecoder(resp.Body).Decode(&ts); err != nil {
		return err
	}
	tk.mu.Lock()
	tk.cached = ts
	tk.lastSynced = tk.now()
	cb := tk.OnUpdate
	tk.mu.Unlock()
	if cb != nil {
		cb(ts)
	}
	return nil
}

// ApplyPress 按下成功后用服务端返回的计时器立即替换本地那一条，
// 不等下一次对账，避免界面上的滞后
func (tk *Ticker) ApplyPress(e timer.Enhanced) {
	tk.mu.Lock()
	replaced := false
	for i := range tk.cached {
		if tk.cached[i].ID == e.ID {
			tk.cached[i] = e
			replaced = true
			break
		}
	}
	if !replaced {
		tk.cached = append(tk.cached, e)
	}
	out := make([]timer.Enhanced, len(tk.cached))
	copy(out, tk.cached)
	cb := tk.OnUpdate
	tk.mu.Unlock()
	if cb != nil {
		cb(out)
	}
}

// LastSynced 上次和服务端对上账的时间
func (tk *Ticker) LastSynced() time.Time {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	return tk.lastSynced
}

// Snapshot 当前本地缓存的副本
func (tk *Ticker) Snapshot() []timer.Enhanced {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	out := make([]timer.Enhanced, len(tk.cached))
	copy(out, tk.cached)
	return out
}
