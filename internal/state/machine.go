package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/looplab/fsm"
)

// 认证状态常量
const (
	StateUnauthenticated = "unauthenticated"
	StateAuthenticated   = "authenticated"
)

// 事件常量
const (
	EventTokenIssued = "token_issued" // 认证成功，获得新 token
	EventAuthFailed  = "auth_failed"  // 认证失败，token 被清除
	EventExpire      = "expire"       // token 过期
	EventReset       = "reset"        // 手动清除 token
)

// Machine 认证状态机
type Machine struct {
	mu            sync.RWMutex
	fsm           *fsm.FSM
	since         time.Time
	onStateChange func(from, to string)
}

// NewMachine 创建状态机
func NewMachine(onStateChange func(from, to string)) *Machine {
	m := &Machine{
		onStateChange: onStateChange,
		since:         time.Now(),
	}

	m.fsm = fsm.NewFSM(
		StateUnauthenticated,
		fsm.Events{
			// 重新认证会覆盖旧 token，因此 authenticated -> authenticated 也是合法的
			{Name: EventTokenIssued, Src: []string{StateUnauthenticated, StateAuthenticated}, Dst: StateAuthenticated},
			{Name: EventAuthFailed, Src: []string{StateUnauthenticated, StateAuthenticated}, Dst: StateUnauthenticated},
			{Name: EventExpire, Src: []string{StateAuthenticated}, Dst: StateUnauthenticated},
			{Name: EventReset, Src: []string{StateAuthenticated}, Dst: StateUnauthenticated},
		},
		fsm.Callbacks{
			"after_event": func(ctx context.Context, e *fsm.Event) {
				if m.onStateChange != nil && e.Src != e.Dst {
					m.onStateChange(e.Src, e.Dst)
				}
			},
		},
	)

	return m
}

// Current 获取当前状态
func (m *Machine) Current() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fsm.Current()
}

// Since 当前状态的起始时间
func (m *Machine) Since() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.since
}

// IsAuthenticated 是否处于已认证状态
func (m *Machine) IsAuthenticated() bool {
	return m.Current() == StateAuthenticated
}

// Trigger 触发事件
// 自环事件 (authenticated -> authenticated) 不视为错误
func (m *Machine) Trigger(event string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	from := m.fsm.Current()
	if err := m.fsm.Event(context.Background(), event); err != nil {
		var noTransition fsm.NoTransitionError
		if !errors.As(err, &noTransition) {
			return fmt.Errorf("trigger event %s: %w", event, err)
		}
	}

	if m.fsm.Current() != from {
		m.since = time.Now()
	}
	return nil
}

// CanTransition 检查是否可以转换
func (m *Machine) CanTransition(event string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fsm.Can(event)
}
