package tesla

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/langchou/tesgo/internal/state"
)

// tokenExpiryMargin 提前视为过期的时间，避免请求途中 token 失效
const tokenExpiryMargin = 5 * time.Minute

// Token 认证令牌
type Token struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"` // 秒
	RefreshToken string    `json:"refresh_token,omitempty"`
	CreatedAt    time.Time `json:"-"`
}

// tokenJSON 线上格式，created_at 为 unix 秒
type tokenJSON struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	CreatedAt    int64  `json:"created_at"`
}

// MarshalJSON 实现 json.Marshaler
func (t Token) MarshalJSON() ([]byte, error) {
	var createdAt int64
	if !t.CreatedAt.IsZero() {
		createdAt = t.CreatedAt.Unix()
	}
	return json.Marshal(tokenJSON{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		ExpiresIn:    t.ExpiresIn,
		RefreshToken: t.RefreshToken,
		CreatedAt:    createdAt,
	})
}

// UnmarshalJSON 实现 json.Unmarshaler
func (t *Token) UnmarshalJSON(data []byte) error {
	var raw tokenJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Token{
		AccessToken:  raw.AccessToken,
		TokenType:    raw.TokenType,
		ExpiresIn:    raw.ExpiresIn,
		RefreshToken: raw.RefreshToken,
	}
	if raw.CreatedAt != 0 {
		t.CreatedAt = time.Unix(raw.CreatedAt, 0)
	}
	return nil
}

// ExpiresAt token 的实际过期时间（不含安全余量）
func (t *Token) ExpiresAt() time.Time {
	return t.CreatedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// IsValidAt 检查 token 在给定时间是否仍然有效
func (t *Token) IsValidAt(now time.Time) bool {
	if t == nil {
		return false
	}
	return now.Before(t.ExpiresAt().Add(-tokenExpiryMargin))
}

// IsValid 检查 token 当前是否有效
func (t *Token) IsValid() bool {
	return t.IsValidAt(time.Now())
}

type loginFunc func(ctx context.Context, email, password string) (*Token, error)

// tokenManager 持有凭据和当前 token，决定何时需要重新认证
type tokenManager struct {
	mu             sync.RWMutex
	token          *Token
	email          string
	password       string
	hasCredentials bool

	flight  singleflight.Group
	machine *state.Machine
	login   loginFunc
	now     func() time.Time
	logger  *zap.Logger
	metrics *metrics
}

func newTokenManager(login loginFunc, now func() time.Time, logger *zap.Logger, m *metrics) *tokenManager {
	tm := &tokenManager{
		login:   login,
		now:     now,
		logger:  logger,
		metrics: m,
	}
	tm.machine = state.NewMachine(func(from, to string) {
		logger.Info("Authentication state changed",
			zap.String("from", from),
			zap.String("to", to))
	})
	return tm
}

// current 返回当前 token（可能已过期）
func (m *tokenManager) current() *Token {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// checkToken 返回当前 token 是否有效，无副作用
func (m *tokenManager) checkToken() bool {
	return m.current().IsValidAt(m.now())
}

// checkAuthentication token 有效时直接返回，否则使用已保存的凭据重新认证
func (m *tokenManager) checkAuthentication(ctx context.Context) (*Token, error) {
	m.mu.RLock()
	token := m.token
	email, password, ok := m.email, m.password, m.hasCredentials
	m.mu.RUnlock()

	if token.IsValidAt(m.now()) {
		return token, nil
	}

	if token != nil {
		m.logger.Debug("Access token expired", zap.Time("expires_at", token.ExpiresAt()))
		m.trigger(state.EventExpire)
	}

	if !ok {
		return nil, ErrAuthenticationRequired
	}

	// 同一时间只允许一个重新认证请求，其余调用者共享结果
	// 请求不随发起者的 ctx 取消，每个调用者只等待自己的 ctx
	flightCtx := context.WithoutCancel(ctx)
	ch := m.flight.DoChan("reauthenticate", func() (any, error) {
		if current := m.current(); current.IsValidAt(m.now()) {
			return current, nil
		}
		m.metrics.reauthenticated()
		m.logger.Info("Re-authenticating with stored credentials")
		return m.authenticate(flightCtx, email, password)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			m.logger.Debug("Joined in-flight authentication")
		}
		return res.Val.(*Token), nil
	}
}

// authenticate 保存凭据并请求新 token
// 失败时保留凭据，清除 token
func (m *tokenManager) authenticate(ctx context.Context, email, password string) (*Token, error) {
	m.mu.Lock()
	m.email = email
	m.password = password
	m.hasCredentials = true
	m.mu.Unlock()

	token, err := m.login(ctx, email, password)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.token = nil
		m.trigger(state.EventAuthFailed)
		return nil, err
	}
	m.token = token
	m.trigger(state.EventTokenIssued)
	return token, nil
}

// set 直接设置 token，nil 表示清除
func (m *tokenManager) set(token *Token) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	if token == nil {
		m.trigger(state.EventReset)
		return
	}
	m.trigger(state.EventTokenIssued)
}

func (m *tokenManager) trigger(event string) {
	if !m.machine.CanTransition(event) {
		return
	}
	if err := m.machine.Trigger(event); err != nil {
		m.logger.Warn("Failed to update authentication state", zap.Error(err))
	}
}
