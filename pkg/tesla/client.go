// Package tesla 是 Tesla owner API 的客户端：认证、车辆列表、车辆状态和远程指令。
package tesla

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultClientID     = "e4a9949fcfa04068f59abb5a658f2bac0a3428e4652315490b659d5ab3f35a9e"
	defaultClientSecret = "c75f14bbadc8bee3a7594412c31416f8300256d7668ea7e6e7f06727bfb9d220"
	defaultUserAgent    = "tesgo/1.0"
)

// Client Tesla API 客户端
type Client struct {
	httpClient    Doer
	baseURL       string
	mockBaseURL   string
	useMockServer bool
	debug         bool
	clientID      string
	clientSecret  string
	userAgent     string
	logger        *zap.Logger
	metrics       *metrics
	now           func() time.Time

	tokens *tokenManager
}

// Option 客户端配置项
type Option func(*Client)

// WithMockServer 使用 mock base URL
func WithMockServer(enabled bool) Option {
	return func(c *Client) {
		c.useMockServer = enabled
	}
}

// WithDebug 开启请求和请求体的 Debug 日志
// 请求体可能包含指令参数，生产环境不要开启
func WithDebug(enabled bool) Option {
	return func(c *Client) {
		c.debug = enabled
	}
}

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient 设置传输层
func WithHTTPClient(doer Doer) Option {
	return func(c *Client) {
		if doer != nil {
			c.httpClient = doer
		}
	}
}

// WithBaseURL 覆盖生产环境 base URL
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithMockBaseURL 覆盖 mock base URL
func WithMockBaseURL(url string) Option {
	return func(c *Client) {
		c.mockBaseURL = url
	}
}

// WithClock 设置时间源，用于判断 token 是否过期
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithMetrics 在 reg 上注册请求指标
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) {
		if reg != nil {
			c.metrics = newMetrics(reg)
		}
	}
}

// WithClientCredentials 覆盖 OAuth client id/secret
func WithClientCredentials(id, secret string) Option {
	return func(c *Client) {
		c.clientID = id
		c.clientSecret = secret
	}
}

// WithUserAgent 设置 User-Agent
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// NewClient 创建新的 Tesla API 客户端
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:      ProductionBaseURL,
		mockBaseURL:  MockBaseURL,
		clientID:     defaultClientID,
		clientSecret: defaultClientSecret,
		userAgent:    defaultUserAgent,
		logger:       zap.NewNop(),
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.tokens = newTokenManager(c.login, c.now, c.logger, c.metrics)
	return c
}

// authRequest 认证请求体
type authRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

func (r authRequest) redacted() any {
	r.Password = "<redacted>"
	r.ClientSecret = "<redacted>"
	return r
}

// login 发送认证请求，不修改客户端状态
func (c *Client) login(ctx context.Context, email, password string) (*Token, error) {
	body := authRequest{
		Email:        email,
		Password:     password,
		GrantType:    "password",
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
	}

	token, err := requestObject[Token](ctx, c, Endpoint{Kind: EndpointAuthentication}, nil, body, "")
	if err != nil {
		c.logger.Warn("Authentication failed", zap.Error(err))
		return nil, err
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = c.now()
	}

	c.logger.Info("Authenticated", zap.Time("expires_at", token.ExpiresAt()))
	return &token, nil
}

// Authenticate 使用邮箱和密码认证
// 凭据会被保存，token 过期后自动重新认证
func (c *Client) Authenticate(ctx context.Context, email, password string) (*Token, error) {
	return c.tokens.authenticate(ctx, email, password)
}

// IsAuthenticated 是否持有 token（不检查是否过期）
func (c *Client) IsAuthenticated() bool {
	return c.tokens.current() != nil
}

// AuthState 当前认证状态，见 internal/state
func (c *Client) AuthState() string {
	return c.tokens.machine.Current()
}

// Token 获取当前令牌
func (c *Client) Token() *Token {
	return c.tokens.current()
}

// SetToken 设置认证令牌，例如从文件恢复
func (c *Client) SetToken(token *Token) {
	c.tokens.set(token)
}

// GetVehicles 获取车辆列表
func (c *Client) GetVehicles(ctx context.Context) ([]Vehicle, error) {
	token, err := c.tokens.checkAuthentication(ctx)
	if err != nil {
		return nil, err
	}
	return requestList[Vehicle](ctx, c, Endpoint{Kind: EndpointVehicles}, token, nil, responseKeyPath)
}

// GetVehicleStatus 并发获取六个子状态并组合为 VehicleDetails
// 任意一个失败则整体失败，返回该子请求的错误
// 六个子请求共用开始时取得的同一个 token
func (c *Client) GetVehicleStatus(ctx context.Context, vehicle Vehicle) (*VehicleDetails, error) {
	token, err := c.tokens.checkAuthentication(ctx)
	if err != nil {
		return nil, err
	}

	id := vehicle.ID
	details := &VehicleDetails{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := requestAny(gctx, c, Endpoint{Kind: EndpointMobileAccess, VehicleID: id}, token, nil)
		if err != nil {
			return err
		}
		enabled, err := mobileAccessFlag(v)
		if err != nil {
			return &NetworkError{Op: Endpoint{Kind: EndpointMobileAccess, VehicleID: id}.String(), Err: err}
		}
		details.MobileAccess = enabled
		return nil
	})
	g.Go(fetchState(gctx, c, token, EndpointChargeState, id, &details.ChargeState))
	g.Go(fetchState(gctx, c, token, EndpointClimateState, id, &details.ClimateState))
	g.Go(fetchState(gctx, c, token, EndpointDriveState, id, &details.DriveState))
	g.Go(fetchState(gctx, c, token, EndpointGuiSettings, id, &details.GuiSettings))
	g.Go(fetchState(gctx, c, token, EndpointVehicleState, id, &details.VehicleState))

	if err := g.Wait(); err != nil {
		c.logger.Debug("Vehicle status fetch failed", zap.Int64("vehicle_id", id), zap.Error(err))
		return nil, err
	}
	return details, nil
}

// fetchState 获取一个子状态写入 dst，每个 goroutine 只写自己的字段
func fetchState[T any](ctx context.Context, c *Client, token *Token, kind EndpointKind, vehicleID int64, dst **T) func() error {
	return func() error {
		v, err := requestObject[T](ctx, c, Endpoint{Kind: kind, VehicleID: vehicleID}, token, nil, responseKeyPath)
		if err != nil {
			return err
		}
		*dst = &v
		return nil
	}
}

// mobileAccessFlag 从 {"response": true} 中取出布尔值
func mobileAccessFlag(v any) (bool, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return false, fmt.Errorf("decode mobile access: unexpected %T", v)
	}
	enabled, ok := obj[responseKeyPath].(bool)
	if !ok {
		return false, fmt.Errorf("decode mobile access: %q is not a bool", responseKeyPath)
	}
	return enabled, nil
}

// SendCommandToVehicle 向车辆发送远程指令
func (c *Client) SendCommandToVehicle(ctx context.Context, vehicle Vehicle, cmd Command) (*CommandResponse, error) {
	token, err := c.tokens.checkAuthentication(ctx)
	if err != nil {
		return nil, err
	}

	path, body, err := EncodeCommand(cmd)
	if err != nil {
		return nil, err
	}

	resp, err := requestObject[CommandResponse](ctx, c,
		Endpoint{Kind: EndpointCommand, VehicleID: vehicle.ID, CommandPath: path}, token, body, responseKeyPath)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Command sent",
		zap.Int64("vehicle_id", vehicle.ID),
		zap.String("command", fmt.Sprintf("%T", cmd)),
		zap.Bool("result", resp.Result))
	return &resp, nil
}
