package mockserver

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langchou/tesgo/pkg/tesla"
)

// Account mock 账户
type Account struct {
	Email    string
	Password string
}

// Server 模拟 owner API 的 HTTP 服务
type Server struct {
	logger   *zap.Logger
	account  Account
	tokenTTL time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	tokens   map[string]time.Time // access token -> 过期时间
	vehicles map[int64]*vehicleFixture
	order    []int64
	faults   map[string]int // 端点名 -> 注入的 HTTP 状态码

	authRequests atomic.Int64
	metrics      *serverMetrics
}

// vehicleFixture 单辆车的全部状态
type vehicleFixture struct {
	vehicle      tesla.Vehicle
	mobileAccess bool
	charge       tesla.ChargeState
	climate      tesla.ClimateState
	drive        tesla.DriveState
	gui          tesla.GuiSettings
	state        tesla.VehicleState
}

// Option 配置项
type Option func(*Server)

// WithAccount 设置可登录的账户
func WithAccount(email, password string) Option {
	return func(s *Server) {
		s.account = Account{Email: email, Password: password}
	}
}

// WithTokenTTL 设置签发 token 的有效期
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.tokenTTL = ttl
	}
}

// WithClock 设置时间源
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// WithVehicle 添加一辆车，使用默认状态
func WithVehicle(v tesla.Vehicle) Option {
	return func(s *Server) {
		s.addVehicle(v)
	}
}

// New 创建 mock 服务
func New(logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		logger:   logger,
		account:  Account{Email: "elon@tesla.com", Password: "edison"},
		tokenTTL: 45 * 24 * time.Hour,
		now:      time.Now,
		tokens:   make(map[string]time.Time),
		vehicles: make(map[int64]*vehicleFixture),
		faults:   make(map[string]int),
		metrics:  newServerMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.vehicles) == 0 {
		s.addVehicle(DefaultVehicle)
	}
	return s
}

func (s *Server) addVehicle(v tesla.Vehicle) {
	if _, exists := s.vehicles[v.ID]; !exists {
		s.order = append(s.order, v.ID)
	}
	s.vehicles[v.ID] = newFixture(v)
}

// Router 创建带全部路由的 gin engine
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.loggingMiddleware())
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes 注册路由
func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.POST("/oauth/token", s.IssueToken)

	api := r.Group("/api/1", s.authMiddleware())
	{
		api.GET("/vehicles", s.ListVehicles)
		api.GET("/vehicles/:id/mobile_enabled", s.MobileEnabled)
		api.GET("/vehicles/:id/data_request/:state", s.DataRequest)
		api.POST("/vehicles/:id/wake_up", s.WakeUp)
		api.POST("/vehicles/:id/command/:command", s.Command)
	}

	// 健康检查
	r.GET("/health", s.HealthCheck)
}

// InjectFault 让指定端点返回 status，status 为 0 时取消
// 端点名与 tesla.EndpointKind.String() 一致，例如 "climate_state"
func (s *Server) InjectFault(endpoint string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.faults, endpoint)
		return
	}
	s.faults[endpoint] = status
}

// AuthRequests 已收到的认证请求数
func (s *Server) AuthRequests() int64 {
	return s.authRequests.Load()
}

// RevokeTokens 使所有已签发的 token 失效
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]time.Time)
}

// abortOnFault 存在注入的故障时中止请求
func (s *Server) abortOnFault(c *gin.Context, endpoint string) bool {
	s.mu.RLock()
	status, ok := s.faults[endpoint]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	s.metrics.fault(endpoint, status)
	c.AbortWithStatusJSON(status, gin.H{"response": nil, "error": http.StatusText(status)})
	return true
}

func newAccessToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
