package mockserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langchou/tesgo/pkg/tesla"
)

type tokenRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// IssueToken 签发 token
// POST /oauth/token
func (s *Server) IssueToken(c *gin.Context) {
	s.authRequests.Add(1)

	if s.abortOnFault(c, "authentication") {
		s.metrics.authRequests.WithLabelValues("fault").Inc()
		return
	}

	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.metrics.authRequests.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if req.GrantType != "password" || req.ClientID == "" || req.ClientSecret == "" {
		s.metrics.authRequests.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_grant_type"})
		return
	}
	if req.Email != s.account.Email || req.Password != s.account.Password {
		s.metrics.authRequests.WithLabelValues("rejected").Inc()
		s.logger.Info("Rejected login", zap.String("email", req.Email))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_grant"})
		return
	}
	s.metrics.authRequests.WithLabelValues("issued").Inc()

	now := s.now()
	token := newAccessToken()

	s.mu.Lock()
	s.tokens[token] = now.Add(s.tokenTTL)
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   int(s.tokenTTL.Seconds()),
		"created_at":   now.Unix(),
	})
}

// ListVehicles 获取车辆列表
// GET /api/1/vehicles
func (s *Server) ListVehicles(c *gin.Context) {
	if s.abortOnFault(c, "vehicles") {
		return
	}

	s.mu.RLock()
	vehicles := make([]tesla.Vehicle, 0, len(s.order))
	for _, id := range s.order {
		vehicles = append(vehicles, s.vehicles[id].vehicle)
	}
	s.mu.RUnlock()

	c.JSON(http.StatusOK, gin.H{"response": vehicles, "count": len(vehicles)})
}

// MobileEnabled 是否允许远程控制
// GET /api/1/vehicles/:id/mobile_enabled
func (s *Server) MobileEnabled(c *gin.Context) {
	if s.abortOnFault(c, "mobile_access") {
		return
	}

	fixture, ok := s.lookupVehicle(c)
	if !ok {
		return
	}

	s.mu.RLock()
	enabled := fixture.mobileAccess
	s.mu.RUnlock()

	c.JSON(http.StatusOK, gin.H{"response": enabled})
}

// DataRequest 获取子状态
// GET /api/1/vehicles/:id/data_request/:state
func (s *Server) DataRequest(c *gin.Context) {
	name := c.Param("state")
	if s.abortOnFault(c, name) {
		return
	}

	fixture, ok := s.lookupVehicle(c)
	if !ok {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var data any
	switch name {
	case "charge_state":
		data = fixture.charge
	case "climate_state":
		data = fixture.climate
	case "drive_state":
		data = fixture.drive
	case "gui_settings":
		data = fixture.gui
	case "vehicle_state":
		data = fixture.state
	default:
		c.JSON(http.StatusNotFound, gin.H{"response": nil, "error": "not_found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": data})
}

// WakeUp 唤醒车辆
// POST /api/1/vehicles/:id/wake_up
func (s *Server) WakeUp(c *gin.Context) {
	if s.abortOnFault(c, "command") {
		return
	}

	fixture, ok := s.lookupVehicle(c)
	if !ok {
		return
	}

	s.mu.Lock()
	fixture.vehicle.State = "online"
	s.mu.Unlock()
	s.metrics.command("wake_up", true)

	c.JSON(http.StatusOK, gin.H{"response": gin.H{"result": true, "reason": ""}})
}

// Command 执行远程指令
// POST /api/1/vehicles/:id/command/:command
func (s *Server) Command(c *gin.Context) {
	if s.abortOnFault(c, "command") {
		return
	}

	fixture, ok := s.lookupVehicle(c)
	if !ok {
		return
	}

	name := c.Param("command")
	s.mu.Lock()
	reason := s.applyCommand(c, fixture, name)
	s.mu.Unlock()
	s.metrics.command(name, reason == "")

	s.logger.Debug("Command executed",
		zap.Int64("vehicle_id", fixture.vehicle.ID),
		zap.String("command", name),
		zap.String("reason", reason))

	c.JSON(http.StatusOK, gin.H{"response": gin.H{"result": reason == "", "reason": reason}})
}

// HealthCheck 健康检查
func (s *Server) HealthCheck(c *gin.Context) {
	s.mu.RLock()
	vehicles := len(s.vehicles)
	s.mu.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"vehicles": vehicles,
	})
}

func (s *Server) lookupVehicle(c *gin.Context) (*vehicleFixture, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"response": nil, "error": "invalid vehicle id"})
		return nil, false
	}

	s.mu.RLock()
	fixture, ok := s.vehicles[id]
	s.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"response": nil, "error": "not_found"})
		return nil, false
	}
	return fixture, true
}
