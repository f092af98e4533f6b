package tesla

import (
	"fmt"
	"net/http"
	"strings"
)

const (
	// ProductionBaseURL 官方 owner API
	ProductionBaseURL = "https://owner-api.teslamotors.com"
	// MockBaseURL apiary 上的 mock 服务
	MockBaseURL = "https://private-623898-modelsapi.apiary-mock.com"
)

// EndpointKind 逻辑操作类型
type EndpointKind int

const (
	EndpointAuthentication EndpointKind = iota
	EndpointVehicles
	EndpointMobileAccess
	EndpointChargeState
	EndpointClimateState
	EndpointDriveState
	EndpointGuiSettings
	EndpointVehicleState
	EndpointCommand
)

var endpointNames = map[EndpointKind]string{
	EndpointAuthentication: "authentication",
	EndpointVehicles:       "vehicles",
	EndpointMobileAccess:   "mobile_access",
	EndpointChargeState:    "charge_state",
	EndpointClimateState:   "climate_state",
	EndpointDriveState:     "drive_state",
	EndpointGuiSettings:    "gui_settings",
	EndpointVehicleState:   "vehicle_state",
	EndpointCommand:        "command",
}

func (k EndpointKind) String() string {
	if name, ok := endpointNames[k]; ok {
		return name
	}
	return fmt.Sprintf("endpoint(%d)", int(k))
}

// Endpoint 一次 API 调用的目标
type Endpoint struct {
	Kind        EndpointKind
	VehicleID   int64
	CommandPath string // 仅 EndpointCommand 使用，已由 EncodeCommand 编码
}

// Method HTTP 方法
func (e Endpoint) Method() string {
	switch e.Kind {
	case EndpointAuthentication, EndpointCommand:
		return http.MethodPost
	default:
		return http.MethodGet
	}
}

// Path 相对于 base URL 的路径
func (e Endpoint) Path() string {
	switch e.Kind {
	case EndpointAuthentication:
		return "/oauth/token"
	case EndpointVehicles:
		return "/api/1/vehicles"
	case EndpointMobileAccess:
		return fmt.Sprintf("/api/1/vehicles/%d/mobile_enabled", e.VehicleID)
	case EndpointChargeState, EndpointClimateState, EndpointDriveState, EndpointGuiSettings, EndpointVehicleState:
		return fmt.Sprintf("/api/1/vehicles/%d/data_request/%s", e.VehicleID, e.Kind)
	case EndpointCommand:
		return fmt.Sprintf("/api/1/vehicles/%d/%s", e.VehicleID, e.CommandPath)
	}
	return ""
}

// BaseURL 根据 mock 开关选择 base URL
func BaseURL(useMockServer bool, productionBase, mockBase string) string {
	if useMockServer {
		return mockBase
	}
	return productionBase
}

// Resolve 返回 HTTP 方法和完整 URL
func (e Endpoint) Resolve(useMockServer bool, productionBase, mockBase string) (method, url string) {
	return e.Method(), BaseURL(useMockServer, productionBase, mockBase) + e.Path()
}

// String 用于日志和错误信息，不含 query
func (e Endpoint) String() string {
	path, _, _ := strings.Cut(e.Path(), "?")
	return e.Method() + " " + path
}
