package tesla

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// RoofState 天窗状态
type RoofState string

const (
	RoofOpen    RoofState = "open"
	RoofClose   RoofState = "close"
	RoofComfort RoofState = "comfort"
	RoofVent    RoofState = "vent"
	RoofMove    RoofState = "move"
)

// TrunkType 后备箱类型
type TrunkType string

const (
	TrunkRear  TrunkType = "rear"
	TrunkFront TrunkType = "front"
)

// ValetCommandOptions 代客模式参数
type ValetCommandOptions struct {
	On       bool   `json:"on"`
	Password string `json:"password,omitempty"`
}

// OpenTrunkOptions 开启后备箱参数
type OpenTrunkOptions struct {
	WhichTrunk TrunkType `json:"which_trunk"`
}

// Command 远程指令，闭合集合，只能使用本包定义的类型
type Command interface {
	isCommand()
}

type (
	WakeUp                struct{}
	ValetMode             struct{ Options *ValetCommandOptions }
	ResetValetPin         struct{}
	OpenChargeDoor        struct{}
	ChargeLimitStandard   struct{}
	ChargeLimitMaxRange   struct{}
	ChargeLimitPercentage struct{ Limit int }
	StartCharging         struct{}
	StopCharging          struct{}
	FlashLights           struct{}
	HonkHorn              struct{}
	UnlockDoors           struct{}
	LockDoors             struct{}
	SetTemperature        struct{ Driver, Passenger float64 }
	StartAutoConditioning struct{}
	StopAutoConditioning  struct{}
	SetSunRoof            struct {
		State      RoofState
		Percentage float64
	}
	StartVehicle struct{ Password string }
	OpenTrunk    struct{ Options *OpenTrunkOptions }
)

func (WakeUp) isCommand()                {}
func (ValetMode) isCommand()             {}
func (ResetValetPin) isCommand()         {}
func (OpenChargeDoor) isCommand()        {}
func (ChargeLimitStandard) isCommand()   {}
func (ChargeLimitMaxRange) isCommand()   {}
func (ChargeLimitPercentage) isCommand() {}
func (StartCharging) isCommand()         {}
func (StopCharging) isCommand()          {}
func (FlashLights) isCommand()           {}
func (HonkHorn) isCommand()              {}
func (UnlockDoors) isCommand()           {}
func (LockDoors) isCommand()             {}
func (SetTemperature) isCommand()        {}
func (StartAutoConditioning) isCommand() {}
func (StopAutoConditioning) isCommand()  {}
func (SetSunRoof) isCommand()            {}
func (StartVehicle) isCommand()          {}
func (OpenTrunk) isCommand()             {}

// EncodeCommand 将指令编码为路径和可选的 JSON body
// 除 ValetMode 和 OpenTrunk 外，参数都编码在 query string 中
func EncodeCommand(cmd Command) (path string, body any, err error) {
	switch c := cmd.(type) {
	case WakeUp:
		return "wake_up", nil, nil
	case ValetMode:
		if c.Options == nil {
			return "", nil, fmt.Errorf("set_valet_mode: %w", ErrInvalidOptionsForCommand)
		}
		return "command/set_valet_mode", c.Options, nil
	case ResetValetPin:
		return "command/reset_valet_pin", nil, nil
	case OpenChargeDoor:
		return "command/charge_port_door_open", nil, nil
	case ChargeLimitStandard:
		return "command/charge_standard", nil, nil
	case ChargeLimitMaxRange:
		return "command/charge_max_range", nil, nil
	case ChargeLimitPercentage:
		return "command/set_charge_limit?percent=" + strconv.Itoa(c.Limit), nil, nil
	case StartCharging:
		return "command/charge_start", nil, nil
	case StopCharging:
		return "command/charge_stop", nil, nil
	case FlashLights:
		return "command/flash_lights", nil, nil
	case HonkHorn:
		return "command/honk_horn", nil, nil
	case UnlockDoors:
		return "command/door_unlock", nil, nil
	case LockDoors:
		return "command/door_lock", nil, nil
	case SetTemperature:
		if err := checkFinite("set_temps", c.Driver, c.Passenger); err != nil {
			return "", nil, err
		}
		return "command/set_temps?driver_temp=" + formatDecimal(c.Driver) +
			"&passenger_temp=" + formatDecimal(c.Passenger), nil, nil
	case StartAutoConditioning:
		return "command/auto_conditioning_start", nil, nil
	case StopAutoConditioning:
		return "command/auto_conditioning_stop", nil, nil
	case SetSunRoof:
		if err := checkFinite("sun_roof_control", c.Percentage); err != nil {
			return "", nil, err
		}
		return "command/sun_roof_control?state=" + url.QueryEscape(string(c.State)) +
			"&percent=" + formatDecimal(c.Percentage), nil, nil
	case StartVehicle:
		return "command/remote_start_drive?password=" + url.QueryEscape(c.Password), nil, nil
	case OpenTrunk:
		if c.Options == nil {
			return "", nil, fmt.Errorf("trunk_open: %w", ErrInvalidOptionsForCommand)
		}
		return "command/trunk_open", c.Options, nil
	}
	return "", nil, fmt.Errorf("unknown command %T: %w", cmd, ErrInvalidOptionsForCommand)
}

// checkFinite NaN 和 ±Inf 无法编码为参数
func checkFinite(command string, values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s: non-finite value %v: %w", command, v, ErrInvalidOptionsForCommand)
		}
	}
	return nil
}

// formatDecimal 输出不带本地化的十进制数，整数值保留 ".0"
// 调用方保证 v 是有限值，-0 输出为 "0.0"
func formatDecimal(v float64) string {
	if v == 0 {
		v = 0
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
