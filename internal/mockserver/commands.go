package mockserver

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/langchou/tesgo/pkg/tesla"
)

// applyCommand 修改车辆状态，返回失败原因，成功时为空
// 调用方需持有写锁
func (s *Server) applyCommand(c *gin.Context, f *vehicleFixture, name string) string {
	switch name {
	case "door_lock":
		f.state.Locked = true
	case "door_unlock":
		f.state.Locked = false
	case "honk_horn", "flash_lights":
	case "charge_port_door_open":
		f.charge.ChargePortDoorOpen = true
	case "charge_standard":
		f.charge.ChargeLimitSoc = f.charge.ChargeLimitSocStd
		f.charge.ChargeToMaxRange = false
	case "charge_max_range":
		f.charge.ChargeLimitSoc = f.charge.ChargeLimitSocMax
		f.charge.ChargeToMaxRange = true
	case "set_charge_limit":
		percent, err := strconv.Atoi(c.Query("percent"))
		if err != nil {
			return "invalid percent"
		}
		if percent < f.charge.ChargeLimitSocMin || percent > f.charge.ChargeLimitSocMax {
			return "percent out of range"
		}
		f.charge.ChargeLimitSoc = percent
	case "charge_start":
		if f.charge.ChargingState == "Disconnected" {
			return "disconnected"
		}
		f.charge.ChargingState = "Charging"
	case "charge_stop":
		if f.charge.ChargingState != "Charging" {
			return "not_charging"
		}
		f.charge.ChargingState = "Stopped"
	case "set_temps":
		driver, err := strconv.ParseFloat(c.Query("driver_temp"), 64)
		if err != nil {
			return "invalid driver_temp"
		}
		passenger, err := strconv.ParseFloat(c.Query("passenger_temp"), 64)
		if err != nil {
			return "invalid passenger_temp"
		}
		f.climate.DriverTempSetting = driver
		f.climate.PassengerTempSetting = passenger
	case "auto_conditioning_start":
		f.climate.IsAutoConditioningOn = true
	case "auto_conditioning_stop":
		f.climate.IsAutoConditioningOn = false
	case "sun_roof_control":
		state := tesla.RoofState(c.Query("state"))
		switch state {
		case tesla.RoofOpen, tesla.RoofClose, tesla.RoofComfort, tesla.RoofVent, tesla.RoofMove:
		default:
			return "invalid state"
		}
		percent, err := strconv.ParseFloat(c.DefaultQuery("percent", "0"), 64)
		if err != nil {
			return "invalid percent"
		}
		f.state.SunRoofState = string(state)
		f.state.SunRoofPercentOpen = int(percent)
	case "remote_start_drive":
		if c.Query("password") != s.account.Password {
			return "invalid password"
		}
		f.state.RemoteStart = true
	case "set_valet_mode":
		var opts tesla.ValetCommandOptions
		if err := c.ShouldBindJSON(&opts); err != nil {
			return "missing options"
		}
		if opts.On {
			f.state.ValetPinNeeded = opts.Password == ""
		}
		f.state.ValetMode = opts.On
	case "reset_valet_pin":
		f.state.ValetPinNeeded = true
	case "trunk_open":
		var opts tesla.OpenTrunkOptions
		if err := c.ShouldBindJSON(&opts); err != nil {
			return "missing options"
		}
		switch opts.WhichTrunk {
		case tesla.TrunkRear:
			f.state.TrunkOpen = 1
		case tesla.TrunkFront:
			f.state.FrunkOpen = 1
		default:
			return "invalid which_trunk"
		}
	default:
		return "unknown command"
	}
	return ""
}
