package tesla

// Vehicle 车辆基础信息
type Vehicle struct {
	ID          int64    `json:"id"`
	VehicleID   int64    `json:"vehicle_id"`
	VIN         string   `json:"vin"`
	DisplayName string   `json:"display_name"`
	State       string   `json:"state"` // online, asleep, offline
	InService   bool     `json:"in_service"`
	Color       string   `json:"color,omitempty"`
	OptionCodes string   `json:"option_codes,omitempty"`
	Tokens      []string `json:"tokens,omitempty"`
}

// VehicleDetails 车辆完整状态，由六个子接口的结果组合而成
type VehicleDetails struct {
	MobileAccess bool          `json:"mobile_access"`
	ChargeState  *ChargeState  `json:"charge_state"`
	ClimateState *ClimateState `json:"climate_state"`
	DriveState   *DriveState   `json:"drive_state"`
	GuiSettings  *GuiSettings  `json:"gui_settings"`
	VehicleState *VehicleState `json:"vehicle_state"`
}

// ChargeState 充电状态
type ChargeState struct {
	BatteryLevel             int     `json:"battery_level"`
	UsableBatteryLevel       int     `json:"usable_battery_level"`
	BatteryRange             float64 `json:"battery_range"`       // 英里
	EstBatteryRange          float64 `json:"est_battery_range"`   // 英里
	IdealBatteryRange        float64 `json:"ideal_battery_range"` // 英里
	ChargeLimitSoc           int     `json:"charge_limit_soc"`
	ChargeLimitSocMin        int     `json:"charge_limit_soc_min"`
	ChargeLimitSocMax        int     `json:"charge_limit_soc_max"`
	ChargeLimitSocStd        int     `json:"charge_limit_soc_std"`
	ChargeToMaxRange         bool    `json:"charge_to_max_range"`
	ChargePortDoorOpen       bool    `json:"charge_port_door_open"`
	ChargingState            string  `json:"charging_state"` // Disconnected, Stopped, Charging, Complete
	ChargerPower             int     `json:"charger_power"`  // kW
	ChargerVoltage           int     `json:"charger_voltage"`
	ChargerActualCurrent     int     `json:"charger_actual_current"`
	ChargerPilotCurrent      int     `json:"charger_pilot_current"`
	ChargeCurrentRequest     int     `json:"charge_current_request"`
	ChargeCurrentRequestMax  int     `json:"charge_current_request_max"`
	ChargeEnergyAdded        float64 `json:"charge_energy_added"` // kWh
	ChargeRate               float64 `json:"charge_rate"`         // 英里/小时
	TimeToFullCharge         float64 `json:"time_to_full_charge"` // 小时
	ScheduledChargingPending bool    `json:"scheduled_charging_pending"`
	Timestamp                int64   `json:"timestamp"`
}

// ClimateState 空调状态
type ClimateState struct {
	InsideTemp           *float64 `json:"inside_temp"`  // 摄氏度，车辆休眠时为 null
	OutsideTemp          *float64 `json:"outside_temp"` // 摄氏度
	DriverTempSetting    float64  `json:"driver_temp_setting"`
	PassengerTempSetting float64  `json:"passenger_temp_setting"`
	IsAutoConditioningOn bool     `json:"is_auto_conditioning_on"`
	IsFrontDefrosterOn   bool     `json:"is_front_defroster_on"`
	IsRearDefrosterOn    bool     `json:"is_rear_defroster_on"`
	FanStatus            int      `json:"fan_status"`
	SeatHeaterLeft       int      `json:"seat_heater_left"`
	SeatHeaterRight      int      `json:"seat_heater_right"`
	SeatHeaterRearLeft   int      `json:"seat_heater_rear_left"`
	SeatHeaterRearRight  int      `json:"seat_heater_rear_right"`
	SmartPreconditioning bool     `json:"smart_preconditioning"`
	Timestamp            int64    `json:"timestamp"`
}

// DriveState 驾驶状态
type DriveState struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Heading    int     `json:"heading"`
	GpsAsOf    int64   `json:"gps_as_of"`             // 秒
	Speed      *int    `json:"speed,omitempty"`       // 英里/小时, nil 表示停止
	Power      int     `json:"power"`                 // kW
	ShiftState *string `json:"shift_state,omitempty"` // D, R, P, N
	Timestamp  int64   `json:"timestamp"`
}

// GuiSettings 车机显示设置
type GuiSettings struct {
	DistanceUnits    string `json:"gui_distance_units"`    // mi/hr, km/hr
	TemperatureUnits string `json:"gui_temperature_units"` // F, C
	ChargeRateUnits  string `json:"gui_charge_rate_units"`
	Use24HourTime    bool   `json:"gui_24_hour_time"`
	RangeDisplay     string `json:"gui_range_display"`
	Timestamp        int64  `json:"timestamp"`
}

// VehicleState 车辆状态
type VehicleState struct {
	APIVersion            int             `json:"api_version"`
	CarVersion            string          `json:"car_version"`
	Odometer              float64         `json:"odometer"` // 英里
	Locked                bool            `json:"locked"`
	ValetMode             bool            `json:"valet_mode"`
	ValetPinNeeded        bool            `json:"valet_pin_needed"`
	SentryMode            bool            `json:"sentry_mode"`
	RemoteStart           bool            `json:"remote_start"`
	RemoteStartSupported  bool            `json:"remote_start_supported"`
	SoftwareUpdate        *SoftwareUpdate `json:"software_update,omitempty"`
	CenterDisplayState    int             `json:"center_display_state"`
	DriverDoorOpen        int             `json:"df"` // driver front
	PassengerDoorOpen     int             `json:"pf"` // passenger front
	DriverRearDoorOpen    int             `json:"dr"` // driver rear
	PassengerRearDoorOpen int             `json:"pr"` // passenger rear
	FrunkOpen             int             `json:"ft"` // front trunk
	TrunkOpen             int             `json:"rt"` // rear trunk
	SunRoofState          string          `json:"sun_roof_state,omitempty"`
	SunRoofPercentOpen    int             `json:"sun_roof_percent_open,omitempty"`
	IsUserPresent         bool            `json:"is_user_present"`
	VehicleName           string          `json:"vehicle_name"`
	Timestamp             int64           `json:"timestamp"`
}

// SoftwareUpdate 软件更新信息
type SoftwareUpdate struct {
	ExpectedDurationSec int    `json:"expected_duration_sec"`
	Status              string `json:"status"`
	Version             string `json:"version"`
}

// CommandResponse 指令执行结果
type CommandResponse struct {
	Result bool   `json:"result"`
	Reason string `json:"reason"`
}
