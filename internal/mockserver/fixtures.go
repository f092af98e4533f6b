package mockserver

import "github.com/langchou/tesgo/pkg/tesla"

// DefaultVehicle 未配置车辆时使用
var DefaultVehicle = tesla.Vehicle{
	ID:          321,
	VehicleID:   123,
	VIN:         "5YJSA11111111111",
	DisplayName: "Nikola 2.0",
	State:       "online",
	Color:       "black",
	OptionCodes: "MS01,RENA,TM00,DRLH,PF00,BT85,PBCW,RFPO,WT19,IBMB,IDPB,TR00,SU01,SC01,TP01,AU01,CH00,HP00,PA00,PS00,AD02,X020,X025,X001,X003,X007,X011,X013",
	Tokens:      []string{"abc123", "def456"},
}

func newFixture(v tesla.Vehicle) *vehicleFixture {
	inside, outside := 21.5, 12.0
	shift := "P"
	return &vehicleFixture{
		vehicle:      v,
		mobileAccess: true,
		charge: tesla.ChargeState{
			BatteryLevel:       64,
			UsableBatteryLevel: 63,
			BatteryRange:       167.96,
			EstBatteryRange:    118.38,
			IdealBatteryRange:  209.95,
			ChargeLimitSoc:     90,
			ChargeLimitSocMin:  50,
			ChargeLimitSocMax:  100,
			ChargeLimitSocStd:  90,
			ChargingState:      "Disconnected",
		},
		climate: tesla.ClimateState{
			InsideTemp:           &inside,
			OutsideTemp:          &outside,
			DriverTempSetting:    22.6,
			PassengerTempSetting: 22.6,
		},
		drive: tesla.DriveState{
			Latitude:   33.794839,
			Longitude:  -84.401593,
			Heading:    4,
			GpsAsOf:    1359863204,
			ShiftState: &shift,
		},
		gui: tesla.GuiSettings{
			DistanceUnits:    "km/hr",
			TemperatureUnits: "C",
			ChargeRateUnits:  "kW",
			Use24HourTime:    true,
			RangeDisplay:     "Rated",
		},
		state: tesla.VehicleState{
			APIVersion:   3,
			CarVersion:   "1.19.42",
			Odometer:     13245.3,
			Locked:       true,
			SunRoofState: string(tesla.RoofClose),
			VehicleName:  v.DisplayName,
		},
	}
}
