package tesla

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndpointResolve(t *testing.T) {
	testCases := []struct {
		endpoint Endpoint
		method   string
		path     string
	}{
		{Endpoint{Kind: EndpointAuthentication}, http.MethodPost, "/oauth/token"},
		{Endpoint{Kind: EndpointVehicles}, http.MethodGet, "/api/1/vehicles"},
		{Endpoint{Kind: EndpointMobileAccess, VehicleID: 7}, http.MethodGet, "/api/1/vehicles/7/mobile_enabled"},
		{Endpoint{Kind: EndpointChargeState, VehicleID: 7}, http.MethodGet, "/api/1/vehicles/7/data_request/charge_state"},
		{Endpoint{Kind: EndpointClimateState, VehicleID: 7}, http.MethodGet, "/api/1/vehicles/7/data_request/climate_state"},
		{Endpoint{Kind: EndpointDriveState, VehicleID: 7}, http.MethodGet, "/api/1/vehicles/7/data_request/drive_state"},
		{Endpoint{Kind: EndpointGuiSettings, VehicleID: 7}, http.MethodGet, "/api/1/vehicles/7/data_request/gui_settings"},
		{Endpoint{Kind: EndpointVehicleState, VehicleID: 7}, http.MethodGet, "/api/1/vehicles/7/data_request/vehicle_state"},
		{Endpoint{Kind: EndpointCommand, VehicleID: 7, CommandPath: "command/honk_horn"}, http.MethodPost, "/api/1/vehicles/7/command/honk_horn"},
		{Endpoint{Kind: EndpointCommand, VehicleID: 7, CommandPath: "wake_up"}, http.MethodPost, "/api/1/vehicles/7/wake_up"},
	}

	for _, tc := range testCases {
		t.Run(tc.endpoint.Kind.String(), func(t *testing.T) {
			method, url := tc.endpoint.Resolve(false, ProductionBaseURL, MockBaseURL)
			assert.Equal(t, tc.method, method)
			assert.Equal(t, ProductionBaseURL+tc.path, url)

			method, url = tc.endpoint.Resolve(true, ProductionBaseURL, MockBaseURL)
			assert.Equal(t, tc.method, method)
			assert.Equal(t, MockBaseURL+tc.path, url)
		})
	}
}

func TestEndpointKindString(t *testing.T) {
	assert.Equal(t, "charge_state", EndpointChargeState.String())
	assert.Equal(t, "endpoint(99)", EndpointKind(99).String())
}

func TestEndpointStringOmitsQuery(t *testing.T) {
	ep := Endpoint{Kind: EndpointCommand, VehicleID: 7, CommandPath: "command/remote_start_drive?password=hunter2"}
	assert.Equal(t, "POST /api/1/vehicles/7/command/remote_start_drive", ep.String())
	assert.Equal(t, "GET /api/1/vehicles", Endpoint{Kind: EndpointVehicles}.String())
}
