package mockserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/langchou/tesgo/pkg/tesla"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r http.Handler) string {
	t.Helper()
	w := perform(t, r, http.MethodPost, "/oauth/token", "", tokenRequest{
		Email:        "elon@tesla.com",
		Password:     "edison",
		GrantType:    "password",
		ClientID:     "id",
		ClientSecret: "secret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func TestIssueToken(t *testing.T) {
	now := time.Unix(1457385291, 0)
	s := New(nil, WithTokenTTL(time.Hour), WithClock(func() time.Time { return now }))
	r := s.Router()

	w := perform(t, r, http.MethodPost, "/oauth/token", "", tokenRequest{
		Email: "elon@tesla.com", Password: "edison", GrantType: "password", ClientID: "id", ClientSecret: "secret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var token tesla.Token
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &token))
	assert.Equal(t, "bearer", token.TokenType)
	assert.Equal(t, 3600, token.ExpiresIn)
	assert.Equal(t, now.Unix(), token.CreatedAt.Unix())
	assert.Equal(t, int64(1), s.AuthRequests())
}

func TestIssueTokenRejections(t *testing.T) {
	testCases := []struct {
		name   string
		body   tokenRequest
		status int
	}{
		{"wrong password", tokenRequest{Email: "elon@tesla.com", Password: "tesla", GrantType: "password", ClientID: "id", ClientSecret: "s"}, http.StatusUnauthorized},
		{"unknown account", tokenRequest{Email: "nikola@tesla.com", Password: "edison", GrantType: "password", ClientID: "id", ClientSecret: "s"}, http.StatusUnauthorized},
		{"grant type", tokenRequest{Email: "elon@tesla.com", Password: "edison", GrantType: "refresh_token", ClientID: "id", ClientSecret: "s"}, http.StatusBadRequest},
		{"client credentials", tokenRequest{Email: "elon@tesla.com", Password: "edison", GrantType: "password"}, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(nil)
			w := perform(t, s.Router(), http.MethodPost, "/oauth/token", "", tc.body)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	now := time.Now()
	s := New(nil, WithTokenTTL(time.Hour), WithClock(func() time.Time { return now }))
	r := s.Router()

	assert.Equal(t, http.StatusUnauthorized, perform(t, r, http.MethodGet, "/api/1/vehicles", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, perform(t, r, http.MethodGet, "/api/1/vehicles", "forged", nil).Code)

	token := login(t, r)
	assert.Equal(t, http.StatusOK, perform(t, r, http.MethodGet, "/api/1/vehicles", token, nil).Code)

	now = now.Add(time.Hour)
	assert.Equal(t, http.StatusUnauthorized, perform(t, r, http.MethodGet, "/api/1/vehicles", token, nil).Code)

	now = now.Add(-time.Minute)
	s.RevokeTokens()
	assert.Equal(t, http.StatusUnauthorized, perform(t, r, http.MethodGet, "/api/1/vehicles", token, nil).Code)
}

func TestListVehicles(t *testing.T) {
	second := tesla.Vehicle{ID: 900, VehicleID: 901, DisplayName: "Roadster"}
	s := New(nil, WithVehicle(DefaultVehicle), WithVehicle(second))
	r := s.Router()
	token := login(t, r)

	w := perform(t, r, http.MethodGet, "/api/1/vehicles", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Response []tesla.Vehicle `json:"response"`
		Count    int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Response, 2)
	assert.Equal(t, DefaultVehicle.ID, resp.Response[0].ID)
	assert.Equal(t, "Roadster", resp.Response[1].DisplayName)
}

func TestDataRequest(t *testing.T) {
	s := New(nil)
	r := s.Router()
	token := login(t, r)

	w := perform(t, r, http.MethodGet, "/api/1/vehicles/321/mobile_enabled", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"response": true}`, w.Body.String())

	for _, name := range []string{"charge_state", "climate_state", "drive_state", "gui_settings", "vehicle_state"} {
		w := perform(t, r, http.MethodGet, "/api/1/vehicles/321/data_request/"+name, token, nil)
		assert.Equal(t, http.StatusOK, w.Code, name)
		assert.Contains(t, w.Body.String(), `"response":{`, name)
	}

	assert.Equal(t, http.StatusNotFound, perform(t, r, http.MethodGet, "/api/1/vehicles/321/data_request/nope", token, nil).Code)
	assert.Equal(t, http.StatusNotFound, perform(t, r, http.MethodGet, "/api/1/vehicles/1/data_request/charge_state", token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, perform(t, r, http.MethodGet, "/api/1/vehicles/abc/mobile_enabled", token, nil).Code)
}

func TestInjectFault(t *testing.T) {
	s := New(nil)
	r := s.Router()
	token := login(t, r)

	s.InjectFault("drive_state", http.StatusServiceUnavailable)
	w := perform(t, r, http.MethodGet, "/api/1/vehicles/321/data_request/drive_state", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, http.StatusOK, perform(t, r, http.MethodGet, "/api/1/vehicles/321/data_request/charge_state", token, nil).Code)

	s.InjectFault("drive_state", 0)
	assert.Equal(t, http.StatusOK, perform(t, r, http.MethodGet, "/api/1/vehicles/321/data_request/drive_state", token, nil).Code)
}

func TestCommand(t *testing.T) {
	s := New(nil)
	r := s.Router()
	token := login(t, r)

	command := func(path string, body any) tesla.CommandResponse {
		t.Helper()
		w := perform(t, r, http.MethodPost, "/api/1/vehicles/321/"+path, token, body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp struct {
			Response tesla.CommandResponse `json:"response"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp.Response
	}

	assert.True(t, command("wake_up", nil).Result)
	assert.Equal(t, "online", s.vehicles[321].vehicle.State)

	assert.True(t, command("command/set_charge_limit?percent=75", nil).Result)
	assert.Equal(t, 75, s.vehicles[321].charge.ChargeLimitSoc)
	assert.Equal(t, "percent out of range", command("command/set_charge_limit?percent=101", nil).Reason)
	assert.Equal(t, "invalid percent", command("command/set_charge_limit?percent=high", nil).Reason)

	assert.Equal(t, "not_charging", command("command/charge_stop", nil).Reason)

	assert.Equal(t, "invalid state", command("command/sun_roof_control?state=sideways&percent=0.0", nil).Reason)

	assert.Equal(t, "missing options", command("command/set_valet_mode", nil).Reason)
	assert.True(t, command("command/set_valet_mode", tesla.ValetCommandOptions{On: true}).Result)
	assert.True(t, s.vehicles[321].state.ValetPinNeeded)

	assert.True(t, command("command/trunk_open", tesla.OpenTrunkOptions{WhichTrunk: tesla.TrunkRear}).Result)
	assert.Equal(t, 1, s.vehicles[321].state.TrunkOpen)
	assert.Equal(t, "invalid which_trunk", command("command/trunk_open", tesla.OpenTrunkOptions{WhichTrunk: "side"}).Reason)

	assert.Equal(t, "unknown command", command("command/self_destruct", nil).Reason)
}

func TestLoggingOmitsQuery(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := New(zap.New(core))
	r := s.Router()
	token := login(t, r)

	perform(t, r, http.MethodPost, "/api/1/vehicles/321/command/remote_start_drive?password=edison", token, nil)

	entries := logs.FilterMessage("Request").FilterField(zap.String("path", "/api/1/vehicles/321/command/remote_start_drive")).All()
	require.Len(t, entries, 1)
	for _, entry := range logs.All() {
		for _, value := range entry.ContextMap() {
			if str, ok := value.(string); ok {
				assert.NotContains(t, str, "edison")
			}
		}
	}
}

func TestMetrics(t *testing.T) {
	s := New(nil)
	reg := prometheus.NewRegistry()
	require.NoError(t, s.Register(reg))
	assert.Error(t, s.Register(reg), "collectors register once")
	r := s.Router()

	token := login(t, r)
	perform(t, r, http.MethodPost, "/oauth/token", "", tokenRequest{
		Email: "elon@tesla.com", Password: "tesla", GrantType: "password", ClientID: "id", ClientSecret: "s",
	})
	perform(t, r, http.MethodPost, "/api/1/vehicles/321/command/door_unlock", token, nil)
	perform(t, r, http.MethodPost, "/api/1/vehicles/321/command/charge_stop", token, nil)

	s.InjectFault("charge_state", http.StatusBadGateway)
	perform(t, r, http.MethodGet, "/api/1/vehicles/321/data_request/charge_state", token, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.authRequests.WithLabelValues("issued")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.authRequests.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.commands.WithLabelValues("door_unlock", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.commands.WithLabelValues("charge_stop", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.faults.WithLabelValues("charge_state", "502")))

	count, err := testutil.GatherAndCount(reg, "tesla_mock_commands_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestHealthCheck(t *testing.T) {
	s := New(nil)
	w := perform(t, s.Router(), http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok", "vehicles": 1}`, w.Body.String())
}
