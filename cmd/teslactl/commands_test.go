package main

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langchou/tesgo/internal/mockserver"
	"github.com/langchou/tesgo/pkg/tesla"
)

func TestParseCommand(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want tesla.Command
	}{
		{"lock", nil, tesla.LockDoors{}},
		{"wake", nil, tesla.WakeUp{}},
		{"charging-set-limit", []string{"80"}, tesla.ChargeLimitPercentage{Limit: 80}},
		{"climate-set-temp", []string{"21.5"}, tesla.SetTemperature{Driver: 21.5, Passenger: 21.5}},
		{"climate-set-temp", []string{"21", "19"}, tesla.SetTemperature{Driver: 21, Passenger: 19}},
		{"sunroof", []string{"VENT"}, tesla.SetSunRoof{State: tesla.RoofVent}},
		{"sunroof", []string{"move", "40"}, tesla.SetSunRoof{State: tesla.RoofMove, Percentage: 40}},
		{"remote-start", []string{"hunter2"}, tesla.StartVehicle{Password: "hunter2"}},
		{"valet-mode-on", nil, tesla.ValetMode{Options: &tesla.ValetCommandOptions{On: true}}},
		{"valet-mode-off", []string{"1234"}, tesla.ValetMode{Options: &tesla.ValetCommandOptions{Password: "1234"}}},
		{"frunk-open", nil, tesla.OpenTrunk{Options: &tesla.OpenTrunkOptions{WhichTrunk: tesla.TrunkFront}}},
	}

	for _, tc := range testCases {
		got, err := parseCommand(tc.name, tc.args)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, got, tc.name)
	}
}

func TestParseCommandErrors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		argsErr bool
	}{
		{"charging-set-limit", nil, true},
		{"charging-set-limit", []string{"eighty"}, true},
		{"lock", []string{"now"}, true},
		{"climate-set-temp", []string{"1", "2", "3"}, true},
		{"sunroof", []string{"sideways"}, true},
		{"self-destruct", nil, false},
		{"vehicles", nil, false},
	}

	for _, tc := range testCases {
		_, err := parseCommand(tc.name, tc.args)
		require.Error(t, err, tc.name)
		assert.Equal(t, tc.argsErr, errors.Is(err, ErrCommandLineArgs), "%s: %v", tc.name, err)
	}
}

func TestEveryCommandHasAnAction(t *testing.T) {
	for _, name := range commandNames() {
		info := commands[name]
		assert.NotEmpty(t, info.help, name)
		assert.True(t, (info.handler == nil) != (info.build == nil), name)
	}
}

func newTestClient(t *testing.T) *tesla.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ts := httptest.NewServer(mockserver.New(nil).Router())
	t.Cleanup(ts.Close)

	client := tesla.NewClient(tesla.WithBaseURL(ts.URL), tesla.WithHTTPClient(ts.Client()))
	_, err := client.Authenticate(context.Background(), "elon@tesla.com", "edison")
	require.NoError(t, err)
	return client
}

func TestExecute(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, execute(ctx, client, 0, []string{"vehicles"}, &out))
	assert.Contains(t, out.String(), "Nikola 2.0")

	out.Reset()
	require.NoError(t, execute(ctx, client, 0, []string{"charging-set-limit", "75"}, &out))
	assert.Equal(t, "ok\n", out.String())

	out.Reset()
	require.NoError(t, execute(ctx, client, mockserver.DefaultVehicle.ID, []string{"status"}, &out))
	assert.Contains(t, out.String(), `"charge_limit_soc": 75`)

	out.Reset()
	err := execute(ctx, client, 0, []string{"charging-start"}, &out)
	assert.ErrorContains(t, err, "disconnected")

	out.Reset()
	err = execute(ctx, client, 0, []string{"charging-set-limit"}, &out)
	assert.ErrorIs(t, err, ErrCommandLineArgs)
	assert.Contains(t, out.String(), "Usage: charging-set-limit PERCENT")

	err = execute(ctx, client, 42, []string{"lock"}, &out)
	assert.ErrorContains(t, err, "vehicle 42 not found")

	assert.Error(t, execute(ctx, client, 0, nil, &out))
}
