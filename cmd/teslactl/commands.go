package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/langchou/tesgo/pkg/tesla"
)

var ErrCommandLineArgs = errors.New("invalid command line arguments")

type Argument struct {
	name string
	help string
}

// Handler 不针对单条指令的操作，例如列出车辆
type Handler func(ctx context.Context, client *tesla.Client, car *tesla.Vehicle, out io.Writer) error

// Builder 把命令行参数转换为车辆指令
type Builder func(args map[string]string) (tesla.Command, error)

type Command struct {
	help            string
	requiresVehicle bool
	args            []Argument
	optional        []Argument
	handler         Handler
	build           Builder
}

func fixed(cmd tesla.Command) Builder {
	return func(map[string]string) (tesla.Command, error) {
		return cmd, nil
	}
}

func parseFloat(args map[string]string, name string) (float64, error) {
	v, err := strconv.ParseFloat(args[name], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %s", ErrCommandLineArgs, name, err)
	}
	return v, nil
}

var commands = map[string]*Command{
	"vehicles": {
		help: "List vehicles on the account",
		handler: func(ctx context.Context, client *tesla.Client, car *tesla.Vehicle, out io.Writer) error {
			vehicles, err := client.GetVehicles(ctx)
			if err != nil {
				return err
			}
			for _, v := range vehicles {
				fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", v.ID, v.VIN, v.DisplayName, v.State)
			}
			return nil
		},
	},
	"status": {
		help:            "Fetch charge, climate, drive, GUI and vehicle state",
		requiresVehicle: true,
		handler: func(ctx context.Context, client *tesla.Client, car *tesla.Vehicle, out io.Writer) error {
			details, err := client.GetVehicleStatus(ctx, *car)
			if err != nil {
				return err
			}
			return printJSON(out, details)
		},
	},
	"wake": {
		help:            "Wake up vehicle",
		requiresVehicle: true,
		build:           fixed(tesla.WakeUp{}),
	},
	"lock": {
		help:            "Lock vehicle",
		requiresVehicle: true,
		build:           fixed(tesla.LockDoors{}),
	},
	"unlock": {
		help:            "Unlock vehicle",
		requiresVehicle: true,
		build:           fixed(tesla.UnlockDoors{}),
	},
	"honk": {
		help:            "Honk horn",
		requiresVehicle: true,
		build:           fixed(tesla.HonkHorn{}),
	},
	"flash-lights": {
		help:            "Flash lights",
		requiresVehicle: true,
		build:           fixed(tesla.FlashLights{}),
	},
	"charge-port-open": {
		help:            "Open charge port",
		requiresVehicle: true,
		build:           fixed(tesla.OpenChargeDoor{}),
	},
	"charging-start": {
		help:            "Start charging",
		requiresVehicle: true,
		build:           fixed(tesla.StartCharging{}),
	},
	"charging-stop": {
		help:            "Stop charging",
		requiresVehicle: true,
		build:           fixed(tesla.StopCharging{}),
	},
	"charging-set-limit-standard": {
		help:            "Set charge limit to the standard value",
		requiresVehicle: true,
		build:           fixed(tesla.ChargeLimitStandard{}),
	},
	"charging-set-limit-max": {
		help:            "Set charge limit to maximum range",
		requiresVehicle: true,
		build:           fixed(tesla.ChargeLimitMaxRange{}),
	},
	"charging-set-limit": {
		help:            "Set charge limit to PERCENT",
		requiresVehicle: true,
		args: []Argument{
			Argument{name: "PERCENT", help: "Charging limit"},
		},
		build: func(args map[string]string) (tesla.Command, error) {
			limit, err := strconv.Atoi(args["PERCENT"])
			if err != nil {
				return nil, fmt.Errorf("%w: PERCENT: %s", ErrCommandLineArgs, err)
			}
			return tesla.ChargeLimitPercentage{Limit: limit}, nil
		},
	},
	"climate-on": {
		help:            "Turn on climate control",
		requiresVehicle: true,
		build:           fixed(tesla.StartAutoConditioning{}),
	},
	"climate-off": {
		help:            "Turn off climate control",
		requiresVehicle: true,
		build:           fixed(tesla.StopAutoConditioning{}),
	},
	"climate-set-temp": {
		help:            "Set temperature (Celsius) for driver and, optionally, passenger",
		requiresVehicle: true,
		args: []Argument{
			Argument{name: "DRIVER", help: "Driver temperature"},
		},
		optional: []Argument{
			Argument{name: "PASSENGER", help: "Passenger temperature, defaults to DRIVER"},
		},
		build: func(args map[string]string) (tesla.Command, error) {
			driver, err := parseFloat(args, "DRIVER")
			if err != nil {
				return nil, err
			}
			passenger := driver
			if _, ok := args["PASSENGER"]; ok {
				if passenger, err = parseFloat(args, "PASSENGER"); err != nil {
					return nil, err
				}
			}
			return tesla.SetTemperature{Driver: driver, Passenger: passenger}, nil
		},
	},
	"sunroof": {
		help:            "Control sunroof",
		requiresVehicle: true,
		args: []Argument{
			Argument{name: "STATE", help: "'open', 'close', 'comfort', 'vent' or 'move'"},
		},
		optional: []Argument{
			Argument{name: "PERCENT", help: "Opening percentage, used with 'move'"},
		},
		build: func(args map[string]string) (tesla.Command, error) {
			state := tesla.RoofState(strings.ToLower(args["STATE"]))
			switch state {
			case tesla.RoofOpen, tesla.RoofClose, tesla.RoofComfort, tesla.RoofVent, tesla.RoofMove:
			default:
				return nil, fmt.Errorf("%w: unrecognized sunroof state %q", ErrCommandLineArgs, args["STATE"])
			}
			var percent float64
			if _, ok := args["PERCENT"]; ok {
				var err error
				if percent, err = parseFloat(args, "PERCENT"); err != nil {
					return nil, err
				}
			}
			return tesla.SetSunRoof{State: state, Percentage: percent}, nil
		},
	},
	"remote-start": {
		help:            "Enable keyless driving with the account PASSWORD",
		requiresVehicle: true,
		args: []Argument{
			Argument{name: "PASSWORD", help: "Account password"},
		},
		build: func(args map[string]string) (tesla.Command, error) {
			return tesla.StartVehicle{Password: args["PASSWORD"]}, nil
		},
	},
	"valet-mode-on": {
		help:            "Enable valet mode",
		requiresVehicle: true,
		optional: []Argument{
			Argument{name: "PIN", help: "Valet mode PIN"},
		},
		build: func(args map[string]string) (tesla.Command, error) {
			return tesla.ValetMode{Options: &tesla.ValetCommandOptions{On: true, Password: args["PIN"]}}, nil
		},
	},
	"valet-mode-off": {
		help:            "Disable valet mode",
		requiresVehicle: true,
		optional: []Argument{
			Argument{name: "PIN", help: "Valet mode PIN"},
		},
		build: func(args map[string]string) (tesla.Command, error) {
			return tesla.ValetMode{Options: &tesla.ValetCommandOptions{On: false, Password: args["PIN"]}}, nil
		},
	},
	"valet-mode-reset-pin": {
		help:            "Clear valet mode PIN",
		requiresVehicle: true,
		build:           fixed(tesla.ResetValetPin{}),
	},
	"trunk-open": {
		help:            "Open vehicle trunk",
		requiresVehicle: true,
		build:           fixed(tesla.OpenTrunk{Options: &tesla.OpenTrunkOptions{WhichTrunk: tesla.TrunkRear}}),
	},
	"frunk-open": {
		help:            "Open vehicle frunk",
		requiresVehicle: true,
		build:           fixed(tesla.OpenTrunk{Options: &tesla.OpenTrunkOptions{WhichTrunk: tesla.TrunkFront}}),
	},
}

// extractArgs 按位置把参数映射到参数名
func (c *Command) extractArgs(args []string) (map[string]string, error) {
	if len(args) < len(c.args) || len(args) > len(c.args)+len(c.optional) {
		return nil, fmt.Errorf("%w: got %d (%d required, %d optional)", ErrCommandLineArgs, len(args), len(c.args), len(c.optional))
	}
	keywords := make(map[string]string)
	for i, argInfo := range c.args {
		keywords[argInfo.name] = args[i]
	}
	for i, argInfo := range c.optional {
		if len(c.args)+i >= len(args) {
			break
		}
		keywords[argInfo.name] = args[len(c.args)+i]
	}
	return keywords, nil
}

// parseCommand 解析车辆指令，不发送
func parseCommand(name string, args []string) (tesla.Command, error) {
	info, ok := commands[name]
	if !ok {
		return nil, fmt.Errorf("unrecognized command: %s", name)
	}
	if info.build == nil {
		return nil, fmt.Errorf("%s is not a vehicle command", name)
	}
	keywords, err := info.extractArgs(args)
	if err != nil {
		return nil, err
	}
	return info.build(keywords)
}

func execute(ctx context.Context, client *tesla.Client, vehicleID int64, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("missing COMMAND")
	}

	info, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unrecognized command: %s", args[0])
	}

	var car *tesla.Vehicle
	if info.requiresVehicle {
		v, err := selectVehicle(ctx, client, vehicleID)
		if err != nil {
			return err
		}
		car = v
	}

	if info.handler != nil {
		if _, err := info.extractArgs(args[1:]); err != nil {
			info.Usage(args[0], out)
			return err
		}
		return info.handler(ctx, client, car, out)
	}

	cmd, err := parseCommand(args[0], args[1:])
	if err != nil {
		if errors.Is(err, ErrCommandLineArgs) {
			info.Usage(args[0], out)
		}
		return err
	}

	resp, err := client.SendCommandToVehicle(ctx, *car, cmd)
	if err != nil {
		return err
	}
	if !resp.Result {
		return fmt.Errorf("vehicle rejected %s: %s", args[0], resp.Reason)
	}
	fmt.Fprintln(out, "ok")
	return nil
}

// selectVehicle id 为 0 时使用账户下的第一辆车
func selectVehicle(ctx context.Context, client *tesla.Client, id int64) (*tesla.Vehicle, error) {
	vehicles, err := client.GetVehicles(ctx)
	if err != nil {
		return nil, err
	}
	if len(vehicles) == 0 {
		return nil, errors.New("no vehicles on account")
	}
	if id == 0 {
		return &vehicles[0], nil
	}
	for i := range vehicles {
		if vehicles[i].ID == id {
			return &vehicles[i], nil
		}
	}
	return nil, fmt.Errorf("vehicle %d not found", id)
}

func (c *Command) Usage(name string, out io.Writer) {
	fmt.Fprintf(out, "Usage: %s", name)
	maxLength := 0
	for _, arg := range c.args {
		fmt.Fprintf(out, " %s", arg.name)
		if len(arg.name) > maxLength {
			maxLength = len(arg.name)
		}
	}
	if len(c.optional) > 0 {
		fmt.Fprintf(out, " [")
	}
	for _, arg := range c.optional {
		fmt.Fprintf(out, " %s", arg.name)
		if len(arg.name) > maxLength {
			maxLength = len(arg.name)
		}
	}
	if len(c.optional) > 0 {
		fmt.Fprintf(out, " ]")
	}
	fmt.Fprintf(out, "\n%s\n", c.help)
	maxLength++
	for _, arg := range append(c.args, c.optional...) {
		fmt.Fprintf(out, "    %s:%s%s\n", arg.name, strings.Repeat(" ", maxLength-len(arg.name)), arg.help)
	}
}

func commandNames() []string {
	labels := make([]string, 0, len(commands))
	for name := range commands {
		labels = append(labels, name)
	}
	sort.Strings(labels)
	return labels
}

func printJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
