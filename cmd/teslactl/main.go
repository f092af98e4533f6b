package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/langchou/tesgo/internal/config"
	"github.com/langchou/tesgo/pkg/tesla"
)

func Usage() {
	fmt.Printf("Usage: %s [OPTION...] COMMAND [ARG...]\n", os.Args[0])
	fmt.Printf("\nRun %s help COMMAND for more information.\n", os.Args[0])
	fmt.Println("Credentials are read from TESLA_EMAIL and TESLA_PASSWORD (or .env).")
	fmt.Println("")

	fmt.Printf("Available OPTIONs:\n")
	flag.PrintDefaults()
	fmt.Println("")
	fmt.Printf("Available COMMANDs:\n")
	labels := commandNames()
	maxLength := 0
	for _, command := range labels {
		if len(command) > maxLength {
			maxLength = len(command)
		}
	}
	for _, command := range labels {
		fmt.Printf("  %s%s %s\n", command, strings.Repeat(" ", maxLength-len(command)), commands[command].help)
	}
}

func main() {
	var (
		debug     bool
		mock      bool
		timeout   time.Duration
		vehicleID int64
	)

	flag.Usage = Usage
	flag.BoolVar(&debug, "debug", false, "Log requests (credentials are redacted)")
	flag.BoolVar(&mock, "mock", false, "Use the mock server base URL")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Timeout for the whole command")
	flag.Int64Var(&vehicleID, "vehicle", 0, "Vehicle id; defaults to the first vehicle on the account")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		Usage()
		os.Exit(1)
	}
	if args[0] == "help" {
		if len(args) > 1 {
			if info, ok := commands[args[1]]; ok {
				info.Usage(args[1], os.Stdout)
				return
			}
		}
		Usage()
		return
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger := initLogger(debug || cfg.Debug)
	defer logger.Sync()

	client := tesla.NewClient(
		tesla.WithLogger(logger),
		tesla.WithDebug(debug || cfg.Debug),
		tesla.WithMockServer(mock || cfg.UseMockServer),
		tesla.WithBaseURL(cfg.APIHost),
		tesla.WithMockBaseURL(cfg.MockHost),
		tesla.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
	)

	// 加载 Token（如果存在）
	if err := loadToken(cfg.TokenFile, client); err != nil {
		logger.Debug("No existing token found", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, timeout)
	defer cancelTimeout()

	if token := client.Token(); !token.IsValid() && cfg.Email != "" {
		if _, err := client.Authenticate(ctx, cfg.Email, cfg.Password); err != nil {
			logger.Error("Failed to authenticate", zap.Error(err))
			os.Exit(1)
		}
	}

	err = execute(ctx, client, vehicleID, args, os.Stdout)

	// 保存 token
	if token := client.Token(); token != nil {
		if err := saveToken(cfg.TokenFile, token); err != nil {
			logger.Warn("Failed to save token", zap.Error(err))
		}
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute command: %s\n", err)
		os.Exit(1)
	}
}

// initLogger 初始化日志
func initLogger(debug bool) *zap.Logger {
	var config zap.Config
	if debug {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}

	logger, _ := config.Build()
	return logger
}

// loadToken 加载 token
func loadToken(filename string, client *tesla.Client) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	var token tesla.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return err
	}

	client.SetToken(&token)
	return nil
}

// saveToken 保存 token
func saveToken(filename string, token *tesla.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0600)
}
