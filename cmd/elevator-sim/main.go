package main

import (
	"flag"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"go-elevator-dispatch/pkg/sim"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	// A local .env can override defaults; absence is fine.
	_ = godotenv.Load()

	defaults := sim.DefaultConfig()
	var (
		configPath = flag.String("config", envOr("ELEVATOR_CONFIG", ""), "YAML config file")
		floors     = flag.Int("floors", defaults.NumFloors, "number of floors (1-12)")
		elevators  = flag.Int("elevators", defaults.NumElevators, "number of elevators (1-3)")
		capacity   = flag.Int("capacity", defaults.Capacity, "car capacity (1-10)")
		tickMs     = flag.Int("tick", defaults.TickDurationMs, "tick duration in ms (100-2000)")
		mode       = flag.String("mode", string(defaults.Controller), "controller mode: master|distributed")
		addr       = flag.String("addr", envOr("ELEVATOR_ADDR", ""), "WebSocket gateway listen address (empty = console only)")
		logLevel   = flag.String("log-level", envOr("ELEVATOR_LOG_LEVEL", "info"), "log level: debug|info|warn|error")
	)
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(*logLevel),
	})))

	cfg := defaults
	if *configPath != "" {
		loaded, err := sim.LoadConfig(*configPath)
		if err != nil {
			slog.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	// Explicit flags win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "floors":
			cfg.NumFloors = *floors
		case "elevators":
			cfg.NumElevators = *elevators
		case "capacity":
			cfg.Capacity = *capacity
		case "tick":
			cfg.TickDurationMs = *tickMs
		case "mode":
			cfg.Controller = sim.ControllerKind(*mode)
		}
	})

	engine, err := sim.NewEngine(cfg)
	if err != nil {
		slog.Error("failed to initialize simulation", "error", err)
		os.Exit(1)
	}

	engine.Start()

	if *addr != "" {
		gw := newGateway(engine)
		go func() {
			if err := gw.serve(*addr); err != nil {
				slog.Error("gateway stopped", "error", err)
			}
		}()
	}

	console := newConsole(engine)
	console.run()

	engine.Stop()
}
