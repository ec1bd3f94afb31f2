package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ControllerKind selects the group-dispatch policy.
type ControllerKind string

const (
	ControllerMaster      ControllerKind = "master"
	ControllerDistributed ControllerKind = "distributed"
)

// Config holds immutable simulation parameters. It is set at engine
// construction and never changes at runtime.
type Config struct {
	NumFloors        int            `yaml:"numFloors"`
	NumElevators     int            `yaml:"numElevators"`
	Capacity         int            `yaml:"capacity"`
	TickDurationMs   int            `yaml:"tickDurationMs"`
	DoorOpenTicks    int            `yaml:"doorOpenTicks"`
	FloorTravelTicks int            `yaml:"floorTravelTicks"`
	Controller       ControllerKind `yaml:"controller"`
}

// DefaultConfig mirrors the stock simulation parameters.
func DefaultConfig() Config {
	return Config{
		NumFloors:        10,
		NumElevators:     3,
		Capacity:         6,
		TickDurationMs:   500,
		DoorOpenTicks:    3,
		FloorTravelTicks: 2,
		Controller:       ControllerMaster,
	}
}

// Validate checks every parameter against its allowed range.
func (c Config) Validate() error {
	if c.NumFloors < 1 || c.NumFloors > 12 {
		return fmt.Errorf("invalid config: numFloors %d, must be 1-12", c.NumFloors)
	}
	if c.NumElevators < 1 || c.NumElevators > 3 {
		return fmt.Errorf("invalid config: numElevators %d, must be 1-3", c.NumElevators)
	}
	if c.Capacity < 1 || c.Capacity > 10 {
		return fmt.Errorf("invalid config: capacity %d, must be 1-10", c.Capacity)
	}
	if c.TickDurationMs < 100 || c.TickDurationMs > 2000 {
		return fmt.Errorf("invalid config: tickDurationMs %d, must be 100-2000", c.TickDurationMs)
	}
	if c.DoorOpenTicks < 1 {
		return fmt.Errorf("invalid config: doorOpenTicks %d, must be positive", c.DoorOpenTicks)
	}
	if c.FloorTravelTicks < 1 {
		return fmt.Errorf("invalid config: floorTravelTicks %d, must be positive", c.FloorTravelTicks)
	}
	if c.Controller != ControllerMaster && c.Controller != ControllerDistributed {
		return fmt.Errorf("invalid config: controller %q, must be master or distributed", c.Controller)
	}
	return nil
}

// LoadConfig reads a YAML config file on top of the defaults. Missing keys
// keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
