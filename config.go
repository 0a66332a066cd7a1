package vecknn

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/hupe1980/vecknn/device"
	"github.com/hupe1980/vecknn/device/cuda"
	"github.com/hupe1980/vecknn/internal/simd"
)

// EnvPrefix prefixes every environment variable read by LoadConfig.
const EnvPrefix = "VECKNN"

// Accelerator kinds accepted by Config.Accelerator.
const (
	AcceleratorNone     = "none"
	AcceleratorEmulator = "emulator"
	AcceleratorCUDA     = "cuda"
)

// Config is the environment form of the engine options.
type Config struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"` // text or json

	Accelerator string `envconfig:"ACCELERATOR" default:"none"` // none, emulator or cuda

	EmulatorBlockSize   int   `envconfig:"EMULATOR_BLOCK_SIZE" default:"64"`
	EmulatorParallelism int   `envconfig:"EMULATOR_PARALLELISM" default:"0"` // 0 means GOMAXPROCS
	EmulatorMemoryLimit int64 `envconfig:"EMULATOR_MEMORY_LIMIT" default:"0"` // bytes, 0 means unlimited

	CUDARuntime string `envconfig:"CUDA_RUNTIME" default:"libcudart.so"`
	CUDAKernel  string `envconfig:"CUDA_KERNEL"`

	ExpandedDistances bool `envconfig:"EXPANDED_DISTANCES" default:"false"`
}

// LoadConfig reads the VECKNN_* environment. Files, when given, are loaded
// first with godotenv; variables already set in the environment win.
func LoadConfig(files ...string) (*Config, error) {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return nil, fmt.Errorf("load env files: %w", err)
		}
	}

	var c Config
	if err := envconfig.Process(EnvPrefix, &c); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	if _, err := c.level(); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	switch strings.ToLower(c.Accelerator) {
	case AcceleratorNone, AcceleratorEmulator:
	case AcceleratorCUDA:
		if c.CUDAKernel == "" {
			return fmt.Errorf("accelerator %q requires %s_CUDA_KERNEL", AcceleratorCUDA, EnvPrefix)
		}
	default:
		return fmt.Errorf("invalid accelerator %q", c.Accelerator)
	}
	return nil
}

func (c *Config) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return lvl, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// Options converts the config into engine options, opening the configured
// accelerator. The accelerator is owned by the engine and released by
// Engine.Close.
func (c *Config) Options() ([]Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	lvl, _ := c.level()

	logger := NewTextLogger(lvl)
	if strings.EqualFold(c.LogFormat, "json") {
		logger = NewJSONLogger(lvl)
	}
	logger.Debug("engine configured",
		"accelerator", c.Accelerator,
		"simd", simd.ActiveISA().String(),
		"simd_overridden", simd.IsOverridden(),
	)

	opts := []Option{WithLogger(logger)}
	if c.ExpandedDistances {
		opts = append(opts, WithExpandedDistances())
	}

	switch strings.ToLower(c.Accelerator) {
	case AcceleratorEmulator:
		emu := device.NewEmulator(func(o *device.EmulatorOptions) {
			o.BlockSize = c.EmulatorBlockSize
			o.Parallelism = c.EmulatorParallelism
			o.MemoryLimit = c.EmulatorMemoryLimit
			o.Logger = logger.Logger
		})
		opts = append(opts, WithAccelerator(emu), withOwned(emu))
	case AcceleratorCUDA:
		dev, err := cuda.Open(cuda.Config{
			Runtime: c.CUDARuntime,
			Kernel:  c.CUDAKernel,
			Logger:  logger.Logger,
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithAccelerator(dev), withOwned(dev))
	}
	return opts, nil
}

// NewFromConfig builds an Engine from c.
func NewFromConfig(c *Config, extra ...Option) (*Engine, error) {
	opts, err := c.Options()
	if err != nil {
		return nil, err
	}
	return New(append(opts, extra...)...), nil
}
