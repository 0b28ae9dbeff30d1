// Package config loads the YAML configuration of a pipeline and turns it into pipeline options.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/askiada/go-resample-pipeline/internal/logger"
	"github.com/askiada/go-resample-pipeline/pkg/pipeline"
	"github.com/askiada/go-resample-pipeline/pkg/pipeline/drawer"
	"github.com/askiada/go-resample-pipeline/pkg/pipeline/measure"
	"github.com/askiada/go-resample-pipeline/pkg/pipeline/memory"
	"github.com/askiada/go-resample-pipeline/pkg/pipeline/model"
)

// Memory backends.
const (
	BackendNone      = ""
	BackendInProcess = "inprocess"
	BackendDir       = "dir"
	BackendRedis     = "redis"
)

var (
	ErrUnknownBackend  = errors.New("unknown memory backend")
	ErrMissingLocation = errors.New("memory location must be set")
	ErrMissingName     = errors.New("pipeline name must be set to export metrics")
)

type Redis struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
	Timeout  time.Duration `yaml:"timeout"`
}

type Memory struct {
	// Backend is one of inprocess, dir or redis. Empty disables caching.
	Backend  string `yaml:"backend"`
	Location string `yaml:"location"`
	Redis    Redis  `yaml:"redis"`
}

type Draw struct {
	File string `yaml:"file"`
}

// Config is the configuration of one pipeline.
type Config struct {
	Name    string        `yaml:"name"`
	Verbose bool          `yaml:"verbose"`
	Log     logger.Config `yaml:"log"`
	Memory  Memory        `yaml:"memory"`
	Measure bool          `yaml:"measure"`
	Draw    Draw          `yaml:"draw"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Name: "pipeline",
		Log:  logger.DefaultConfig(),
		Memory: Memory{
			Redis: Redis{Prefix: memory.DefaultRedisPrefix},
		},
	}
}

// Load reads the YAML file at path on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read config file %s", path)
	}

	return Parse(data)
}

// Parse decodes data on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "unable to parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Memory.Backend {
	case BackendNone, BackendInProcess:
	case BackendDir:
		if c.Memory.Location == "" {
			return errors.Wrap(ErrMissingLocation, "dir backend")
		}
	case BackendRedis:
		if c.Memory.Redis.Addr == "" {
			return errors.Wrap(ErrMissingLocation, "redis backend needs an address")
		}
	default:
		return errors.Wrapf(ErrUnknownBackend, "%q", c.Memory.Backend)
	}

	return nil
}

func (c *Config) memory() (memory.Memory, func() error, error) {
	noop := func() error { return nil }

	switch c.Memory.Backend {
	case BackendInProcess:
		return memory.NewInProcess(), noop, nil
	case BackendDir:
		mem, err := memory.NewDir(c.Memory.Location)
		if err != nil {
			return nil, nil, err
		}

		return mem, noop, nil
	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     c.Memory.Redis.Addr,
			Password: c.Memory.Redis.Password,
			DB:       c.Memory.Redis.DB,
		})
		opts := []memory.RedisOption{}
		if c.Memory.Redis.Timeout > 0 {
			opts = append(opts, memory.RedisTimeout(c.Memory.Redis.Timeout))
		}

		return memory.NewRedis(client, c.Memory.Redis.Prefix, c.Memory.Redis.TTL, opts...), client.Close, nil
	case BackendNone:
		return nil, noop, nil
	default:
		return nil, nil, errors.Wrapf(ErrUnknownBackend, "%q", c.Memory.Backend)
	}
}

// Options builds the pipeline options described by the configuration. The returned function releases
// the memory backend. Metrics are registered on reg when it is not nil.
func (c *Config) Options(reg prometheus.Registerer) ([]pipeline.Option, func() error, error) {
	log, err := logger.New(&c.Log)
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to create logger")
	}

	mem, closeFn, err := c.memory()
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to create memory")
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(log.With(zap.String("pipeline", c.Name))),
		pipeline.WithVerbose(c.Verbose),
		pipeline.WithMemory(mem),
	}

	hooks := []model.PipelineOption{}
	var msr measure.Measure
	if c.Measure || c.Draw.File != "" {
		msr = measure.NewDefaultMeasure()
		hooks = append(hooks, measure.PipelineMeasure(msr))
	}
	if reg != nil {
		if c.Name == "" {
			_ = closeFn()

			return nil, nil, ErrMissingName
		}
		prom, err := measure.NewPrometheus(reg, c.Name)
		if err != nil {
			_ = closeFn()

			return nil, nil, errors.Wrap(err, "unable to register metrics")
		}
		hooks = append(hooks, prom)
	}
	if c.Draw.File != "" {
		hooks = append(hooks, drawer.PipelineDrawer(drawer.NewDOTDrawer(c.Draw.File), msr))
	}
	if len(hooks) > 0 {
		opts = append(opts, pipeline.WithOptions(hooks...))
	}

	return opts, closeFn, nil
}
