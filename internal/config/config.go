package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Benchmarks []Benchmark `yaml:"benchmarks"`
	Iterations Iterations  `yaml:"iterations"`
	Profiler   Profiler    `yaml:"profiler"`
	Results    Results     `yaml:"results"`
}

type Benchmark struct {
	Name     string              `yaml:"name"`
	Workload string              `yaml:"workload"`
	Mode     string              `yaml:"mode"`
	Params   map[string][]string `yaml:"params"`
}

type Iterations struct {
	Warmup      int `yaml:"warmup"`
	Measurement int `yaml:"measurement"`
	DurationMS  int `yaml:"duration_ms"`
}

func (i Iterations) Duration() time.Duration {
	return time.Duration(i.DurationMS) * time.Millisecond
}

type Profiler struct {
	Heap           bool `yaml:"heap"`
	InitialDelayMS int  `yaml:"initial_delay_ms"`
	PeriodMS       int  `yaml:"period_ms"`
}

func (p Profiler) InitialDelay() time.Duration {
	return time.Duration(p.InitialDelayMS) * time.Millisecond
}

func (p Profiler) Period() time.Duration {
	return time.Duration(p.PeriodMS) * time.Millisecond
}

type Results struct {
	Dir string `yaml:"dir"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if len(cfg.Benchmarks) == 0 {
		return fmt.Errorf("no benchmarks defined")
	}
	for i := range cfg.Benchmarks {
		b := &cfg.Benchmarks[i]
		if b.Name == "" {
			return fmt.Errorf("benchmark %d: name is required", i)
		}
		if b.Workload == "" {
			b.Workload = b.Name
		}
		if b.Mode == "" {
			b.Mode = "thrpt"
		}
		switch b.Mode {
		case "thrpt", "avgt", "ss":
		default:
			return fmt.Errorf("benchmark %q: unknown mode %q", b.Name, b.Mode)
		}
		for key, values := range b.Params {
			if len(values) == 0 {
				return fmt.Errorf("benchmark %q: parameter %q has no values", b.Name, key)
			}
		}
	}
	if cfg.Iterations.Warmup < 0 {
		return fmt.Errorf("iterations.warmup must not be negative")
	}
	if cfg.Iterations.Measurement == 0 {
		cfg.Iterations.Measurement = 5
	}
	if cfg.Iterations.Measurement < 1 {
		return fmt.Errorf("iterations.measurement must be at least 1")
	}
	if cfg.Iterations.DurationMS == 0 {
		cfg.Iterations.DurationMS = 1000
	}
	if cfg.Iterations.DurationMS < 1 {
		return fmt.Errorf("iterations.duration_ms must be at least 1")
	}
	if cfg.Profiler.InitialDelayMS == 0 {
		cfg.Profiler.InitialDelayMS = 10
	}
	if cfg.Profiler.PeriodMS == 0 {
		cfg.Profiler.PeriodMS = 100
	}
	if cfg.Profiler.PeriodMS < 1 {
		return fmt.Errorf("profiler.period_ms must be at least 1")
	}
	if cfg.Results.Dir == "" {
		cfg.Results.Dir = "results"
	}
	return nil
}
