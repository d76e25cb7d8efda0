package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/docker/go-units"
	"gopkg.in/yaml.v3"

	"github.com/LachlanStuart/slingpy/internal/app"
)

const (
	SchedulerSlurm   = "slurm"
	SchedulerDocker  = "docker"
	SchedulerProcess = "process"
)

type Config struct {
	ProjectDir   string        `yaml:"project_dir"`
	Tag          string        `yaml:"tag"`
	Parallel     int           `yaml:"parallel"`
	Results      Results       `yaml:"results"`
	Scheduler    Scheduler     `yaml:"scheduler"`
	Applications []Application `yaml:"applications"`
}

type Results struct {
	Dir string `yaml:"dir"`
}

type Scheduler struct {
	Kind       string   `yaml:"kind"`
	Entrypoint []string `yaml:"entrypoint"`
	Slurm      Slurm    `yaml:"slurm"`
	Docker     Docker   `yaml:"docker"`
}

type Slurm struct {
	Sbatch    string   `yaml:"sbatch"`
	Scancel   string   `yaml:"scancel"`
	Partition string   `yaml:"partition"`
	ExtraArgs []string `yaml:"extra_args"`
}

type Docker struct {
	Image string `yaml:"image"`
}

type Application struct {
	Name      string         `yaml:"name"`
	Runs      int            `yaml:"runs"`
	Options   map[string]any `yaml:"options"`
	Resources Resources      `yaml:"resources"`
}

type Resources struct {
	TimeLimitDays  int    `yaml:"time_limit_days"`
	TimeLimitHours int    `yaml:"time_limit_hours"`
	MemLimit       string `yaml:"mem_limit"`
	NumCPUs        int    `yaml:"num_cpus"`
	Virtualenv     string `yaml:"virtualenv"`
}

// AppResources converts the YAML form into app.Resources. mem_limit takes
// human sizes ("4GB", "512m"); a bare number is megabytes.
func (r Resources) AppResources() (app.Resources, error) {
	memMB, err := ParseMemMB(r.MemLimit)
	if err != nil {
		return app.Resources{}, err
	}
	res := app.Resources{
		TimeLimitDays:  r.TimeLimitDays,
		TimeLimitHours: r.TimeLimitHours,
		MemLimitMB:     memMB,
		NumCPUs:        r.NumCPUs,
		VirtualenvPath: r.Virtualenv,
	}
	return res, res.Validate()
}

// ParseMemMB parses a memory size into megabytes.
func ParseMemMB(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("mem_limit is required")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	b, err := units.RAMInBytes(s)
	if err != nil {
		return 0, fmt.Errorf("parsing mem_limit %q: %w", s, err)
	}
	return int(b / units.MiB), nil
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
	if cfg.ProjectDir == "" {
		cfg.ProjectDir = "."
	}
	if cfg.Results.Dir == "" {
		cfg.Results.Dir = "results"
	}
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}
	switch cfg.Scheduler.Kind {
	case "":
		cfg.Scheduler.Kind = SchedulerSlurm
	case SchedulerSlurm, SchedulerDocker, SchedulerProcess:
	default:
		return fmt.Errorf("scheduler.kind %q: must be one of slurm, docker, process", cfg.Scheduler.Kind)
	}
	if cfg.Scheduler.Kind == SchedulerSlurm && cfg.Scheduler.Slurm.Sbatch == "" {
		cfg.Scheduler.Slurm.Sbatch = "sbatch"
	}
	if cfg.Scheduler.Kind == SchedulerSlurm && cfg.Scheduler.Slurm.Scancel == "" {
		cfg.Scheduler.Slurm.Scancel = "scancel"
	}
	if cfg.Scheduler.Kind == SchedulerDocker && cfg.Scheduler.Docker.Image == "" {
		return fmt.Errorf("scheduler.docker.image is required for the docker scheduler")
	}

	if len(cfg.Applications) == 0 {
		return fmt.Errorf("no applications defined")
	}
	seen := make(map[string]bool)
	for i := range cfg.Applications {
		a := &cfg.Applications[i]
		if a.Name == "" {
			return fmt.Errorf("application %d: name is required", i)
		}
		if seen[a.Name] {
			return fmt.Errorf("application %q: defined twice", a.Name)
		}
		seen[a.Name] = true
		if a.Runs == 0 {
			a.Runs = 1
		}
		if a.Runs < 0 {
			return fmt.Errorf("application %q: runs must be positive", a.Name)
		}
	}
	return nil
}

// ValidateResources checks every application's resources. Only runs
// submitted to a scheduler use them, so Load leaves this to the caller.
func (c *Config) ValidateResources() error {
	for _, a := range c.Applications {
		if _, err := a.Resources.AppResources(); err != nil {
			return fmt.Errorf("application %q: %w", a.Name, err)
		}
	}
	return nil
}
