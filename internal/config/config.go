package config

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/newthinker/prism/internal/core"
)

type Config struct {
	Log        LogConfig                     `mapstructure:"log"`
	Simulation SimulationConfig              `mapstructure:"simulation"`
	Analytics  AnalyticsConfig               `mapstructure:"analytics"`
	Data       DataConfig                    `mapstructure:"data"`
	Strategies map[string]map[string]float64 `mapstructure:"strategies"`
	Metrics    MetricsConfig                 `mapstructure:"metrics"`
}

type LogConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

type SimulationConfig struct {
	InitialCapital float64 `mapstructure:"initial_capital"`
	Cadence        string  `mapstructure:"cadence"`
	CostPerLeg     float64 `mapstructure:"cost_per_leg"`
	Benchmark      string  `mapstructure:"benchmark"`
	Parallelism    int     `mapstructure:"parallelism"`
}

type AnalyticsConfig struct {
	RiskFreeRate float64        `mapstructure:"risk_free_rate"`
	Frequency    string         `mapstructure:"frequency"` // frequency of analyzed return files
	Sectors      []SectorWeight `mapstructure:"sectors"`
}

// SectorWeight is a list entry so that sector names keep their case
type SectorWeight struct {
	Name   string  `mapstructure:"name"`
	Weight float64 `mapstructure:"weight"`
}

type DataConfig struct {
	Source  string        `mapstructure:"source"` // "synthetic" or "csv"
	Seed    uint64        `mapstructure:"seed"`
	Assets  []AssetParams `mapstructure:"assets"`
	Archive ArchiveConfig `mapstructure:"archive"`
}

// AssetParams overrides or extends the synthetic generator catalog
type AssetParams struct {
	Symbol       string  `mapstructure:"symbol"`
	Drift        float64 `mapstructure:"drift"`
	Volatility   float64 `mapstructure:"volatility"`
	InitialPrice float64 `mapstructure:"initial_price"`
}

type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	Dir  string   `mapstructure:"dir"`  // directory holding <SYMBOL>.csv
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Textfile string `mapstructure:"textfile"` // written after each command when set
	Runtime  bool   `mapstructure:"runtime"`  // include Go runtime collectors
}

// Data sources
const (
	SourceSynthetic = "synthetic"
	SourceCSV       = "csv"
)

// Load reads configuration from file, layered over Defaults. An empty path
// returns Defaults with environment overrides applied.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PRISM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v, Defaults())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers scalar defaults so AutomaticEnv can override keys that
// are absent from the file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("log.development", d.Log.Development)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("simulation.initial_capital", d.Simulation.InitialCapital)
	v.SetDefault("simulation.cadence", d.Simulation.Cadence)
	v.SetDefault("simulation.cost_per_leg", d.Simulation.CostPerLeg)
	v.SetDefault("simulation.benchmark", d.Simulation.Benchmark)
	v.SetDefault("simulation.parallelism", d.Simulation.Parallelism)
	v.SetDefault("analytics.risk_free_rate", d.Analytics.RiskFreeRate)
	v.SetDefault("analytics.frequency", d.Analytics.Frequency)
	v.SetDefault("data.source", d.Data.Source)
	v.SetDefault("data.seed", d.Data.Seed)
	v.SetDefault("data.archive.type", d.Data.Archive.Type)
	v.SetDefault("data.archive.path", d.Data.Archive.Path)
	v.SetDefault("data.archive.dir", d.Data.Archive.Dir)
	v.SetDefault("data.archive.s3.bucket", "")
	v.SetDefault("data.archive.s3.endpoint", "")
	v.SetDefault("data.archive.s3.region", d.Data.Archive.S3.Region)
	v.SetDefault("data.archive.s3.access_key", "")
	v.SetDefault("data.archive.s3.secret_key", "")
	v.SetDefault("data.archive.s3.prefix", "")
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)
	v.SetDefault("metrics.runtime", d.Metrics.Runtime)
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Simulation: SimulationConfig{
			InitialCapital: 100000,
			Cadence:        string(core.CadenceMonthly),
			Benchmark:      "SPY",
			Parallelism:    4,
		},
		Analytics: AnalyticsConfig{
			RiskFreeRate: 0.02,
			Frequency:    "monthly",
		},
		Data: DataConfig{
			Source: SourceSynthetic,
			Seed:   42,
			Archive: ArchiveConfig{
				Type: "localfs",
				Dir:  "prices",
				S3: S3Config{
					Region: "us-east-1",
				},
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Simulation validation
	if c.Simulation.InitialCapital <= 0 || math.IsNaN(c.Simulation.InitialCapital) {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("initial_capital must be positive, got %v", c.Simulation.InitialCapital))
	}
	if _, err := core.ParseCadence(c.Simulation.Cadence); err != nil {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("cadence must be daily, weekly, monthly or quarterly, got %q", c.Simulation.Cadence))
	}
	if c.Simulation.CostPerLeg < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("cost_per_leg cannot be negative, got %v", c.Simulation.CostPerLeg))
	}
	if c.Simulation.Parallelism < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("parallelism cannot be negative, got %d", c.Simulation.Parallelism))
	}

	// Analytics validation
	if c.Analytics.RiskFreeRate < -1 || c.Analytics.RiskFreeRate > 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("risk_free_rate must be between -1 and 1, got %v", c.Analytics.RiskFreeRate))
	}
	switch strings.ToLower(c.Analytics.Frequency) {
	case "daily", "weekly", "monthly", "quarterly", "yearly", "annual":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown return frequency %q", c.Analytics.Frequency))
	}
	var sectorTotal float64
	for _, s := range c.Analytics.Sectors {
		if s.Name == "" || s.Weight < 0 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("sector %q has invalid weight %v", s.Name, s.Weight))
		}
		sectorTotal += s.Weight
	}
	if len(c.Analytics.Sectors) > 0 && sectorTotal <= 0 {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("sector weights sum to zero"))
	}

	// Data validation
	switch c.Data.Source {
	case SourceSynthetic:
		for _, a := range c.Data.Assets {
			if a.Symbol == "" || a.InitialPrice <= 0 || a.Volatility < 0 {
				return core.WrapError(core.ErrConfigInvalid,
					fmt.Errorf("synthetic asset %q needs a positive initial_price and non-negative volatility", a.Symbol))
			}
		}
	case SourceCSV:
		switch c.Data.Archive.Type {
		case "localfs":
			if c.Data.Archive.Path == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("data.archive.path required for localfs archive"))
			}
		case "s3":
			if c.Data.Archive.S3.Bucket == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("data.archive.s3.bucket required for s3 archive"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("archive type must be localfs or s3, got %q", c.Data.Archive.Type))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("data source must be synthetic or csv, got %q", c.Data.Source))
	}

	// Strategy validation
	for name, weights := range c.Strategies {
		if len(weights) == 0 {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("strategy %q has no assets", name))
		}
		for symbol, w := range weights {
			if w < 0 {
				return core.WrapError(core.ErrConfigInvalid,
					fmt.Errorf("strategy %q weight for %s cannot be negative", name, symbol))
			}
		}
	}

	return nil
}

// Policies converts the strategies section into allocation policies. Viper
// lower-cases map keys, so symbols are upper-cased back.
func (c *Config) Policies() map[string]core.AllocationPolicy {
	out := make(map[string]core.AllocationPolicy, len(c.Strategies))
	for name, weights := range c.Strategies {
		p := make(core.AllocationPolicy, len(weights))
		for symbol, w := range weights {
			p[strings.ToUpper(symbol)] = w
		}
		out[name] = p
	}
	return out
}

// SectorWeights returns the configured sector map, or nil when none is set
func (c *Config) SectorWeights() map[string]float64 {
	if len(c.Analytics.Sectors) == 0 {
		return nil
	}
	out := make(map[string]float64, len(c.Analytics.Sectors))
	for _, s := range c.Analytics.Sectors {
		out[s.Name] += s.Weight
	}
	return out
}

// StrategyNames returns configured custom strategy names in sorted order
func (c *Config) StrategyNames() []string {
	names := make([]string, 0, len(c.Strategies))
	for name := range c.Strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
