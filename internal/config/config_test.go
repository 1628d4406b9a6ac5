package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/newthinker/prism/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
simulation:
  initial_capital: 250000
  cadence: quarterly
  benchmark: QQQ

analytics:
  risk_free_rate: 0.035
  sectors:
    - name: Technology
      weight: 3
    - name: Energy
      weight: 1

data:
  source: csv
  archive:
    type: localfs
    path: "/tmp/prism/archive"

strategies:
  all_weather:
    SPY: 0.3
    bnd: 0.55
    GLD: 0.15
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Simulation.InitialCapital != 250000 {
		t.Errorf("expected capital 250000, got %v", cfg.Simulation.InitialCapital)
	}
	if cfg.Simulation.Cadence != "quarterly" {
		t.Errorf("expected quarterly, got %s", cfg.Simulation.Cadence)
	}
	if cfg.Data.Archive.Type != "localfs" || cfg.Data.Archive.Path != "/tmp/prism/archive" {
		t.Errorf("unexpected archive config %+v", cfg.Data.Archive)
	}
	// unset keys keep their defaults
	if cfg.Data.Archive.Dir != "prices" {
		t.Errorf("expected default archive dir, got %q", cfg.Data.Archive.Dir)
	}
	if cfg.Simulation.Parallelism != 4 {
		t.Errorf("expected default parallelism 4, got %d", cfg.Simulation.Parallelism)
	}

	policies := cfg.Policies()
	aw, ok := policies["all_weather"]
	if !ok {
		t.Fatalf("expected all_weather strategy, got %v", policies)
	}
	if aw["BND"] != 0.55 || aw["SPY"] != 0.3 {
		t.Errorf("symbols should be upper-cased: %v", aw)
	}

	sectors := cfg.SectorWeights()
	if sectors["Technology"] != 3 || sectors["Energy"] != 1 {
		t.Errorf("sector names should keep their case: %v", sectors)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Simulation.InitialCapital != 100000 || cfg.Data.Source != SourceSynthetic {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("PRISM_TEST_SECRET", "s3cret")
	path := writeConfig(t, `
data:
  source: csv
  archive:
    type: s3
    s3:
      bucket: prices
      secret_key: "${PRISM_TEST_SECRET}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Data.Archive.S3.SecretKey != "s3cret" {
		t.Errorf("expected expanded secret, got %q", cfg.Data.Archive.S3.SecretKey)
	}
	if cfg.Data.Archive.S3.Region != "us-east-1" {
		t.Errorf("expected default region, got %q", cfg.Data.Archive.S3.Region)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PRISM_SIMULATION_CADENCE", "weekly")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Simulation.Cadence != "weekly" {
		t.Errorf("expected env override, got %s", cfg.Simulation.Cadence)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Analytics.RiskFreeRate != 0.02 {
		t.Errorf("expected default risk_free_rate 0.02, got %f", cfg.Analytics.RiskFreeRate)
	}
	if cfg.Simulation.Cadence != "monthly" {
		t.Errorf("expected default cadence monthly, got %s", cfg.Simulation.Cadence)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr *core.Error
	}{
		{"defaults", func(c *Config) {}, nil},
		{"zero capital", func(c *Config) { c.Simulation.InitialCapital = 0 }, core.ErrConfigInvalid},
		{"bad cadence", func(c *Config) { c.Simulation.Cadence = "hourly" }, core.ErrConfigInvalid},
		{"negative cost", func(c *Config) { c.Simulation.CostPerLeg = -1 }, core.ErrConfigInvalid},
		{"negative parallelism", func(c *Config) { c.Simulation.Parallelism = -2 }, core.ErrConfigInvalid},
		{"absurd risk-free", func(c *Config) { c.Analytics.RiskFreeRate = 5 }, core.ErrConfigInvalid},
		{"bad frequency", func(c *Config) { c.Analytics.Frequency = "hourly" }, core.ErrConfigInvalid},
		{"negative sector", func(c *Config) {
			c.Analytics.Sectors = []SectorWeight{{Name: "Energy", Weight: -1}}
		}, core.ErrConfigInvalid},
		{"zero sectors", func(c *Config) {
			c.Analytics.Sectors = []SectorWeight{{Name: "Energy", Weight: 0}}
		}, core.ErrConfigInvalid},
		{"unknown source", func(c *Config) { c.Data.Source = "bloomberg" }, core.ErrConfigInvalid},
		{"bad synthetic asset", func(c *Config) {
			c.Data.Assets = []AssetParams{{Symbol: "X", InitialPrice: 0}}
		}, core.ErrConfigInvalid},
		{"csv without path", func(c *Config) { c.Data.Source = SourceCSV }, core.ErrConfigMissing},
		{"csv s3 without bucket", func(c *Config) {
			c.Data.Source = SourceCSV
			c.Data.Archive.Type = "s3"
		}, core.ErrConfigMissing},
		{"csv unknown archive", func(c *Config) {
			c.Data.Source = SourceCSV
			c.Data.Archive.Type = "ftp"
		}, core.ErrConfigInvalid},
		{"empty strategy", func(c *Config) {
			c.Strategies = map[string]map[string]float64{"empty": {}}
		}, core.ErrConfigInvalid},
		{"negative strategy weight", func(c *Config) {
			c.Strategies = map[string]map[string]float64{"short": {"spy": -0.5}}
		}, core.ErrConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %s, got %v", tt.wantErr.Code, err)
			}
		})
	}
}

func TestConfig_StrategyNames(t *testing.T) {
	cfg := Defaults()
	cfg.Strategies = map[string]map[string]float64{
		"zeta":  {"spy": 1},
		"alpha": {"bnd": 1},
	}
	names := cfg.StrategyNames()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("StrategyNames() = %v", names)
	}
	if cfg.SectorWeights() != nil {
		t.Error("expected nil sector weights when none configured")
	}
}
