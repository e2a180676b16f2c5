package cfg

import (
	"cmp"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Feed configuration
	FeedsDir     string `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing feed credential files"`
	OutputDir    string `long:"output-dir" env:"OUTPUT_DIR" default:"./output" description:"Directory for generated feeds and pages"`
	StateFile    string `long:"state-file" env:"STATE_FILE" description:"Path to the decision cache file (default: <output-dir>/processed_state.json)"`
	DaysLookback int    `long:"days-lookback" env:"DAYS_LOOKBACK" default:"7" description:"Ignore items older than this many days"`

	// Classification configuration
	GlobalFilterCriteria string `long:"global-filter-criteria" env:"GLOBAL_FILTER_CRITERIA" description:"Filter criteria applied to every feed in addition to its own"`
	AnthropicAPIKey      string `long:"anthropic-api-key" env:"ANTHROPIC_API_KEY" description:"Anthropic API key (required)" required:"true"`
	Model                string `long:"model" env:"MODEL" default:"claude-3-5-haiku-latest" description:"Model used for classification"`

	// Application configuration
	WorkerCount int `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of workers processing feeds concurrently"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"RSS Buddy/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		FeedsDir:             raw.FeedsDir,
		OutputDir:            raw.OutputDir,
		StateFile:            raw.StateFile,
		DaysLookback:         raw.DaysLookback,
		GlobalFilterCriteria: raw.GlobalFilterCriteria,
		AnthropicAPIKey:      raw.AnthropicAPIKey,
		Model:                raw.Model,
		WorkerCount:          raw.WorkerCount,
		UserAgent:            raw.UserAgent,
		Timezone:             raw.Timezone,
		Debug:                raw.Debug,
		Version:              GetVersion(),
	}

	if cfg.StateFile == "" {
		cfg.StateFile = filepath.Join(cfg.OutputDir, "processed_state.json")
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
