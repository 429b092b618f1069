// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	Agent      AgentConfig      `mapstructure:"agent" yaml:"agent"`
	Device     DeviceConfig     `mapstructure:"device" yaml:"device"`
	Perception PerceptionConfig `mapstructure:"perception" yaml:"perception"`
	Planner    PlannerConfig    `mapstructure:"planner" yaml:"planner"`
	Report     ReportConfig     `mapstructure:"report" yaml:"report"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// AgentConfig tunes the control loop.
type AgentConfig struct {
	// MaxSteps is the step budget: the maximum number of perceive-plan-act
	// iterations allowed per task.
	MaxSteps int `mapstructure:"max_steps" yaml:"max_steps"`
	// StepDelay is the fixed pause between steps, letting the UI settle
	// before the next capture.
	StepDelay time.Duration `mapstructure:"step_delay" yaml:"step_delay"`
	// HistoryWindow is the number of trailing history entries exposed to the
	// planner. The full history is always retained for reporting.
	HistoryWindow int `mapstructure:"history_window" yaml:"history_window"`
	// ContinueOnError controls whether planner failures and validation errors
	// abort the task (false, the default) or are recorded as failed steps
	// while the loop carries on. Capture failures are always fatal and
	// execution failures never abort, regardless of this flag.
	ContinueOnError bool `mapstructure:"continue_on_error" yaml:"continue_on_error"`
}

// DeviceConfig describes the ADB connection and capture behavior.
type DeviceConfig struct {
	// Serial selects a device when more than one is attached. Empty means
	// "whatever adb picks".
	Serial         string        `mapstructure:"serial" yaml:"serial"`
	ADBPath        string        `mapstructure:"adb_path" yaml:"adb_path"`
	CaptureTimeout time.Duration `mapstructure:"capture_timeout" yaml:"capture_timeout"`
	CommandTimeout time.Duration `mapstructure:"command_timeout" yaml:"command_timeout"`
}

// PerceptionConfig tunes hierarchy parsing and screenshot handling.
type PerceptionConfig struct {
	// MaxDepth truncates pathological hierarchy dumps. Nodes below this depth
	// are dropped with a diagnostic, not an error.
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth"`
	// MaxPlannerWidth is the downscale threshold for the screenshot copy sent
	// to the planner. Element coordinates are never rescaled.
	MaxPlannerWidth int `mapstructure:"max_planner_width" yaml:"max_planner_width"`
	// ScreenshotDir, when set, persists every captured screenshot.
	ScreenshotDir string `mapstructure:"screenshot_dir" yaml:"screenshot_dir"`
}

// PlannerConfig configures the Gemini planner client.
type PlannerConfig struct {
	Model       string        `mapstructure:"model" yaml:"model"`
	APIKey      string        `mapstructure:"api_key" yaml:"-"`
	Endpoint    string        `mapstructure:"endpoint" yaml:"endpoint"`
	APITimeout  time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	Temperature float64       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	// SendScreenshot attaches the downscaled screenshot copy to each request.
	SendScreenshot bool `mapstructure:"send_screenshot" yaml:"send_screenshot"`
}

// ReportConfig controls task report persistence.
type ReportConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Dir     string `mapstructure:"dir" yaml:"dir"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "droidpilot")
	v.SetDefault("logger.log_file", "droidpilot.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Agent --
	v.SetDefault("agent.max_steps", 25)
	v.SetDefault("agent.step_delay", "2s")
	v.SetDefault("agent.history_window", 3)
	v.SetDefault("agent.continue_on_error", false)

	// -- Device --
	v.SetDefault("device.adb_path", "adb")
	v.SetDefault("device.capture_timeout", "30s")
	v.SetDefault("device.command_timeout", "15s")

	// -- Perception --
	v.SetDefault("perception.max_depth", 200)
	v.SetDefault("perception.max_planner_width", 768)
	v.SetDefault("perception.screenshot_dir", "screenshots")

	// -- Planner --
	v.SetDefault("planner.model", "gemini-2.5-flash")
	v.SetDefault("planner.api_timeout", "60s")
	v.SetDefault("planner.temperature", 0.2)
	v.SetDefault("planner.max_tokens", 1024)
	v.SetDefault("planner.send_screenshot", true)

	// -- Report --
	v.SetDefault("report.enabled", true)
	v.SetDefault("report.dir", "reports")
}

// NewDefaultConfig creates a configuration struct populated with defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data.
	v.BindEnv("planner.api_key", "DROIDPILOT_PLANNER_API_KEY", "GEMINI_API_KEY")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Manually load the key if Unmarshal didn't pick it up.
	if cfg.Planner.APIKey == "" {
		for _, env := range []string{"DROIDPILOT_PLANNER_API_KEY", "GEMINI_API_KEY"} {
			if key := os.Getenv(env); key != "" {
				cfg.Planner.APIKey = key
				break
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Agent.MaxSteps <= 0 {
		return fmt.Errorf("agent.max_steps must be a positive integer")
	}
	if c.Agent.HistoryWindow <= 0 {
		return fmt.Errorf("agent.history_window must be a positive integer")
	}
	if c.Agent.StepDelay < 0 {
		return fmt.Errorf("agent.step_delay must not be negative")
	}
	if c.Perception.MaxDepth <= 0 {
		return fmt.Errorf("perception.max_depth must be a positive integer")
	}
	if c.Perception.MaxPlannerWidth <= 0 {
		return fmt.Errorf("perception.max_planner_width must be a positive integer")
	}
	if strings.TrimSpace(c.Device.ADBPath) == "" {
		return fmt.Errorf("device.adb_path must not be empty")
	}
	if c.Planner.Model == "" {
		return fmt.Errorf("planner.model must not be empty")
	}
	return nil
}
