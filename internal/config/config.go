package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/example/voiceforge/internal/voice"
)

// Engine backends.
const (
	BackendCLI  = "cli"
	BackendHTTP = "http"
)

type Config struct {
	LogLevel string        `mapstructure:"log_level"`
	Policy   PolicyConfig  `mapstructure:"policy"`
	Profile  ProfileConfig `mapstructure:"profile"`
	Storage  StorageConfig `mapstructure:"storage"`
	Engine   EngineConfig  `mapstructure:"engine"`
}

type PolicyConfig struct {
	TargetSampleRate   int     `mapstructure:"target_sample_rate"`
	MinDurationSeconds float64 `mapstructure:"min_duration_seconds"`
	MaxDurationSeconds float64 `mapstructure:"max_duration_seconds"`
	ClipThreshold      float64 `mapstructure:"clip_threshold"`
}

type ProfileConfig struct {
	DefaultLanguage string `mapstructure:"default_language"`
}

type StorageConfig struct {
	DatabasePath string `mapstructure:"database_path"`
	WorkDir      string `mapstructure:"work_dir"`
	OutputDir    string `mapstructure:"output_dir"`
}

type EngineConfig struct {
	Backend        string `mapstructure:"backend"`
	CLIPath        string `mapstructure:"cli_path"`
	CLIConfigPath  string `mapstructure:"cli_config_path"`
	ServiceURL     string `mapstructure:"service_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	Quiet          bool   `mapstructure:"quiet"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Policy: PolicyConfig{
			TargetSampleRate:   24000,
			MinDurationSeconds: 3.0,
			MaxDurationSeconds: 30.0,
			ClipThreshold:      0.99,
		},
		Profile: ProfileConfig{
			DefaultLanguage: "en",
		},
		Storage: StorageConfig{
			DatabasePath: "voiceforge.db",
			WorkDir:      "work",
			OutputDir:    "out",
		},
		Engine: EngineConfig{
			Backend:        BackendCLI,
			CLIPath:        "",
			CLIConfigPath:  "",
			ServiceURL:     "http://localhost:8000",
			TimeoutSeconds: 120,
			Quiet:          true,
		},
	}
}

// VoicePolicy converts the thresholds into the domain policy value.
func (c Config) VoicePolicy() voice.Policy {
	return voice.Policy{
		TargetSampleRateHz: c.Policy.TargetSampleRate,
		MinDurationSeconds: c.Policy.MinDurationSeconds,
		MaxDurationSeconds: c.Policy.MaxDurationSeconds,
		ClipThreshold:      c.Policy.ClipThreshold,
	}
}

// NormalizeBackend canonicalizes an engine backend name. Empty input
// defaults to the CLI backend.
func NormalizeBackend(backend string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendCLI:
		return BackendCLI, nil
	case BackendHTTP:
		return BackendHTTP, nil
	default:
		return "", fmt.Errorf("unsupported engine backend %q (want cli|http)", backend)
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
	fs.Int("policy-target-sample-rate", defaults.Policy.TargetSampleRate, "Target sample rate in Hz for reference audio")
	fs.Float64("policy-min-duration-seconds", defaults.Policy.MinDurationSeconds, "Minimum accepted sample duration in seconds")
	fs.Float64("policy-max-duration-seconds", defaults.Policy.MaxDurationSeconds, "Maximum accepted sample duration in seconds")
	fs.Float64("policy-clip-threshold", defaults.Policy.ClipThreshold, "Peak amplitude above which clipping is reported")
	fs.String("profile-default-language", defaults.Profile.DefaultLanguage, "Language tag applied to new profiles")
	fs.String("storage-database-path", defaults.Storage.DatabasePath, "Path to the profile SQLite database")
	fs.String("storage-work-dir", defaults.Storage.WorkDir, "Directory for normalized reference audio")
	fs.String("storage-output-dir", defaults.Storage.OutputDir, "Directory for generated segment audio")
	fs.String("engine-backend", defaults.Engine.Backend, "Synthesis engine backend (cli|http)")
	fs.String("engine-cli-path", defaults.Engine.CLIPath, "Path to the TTS executable for the cli backend")
	fs.String("engine-cli-config-path", defaults.Engine.CLIConfigPath, "Config file passed to the TTS executable")
	fs.String("engine-service-url", defaults.Engine.ServiceURL, "Base URL of the synthesis service for the http backend")
	fs.Int("engine-timeout-seconds", defaults.Engine.TimeoutSeconds, "Per-segment synthesis timeout in seconds")
	fs.Bool("engine-quiet", defaults.Engine.Quiet, "Pass --quiet to the TTS executable")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("VOICEFORGE")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("voiceforge")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("policy.target_sample_rate", c.Policy.TargetSampleRate)
	v.SetDefault("policy.min_duration_seconds", c.Policy.MinDurationSeconds)
	v.SetDefault("policy.max_duration_seconds", c.Policy.MaxDurationSeconds)
	v.SetDefault("policy.clip_threshold", c.Policy.ClipThreshold)
	v.SetDefault("profile.default_language", c.Profile.DefaultLanguage)
	v.SetDefault("storage.database_path", c.Storage.DatabasePath)
	v.SetDefault("storage.work_dir", c.Storage.WorkDir)
	v.SetDefault("storage.output_dir", c.Storage.OutputDir)
	v.SetDefault("engine.backend", c.Engine.Backend)
	v.SetDefault("engine.cli_path", c.Engine.CLIPath)
	v.SetDefault("engine.cli_config_path", c.Engine.CLIConfigPath)
	v.SetDefault("engine.service_url", c.Engine.ServiceURL)
	v.SetDefault("engine.timeout_seconds", c.Engine.TimeoutSeconds)
	v.SetDefault("engine.quiet", c.Engine.Quiet)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("log_level", "log-level")
	v.RegisterAlias("policy.target_sample_rate", "policy-target-sample-rate")
	v.RegisterAlias("policy.min_duration_seconds", "policy-min-duration-seconds")
	v.RegisterAlias("policy.max_duration_seconds", "policy-max-duration-seconds")
	v.RegisterAlias("policy.clip_threshold", "policy-clip-threshold")
	v.RegisterAlias("profile.default_language", "profile-default-language")
	v.RegisterAlias("storage.database_path", "storage-database-path")
	v.RegisterAlias("storage.work_dir", "storage-work-dir")
	v.RegisterAlias("storage.output_dir", "storage-output-dir")
	v.RegisterAlias("engine.backend", "engine-backend")
	v.RegisterAlias("engine.cli_path", "engine-cli-path")
	v.RegisterAlias("engine.cli_config_path", "engine-cli-config-path")
	v.RegisterAlias("engine.service_url", "engine-service-url")
	v.RegisterAlias("engine.timeout_seconds", "engine-timeout-seconds")
	v.RegisterAlias("engine.quiet", "engine-quiet")
}
