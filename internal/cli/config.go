package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/reoring/gofactory"
)

// EnvPrefix prefixes environment overrides, e.g. GOFACTORY_MAX_DEPTH=5.
const EnvPrefix = "GOFACTORY"

// Config is the CLI configuration read from gofactory.yaml, the environment and
// flags, in increasing precedence.
type Config struct {
	Seed                int64   `mapstructure:"seed"`
	Count               int     `mapstructure:"count"`
	MinItems            int     `mapstructure:"min_items"`
	MaxItems            int     `mapstructure:"max_items"`
	OptionalProbability float64 `mapstructure:"optional_probability"`
	MaxDepth            int     `mapstructure:"max_depth"`
	KeyRetries          int     `mapstructure:"key_retries"`
	UnknownOverrides    string  `mapstructure:"unknown_overrides"`
	UseDefaults         bool    `mapstructure:"use_defaults"`
	PostGenVisibility   string  `mapstructure:"post_gen_visibility"`
	Pretty              bool    `mapstructure:"pretty"`

	// seeded is set when seed came from any source, so an unset seed means entropy.
	seeded bool
}

// LoadConfig reads the configuration. path names an explicit config file; when
// empty, gofactory.yaml is looked up in the working directory and a missing file
// is not an error.
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	d := gofactory.DefaultConfig()
	v.SetDefault("count", 1)
	v.SetDefault("min_items", d.MinItems)
	v.SetDefault("max_items", d.MaxItems)
	v.SetDefault("optional_probability", d.OptionalProbability)
	v.SetDefault("max_depth", d.MaxDepth)
	v.SetDefault("key_retries", d.KeyRetries)
	v.SetDefault("unknown_overrides", "strict")
	v.SetDefault("use_defaults", false)
	v.SetDefault("post_gen_visibility", "declared")
	v.SetDefault("pretty", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("gofactory")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.seeded = v.IsSet("seed")
	if cfg.Count < 0 {
		return nil, fmt.Errorf("count must be >= 0, got %d", cfg.Count)
	}
	if _, err := cfg.Factory(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Factory converts c into a validated gofactory.Config.
func (c *Config) Factory() (gofactory.Config, error) {
	out := gofactory.Config{
		MinItems:            c.MinItems,
		MaxItems:            c.MaxItems,
		OptionalProbability: c.OptionalProbability,
		MaxDepth:            c.MaxDepth,
		KeyRetries:          c.KeyRetries,
		UseDefaults:         c.UseDefaults,
	}
	if c.seeded {
		seed := c.Seed
		out.Seed = &seed
	}
	switch strings.ToLower(c.UnknownOverrides) {
	case "", "strict":
		out.UnknownOverrides = gofactory.OverridesStrict
	case "ignore":
		out.UnknownOverrides = gofactory.OverridesIgnore
	default:
		return out, fmt.Errorf("unknown_overrides must be strict or ignore, got %q", c.UnknownOverrides)
	}
	switch strings.ToLower(c.PostGenVisibility) {
	case "", "declared":
		out.PostGenVisibility = gofactory.VisibilityDeclared
	case "resolved":
		out.PostGenVisibility = gofactory.VisibilityResolved
	default:
		return out, fmt.Errorf("post_gen_visibility must be declared or resolved, got %q", c.PostGenVisibility)
	}
	if err := out.Validate(); err != nil {
		return out, err
	}
	return out, nil
}
