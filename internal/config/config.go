package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bookprog/internal/dirs"
	"bookprog/internal/progress"
	"bookprog/internal/status"
)

// Config is the resolved configuration of a run.
type Config struct {
	Verbose      bool           `mapstructure:"verbose"`
	NoUI         bool           `mapstructure:"no_ui"`
	MeasureCache int            `mapstructure:"measure_cache"`
	UI           UIConfig       `mapstructure:"ui"`
	Log          LogConfig      `mapstructure:"log"`
	Captions     CaptionsConfig `mapstructure:"captions"`
	Demo         DemoConfig     `mapstructure:"demo"`
}

type UIConfig struct {
	BarWidth   int `mapstructure:"bar_width"`
	LabelWidth int `mapstructure:"label_width"` // 0 means terminal width
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

// CaptionsConfig overrides the words used in the status line. Phases maps
// phase names such as "decoding" to their caption.
type CaptionsConfig struct {
	Step    string            `mapstructure:"step"`
	Part    string            `mapstructure:"part"`
	Chapter string            `mapstructure:"chapter"`
	Track   string            `mapstructure:"track"`
	Phases  map[string]string `mapstructure:"phases"`
}

type DemoConfig struct {
	Books   int           `mapstructure:"books"`
	Workers int           `mapstructure:"workers"`
	Tick    time.Duration `mapstructure:"tick"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("verbose", false)
	v.SetDefault("no_ui", false)
	v.SetDefault("measure_cache", 256)
	v.SetDefault("ui.bar_width", 40)
	v.SetDefault("ui.label_width", 0)
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", false)
	v.SetDefault("demo.books", 4)
	v.SetDefault("demo.workers", 2)
	v.SetDefault("demo.tick", 40*time.Millisecond)
}

// Init builds a Viper instance for one run, wired with config paths, env,
// defaults, and flag bindings. A missing config file is not an error; a
// file named with --config that cannot be read is.
func Init(root *cobra.Command) (*viper.Viper, error) {
	// Ensure base directories exist
	_ = dirs.EnsureAll()

	v := viper.New()
	if cfgDir, err := dirs.ConfigDir(); err == nil {
		v.AddConfigPath(cfgDir)
	}
	if err := setup(v, root); err != nil {
		return nil, err
	}
	return v, nil
}

func setup(v *viper.Viper, root *cobra.Command) error {
	setDefaults(v)
	v.SetConfigName("config") // supports config.{yaml|yml|json|toml}

	// Environment variables: BOOKPROG_*, nested keys joined by "_"
	v.SetEnvPrefix("BOOKPROG")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	// Bind root persistent flags to Viper keys
	pf := root.PersistentFlags()
	_ = v.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = v.BindPFlag("no_ui", pf.Lookup("no-ui"))
	_ = v.BindPFlag("ui.label_width", pf.Lookup("width"))
	_ = v.BindPFlag("log.file", pf.Lookup("log-file"))
	_ = v.BindPFlag("log.level", pf.Lookup("log-level"))

	explicit := false
	if f := pf.Lookup("config"); f != nil && f.Value.String() != "" {
		v.SetConfigFile(f.Value.String())
		explicit = true
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !explicit && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load decodes the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	return decode(v)
}

func decode(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// Resolve turns the configured words into status line captions. Unset
// words keep their defaults.
func (c CaptionsConfig) Resolve() (status.Captions, error) {
	over := status.Captions{
		Step:    c.Step,
		Part:    c.Part,
		Chapter: c.Chapter,
		Track:   c.Track,
	}
	if len(c.Phases) > 0 {
		over.Phases = make(map[progress.Phase]string, len(c.Phases))
		for name, caption := range c.Phases {
			p, err := progress.ParsePhase(name)
			if err != nil {
				return status.Captions{}, fmt.Errorf("captions.phases: %w", err)
			}
			over.Phases[p] = caption
		}
	}
	return status.DefaultCaptions().Merge(over), nil
}
