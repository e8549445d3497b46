package cli

import (
	"io"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"affy-calvin/calvin"
	"affy-calvin/calvin/cbytes"
)

type (
	Config struct {
		LogLevel string        `yaml:"log_level"`
		Limits   cbytes.Limits `yaml:"limits"`
		Output   OutputConfig  `yaml:"output"`
		Workers  int           `yaml:"workers"`
	}
	OutputConfig struct {
		// Reduced renders metadata as stringified values.
		Reduced bool   `yaml:"reduced"`
		Indent  string `yaml:"indent"`
	}
)

const (
	DefaultWorkers = 4
	DefaultIndent  = "  "
)

func DefaultConfig() Config {
	return Config{
		LogLevel: level.InfoValue().String(),
		Limits:   cbytes.DefaultLimits(),
		Output: OutputConfig{
			Reduced: true,
			Indent:  DefaultIndent,
		},
		Workers: DefaultWorkers,
	}
}

// LoadConfig reads a YAML file over the defaults. An empty path keeps the
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	bs, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "LoadConfig error")
	}
	if err := yaml.Unmarshal(bs, &cfg); err != nil {
		return cfg, errors.Wrapf(err, `LoadConfig error: parse "%s"`, path)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Limits.MaxHeaderDepth <= 0 {
		cfg.Limits.MaxHeaderDepth = cbytes.DefaultMaxHeaderDepth
	}
	return cfg, nil
}

func levelOption(name string) (level.Option, error) {
	switch strings.ToLower(name) {
	case "debug":
		return level.AllowDebug(), nil
	case "info", "":
		return level.AllowInfo(), nil
	case "warn":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	case "none":
		return level.AllowNone(), nil
	}
	return nil, errors.Errorf(`unknown log level "%s"`, name)
}

// NewLogger builds a logfmt logger filtered by the configured level.
func (r Config) NewLogger(w io.Writer) (log.Logger, error) {
	option, err := levelOption(r.LogLevel)
	if err != nil {
		return nil, errors.Wrap(err, "NewLogger error")
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	return level.NewFilter(logger, option), nil
}

// WithFull switches the output to full mode when --full was given and
// otherwise keeps the configured output.reduced.
func (r Config) WithFull(full bool) Config {
	if full {
		r.Output.Reduced = false
	}
	return r
}

func (r Config) DecodeConfig(logger log.Logger) calvin.Config {
	return calvin.Config{
		Limits:  r.Limits,
		Reduced: r.Output.Reduced,
		Logger:  logger,
	}
}
