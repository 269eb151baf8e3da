package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"

	fw "github.com/collmot/flockwave-spec"
	"github.com/collmot/flockwave-spec/pkg/logger"
	"github.com/collmot/flockwave-spec/specs"
)

// MainConfig holds the options of the root command. Options given on the
// command line override the configuration file.
type MainConfig struct {
	Config   string `cli:"name=config desc='YAML configuration file'"`
	Schema   string `cli:"name=schema desc='schema resource to validate against (default message.json)'"`
	Pointer  string `cli:"name=pointer desc='JSON pointer of the schema within the resource'"`
	Backend  string `cli:"name=backend desc='validator backend: santhosh or gojsonschema'"`
	Workers  int    `cli:"name=workers desc='number of files validated in parallel'"`
	Examples string `cli:"name=examples desc='directory validated when no files are given (default doc/examples)'"`
	Output   string `cli:"name=output desc='output format: text or json'"`
	Single   bool   `cli:"name=single desc='treat a JSON array as a single message'"`
	Stream   bool   `cli:"name=stream desc='report every invalid message of each source instead of stopping at the first'"`
	Strict   bool   `cli:"name=strict desc='validate the format keyword'"`
	Color    bool   `cli:"name=color desc='always color the output'"`
	NoColor  bool   `cli:"name=no-color desc='never color the output'"`
	Verbose  bool   `cli:"name=v aliases=verbose desc='log debug messages'"`

	Main *cli.Command
}

// SchemaConfig holds the options of the schema command.
type SchemaConfig struct {
	Compact bool `cli:"name=compact desc='print the schema on one line'"`

	main *MainConfig
	Cmd  *cli.Command
}

// CodesConfig holds the options of the codes command.
type CodesConfig struct {
	Severity string `cli:"name=severity desc='only list codes of this severity: info, warning, error or critical'"`

	main *MainConfig
	Cmd  *cli.Command
}

// Settings is the effective configuration of a run. It is read from the
// configuration file and then overridden by command line options.
type Settings struct {
	Schema        string `yaml:"schema"`
	Pointer       string `yaml:"pointer"`
	Backend       string `yaml:"backend"`
	Workers       int    `yaml:"workers"`
	Examples      string `yaml:"examples"`
	Output        string `yaml:"output"`
	AllowMultiple bool   `yaml:"allowMultiple"`
	AssertFormat  bool   `yaml:"assertFormat"`
	Stream        bool   `yaml:"stream"`
	Color         string `yaml:"color"`
	LogLevel      string `yaml:"logLevel"`
}

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// DefaultSettings returns the settings used when nothing else is given.
func DefaultSettings() Settings {
	return Settings{
		Schema:        specs.Files.Message,
		Examples:      "doc/examples",
		Output:        OutputText,
		AllowMultiple: true,
		Color:         ColorAuto,
		LogLevel:      "warn",
	}
}

// LoadSettings reads settings from a YAML file on top of the defaults.
// Unknown keys are rejected.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("failed to read configuration: %w", err)
	}
	if err := yaml.UnmarshalWithOptions(data, &s, yaml.DisallowUnknownField()); err != nil {
		return s, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return s, s.check()
}

func (s Settings) check() error {
	if _, err := fw.ParseBackend(s.Backend); err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	switch s.Output {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("%w: unknown output format %q", cli.ErrUsage, s.Output)
	}
	switch s.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%w: unknown color mode %q", cli.ErrUsage, s.Color)
	}
	if s.Stream && s.Output != OutputText {
		return fmt.Errorf("%w: streaming supports text output only", cli.ErrUsage)
	}
	if s.Stream && !s.AllowMultiple {
		return fmt.Errorf("%w: -stream and -single are mutually exclusive", cli.ErrUsage)
	}
	if _, err := logger.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	return nil
}

// Options converts the settings into validator options.
func (s Settings) Options() ([]fw.Option, error) {
	backend, err := fw.ParseBackend(s.Backend)
	if err != nil {
		return nil, err
	}
	return []fw.Option{
		fw.WithBackend(backend),
		fw.WithWorkerCount(s.Workers),
		fw.WithAllowMultiple(s.AllowMultiple),
		fw.WithFormatAssertion(s.AssertFormat),
	}, nil
}

// settings returns the effective settings of the root command, after its
// options have been parsed.
func (cfg *MainConfig) settings() (Settings, error) {
	s := DefaultSettings()
	if cfg.Config != "" {
		var err error
		if s, err = LoadSettings(cfg.Config); err != nil {
			return s, err
		}
	}

	if cfg.isSet("schema") {
		s.Schema = cfg.Schema
	}
	if cfg.isSet("pointer") {
		s.Pointer = cfg.Pointer
	}
	if cfg.isSet("backend") {
		s.Backend = cfg.Backend
	}
	if cfg.isSet("workers") {
		s.Workers = cfg.Workers
	}
	if cfg.isSet("examples") {
		s.Examples = cfg.Examples
	}
	if cfg.isSet("output") {
		s.Output = cfg.Output
	}
	if cfg.Single {
		s.AllowMultiple = false
	}
	if cfg.Strict {
		s.AssertFormat = true
	}
	if cfg.Stream {
		s.Stream = true
	}
	switch {
	case cfg.Color && cfg.NoColor:
		return s, fmt.Errorf("%w: -color and -no-color are mutually exclusive", cli.ErrUsage)
	case cfg.Color:
		s.Color = ColorAlways
	case cfg.NoColor:
		s.Color = ColorNever
	}
	if cfg.Verbose {
		s.LogLevel = "debug"
	}
	return s, s.check()
}

// isSet returns true if the named option was given on the command line.
func (cfg *MainConfig) isSet(name string) bool {
	if cfg.Main == nil {
		return false
	}
	for _, opt := range cfg.Main.Opts {
		if opt.Name == name {
			return opt.Value != nil
		}
	}
	return false
}

// useColor decides whether output written to w is colored.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

// configureLogging applies the log level of the settings to the default
// logger.
func configureLogging(s Settings) {
	level, err := logger.ParseLevel(s.LogLevel)
	if err != nil {
		level = logger.LevelWarn
	}
	logger.SetLevel(level)
}
