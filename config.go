// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Application configuration structures.

package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/evolution-gaming/edc/internal/chart"
	"github.com/evolution-gaming/edc/internal/report"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	defaultChartsDir = "charts"
)

// Config represent application configuration.
type Config struct {
	// Root of result artifacts, directory of plan file when not set.
	ArtifactsPath    ConfigVal[string] `json:"artifacts_path" yaml:"artifacts_path,omitempty"`
	ChartsDir        ConfigVal[string] `json:"charts_dir" yaml:"charts_dir,omitempty"`
	FrameChartWidth  ConfigVal[int]    `json:"frame_chart_width" yaml:"frame_chart_width,omitempty"`
	VegaVersion      ConfigVal[string] `json:"vega_version" yaml:"vega_version,omitempty"`
	VegaLiteVersion  ConfigVal[string] `json:"vega_lite_version" yaml:"vega_lite_version,omitempty"`
	VegaEmbedVersion ConfigVal[string] `json:"vega_embed_version" yaml:"vega_embed_version,omitempty"`
}

// Verify will check that configuration is valid.
//
// Will check that configuration option values are sensible.
func (c *Config) Verify() error {
	msgs := []string{}
	// Artifacts path is optional, but when given should be an existing directory.
	if !c.ArtifactsPath.IsNil() && !dirExists(c.ArtifactsPath.Value()) {
		msgs = append(msgs, "invalid artifacts path")
	}
	if c.ChartsDir.Value() == "" {
		msgs = append(msgs, "empty charts directory")
	}
	if c.FrameChartWidth.Value() <= 0 {
		msgs = append(msgs, "frame chart width should be positive")
	}
	if c.VegaVersion.Value() == "" || c.VegaLiteVersion.Value() == "" || c.VegaEmbedVersion.Value() == "" {
		msgs = append(msgs, "empty vega library version")
	}

	if len(msgs) != 0 {
		return fmt.Errorf("%s: %w", strings.Join(msgs, ", "), ErrInvalidConfig)
	}
	return nil
}

// OverrideFrom will overwrite fields from given Config object.
//
// Only fields that are "not-nil" (as per IsNil() method) in src Config object will be
// overwritten.
func (c *Config) OverrideFrom(src Config) {
	override(&c.ArtifactsPath, src.ArtifactsPath)
	override(&c.ChartsDir, src.ChartsDir)
	override(&c.FrameChartWidth, src.FrameChartWidth)
	override(&c.VegaVersion, src.VegaVersion)
	override(&c.VegaLiteVersion, src.VegaLiteVersion)
	override(&c.VegaEmbedVersion, src.VegaEmbedVersion)
}

// ReportOptions maps configuration onto report generation options.
func (c *Config) ReportOptions() report.Options {
	return report.Options{
		OutDir:           c.ChartsDir.Value(),
		VegaVersion:      c.VegaVersion.Value(),
		VegaLiteVersion:  c.VegaLiteVersion.Value(),
		VegaEmbedVersion: c.VegaEmbedVersion.Value(),
		Charts:           chart.Options{FrameWidth: c.FrameChartWidth.Value()},
	}
}

func override[T any](dst *ConfigVal[T], src ConfigVal[T]) {
	if !src.IsNil() {
		*dst = src
	}
}

// loadDefaultConfig will create a default configuration.
//
// Artifacts path is left unset, it is derived from plan file location.
func loadDefaultConfig() Config {
	return Config{
		ChartsDir:        NewConfigVal(defaultChartsDir),
		FrameChartWidth:  NewConfigVal(chart.DefaultFrameWidth),
		VegaVersion:      NewConfigVal(report.DefaultVegaVersion),
		VegaLiteVersion:  NewConfigVal(report.DefaultVegaLiteVersion),
		VegaEmbedVersion: NewConfigVal(report.DefaultVegaEmbedVersion),
	}
}

// loadConfigFromFile will load configuration from file.
//
// JSON and YAML formats are supported, format is derived from file extension.
func loadConfigFromFile(f string) (cfg Config, err error) {
	fileExt := strings.ToLower(filepath.Ext(f))
	switch fileExt {
	case ".json":
		return loadJSON(f)
	case ".yaml", ".yml":
		return loadYAML(f)
	default:
		return cfg, fmt.Errorf("unknown config format: %s", fileExt)
	}
}

// LoadConfig will return merged default config and config from file. This is main
// function to use for config loading. Configuration file is optional e.g. can be "".
func LoadConfig(configFile string) (cfg Config, err error) {
	cfg = loadDefaultConfig()

	// Load configuration from file and override default configuration options.
	if configFile != "" {
		c, err := loadConfigFromFile(configFile)
		if err != nil {
			return cfg, err
		}
		// Configuration file can specify full set or partial set of configuration
		// options. So we only want to override those options that have been specified in
		// config file, rest will remain as per default config.
		cfg.OverrideFrom(c)
	}

	return cfg, nil
}

func loadJSON(f string) (cfg Config, err error) {
	b, err := os.ReadFile(f)
	if err != nil {
		return cfg, fmt.Errorf("config from JSON file: %w", err)
	}

	if len(b) == 0 {
		return cfg, fmt.Errorf("JSON file is empty: %w", ErrInvalidConfig)
	}

	if err = json.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config from JSON document: %w", err)
	}

	return cfg, nil
}

func loadYAML(f string) (cfg Config, err error) {
	b, err := os.ReadFile(f)
	if err != nil {
		return cfg, fmt.Errorf("config from YAML file: %w", err)
	}

	if len(b) == 0 {
		return cfg, fmt.Errorf("YAML file is empty: %w", ErrInvalidConfig)
	}

	if err = yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config from YAML document: %w", err)
	}

	return cfg, nil
}

// In order to support Config overriding we have to implement wrapper type for Config
// fields. Otherwise it is hard to distinguish skipped fields, for instance when loading
// partial configuration from file: in that case it would be impossible to  distinguish
// between say string fields zero value and empty string values as explicitly specified in
// configuration file.

// NewConfigVal is constructor for ConfigVal. It will wrap its argument into ConfigVal.
func NewConfigVal[T any](v T) ConfigVal[T] {
	return ConfigVal[T]{v: &v}
}

// ConfigVal is a wrapper for Config field value.
type ConfigVal[T any] struct {
	// Store wrapped value as pointer in order to have ability to distinguish between
	// unspecified ConfigVal and a value that is the same as zero value for wrapped type.
	// In this case a zero value for pointer is nil.
	//
	// For example a zero value for string is "" which is impossible to distinguish from
	// explicit empty string "".
	v *T
}

// Value will return wrapped value.
//
// In case field has not been defined e.g. is zero value, then appropriate zero value of
// wrapped type will be returned.
func (o *ConfigVal[T]) Value() T {
	if o.IsNil() {
		var v T
		return v
	}
	return *o.v
}

// IsNil check if wrapped value is nil.
func (o *ConfigVal[T]) IsNil() bool {
	// Zero value for pointer type is nil.
	return o.v == nil
}

// UnmarshalJSON implements json.Unmarshaler interface for ConfigVal.
func (o *ConfigVal[T]) UnmarshalJSON(b []byte) error {
	var val T
	err := json.Unmarshal(b, &val)
	if err != nil {
		return err
	}
	o.v = &val
	return nil
}

// MarshalJSON implements json.Marshaler interface for ConfigVal.
func (o ConfigVal[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value())
}

// UnmarshalYAML implements yaml.Unmarshaler interface for ConfigVal.
func (o *ConfigVal[T]) UnmarshalYAML(node *yaml.Node) error {
	var val T
	if err := node.Decode(&val); err != nil {
		return err
	}
	o.v = &val
	return nil
}

// MarshalYAML implements yaml.Marshaler interface for ConfigVal.
func (o ConfigVal[T]) MarshalYAML() (interface{}, error) {
	return o.Value(), nil
}

// IsZero makes unset values omitted from YAML output.
func (o ConfigVal[T]) IsZero() bool {
	return o.v == nil
}

func dirExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func CreateDumpConfCommand() *DumpConfApp {
	longHelp := `Command "dump-conf" will print actual application configuration taking into account
configuration file provided and default configuration values.

Examples:

	edc dump-conf
	edc dump-conf -conf path/to/config.yaml
	edc dump-conf -format yaml`

	app := &DumpConfApp{
		fs:  flag.NewFlagSet("dump-conf", flag.ContinueOnError),
		gf:  globalFlags{},
		out: os.Stdout,
	}
	app.gf.Register(app.fs)
	app.fs.StringVar(&app.flFormat, "format", "json", "Output format: json or yaml")
	app.fs.Usage = func() {
		printSubCommandUsage(longHelp, app.fs)
	}

	return app
}

// Make sure App implements Commander interface.
var _ Commander = (*DumpConfApp)(nil)

// DumpConfApp is subcommand application context that implements Commander interface.
// Although this is very simple application, but for consistency sake is is implemented in
// similar style as other subcommands.
type DumpConfApp struct {
	out      io.Writer
	fs       *flag.FlagSet
	gf       globalFlags
	flFormat string
}

func (d *DumpConfApp) Name() string { return d.fs.Name() }

func (d *DumpConfApp) Help() { d.fs.Usage() }

// Run is main entry point into DumpConfApp execution.
func (d *DumpConfApp) Run(args []string) error {
	if err := d.fs.Parse(args); err != nil {
		return &AppError{
			exitCode: 2,
			msg:      "usage error",
		}
	}

	d.gf.apply()

	// Load application configuration.
	cfg, err := LoadConfig(d.gf.ConfFile)
	if err != nil {
		return &AppError{exitCode: 1, msg: err.Error()}
	}

	switch d.flFormat {
	case "json":
		enc := json.NewEncoder(d.out)
		enc.SetIndent("", "  ")
		err = enc.Encode(cfg)
	case "yaml":
		enc := yaml.NewEncoder(d.out)
		enc.SetIndent(2)
		err = enc.Encode(cfg)
		if err == nil {
			err = enc.Close()
		}
	default:
		return &AppError{exitCode: 2, msg: fmt.Sprintf("unknown format: %s", d.flFormat)}
	}
	if err != nil {
		return &AppError{exitCode: 1, msg: err.Error()}
	}

	// Also, report if configuration is valid.
	if err := cfg.Verify(); err != nil {
		return &AppError{exitCode: 1, msg: fmt.Sprintf("configuration validation: %s", err)}
	}

	return nil
}
