// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// edc tool's generate subcommand implementation.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/evolution-gaming/edc/internal/bank"
	"github.com/evolution-gaming/edc/internal/logging"
	"github.com/evolution-gaming/edc/internal/report"
	"github.com/schollz/progressbar/v3"
)

// CreateGenerateCommand will create instance of GenerateApp.
func CreateGenerateCommand() *GenerateApp {
	longHelp := `Subcommand "generate" will load results of evaluation plan given as argument
(edc.yaml by default) and will write interactive HTML chart report per stream.

Examples:

  edc generate
  edc generate -out-dir path/to/charts plan.yaml
  edc generate -artifacts path/to/artifacts -png -progress plan.yaml`

	app := &GenerateApp{
		fs:       flag.NewFlagSet("generate", flag.ContinueOnError),
		gf:       globalFlags{},
		progress: os.Stderr,
	}
	app.gf.Register(app.fs)
	app.fs.StringVar(&app.flArtifacts, "artifacts", "", "Artifacts directory with tool results (plan file directory by default)")
	app.fs.StringVar(&app.flOutDir, "out-dir", "", "Output directory for charts (overrides charts_dir config option)")
	app.fs.BoolVar(&app.flPNG, "png", false, "Also write static PNG snapshot per stream")
	app.fs.BoolVar(&app.flProgress, "progress", false, "Show progress bar while loading results")
	app.fs.Usage = func() {
		printSubCommandUsage(longHelp, app.fs)
	}

	return app
}

// Make sure GenerateApp implements Commander interface.
var _ Commander = (*GenerateApp)(nil)

// GenerateApp is subcommand application context that implements Commander interface.
type GenerateApp struct {
	// Configuration object
	cfg *Config
	// FlagSet instance
	fs *flag.FlagSet
	// Global flags
	gf globalFlags
	// Plan file
	planFile    string
	flArtifacts string
	flOutDir    string
	flPNG       bool
	flProgress  bool
	// Progress bar output
	progress io.Writer
}

func (a *GenerateApp) Name() string { return a.fs.Name() }

func (a *GenerateApp) Help() { a.fs.Usage() }

// init will do GenerateApp state initialization.
func (a *GenerateApp) init(args []string) error {
	if err := a.fs.Parse(args); err != nil {
		return &AppError{
			exitCode: 2,
			msg:      fmt.Sprintf("%s usage error", a.fs.Name()),
		}
	}

	a.gf.apply()

	planFile, err := planArg(a.fs)
	if err != nil {
		a.fs.Usage()
		return &AppError{exitCode: 2, msg: err.Error()}
	}
	// Plan file should exist.
	if _, err := os.Stat(planFile); err != nil {
		a.fs.Usage()
		return &AppError{
			exitCode: 2,
			msg:      fmt.Sprintf("plan file does not exist? %s", err),
		}
	}
	a.planFile = planFile

	// Load application configuration.
	c, err := LoadConfig(a.gf.ConfFile)
	if err != nil {
		return &AppError{exitCode: 1, msg: err.Error()}
	}
	if a.flOutDir != "" {
		c.ChartsDir = NewConfigVal(a.flOutDir)
	}
	a.cfg = &c

	return nil
}

// Run is main entry point into GenerateApp execution.
func (a *GenerateApp) Run(args []string) error {
	logging.Infof("edc version: %s", vInfo)
	if err := a.init(args); err != nil {
		return err
	}

	logging.Debugf("Application configuration: %#v", a.cfg)
	// Check if configuration is valid.
	if err := a.cfg.Verify(); err != nil {
		return &AppError{exitCode: 1, msg: fmt.Sprintf("configuration validation: %s", err)}
	}

	logging.Debugf("Plan file: %v", a.planFile)
	plan, err := loadPlan(a.planFile, a.flArtifacts, a.cfg)
	if err != nil {
		return &AppError{exitCode: 1, msg: err.Error()}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var opts bank.Options
	if a.flProgress {
		bar := progressbar.NewOptions(len(plan.Runs()),
			progressbar.OptionSetWriter(a.progress),
			progressbar.OptionSetDescription("Loading results"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Close()
		opts.Progress = bar
	}

	b, err := bank.Load(ctx, plan, opts)
	if err != nil {
		return &AppError{exitCode: 1, msg: fmt.Sprintf("loading results: %s", err)}
	}

	ropts := a.cfg.ReportOptions()
	ropts.PNG = a.flPNG
	files, err := report.NewGenerator(ropts).Run(ctx, b)
	if err != nil {
		return &AppError{exitCode: 1, msg: fmt.Sprintf("generating charts: %s", err)}
	}

	logging.Infof("Done, %d reports in %s", len(files), ropts.OutDir)
	return nil
}
