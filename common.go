// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Reusable parts of edc application and subcommand infrastructure.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evolution-gaming/edc/internal/encoding"
	"github.com/evolution-gaming/edc/internal/logging"
)

// Plan file used when none given on command line.
const defaultPlanFile = "edc.yaml"

// Commander interface should be implemented by commands and sub-commands.
type Commander interface {
	Run([]string) error
	Name() string
	Help()
}

// AppError a custom error returned from CLI application.
//
// AppError is handy error type envisioned to be used in CLI's main.
// ExitCode() should be used as argument for os.Exit().
type AppError struct {
	msg      string
	exitCode int
}

// Error implements error interface for AppError.
func (e *AppError) Error() string {
	return e.msg
}

// ExitCode returns CLI application's exit code.
func (e *AppError) ExitCode() int {
	return e.exitCode
}

// printSubCommandUsage helper to format ad print subcommand's usage.
func printSubCommandUsage(longHelp string, fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage of sub-command %s:\n\n", fs.Name())
	fmt.Fprintf(fs.Output(), "%s\n\n", longHelp)
	fs.PrintDefaults()
}

// createPlanConfig creates a PlanConfig instance from YAML plan file.
func createPlanConfig(planFile string) (pc encoding.PlanConfig, err error) {
	doc, err := os.ReadFile(planFile)
	if err != nil {
		return pc, fmt.Errorf("cannot read plan file: %w", err)
	}

	pc, err = encoding.NewPlanConfigFromYAML(doc)
	if err != nil {
		return pc, fmt.Errorf("cannot create PlanConfig: %w", err)
	}

	if ok, err := pc.IsValid(); !ok {
		ev := &encoding.PlanConfigError{}
		if errors.As(err, &ev) {
			logging.Debugf(
				"PlanConfig validation failures:\n%s",
				strings.Join(ev.Reasons(), "\n"))
		}
		return pc, fmt.Errorf("PlanConfig not valid: %w", err)
	}

	return pc, nil
}

// planArg returns plan file given as the only positional argument, or the default one.
func planArg(fs *flag.FlagSet) (string, error) {
	switch fs.NArg() {
	case 0:
		return defaultPlanFile, nil
	case 1:
		return fs.Arg(0), nil
	default:
		return "", fmt.Errorf("expecting single plan file, got: %s", strings.Join(fs.Args(), " "))
	}
}

// loadPlan reads plan file and resolves it against artifacts directory.
//
// Artifacts directory precedence: artifacts argument, then configuration, then directory
// of the plan file.
func loadPlan(planFile, artifacts string, cfg *Config) (encoding.Plan, error) {
	pc, err := createPlanConfig(planFile)
	if err != nil {
		return encoding.Plan{}, err
	}

	if artifacts == "" {
		artifacts = cfg.ArtifactsPath.Value()
	}
	if artifacts == "" {
		artifacts = filepath.Dir(planFile)
	}
	// To avoid ambiguity, resolve artifacts path to absolute representation.
	artifacts, err = filepath.Abs(artifacts)
	if err != nil {
		return encoding.Plan{}, err
	}
	logging.Debugf("Artifacts path: %s", artifacts)

	return encoding.NewPlan(pc, artifacts), nil
}
