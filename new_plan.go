// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// edc tool's new-plan subcommand implementation.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/evolution-gaming/edc/internal/encoding"
	"gopkg.in/yaml.v3"
)

// inputFiles implements flag.Value interface.
type inputFiles []string

func (i *inputFiles) String() string {
	return strings.Join(*i, ", ")
}

func (i *inputFiles) Set(value string) error {
	*i = append(*i, value)
	return nil
}

func CreateNewPlanCommand() *NewPlanApp {
	longHelp := `Subcommand "new-plan" helps create a new evaluation plan file template.

Examples:

  edc new-plan -i path/to/source/foreman.yuv -o edc.yaml
  edc new-plan -i foreman.yuv -i akiyo.y4m -o edc.yaml`

	app := &NewPlanApp{
		fs:  flag.NewFlagSet("new-plan", flag.ContinueOnError),
		out: os.Stdout,
	}
	app.fs.StringVar(&app.flOutFile, "o", "", "Output file (stdout by default).")
	app.fs.Var(&app.flInputFiles, "i", "Source streams. Use multiple times for multiple streams.")

	app.fs.Usage = func() {
		printSubCommandUsage(longHelp, app.fs)
	}

	return app
}

// Make sure NewPlanApp implements Commander interface.
var _ Commander = (*NewPlanApp)(nil)

type NewPlanApp struct {
	// FlagSet instance
	fs *flag.FlagSet
	// Default output
	out io.Writer
	// Output file to save plan to
	flOutFile string
	// Source streams
	flInputFiles inputFiles
}

func (a *NewPlanApp) Name() string { return a.fs.Name() }

func (a *NewPlanApp) Help() { a.fs.Usage() }

// newPlanTemplate creates a plan with some sensible sample tools for given streams.
func newPlanTemplate(streams []string) encoding.PlanConfig {
	pc := encoding.PlanConfig{
		Bitrates:        []encoding.Point{1000, 2000, 4000},
		QP:              []encoding.Point{22, 27, 32},
		ExtraMetrics:    []string{"SSIM", "VMAF"},
		PerFrameMetrics: []string{"VMAF"},
		Tools: []encoding.ToolConfig{
			{
				Label:          "x264-fast",
				CommandLine:    "x264 --preset fast --bitrate %BITRATE% -o %OUTPUT% %INPUT%",
				CommandLineCQP: "x264 --preset fast --qp %QP% -o %OUTPUT% %INPUT%",
			},
			{
				Label:       "x264-slow",
				CommandLine: "x264 --preset slow --bitrate %BITRATE% -o %OUTPUT% %INPUT%",
			},
		},
	}
	for _, s := range streams {
		pc.Streams = append(pc.Streams, encoding.StreamConfig{Stream: s})
	}
	return pc
}

func (a *NewPlanApp) Run(args []string) error {
	if err := a.fs.Parse(args); err != nil {
		return &AppError{
			msg:      "usage error",
			exitCode: 2,
		}
	}

	// In case no stream provided we will use some placeholder string.
	if len(a.flInputFiles) == 0 {
		a.flInputFiles = []string{"path/to/source/stream.yuv"}
	}

	pc := newPlanTemplate(a.flInputFiles)

	out := a.out
	if a.flOutFile != "" {
		fd, err := os.Create(a.flOutFile)
		if err != nil {
			return &AppError{
				msg:      fmt.Sprintf("output file error: %s", err),
				exitCode: 1,
			}
		}
		defer fd.Close()
		out = fd
	}

	e := yaml.NewEncoder(out)
	e.SetIndent(2)
	if err := e.Encode(pc); err != nil {
		return &AppError{
			msg:      fmt.Sprintf("YAML marshal error: %s", err),
			exitCode: 1,
		}
	}
	if err := e.Close(); err != nil {
		return &AppError{msg: err.Error(), exitCode: 1}
	}

	return nil
}
