// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// edc tool's export subcommand implementation.

package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/evolution-gaming/edc/internal/bank"
	"github.com/evolution-gaming/edc/internal/logging"
	"github.com/evolution-gaming/edc/internal/metric"
	"github.com/evolution-gaming/edc/internal/vqm"
	"github.com/jszwec/csvutil"
)

const (
	summaryFile = "summary.csv"
	detailsFile = "details.csv"
	statsFile   = "stats.csv"
)

// MetricColumns is a fixed set of metric columns, absent metrics are written as empty
// cells.
type MetricColumns struct {
	VMAF     *float64 `csv:"VMAF"`
	PSNRY    *float64 `csv:"PSNR_Y"`
	PSNRU    *float64 `csv:"PSNR_U"`
	PSNRV    *float64 `csv:"PSNR_V"`
	PSNRYUV  *float64 `csv:"PSNR_YUV"`
	SSIMY    *float64 `csv:"SSIM_Y"`
	SSIMU    *float64 `csv:"SSIM_U"`
	SSIMV    *float64 `csv:"SSIM_V"`
	SSIMYUV  *float64 `csv:"SSIM_YUV"`
	MSSIMY   *float64 `csv:"MSSIM_Y"`
	MSSIMU   *float64 `csv:"MSSIM_U"`
	MSSIMV   *float64 `csv:"MSSIM_V"`
	MSSIMYUV *float64 `csv:"MSSIM_YUV"`
}

func newMetricColumns(values map[string]float64) MetricColumns {
	get := func(col string) *float64 {
		v, ok := values[col]
		if !ok {
			return nil
		}
		return &v
	}
	return MetricColumns{
		VMAF:     get("VMAF"),
		PSNRY:    get("PSNR_Y"),
		PSNRU:    get("PSNR_U"),
		PSNRV:    get("PSNR_V"),
		PSNRYUV:  get("PSNR_YUV"),
		SSIMY:    get("SSIM_Y"),
		SSIMU:    get("SSIM_U"),
		SSIMV:    get("SSIM_V"),
		SSIMYUV:  get("SSIM_YUV"),
		MSSIMY:   get("MSSIM_Y"),
		MSSIMU:   get("MSSIM_U"),
		MSSIMV:   get("MSSIM_V"),
		MSSIMYUV: get("MSSIM_YUV"),
	}
}

type summaryRow struct {
	Tool        string  `csv:"tool"`
	Stream      string  `csv:"stream"`
	Point       float64 `csv:"br_or_qp"`
	RealBitrate float64 `csv:"real_bitrate"`
	MetricColumns
}

type detailsRow struct {
	Tool      string   `csv:"tool"`
	Stream    string   `csv:"stream"`
	Point     float64  `csv:"br_or_qp"`
	Frame     int      `csv:"frame"`
	FrameSize *float64 `csv:"frame_size"`
	MetricColumns
}

// statsRow is an aggregate of a single metric column over frames of a single run.
type statsRow struct {
	Tool   string  `csv:"tool"`
	Stream string  `csv:"stream"`
	Point  float64 `csv:"br_or_qp"`
	Column string  `csv:"metric"`
	Frames int     `csv:"frames"`
	vqm.Stats
}

// CreateExportCommand will create instance of ExportApp.
func CreateExportCommand() *ExportApp {
	longHelp := `Subcommand "export" will load results of evaluation plan given as argument
(edc.yaml by default) and will write them as CSV tables into directory given by -out-dir
flag, this flag is mandatory. Tables written: summary.csv, details.csv and stats.csv
(per-frame metric aggregates per run).

Examples:

  edc export -out-dir path/to/tables plan.yaml`

	app := &ExportApp{
		fs: flag.NewFlagSet("export", flag.ContinueOnError),
		gf: globalFlags{},
	}
	app.gf.Register(app.fs)
	app.fs.StringVar(&app.flArtifacts, "artifacts", "", "Artifacts directory with tool results (plan file directory by default)")
	app.fs.StringVar(&app.flOutDir, "out-dir", "", "Output directory to store CSV tables")
	app.fs.Usage = func() {
		printSubCommandUsage(longHelp, app.fs)
	}

	return app
}

// Make sure ExportApp implements Commander interface.
var _ Commander = (*ExportApp)(nil)

// ExportApp is subcommand application context that implements Commander interface.
type ExportApp struct {
	cfg         *Config
	fs          *flag.FlagSet
	gf          globalFlags
	planFile    string
	flArtifacts string
	flOutDir    string
}

func (a *ExportApp) Name() string { return a.fs.Name() }

func (a *ExportApp) Help() { a.fs.Usage() }

func (a *ExportApp) init(args []string) error {
	if err := a.fs.Parse(args); err != nil {
		return &AppError{
			exitCode: 2,
			msg:      fmt.Sprintf("%s usage error", a.fs.Name()),
		}
	}

	a.gf.apply()

	// Output dir is mandatory.
	if a.flOutDir == "" {
		a.fs.Usage()
		return &AppError{
			exitCode: 2,
			msg:      "mandatory option -out-dir is missing",
		}
	}

	planFile, err := planArg(a.fs)
	if err != nil {
		a.fs.Usage()
		return &AppError{exitCode: 2, msg: err.Error()}
	}
	if _, err := os.Stat(planFile); err != nil {
		a.fs.Usage()
		return &AppError{
			exitCode: 2,
			msg:      fmt.Sprintf("plan file does not exist? %s", err),
		}
	}
	a.planFile = planFile

	c, err := LoadConfig(a.gf.ConfFile)
	if err != nil {
		return &AppError{exitCode: 1, msg: err.Error()}
	}
	a.cfg = &c

	return nil
}

// Run is main entry point into ExportApp execution.
func (a *ExportApp) Run(args []string) error {
	if err := a.init(args); err != nil {
		return err
	}

	plan, err := loadPlan(a.planFile, a.flArtifacts, a.cfg)
	if err != nil {
		return &AppError{exitCode: 1, msg: err.Error()}
	}

	b, err := bank.Load(context.Background(), plan, bank.Options{})
	if err != nil {
		return &AppError{exitCode: 1, msg: fmt.Sprintf("loading results: %s", err)}
	}

	if err := os.MkdirAll(a.flOutDir, os.FileMode(0o755)); err != nil {
		return &AppError{exitCode: 1, msg: fmt.Sprintf("creating directory: %s", err)}
	}

	tables := []struct {
		name  string
		write func(path string) error
	}{
		{summaryFile, func(p string) error { return writeCSV(p, summaryRows(b)) }},
		{detailsFile, func(p string) error { return writeCSV(p, detailsRows(b)) }},
		{statsFile, func(p string) error { return writeCSV(p, statsRows(b)) }},
	}
	for _, t := range tables {
		out := filepath.Join(a.flOutDir, t.name)
		if err := t.write(out); err != nil {
			return &AppError{exitCode: 1, msg: err.Error()}
		}
		logging.Infof("Wrote %s", out)
	}

	return nil
}

func summaryRows(b *bank.DataBank) []summaryRow {
	var rows []summaryRow
	for _, s := range b.Summary.Select(nil) {
		rows = append(rows, summaryRow{
			Tool:          s.Tool,
			Stream:        s.Stream,
			Point:         float64(s.Point),
			RealBitrate:   s.RealBitrate,
			MetricColumns: newMetricColumns(s.Values),
		})
	}
	return rows
}

func detailsRows(b *bank.DataBank) []detailsRow {
	var rows []detailsRow
	for _, f := range b.Frames.Select(nil) {
		rows = append(rows, detailsRow{
			Tool:          f.Tool,
			Stream:        f.Stream,
			Point:         float64(f.Point),
			Frame:         f.Frame,
			FrameSize:     f.FrameSize,
			MetricColumns: newMetricColumns(f.Values),
		})
	}
	return rows
}

// statsRows aggregates per-frame values of each metric column per run, runs in order of
// appearance.
func statsRows(b *bank.DataBank) []statsRow {
	type runKey struct {
		stream string
		metric.Key
	}
	var order []runKey
	runs := make(map[runKey][]metric.Frame)
	for _, f := range b.Frames.Select(nil) {
		k := runKey{stream: f.Stream, Key: f.Key()}
		if _, ok := runs[k]; !ok {
			order = append(order, k)
		}
		runs[k] = append(runs[k], f)
	}

	var rows []statsRow
	for _, k := range order {
		for _, col := range vqm.AllColumns() {
			var values []float64
			for _, f := range runs[k] {
				if v, ok := f.Value(col); ok {
					values = append(values, v)
				}
			}
			s, err := vqm.Aggregate(values)
			if err != nil {
				// Column not measured for this run.
				continue
			}
			rows = append(rows, statsRow{
				Tool:   k.Tool,
				Stream: k.stream,
				Point:  float64(k.Point),
				Column: col,
				Frames: len(values),
				Stats:  s,
			})
		}
	}
	return rows
}

// writeCSV writes rows to CSV file. Header is written even when there are no rows.
func writeCSV[R any](path string, rows []R) error {
	fd, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating CSV file: %w", err)
	}
	defer fd.Close()

	w := csv.NewWriter(fd)
	enc := csvutil.NewEncoder(w)
	var zero R
	if err := enc.EncodeHeader(zero); err != nil {
		return fmt.Errorf("writing CSV header %s: %w", path, err)
	}
	enc.AutoHeader = false
	if len(rows) != 0 {
		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("writing CSV %s: %w", path, err)
		}
	}
	w.Flush()

	return w.Error()
}
