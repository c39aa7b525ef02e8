// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Reusable helpers and fixtures for tests.
package main

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/evolution-gaming/edc/internal/encoding"
)

const fixPlanDoc = `bitrates: [1000, 2000]
qp: [27]
extra-metrics: [VMAF]
per-frame-metrics: [VMAF]
tools:
  - label: copy
    command-line: cp -v %INPUT% %OUTPUT%
    command-line-cqp: cp %INPUT% %OUTPUT%
streams:
  - stream: streams/foreman.yuv
`

const fixResultDoc = `real_bitrate: 1001.5
metrics:
  VMAF: 92.4
  PSNR: {Y: 41.5, U: 44.1, V: 44.9}
`

const fixDetailsDoc = `- VMAF: 93.0
  PSNR: {Y: 42.0, U: 44.0, V: 45.0}
  frame_size: 15000
- VMAF: 91.8
  PSNR: {Y: 41.0, U: 44.2, V: 44.8}
  frame_size: 4100
`

// writeFixFile writes file creating parent directories as needed.
func writeFixFile(t *testing.T, fPath, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(fPath), fs.FileMode(0o755)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := os.WriteFile(fPath, []byte(content), fs.FileMode(0o644)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// fixPlanConfig fixture provides plan file with all of its result files in place, plan
// directory doubles as artifacts directory.
//
// When skipLast is true, result files of the last run are not created.
func fixPlanConfig(t *testing.T, skipLast bool) (fPath string) {
	t.Helper()
	dir := t.TempDir()
	fPath = path.Join(dir, "edc.yaml")
	writeFixFile(t, fPath, fixPlanDoc)

	pc, err := encoding.NewPlanConfigFromYAML([]byte(fixPlanDoc))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	runs := encoding.NewPlan(pc, dir).Runs()
	if skipLast {
		runs = runs[:len(runs)-1]
	}
	for _, r := range runs {
		writeFixFile(t, r.ResultFile, fixResultDoc)
		writeFixFile(t, r.DetailsFile, fixDetailsDoc)
	}
	return fPath
}

// fixPlanConfigInvalid fixture provides invalid plan: no streams and unknown metric.
func fixPlanConfigInvalid(t *testing.T) (fPath string) {
	t.Helper()
	fPath = path.Join(t.TempDir(), "invalid.yaml")
	writeFixFile(t, fPath, `extra-metrics: [BOGUS]
tools:
  - label: copy
    command-line: cp %INPUT% %OUTPUT%
`)
	return fPath
}

// fixPlanConfigMalformedResult fixture provides plan whose first result file is broken.
func fixPlanConfigMalformedResult(t *testing.T) (fPath string) {
	t.Helper()
	fPath = fixPlanConfig(t, false)
	pc, err := encoding.NewPlanConfigFromYAML([]byte(fixPlanDoc))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	run := encoding.NewPlan(pc, filepath.Dir(fPath)).Runs()[0]
	writeFixFile(t, run.ResultFile, "real_bitrate: [")
	return fPath
}
