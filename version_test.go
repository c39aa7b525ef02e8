// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_newVersionInfo(t *testing.T) {
	withSettings := func(settings ...debug.BuildSetting) func() (*debug.BuildInfo, bool) {
		return func() (*debug.BuildInfo, bool) {
			bi := &debug.BuildInfo{Settings: settings}
			bi.Main.Version = "v1.2.3"
			return bi, true
		}
	}
	noBuildInfo := func() (*debug.BuildInfo, bool) { return nil, false }

	tests := map[string]struct {
		ldVersion     string
		readBuildInfo func() (*debug.BuildInfo, bool)
		want          string
	}{
		"No build info": {
			readBuildInfo: noBuildInfo,
			want:          develVersion,
		},
		"Version from ldflags": {
			ldVersion:     "v0.9.0",
			readBuildInfo: noBuildInfo,
			want:          "v0.9.0",
		},
		"Module version": {
			readBuildInfo: withSettings(),
			want:          "v1.2.3",
		},
		"VCS info": {
			readBuildInfo: withSettings(
				debug.BuildSetting{Key: "vcs.revision", Value: "abc123"},
				debug.BuildSetting{Key: "vcs.time", Value: "2022-05-04T10:00:00Z"},
				debug.BuildSetting{Key: "vcs.modified", Value: "true"},
			),
			want: "v1.2.3 abc123-dirty 2022-05-04",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := newVersionInfo(tc.ldVersion, tc.readBuildInfo)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func Test_printVersion(t *testing.T) {
	var out bytes.Buffer
	printVersion(&out)
	assert.True(t, strings.HasSuffix(out.String(), "\n"))
	assert.NotEmpty(t, strings.TrimSpace(out.String()))
}
