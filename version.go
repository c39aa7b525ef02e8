// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Application version string related functionality.
//
// Version comes either from -ldflags="-X main.version={ver}" or, for binaries installed via
// "go install", from debug.BuildInfo.

package main

import (
	"fmt"
	"io"
	"runtime/debug"
	"time"
)

const develVersion = "(devel)"

// Value injected during build with -ldflags="-X main.version={ver}".
var (
	version string
	vInfo   = newVersionInfo(version, debug.ReadBuildInfo)
)

// versionInfo is struct that includes relevant version information.
type versionInfo struct {
	time     time.Time
	version  string
	revision string
	modified bool
}

func newVersionInfo(ldVersion string, readBuildInfo func() (*debug.BuildInfo, bool)) versionInfo {
	v := versionInfo{version: ldVersion}

	bi, ok := readBuildInfo()
	if !ok {
		if v.version == "" {
			v.version = develVersion
		}
		return v
	}

	if v.version == "" {
		v.version = bi.Main.Version
	}

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			v.revision = s.Value
		case "vcs.time":
			v.time, _ = time.Parse(time.RFC3339, s.Value)
		case "vcs.modified":
			v.modified = s.Value == "true"
		}
	}
	return v
}

func (v versionInfo) String() string {
	if v.revision == "" {
		return v.version
	}
	s := fmt.Sprintf("%s %s", v.version, v.revision)
	if v.modified {
		s += "-dirty"
	}
	if !v.time.IsZero() {
		s += " " + v.time.Format(time.DateOnly)
	}
	return s
}

func printVersion(w io.Writer) {
	fmt.Fprintln(w, vInfo)
}
