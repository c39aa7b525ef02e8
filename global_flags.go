// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"

	"github.com/evolution-gaming/edc/internal/logging"
)

// globalFlags are flags shared by all subcommands.
type globalFlags struct {
	ConfFile string
	Debug    bool
	NoColor  bool
}

func (g *globalFlags) Register(fs *flag.FlagSet) {
	fs.BoolVar(&g.Debug, "debug", false, "Enable debug logging (optional)")
	fs.BoolVar(&g.NoColor, "no-color", false, "Disable colored log output (optional)")
	fs.StringVar(&g.ConfFile, "conf", "", "Application configuration file path (optional)")
}

// apply sets up logging according to parsed flags.
func (g *globalFlags) apply() {
	if g.NoColor {
		logging.DisableColor()
	}
	if g.Debug {
		logging.EnableDebugLogger()
	}
}
