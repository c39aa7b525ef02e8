// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Main entrypoint for edc application

package main

import (
	"fmt"
	"os"

	"github.com/evolution-gaming/edc/internal/logging"
)

// root represents top level of edc command, including dispatching to subcommands.
func root(args []string) error {
	usage := `Edc - Encoder Data Charts

Usage:

    edc <command> [arguments] [-h|-help]

The commands are:

    generate    create interactive HTML charts from evaluation plan results
    export      write evaluation plan results as CSV tables
    new-plan    create evaluation plan template
    dump-conf   output actual application configuration
    version     print edc version and exit

Use "edc <command> -h|-help" for more information about command.`

	if len(args) < 1 {
		fmt.Println(usage)
		return &AppError{msg: "please, specify command", exitCode: 2}
	}

	switch args[0] {
	case "generate", "gen":
		return CreateGenerateCommand().Run(args[1:])
	case "export":
		return CreateExportCommand().Run(args[1:])
	case "new-plan":
		return CreateNewPlanCommand().Run(args[1:])
	case "dump-conf", "dump":
		return CreateDumpConfCommand().Run(args[1:])
	case "version":
		printVersion(os.Stderr)
		return nil
	case "-h", "-help", "--help", "?":
		fmt.Println(usage)
		return &AppError{
			exitCode: 2,
		}
	default:
		// No commands were matched at this point, so bail out with default usage message.
		fmt.Println(usage)
		return &AppError{
			msg:      "unknown command/flag",
			exitCode: 2,
		}
	}
}

func main() {
	// Enable info logger by default and early enough.
	logging.EnableInfoLogger()

	if err := root(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		switch e := err.(type) {
		case *AppError:
			os.Exit(e.ExitCode())
		default:
			os.Exit(1)
		}
	}
	os.Exit(0)
}
