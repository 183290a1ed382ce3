// Package cmd wires the Cobra CLI surface spec.md §6 requires: check, run,
// emit, trace show, and cache clear, each a thin wrapper over the
// lex/parse/resolve/check/lower pipeline and the runtime packages,
// following the teacher's own root/subcommand split
// (_examples/Consensys-go-corset/pkg/cmd).
package cmd

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lumen-lang/lumen/internal/tracelog"
)

// Version is filled in when building via a release pipeline; "go install"
// builds fall back to runtime/debug's embedded module version.
var Version string

var rootCmd = &cobra.Command{
	Use:   "lumen",
	Short: "Compiler and runtime for the Lumen agent/tool orchestration language.",
	Long:  "A compiler, register VM, and work-stealing scheduler for the Lumen language.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("lumen ")

			switch {
			case Version != "":
				fmt.Printf("%s", Version)
			default:
				if info, ok := debug.ReadBuildInfo(); ok {
					fmt.Printf("%s", info.Main.Version)
				} else {
					fmt.Printf("(unknown version)")
				}
			}

			fmt.Println()
		}
	},
}

// Execute runs the root command; called once from cmd/lumen/main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("version", false, "print version information")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug-level logging")

	cobra.OnInitialize(func() {
		verbose := GetFlag(rootCmd, "verbose")

		if verbose {
			log.SetLevel(log.DebugLevel)
		}

		if err := tracelog.Configure(verbose); err != nil {
			fmt.Fprintln(os.Stderr, "failed to configure logging:", err)
		}
	})

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(emitCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(cacheCmd)
}
