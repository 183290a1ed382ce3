package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Compile a Lumen source and report diagnostics.",
	Long:  "Run the full pipeline (lex, parse, resolve, type-check, validate) and report diagnostics without executing anything. Exits 0 if clean, 1 if any error was found.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		filename := args[0]

		log.WithField("file", filename).Debug("checking")

		result, diags, err := compile(filename)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		if len(diags) > 0 {
			printDiagnostics(filename, diags)
			os.Exit(1)
		}

		fmt.Printf("%s: ok (%d cells)\n", filename, len(result.module.Cells))
	},
}
