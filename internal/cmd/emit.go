package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumen-lang/lumen/pkg/lir"
)

var emitCmd = &cobra.Command{
	Use:   "emit <file>",
	Short: "Compile a Lumen source and write its LIR module as JSON.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		filename := args[0]
		output := GetString(cmd, "output")
		canonical := GetFlag(cmd, "canonical")

		result, diags, err := compile(filename)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		if len(diags) > 0 {
			printDiagnostics(filename, diags)
			os.Exit(1)
		}

		var (
			buf        []byte
			marshalErr error
		)

		if canonical {
			buf, marshalErr = lir.MarshalCanonical(result.module)
		} else {
			buf, marshalErr = lir.MarshalPretty(result.module)
		}

		if marshalErr != nil {
			fmt.Fprintln(os.Stderr, marshalErr)
			os.Exit(1)
		}

		if output == "" {
			fmt.Println(string(buf))
			return
		}

		if err := os.WriteFile(output, buf, 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	emitCmd.Flags().String("output", "", "write LIR JSON to this path instead of stdout")
	emitCmd.Flags().Bool("canonical", false, "emit canonical compact form instead of pretty-printed")
}
