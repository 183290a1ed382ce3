package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumen-lang/lumen/pkg/trace"
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Inspect trace files produced by `lumen run`.",
}

var traceShowCmd = &cobra.Command{
	Use:   "show <run_id>",
	Short: "Pretty-print the events recorded for a run.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runID := args[0]
		traceDir := GetString(cmd, "trace-dir")

		events, err := trace.ReadRun(traceDir, runID)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		for _, e := range events {
			fmt.Printf("#%-4d %-16s %s\n", e.Seq, e.Kind, e.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"))

			if e.Cell != "" {
				fmt.Printf("       cell=%s\n", e.Cell)
			}

			if e.ToolID != "" {
				fmt.Printf("       tool=%s version=%s\n", e.ToolID, e.ToolVersion)
			}

			if e.LatencyMS != nil {
				fmt.Printf("       latency_ms=%d cached=%v\n", *e.LatencyMS, e.Cached != nil && *e.Cached)
			}

			if e.Message != "" {
				fmt.Printf("       message=%s\n", e.Message)
			}

			fmt.Printf("       hash=%s prev=%s\n", e.Hash, e.PrevHash)
		}

		if err := trace.VerifyChain(events); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	// trace-dir is the same base directory passed to `run --trace-dir`;
	// both resolve to <dir>/trace/<run_id>.jsonl via pkg/trace.Store/ReadRun.
	traceCmd.PersistentFlags().String("trace-dir", ".lumen", "base directory trace output was written under")
	traceCmd.AddCommand(traceShowCmd)
}
