package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lumen-lang/lumen/pkg/trace"
	"github.com/lumen-lang/lumen/pkg/value"
	"github.com/lumen-lang/lumen/pkg/vm"
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Compile and execute a Lumen source.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		filename := args[0]
		cellName := GetString(cmd, "cell")
		traceDir := GetString(cmd, "trace-dir")

		result, diags, err := compile(filename)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		if len(diags) > 0 {
			printDiagnostics(filename, diags)
			os.Exit(1)
		}

		store, storeErr := trace.NewStore(traceDir)
		if storeErr != nil {
			fmt.Fprintln(os.Stderr, storeErr)
			os.Exit(1)
		}

		runID, startErr := store.StartRun(result.module.DocHash)
		if startErr != nil {
			fmt.Fprintln(os.Stderr, startErr)
			os.Exit(1)
		}

		log.WithField("run_id", runID).WithField("cell", cellName).Debug("starting run")

		machine := vm.NewVM(result.module)

		task, taskErr := machine.NewTask(0, cellName, []value.Value{})
		if taskErr != nil {
			store.Error(cellName, taskErr.Error())
			store.EndRun()
			fmt.Fprintln(os.Stderr, taskErr)
			os.Exit(1)
		}

		store.CellStart(cellName)

		status, runErr := machine.Run(task, nil)

		store.CellEnd(cellName)

		if status == vm.StatusFailed {
			store.Error(cellName, runErr.Error())
			store.EndRun()
			fmt.Fprintln(os.Stderr, runErr)
			os.Exit(1)
		}

		if err := store.EndRun(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}

		fmt.Println(task.Result.String())
	},
}

func init() {
	runCmd.Flags().String("cell", "main", "cell to execute")
	runCmd.Flags().String("trace-dir", ".lumen", "directory for trace output")
}
