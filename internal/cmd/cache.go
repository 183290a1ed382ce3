package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumen-lang/lumen/pkg/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or manage the content-addressed tool-result cache.",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached entry.",
	Run: func(cmd *cobra.Command, args []string) {
		cacheDir := GetString(cmd, "cache-dir")

		store, err := cache.NewStore(cacheDir)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		if err := store.Clear(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	cacheCmd.PersistentFlags().String("cache-dir", ".lumen", "cache base directory")
	cacheCmd.AddCommand(cacheClearCmd)
}
