// Command lumen is the compiler and runtime CLI entry point.
package main

import (
	"github.com/lumen-lang/lumen/internal/cmd"
)

func main() {
	cmd.Execute()
}
