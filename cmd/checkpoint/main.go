// Command checkpoint is the unified entrypoint described in spec §6: one
// binary, one set of subcommands, each mapping a gate/executor/scheduler
// failure onto a stable exit code a shell script or menu-bar UI can branch
// on.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// rootCmd sets SilenceErrors, so cobra does not print the error
		// itself; this covers RunE errors that were returned instead of
		// being passed to fail.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
