package main

import (
	"fmt"
	"os"

	"github.com/vscan/vscan-backup-file-detector/internal/cmd"
	"github.com/vscan/vscan-backup-file-detector/internal/scanerr"
)

func main() {
	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(scanerr.ExitCode(err))
	}
}
