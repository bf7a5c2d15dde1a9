package main

import (
	"os"

	"github.com/arthur-debert/jiek/cmd/jiek"
)

func main() {
	rootCmd := jiek.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		jiek.ReportError(os.Stderr, err)
		os.Exit(1)
	}
}
