// Command jiek-manpage writes the jiek man pages. With a directory
// argument one page per command is written there; otherwise the page of
// the root command goes to stdout.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/jiek/cmd/jiek"
	"github.com/arthur-debert/jiek/internal/version"
)

func main() {
	rootCmd := jiek.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "JIEK",
		Section: "1",
		Source:  "jiek " + version.Version,
		Manual:  "jiek manual",
	}

	var err error
	if len(os.Args) > 1 {
		err = os.MkdirAll(os.Args[1], 0755)
		if err == nil {
			err = doc.GenManTree(rootCmd, header, os.Args[1])
		}
	} else {
		err = doc.GenMan(rootCmd, header, os.Stdout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
