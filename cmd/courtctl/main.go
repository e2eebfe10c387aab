// courtctl is a terminal client for the courtflow API with an offline
// resolver for dispute snapshots.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
