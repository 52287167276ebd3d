package main

import (
	"fmt"
	"os"

	"predictd/internal/predictctl"
)

func main() {
	if err := predictctl.BuildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "predictctl:", err)
		os.Exit(1)
	}
}
