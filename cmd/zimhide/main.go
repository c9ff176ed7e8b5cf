package main

import (
	"fmt"
	"os"

	"zimhide/internal/cli"
)

const version = "v0.1"

func main() {
	if !cli.Execute(version) {
		fmt.Fprintln(os.Stderr, "usage: zimhide <encode|decode|play|keygen|inspect|completions> [flags]")
		os.Exit(1)
	}
}
