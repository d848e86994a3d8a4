// Package main provides bumpv, a schema-driven version bumper that
// rewrites version strings across project files.
package main

import (
	"os"

	"bumpv/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Stdout, os.Stderr, os.Args, os.Environ()))
}
