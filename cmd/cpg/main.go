// Package main is the entry point for the cpg CLI tool.
package main

import (
	"github.com/hargabyte/cpg/internal/cmd"
)

func main() {
	cmd.Execute()
}
