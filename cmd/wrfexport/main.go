package main

import (
	"os"

	"github.com/wrfdata/wrf-exporter/cmd/wrfexport/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
