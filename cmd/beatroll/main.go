package main

import (
	"github.com/spf13/cobra"

	"github.com/mkantola/beatroll/version"
)

var rootCmd = &cobra.Command{
	Use:     "beatroll",
	Short:   "Command line utility for playing and exporting beatroll songs",
	Version: version.VersionOrHash,
}

func main() {
	cobra.CheckErr(rootCmd.Execute())
}
