package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/skury"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of skury",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "skury version %s\n", strings.TrimSpace(skury.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
