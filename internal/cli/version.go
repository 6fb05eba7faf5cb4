package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"docbench/internal/analyzer"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("docbench version %s\n", version)
		vendors := analyzer.RegisteredVendors()
		names := make([]string, len(vendors))
		for i, v := range vendors {
			names[i] = string(v)
		}
		cmd.Printf("vendors: %s\n", strings.Join(names, ", "))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
