// Package cli implements the iptoasn command line: the webservice plus
// one-shot dataset queries going through the same loading and lookup code.
package cli

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"iptoasn/internal/app/version"
	"iptoasn/internal/config"
)

var settings config.Settings

var rootCmd = &cobra.Command{
	Use:           "iptoasn",
	Short:         "IP address to AS number lookup service",
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		settings = config.Load()
		log.SetLevel(settings.LogLevel)
	},
}

// Execute runs the selected command and returns its error.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version.String())
		},
	})
}
