package cmd

import (
	"github.com/spf13/cobra"

	"github.com/parkeep/parkeep/pkg/model"
)

// set by the build through -ldflags
var (
	Version   = "dev"
	GitCommit = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tool and manifest schema versions",
	Run: func(cmd *cobra.Command, args []string) {
		infoLogger.Printf("parkeep %s", Version)
		if GitCommit != "" {
			infoLogger.Printf("commit: %s", GitCommit)
		}
		infoLogger.Printf("manifest schema: %s", model.CurrentVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
