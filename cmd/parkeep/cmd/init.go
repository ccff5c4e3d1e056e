package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/parkeep/parkeep/pkg/core"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the roots of a new backup set",
	Long: `Initialize every supplied root as a member of a new backup set.

Each root receives a label derived from the base name and its position in
the invocation (name_1, name_2, …). Labels are fixed here once and recorded
in each manifest; later commands identify roots by these labels regardless
of the order their paths are supplied in.

A set should span at least two physically independent drives.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger := paramsToLogger(params)
		roots, err := core.InitRoots(ctx, params.roots, params.init.baseName,
			paramsToOptions(params, logger)...)
		if err != nil {
			wrapFatalln("init", err)
			return
		}
		for _, r := range roots {
			infoLogger.Printf("%s: initialized as %s", r.Path, r.Label())
		}
	},
}

func init() {
	requiredFlags := []string{addBaseNameFlag(initCmd)}

	for _, flag := range requiredFlags {
		err := initCmd.MarkFlagRequired(flag)
		if err != nil {
			logFatalln(err)
		}
	}

	rootCmd.AddCommand(initCmd)
}
