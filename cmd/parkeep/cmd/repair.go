package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/parkeep/parkeep/pkg/core"
)

var repairCmd = &cobra.Command{
	Use:   "repair FILE",
	Short: "Attempt repair of a tracked file from its recovery data",
	Long: `Run the parity tool's repair mode for one tracked file on every
supplied root. This is the only way a repair ever happens: verification
reports damage but never acts on it.

Run verify afterwards to confirm the restored content matches the recorded
digest.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger := paramsToLogger(params)
		opts := paramsToOptions(params, logger)

		tool, err := paramsToTool(params, logger)
		if err != nil {
			wrapFatalln("locating parity tool", err)
			return
		}
		opts = append(opts, core.WithTool(tool))

		roots, err := paramsToRoots(ctx, params, opts)
		if err != nil {
			wrapFatalln("resolving roots", err)
			return
		}
		results, repairErr := core.Repair(ctx, roots, args[0], opts...)
		if repairErr != nil && results == nil {
			wrapFatalln("repair", repairErr)
			return
		}
		failed := repairErr != nil
		for _, res := range results {
			line := stateColor(res.State).Sprintf("[%s]", res.State)
			infoLogger.Printf("%s %s %s: %s", line, res.Label, res.Path, res.Detail)
			if !res.State.OK() {
				failed = true
			}
		}
		if failed {
			wrapFatalWithCodef(2, "repair did not fully succeed; files may remain damaged")
			return
		}
	},
}

func init() {
	rootCmd.AddCommand(repairCmd)
}
