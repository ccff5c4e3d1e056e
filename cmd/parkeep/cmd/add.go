package cmd

import (
	"context"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/parkeep/parkeep/pkg/core"
)

var addCmd = &cobra.Command{
	Use:   "add FILE",
	Short: "Track a file, hashing it and creating parity recovery data",
	Long: `Track one file across every root of the backup set.

The path is root-relative and must lie under the data directory, like
data/archive-2024.tar. The file must already exist with byte-identical
content on every root: parkeep verifies this before anything is generated,
and nothing is written if the copies disagree.

Parity data is generated independently on each root (the drives must not
share recovery data), and the manifests are only persisted once every root
succeeded.`,
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
		if params.add.force {
			opts = append(opts, core.Force())
		}
		if params.add.reuseParity {
			opts = append(opts, core.ReuseParity())
		}

		roots, err := paramsToRoots(ctx, params, opts)
		if err != nil {
			wrapFatalln("resolving roots", err)
			return
		}
		entry, err := core.Add(ctx, roots, args[0], params.add.parityPercent, opts...)
		if err != nil {
			wrapFatalln("add", err)
			return
		}
		infoLogger.Printf("tracked %s (%s, digest %s, %d%% parity, %d artifacts) on %d roots",
			entry.Path,
			units.HumanSize(float64(entry.Size)),
			entry.Digest,
			entry.ParityPercent,
			len(entry.ParityFiles),
			len(roots),
		)
	},
}

func init() {
	addParityPercentFlag(addCmd)
	addForceFlag(addCmd)
	addReuseParityFlag(addCmd)

	rootCmd.AddCommand(addCmd)
}
