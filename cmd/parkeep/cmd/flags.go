package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/parkeep/parkeep/pkg/core"
	"github.com/parkeep/parkeep/pkg/dlogger"
	"github.com/parkeep/parkeep/pkg/par2"
)

type flagsT struct {
	roots []string
	init  struct {
		baseName string
	}
	add struct {
		parityPercent int
		force         bool
		reuseParity   bool
	}
	list struct {
		all bool
	}
	root struct {
		logLevel    string
		par2Path    string
		concurrency int
	}
}

var params flagsT

func addRootsFlag(cmd *cobra.Command) string {
	const rootsFlag = "root"
	cmd.PersistentFlags().StringArrayVarP(&params.roots, rootsFlag, "r", nil,
		"Path to a backup root; repeat for every root of the set")
	return rootsFlag
}

func addLogLevelFlag(cmd *cobra.Command) string {
	const logLevelFlag = "loglevel"
	cmd.PersistentFlags().StringVar(&params.root.logLevel, logLevelFlag, "",
		"Log level (debug, info, none)")
	return logLevelFlag
}

func addPar2Flag(cmd *cobra.Command) string {
	const par2Flag = "par2"
	cmd.PersistentFlags().StringVar(&params.root.par2Path, par2Flag, "",
		"Path to the par2 executable (default: from PATH)")
	return par2Flag
}

func addConcurrencyFlag(cmd *cobra.Command) string {
	const concurrencyFlag = "concurrency"
	cmd.PersistentFlags().IntVar(&params.root.concurrency, concurrencyFlag, 0,
		"Maximum number of roots processed in parallel (default: all)")
	return concurrencyFlag
}

func addBaseNameFlag(cmd *cobra.Command) string {
	const baseNameFlag = "base-name"
	cmd.Flags().StringVar(&params.init.baseName, baseNameFlag, "",
		"Name of the backup set; roots are labeled name_1, name_2, … in the order given")
	return baseNameFlag
}

func addParityPercentFlag(cmd *cobra.Command) string {
	const parityPercentFlag = "parity-percent"
	cmd.Flags().IntVar(&params.add.parityPercent, parityPercentFlag, 5,
		"Redundancy percentage for the recovery data")
	return parityPercentFlag
}

func addForceFlag(cmd *cobra.Command) string {
	const forceFlag = "force"
	cmd.Flags().BoolVar(&params.add.force, forceFlag, false,
		"Proceed even when some members of the backup set are absent (dangerous)")
	return forceFlag
}

func addReuseParityFlag(cmd *cobra.Command) string {
	const reuseParityFlag = "reuse-parity"
	cmd.Flags().BoolVar(&params.add.reuseParity, reuseParityFlag, false,
		"Accept pre-existing parity artifacts instead of failing on them")
	return reuseParityFlag
}

func addAllFlag(cmd *cobra.Command) string {
	const allFlag = "all"
	cmd.Flags().BoolVar(&params.list.all, allFlag, false,
		"Show fully synced entries too")
	return allFlag
}

func paramsToLogger(params flagsT) *zap.Logger {
	level := params.root.logLevel
	if level == "" {
		level = dlogger.LogLevelInfo
	}
	logger, err := dlogger.GetLogger(level)
	if err != nil {
		wrapFatalln("invalid log level "+level, err)
		return nil
	}
	return logger
}

func paramsToOptions(params flagsT, logger *zap.Logger) []core.Option {
	opts := []core.Option{core.Logger(logger)}
	if params.root.concurrency > 0 {
		opts = append(opts, core.ConcurrentRoots(params.root.concurrency))
	}
	return opts
}

// paramsToTool locates the par2 executable; only the commands that
// generate or check recovery data need it
func paramsToTool(params flagsT, logger *zap.Logger) (par2.Tool, error) {
	exe, err := par2.Locate(params.root.par2Path)
	if err != nil {
		return nil, err
	}
	return par2.NewCommandTool(exe, par2.WithLogger(logger)), nil
}

func paramsToRoots(ctx context.Context, params flagsT, opts []core.Option) ([]*core.Root, error) {
	return core.ResolveRoots(ctx, params.roots, opts...)
}
