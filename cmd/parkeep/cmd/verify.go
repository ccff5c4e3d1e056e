package cmd

import (
	"context"

	units "github.com/docker/go-units"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/parkeep/parkeep/pkg/core"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify every tracked file on every root",
	Long: `Recompute the digest of every tracked file on every supplied root and,
for files whose digest still matches, classify with the parity tool whether
the recovery data is intact.

Verification never repairs anything. The command exits non-zero if any file
on any root is not fully OK.`,
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
		report, err := core.Verify(ctx, roots, opts...)
		if err != nil {
			wrapFatalln("verify", err)
			return
		}
		printVerifyReport(report)
		if !report.OK() {
			wrapFatalWithCodef(2, "verification failed")
			return
		}
	},
}

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	badColor  = color.New(color.FgRed)
)

func stateColor(s core.FileState) *color.Color {
	switch s {
	case core.FileParityOK:
		return okColor
	case core.FileParityRepairable:
		return warnColor
	default:
		return badColor
	}
}

func printVerifyReport(report *core.VerifyReport) {
	warnMissingMembers(report.MissingMembers)

	for _, res := range report.Results {
		line := stateColor(res.State).Sprintf("[%s]", res.State)
		if res.Detail != "" {
			infoLogger.Printf("%s %s %s: %s", line, res.Label, res.Path, res.Detail)
		} else {
			infoLogger.Printf("%s %s %s", line, res.Label, res.Path)
		}
	}
	for _, pr := range report.Paths {
		if pr.State == core.SyncDiverged {
			infoLogger.Printf("%s %s: digests disagree across roots, recovery state is inconsistent",
				badColor.Sprint("[DIVERGED]"), pr.Path)
		}
	}
	infoLogger.Printf("checked %d files (%s)",
		report.FilesChecked, units.HumanSize(float64(report.BytesChecked)))
	if report.OK() {
		infoLogger.Println(okColor.Sprint("backup verification succeeded"))
	}
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
