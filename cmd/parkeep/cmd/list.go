package cmd

import (
	"context"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/parkeep/parkeep/pkg/core"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked files and their cross-root status",
	Long: `Classify every tracked path across the supplied roots: synced,
partially-missing, diverged or manifest-only, with a per-root status
(ok, missing, hash-mismatch, parity-missing). Untracked files found under
a data directory are listed too.

Digests are recomputed from disk, so listing a large set reads every
tracked byte. Fully synced entries are hidden unless --all is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger := paramsToLogger(params)
		opts := paramsToOptions(params, logger)

		roots, err := paramsToRoots(ctx, params, opts)
		if err != nil {
			wrapFatalln("resolving roots", err)
			return
		}
		report, err := core.List(ctx, roots, opts...)
		if err != nil {
			wrapFatalln("list", err)
			return
		}
		warnMissingMembers(report.MissingMembers)

		labels := make([]string, 0, len(roots))
		for _, r := range roots {
			labels = append(labels, r.Label())
		}

		table := uitable.New()
		table.MaxColWidth = 80
		header := []interface{}{"PATH", "STATE"}
		for _, l := range labels {
			header = append(header, strings.ToUpper(l))
		}
		table.AddRow(header...)

		hidden := 0
		for _, e := range report.Entries {
			if !params.list.all && e.Tracked && e.State == core.SyncSynced && allPresent(e) {
				hidden++
				continue
			}
			state := "untracked"
			if e.Tracked {
				state = e.State.String()
			}
			row := []interface{}{e.Path, state}
			for _, l := range labels {
				if st, ok := e.PerRoot[l]; ok {
					row = append(row, st.String())
				} else {
					row = append(row, "-")
				}
			}
			table.AddRow(row...)
		}
		infoLogger.Println(table)
		if !params.list.all && hidden > 0 {
			infoLogger.Printf("%d fully synced entries not shown. Use --all to list all.", hidden)
		}
	},
}

func allPresent(e core.ListEntry) bool {
	for _, st := range e.PerRoot {
		if st != core.StatusPresent {
			return false
		}
	}
	return true
}

func warnMissingMembers(missing []string) {
	if len(missing) == 0 {
		return
	}
	infoLogger.Printf("WARNING: not all members of the backup set are present: %s",
		strings.Join(missing, ", "))
}

func init() {
	addAllFlag(listCmd)

	rootCmd.AddCommand(listCmd)
}
