package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Build both autocomplete indexes once and report their size",
	RunE:  runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	svc := newSuggestService(store)
	refreshErr := svc.RefreshAll(cmd.Context())

	out := cmd.OutOrStdout()
	for _, s := range svc.Stats() {
		if s.State != "ready" {
			fmt.Fprintf(out, "%-9s %s (%d build failures)\n", s.Field, s.State, s.BuildFailures)
			continue
		}
		fmt.Fprintf(out, "%-9s %d words, built at %s\n", s.Field, s.Words, s.BuiltAt.Format("15:04:05.000"))
	}
	return refreshErr
}
