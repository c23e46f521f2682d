package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/newsinsight/newsserve/pkg/dataset"
)

var (
	importChunk     int
	importAggregate bool
)

var importCmd = &cobra.Command{
	Use:   "import <dataset.json|dataset.msgpack>",
	Short: "Load a dataset into the store",
	Long: `Load news, browse records, daily category totals and user interests from
a JSON or msgpack document. Daily totals and interests missing from the file
are derived from the browse records unless --aggregate=false.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().IntVar(&importChunk, "chunk", dataset.DefaultChunkSize, "Rows per transaction")
	importCmd.Flags().BoolVar(&importAggregate, "aggregate", true, "Derive missing daily category and interest rows")
}

func runImport(cmd *cobra.Command, args []string) error {
	ds, err := dataset.Load(args[0])
	if err != nil {
		return err
	}
	if importAggregate {
		dataset.Aggregate(ds)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := dataset.Import(cmd.Context(), store, ds, importChunk)
	store.Purge()
	if err != nil {
		log.Errorf("Import stopped after %d committed chunks", stats.Chunks)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d news, %d browse records, %d daily categories, %d user interests in %v\n",
		stats.News, stats.BrowseRecords, stats.DailyCategories, stats.UserInterests, stats.Duration)
	return nil
}
