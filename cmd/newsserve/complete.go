package main

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/newsinsight/newsserve/internal/cli"
	"github.com/newsinsight/newsserve/pkg/suggest"
)

var (
	completeField    string
	completeLimit    int
	completeMinLen   int
	completeMaxLen   int
	completeNoFilter bool
)

var completeCmd = &cobra.Command{
	Use:   "complete",
	Short: "Interactive category/topic completion against the store",
	RunE:  runComplete,
}

func init() {
	rootCmd.AddCommand(completeCmd)
	completeCmd.Flags().StringVar(&completeField, "field", string(suggest.FieldCategory), "Field to complete: category or topic")
	completeCmd.Flags().IntVar(&completeLimit, "limit", 24, "Number of suggestions to print")
	completeCmd.Flags().IntVar(&completeMinLen, "prmin", 1, "Minimum prefix length")
	completeCmd.Flags().IntVar(&completeMaxLen, "prmax", 60, "Maximum prefix length")
	completeCmd.Flags().BoolVar(&completeNoFilter, "no-filter", false, "Disable input filtering (DBG only)")
}

func runComplete(cmd *cobra.Command, _ []string) error {
	field, err := suggest.ParseField(completeField)
	if err != nil {
		return err
	}
	if !debugMode {
		log.SetLevel(log.ErrorLevel)
	}
	log.Debug("Input info:",
		"field", field,
		"minPrefix", completeMinLen,
		"maxPrefix", completeMaxLen,
		"limit", completeLimit,
		"noFilter", completeNoFilter)

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	h := cli.NewInputHandler(newSuggestService(store), field, completeMinLen, completeMaxLen, completeLimit, completeNoFilter)
	return h.Start(cmd.Context())
}
