package main

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
	AppName = "newsserve"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the current version",
	// skip config loading
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, _ []string) {
		logger := log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    false,
			ReportTimestamp: false,
		})

		styles := log.DefaultStyles()
		styles.Values["version"] = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		logger.SetStyles(styles)

		logger.Print("")
		logger.Print("[ NewsServe ] news analytics and autocomplete")
		logger.Print("", "version", Version)
		logger.Print("")
		logger.Print("use -h or --help to see available commands")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
