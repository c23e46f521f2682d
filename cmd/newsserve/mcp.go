package main

import (
	"github.com/spf13/cobra"

	"github.com/newsinsight/newsserve/internal/agent"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the agent tools over MCP stdio",
	Long: `Serve the news tools (headlines, content, guarded SQL, analysis and
category/topic completion) to an MCP client over stdin/stdout. Logs go to
stderr.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	var analyzer agent.Analyzer
	if client := newProxyClient(); client.Configured() {
		analyzer = client
	}

	srv, err := agent.NewServer(store, newSuggestService(store), analyzer)
	if err != nil {
		return err
	}
	return srv.Serve(cmd.Context())
}
