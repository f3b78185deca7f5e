package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/regcore/internal/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running regcore server via HTTP.

These commands require a running server (regcore serve).
Use --server to specify a custom server URL.

Examples:
  regcore api health                        # Check server health
  regcore api regulations list              # List ingested regulations
  regcore api search "母线失压"              # Hybrid search
  regcore api regulations ingest pages.json # Ingest a parsed bundle`,
}

var regulationsCmd = &cobra.Command{
	Use:   "regulations",
	Short: "Regulation management and reading commands",
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Cross-page table commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)

	// Health and search at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.SmartSearchEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.LookupAnnotationEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ResolveReferenceEndpoint{}).Command(getServerURL))

	// Regulations as subcommand group
	regulationsCmd.AddCommand((&endpoints.ListRegulationsEndpoint{}).Command(getServerURL))
	regulationsCmd.AddCommand((&endpoints.GetTOCEndpoint{}).Command(getServerURL))
	regulationsCmd.AddCommand((&endpoints.ReadPageRangeEndpoint{}).Command(getServerURL))
	regulationsCmd.AddCommand((&endpoints.ReadChapterEndpoint{}).Command(getServerURL))
	regulationsCmd.AddCommand((&endpoints.IngestEndpoint{}).Command(getServerURL))
	regulationsCmd.AddCommand((&endpoints.DeleteRegulationEndpoint{}).Command(getServerURL))
	regulationsCmd.AddCommand((&endpoints.RebuildEndpoint{}).Command(getServerURL))

	// Tables as subcommand group
	tablesCmd.AddCommand((&endpoints.SearchTablesEndpoint{}).Command(getServerURL))
	tablesCmd.AddCommand((&endpoints.GetTableEndpoint{}).Command(getServerURL))

	apiCmd.AddCommand(regulationsCmd)
	apiCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(apiCmd)
}
