package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/regcore/internal/config"
	"github.com/jackzampolin/regcore/internal/embedclient"
	"github.com/jackzampolin/regcore/internal/home"
	"github.com/jackzampolin/regcore/internal/hybrid"
	"github.com/jackzampolin/regcore/internal/ingest"
	"github.com/jackzampolin/regcore/internal/lexindex"
	"github.com/jackzampolin/regcore/internal/pagestore"
	"github.com/jackzampolin/regcore/internal/vecindex"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <bundle.json>",
	Short: "Ingest a parsed regulation bundle directly, without a server",
	Long: `Ingest a regulation from a parsed JSON bundle straight into the
home directory's page store and indices.

This opens the index files directly: stop any running regcore server
first, or use 'regcore api regulations ingest' against it instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: GetLogLevel(),
		}))

		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		cfgMgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := cfgMgr.Get()

		bundle, err := ingest.LoadBundle(args[0])
		if err != nil {
			return err
		}

		lex, err := lexindex.Open(h.LexicalIndexDir())
		if err != nil {
			return err
		}
		defer lex.Close()

		vec, err := vecindex.Open(h.VectorIndexDir(), cfg.VectorDimension)
		if err != nil {
			return err
		}

		var embedder hybrid.Embedder
		apiKey := os.Getenv("REGCORE_EMBED_API_KEY")
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey != "" {
			embedder = embedclient.New(embedclient.Config{
				APIKey:    apiKey,
				Model:     os.Getenv("REGCORE_EMBED_MODEL"),
				BaseURL:   os.Getenv("REGCORE_EMBED_BASE_URL"),
				Dimension: cfg.VectorDimension,
			})
		} else {
			logger.Warn("no embedder API key, skipping vector index")
		}

		ing := ingest.New(pagestore.New(h), lex, vec, embedder, ingest.Config{
			VectorContentLimit:     cfg.VectorContentLimit,
			TableRegistryAutobuild: cfg.TableRegistryAutobuild,
		}, logger)

		return ing.Ingest(ctx, *bundle)
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
