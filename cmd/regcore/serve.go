package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/regcore/internal/config"
	"github.com/jackzampolin/regcore/internal/embedclient"
	"github.com/jackzampolin/regcore/internal/home"
	"github.com/jackzampolin/regcore/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the regcore server",
	Long: `Start the regcore HTTP server.

The server opens the page store and both indices under the home
directory and exposes the tool surface as HTTP routes.

The embedder is configured from the environment:
  REGCORE_EMBED_API_KEY   API key (falls back to OPENAI_API_KEY)
  REGCORE_EMBED_MODEL     embedding model (default: text-embedding-3-small)
  REGCORE_EMBED_BASE_URL  OpenAI-compatible endpoint override

Without an API key the server runs lexical-only: ingest skips the
vector index and search degrades to the lexical ranking alone.

Examples:
  regcore serve                  # Start on default port 8080
  regcore serve --port 3000      # Start on custom port
  regcore serve --host 0.0.0.0   # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: GetLogLevel(),
		}))

		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		// Priority: --config flag > ./config.yaml > ~/.regcore/config.yaml
		configFile := cfgFile
		if configFile == "" {
			if _, err := os.Stat("config.yaml"); err == nil {
				configFile = "config.yaml"
			} else {
				configFile = filepath.Join(h.Path(), home.ConfigFileName)
			}
		}

		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			logger.Info("creating default config", "path", configFile)
			if err := config.WriteDefault(configFile); err != nil {
				logger.Warn("failed to write default config", "error", err)
			}
		}
		cfgMgr, err := config.NewManager(configFile)
		if err != nil {
			return err
		}
		cfgMgr.WatchConfig()
		logger.Info("configuration loaded", "file", configFile)

		apiKey := os.Getenv("REGCORE_EMBED_API_KEY")
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}

		srv, err := server.New(server.Config{
			Host:          serveHost,
			Port:          servePort,
			ConfigManager: cfgMgr,
			Logger:        logger,
			Home:          h,
			EmbedConfig: embedclient.Config{
				APIKey:    apiKey,
				Model:     os.Getenv("REGCORE_EMBED_MODEL"),
				BaseURL:   os.Getenv("REGCORE_EMBED_BASE_URL"),
				Dimension: cfgMgr.Get().VectorDimension,
			},
		})
		if err != nil {
			return err
		}

		// Blocks until shutdown.
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
