package endpoints

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/regcore/internal/api"
	"github.com/jackzampolin/regcore/internal/tables"
	"github.com/jackzampolin/regcore/internal/toolsurface"
)

// SmartSearchEndpoint handles GET /search (the smart_search tool).
type SmartSearchEndpoint struct {
	Surface *toolsurface.Surface
}

func (e *SmartSearchEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/search", e.handler
}

func (e *SmartSearchEndpoint) RequiresInit() bool { return true }

func (e *SmartSearchEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	regIDs := queryCSV(r, "reg_ids")
	chapterScope := queryCSV(r, "chapter_scope")
	limit := queryInt(r, "limit", 10)

	results, err := e.Surface.SmartSearch(r.Context(), query, regIDs, chapterScope, limit)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (e *SmartSearchEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		regIDs       []string
		chapterScope []string
		limit        int
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Hybrid lexical + semantic search over regulation pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			path := "/search?query=" + args[0]
			if len(regIDs) > 0 {
				path += "&reg_ids=" + strings.Join(regIDs, ",")
			}
			if len(chapterScope) > 0 {
				path += "&chapter_scope=" + strings.Join(chapterScope, ",")
			}
			if limit > 0 {
				path += "&limit=" + strconv.Itoa(limit)
			}
			var resp any
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringSliceVar(&regIDs, "reg-id", nil, "restrict to these regulations")
	cmd.Flags().StringSliceVar(&chapterScope, "chapter", nil, "restrict to this chapter path prefix")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum results to return")
	return cmd
}

// SearchTablesEndpoint handles GET /tables/search (the search_tables tool).
type SearchTablesEndpoint struct {
	Surface *toolsurface.Surface
}

func (e *SearchTablesEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/tables/search", e.handler
}

func (e *SearchTablesEndpoint) RequiresInit() bool { return true }

func (e *SearchTablesEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	regID := r.URL.Query().Get("reg_id")
	mode := tables.SearchMode(r.URL.Query().Get("mode"))

	hits, err := e.Surface.SearchTables(regID, query, mode)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, hits)
}

func (e *SearchTablesEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		regID string
		mode  string
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search table captions and cells",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			path := "/tables/search?query=" + args[0]
			if regID != "" {
				path += "&reg_id=" + regID
			}
			if mode != "" {
				path += "&mode=" + mode
			}
			var resp any
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&regID, "reg-id", "", "restrict to this regulation")
	cmd.Flags().StringVar(&mode, "mode", "", "lexical, semantic, or hybrid (default)")
	return cmd
}
