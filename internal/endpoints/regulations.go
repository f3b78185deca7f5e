package endpoints

import (
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/regcore/internal/api"
	"github.com/jackzampolin/regcore/internal/toolsurface"
)

// ListRegulationsEndpoint handles GET /regulations (the list_regulations tool).
type ListRegulationsEndpoint struct {
	Surface *toolsurface.Surface
}

func (e *ListRegulationsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/regulations", e.handler
}

func (e *ListRegulationsEndpoint) RequiresInit() bool { return true }

func (e *ListRegulationsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	infos, err := e.Surface.ListRegulations()
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

func (e *ListRegulationsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every ingested regulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp []any
			if err := client.Get(cmd.Context(), "/regulations", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// GetTOCEndpoint handles GET /regulations/{reg_id}/toc (the get_toc tool).
type GetTOCEndpoint struct {
	Surface *toolsurface.Surface
}

func (e *GetTOCEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/regulations/{reg_id}/toc", e.handler
}

func (e *GetTOCEndpoint) RequiresInit() bool { return true }

func (e *GetTOCEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	regID := r.PathValue("reg_id")
	maxLevel := queryInt(r, "max_level", 0)
	tree, err := e.Surface.GetTOC(regID, maxLevel)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (e *GetTOCEndpoint) Command(getServerURL func() string) *cobra.Command {
	var maxLevel int
	cmd := &cobra.Command{
		Use:   "toc <reg_id>",
		Short: "Get a regulation's chapter table of contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			path := "/regulations/" + args[0] + "/toc"
			if maxLevel > 0 {
				path += "?max_level=" + strconv.Itoa(maxLevel)
			}
			var resp any
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().IntVar(&maxLevel, "max-level", 0, "maximum chapter depth to return")
	return cmd
}
