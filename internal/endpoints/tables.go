package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/regcore/internal/api"
	"github.com/jackzampolin/regcore/internal/toolsurface"
)

// GetTableEndpoint handles GET /regulations/{reg_id}/tables/{table_id}
// (the get_table_by_id tool).
type GetTableEndpoint struct {
	Surface *toolsurface.Surface
}

func (e *GetTableEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/regulations/{reg_id}/tables/{table_id}", e.handler
}

func (e *GetTableEndpoint) RequiresInit() bool { return true }

func (e *GetTableEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	regID := r.PathValue("reg_id")
	tableID := r.PathValue("table_id")

	table, err := e.Surface.GetTableByID(regID, tableID)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (e *GetTableEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <reg_id> <table_id>",
		Short: "Get a logical table, stitched across pages",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			path := "/regulations/" + args[0] + "/tables/" + args[1]
			var resp any
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
