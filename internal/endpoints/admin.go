package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/regcore/internal/api"
	"github.com/jackzampolin/regcore/internal/ingest"
)

// IngestEndpoint handles POST /regulations: the parser-boundary write
// path. The body is an ingest.Bundle (manifest plus pages in order);
// re-posting a reg_id replaces the prior generation atomically.
type IngestEndpoint struct {
	Ingestor *ingest.Ingestor
}

func (e *IngestEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/regulations", e.handler
}

func (e *IngestEndpoint) RequiresInit() bool { return true }

// IngestResponse confirms what was committed.
type IngestResponse struct {
	RegID      string `json:"reg_id"`
	TotalPages int    `json:"total_pages"`
}

func (e *IngestEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var bundle ingest.Bundle
	if err := json.NewDecoder(r.Body).Decode(&bundle); err != nil {
		writeError(w, http.StatusBadRequest, "invalid bundle: "+err.Error())
		return
	}
	if err := e.Ingestor.Ingest(r.Context(), bundle); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, IngestResponse{
		RegID:      bundle.Info.RegID,
		TotalPages: len(bundle.Pages),
	})
}

func (e *IngestEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <bundle.json>",
		Short: "Ingest a parsed regulation bundle",
		Long: `Ingest a regulation from a parsed JSON bundle.

The bundle is the parser boundary's output: a manifest plus every page
in order. Re-ingesting a reg_id replaces the prior copy atomically.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := ingest.LoadBundle(args[0])
			if err != nil {
				return err
			}
			client := api.NewClient(getServerURL())
			var resp IngestResponse
			if err := client.Post(cmd.Context(), "/regulations", bundle, &resp); err != nil {
				return err
			}
			fmt.Printf("Ingested %s (%d pages)\n", resp.RegID, resp.TotalPages)
			return nil
		},
	}
}

// DeleteRegulationEndpoint handles DELETE /regulations/{reg_id}.
type DeleteRegulationEndpoint struct {
	Ingestor *ingest.Ingestor
}

func (e *DeleteRegulationEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/regulations/{reg_id}", e.handler
}

func (e *DeleteRegulationEndpoint) RequiresInit() bool { return true }

func (e *DeleteRegulationEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	regID := r.PathValue("reg_id")
	if err := e.Ingestor.Delete(r.Context(), regID); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": regID})
}

func (e *DeleteRegulationEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <reg_id>",
		Short: "Delete a regulation and every derived record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Delete(cmd.Context(), "/regulations/"+args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}
}

// RebuildEndpoint handles POST /regulations/{reg_id}/rebuild: discard and
// recompute every derived index from the page store alone.
type RebuildEndpoint struct {
	Ingestor *ingest.Ingestor
}

func (e *RebuildEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/regulations/{reg_id}/rebuild", e.handler
}

func (e *RebuildEndpoint) RequiresInit() bool { return true }

func (e *RebuildEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	regID := r.PathValue("reg_id")
	if err := e.Ingestor.Rebuild(r.Context(), regID); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"rebuilt": regID})
}

func (e *RebuildEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild <reg_id>",
		Short: "Rebuild a regulation's indices from its stored pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Post(cmd.Context(), "/regulations/"+args[0]+"/rebuild", nil, nil); err != nil {
				return err
			}
			fmt.Printf("Rebuilt %s\n", args[0])
			return nil
		},
	}
}
