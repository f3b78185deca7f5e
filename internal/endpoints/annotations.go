package endpoints

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/regcore/internal/api"
	"github.com/jackzampolin/regcore/internal/toolsurface"
)

// LookupAnnotationEndpoint handles GET /regulations/{reg_id}/annotations
// (the lookup_annotation tool).
type LookupAnnotationEndpoint struct {
	Surface *toolsurface.Surface
}

func (e *LookupAnnotationEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/regulations/{reg_id}/annotations", e.handler
}

func (e *LookupAnnotationEndpoint) RequiresInit() bool { return true }

func (e *LookupAnnotationEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	regID := r.PathValue("reg_id")
	label := r.URL.Query().Get("label")
	pageHint := queryInt(r, "page_hint", 0)

	ann, err := e.Surface.LookupAnnotation(regID, label, pageHint)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ann)
}

func (e *LookupAnnotationEndpoint) Command(getServerURL func() string) *cobra.Command {
	var pageHint int
	cmd := &cobra.Command{
		Use:   "annotation <reg_id> <label>",
		Short: "Look up an annotation by label, with digit-form normalization",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			path := "/regulations/" + args[0] + "/annotations?label=" + url.QueryEscape(args[1])
			if pageHint > 0 {
				path += "&page_hint=" + strconv.Itoa(pageHint)
			}
			var resp any
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().IntVar(&pageHint, "page-hint", 0, "page to search first")
	return cmd
}

// ResolveReferenceEndpoint handles GET /regulations/{reg_id}/references
// (the resolve_reference tool).
type ResolveReferenceEndpoint struct {
	Surface *toolsurface.Surface
}

func (e *ResolveReferenceEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/regulations/{reg_id}/references", e.handler
}

func (e *ResolveReferenceEndpoint) RequiresInit() bool { return true }

func (e *ResolveReferenceEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	regID := r.PathValue("reg_id")
	phrase := r.URL.Query().Get("phrase")

	target, err := e.Surface.ResolveReference(regID, phrase)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, target)
}

func (e *ResolveReferenceEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "reference <reg_id> <phrase>",
		Short: "Resolve a cross-reference phrase to its target page range",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			path := "/regulations/" + args[0] + "/references?phrase=" + url.QueryEscape(args[1])
			var resp any
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
