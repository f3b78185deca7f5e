package endpoints

import (
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/regcore/internal/api"
	"github.com/jackzampolin/regcore/internal/toolsurface"
)

// ReadPageRangeEndpoint handles GET /regulations/{reg_id}/pages
// (the read_page_range tool).
type ReadPageRangeEndpoint struct {
	Surface *toolsurface.Surface
}

func (e *ReadPageRangeEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/regulations/{reg_id}/pages", e.handler
}

func (e *ReadPageRangeEndpoint) RequiresInit() bool { return true }

func (e *ReadPageRangeEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	regID := r.PathValue("reg_id")
	start := queryInt(r, "start", 1)
	end := queryInt(r, "end", start)

	content, err := e.Surface.ReadPageRange(regID, start, end)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, content)
}

func (e *ReadPageRangeEndpoint) Command(getServerURL func() string) *cobra.Command {
	var end int
	cmd := &cobra.Command{
		Use:   "pages <reg_id> <start>",
		Short: "Read a page range, with fully-contained tables stitched inline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := strconv.Atoi(args[1])
			if err != nil {
				return err
			}
			if end == 0 {
				end = start
			}
			client := api.NewClient(getServerURL())
			path := "/regulations/" + args[0] + "/pages?start=" + strconv.Itoa(start) + "&end=" + strconv.Itoa(end)
			var resp any
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().IntVar(&end, "end", 0, "last page to read (default: same as start)")
	return cmd
}

// ReadChapterEndpoint handles GET /regulations/{reg_id}/chapters/{section}
// (the read_chapter_content tool).
type ReadChapterEndpoint struct {
	Surface *toolsurface.Surface
}

func (e *ReadChapterEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/regulations/{reg_id}/chapters/{section}", e.handler
}

func (e *ReadChapterEndpoint) RequiresInit() bool { return true }

func (e *ReadChapterEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	regID := r.PathValue("reg_id")
	section := r.PathValue("section")
	includeChildren := queryBool(r, "include_children")

	content, err := e.Surface.ReadChapterContent(regID, section, includeChildren)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, content)
}

func (e *ReadChapterEndpoint) Command(getServerURL func() string) *cobra.Command {
	var includeChildren bool
	cmd := &cobra.Command{
		Use:   "chapter <reg_id> <section_number>",
		Short: "Read a chapter's pages by section number",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			path := "/regulations/" + args[0] + "/chapters/" + args[1]
			if includeChildren {
				path += "?include_children=true"
			}
			var resp any
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().BoolVar(&includeChildren, "include-children", false, "extend the range over every descendant section")
	return cmd
}
