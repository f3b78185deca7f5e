// Package toolsurface exposes the nine retrieval operations to reasoning
// agents, an HTTP server, and a CLI, each from one validated Go method.
// Argument validation rejects an unknown reg_id, an empty query, a
// negative limit, or an inverted page range before any component below
// is invoked.
package toolsurface

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackzampolin/regcore/internal/annotations"
	"github.com/jackzampolin/regcore/internal/errs"
	"github.com/jackzampolin/regcore/internal/hybrid"
	"github.com/jackzampolin/regcore/internal/model"
	"github.com/jackzampolin/regcore/internal/pagestore"
	"github.com/jackzampolin/regcore/internal/reference"
	"github.com/jackzampolin/regcore/internal/tables"
	"github.com/jackzampolin/regcore/internal/toc"
)

// Surface wires the tool operations to the components that serve them:
// the page store, the hybrid searcher, the table registry/stitcher, the
// annotation/reference resolvers, and the TOC builder.
type Surface struct {
	Pages     *pagestore.Store
	Search    *hybrid.Searcher
	Reference *reference.Resolver
	Annotate  *annotations.Resolver
}

// New builds a Surface. ann and ref are constructed by the caller (they
// both need the same Pages store) so tests can substitute stubs for
// either without rebuilding the whole graph.
func New(pages *pagestore.Store, search *hybrid.Searcher, ann *annotations.Resolver, ref *reference.Resolver) *Surface {
	return &Surface{Pages: pages, Search: search, Reference: ref, Annotate: ann}
}

// requireRegulation validates reg_id exists before anything else runs.
func (s *Surface) requireRegulation(regID string) (*model.RegulationInfo, error) {
	if strings.TrimSpace(regID) == "" {
		return nil, fmt.Errorf("reg_id is required: %w", errs.ErrValidation)
	}
	info, err := s.Pages.LoadInfo(regID)
	if err != nil {
		return nil, err
	}
	return info, nil
}

// ListRegulations implements the list_regulations tool.
func (s *Surface) ListRegulations() ([]model.RegulationInfo, error) {
	return s.Pages.ListRegulations()
}

// GetTOC implements the get_toc tool.
func (s *Surface) GetTOC(regID string, maxLevel int) (model.TocTree, error) {
	if _, err := s.requireRegulation(regID); err != nil {
		return model.TocTree{}, err
	}
	pages, err := s.Pages.LoadAllPages(regID)
	if err != nil {
		return model.TocTree{}, err
	}
	tree := toc.Build(pages)
	tree.RegID = regID
	return toc.Truncate(tree, maxLevel), nil
}

// SmartSearch implements the smart_search tool over the hybrid searcher.
func (s *Surface) SmartSearch(ctx context.Context, query string, regIDs []string, chapterScope []string, limit int) ([]model.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required: %w", errs.ErrValidation)
	}
	if limit < 0 {
		return nil, fmt.Errorf("limit must not be negative: %w", errs.ErrValidation)
	}
	if limit == 0 {
		limit = 10
	}
	for _, regID := range regIDs {
		if _, err := s.requireRegulation(regID); err != nil {
			return nil, err
		}
	}
	allInfos, err := s.Pages.ListRegulations()
	if err != nil {
		return nil, err
	}
	return s.Search.Search(ctx, query, regIDs, chapterScope, limit, allInfos)
}

// ReadPageRange implements the read_page_range tool. If a table segment straddles [start, end]
// the table is reported in PartialTables rather than stitched inline, so
// a partial read never presents a partially stitched table as complete.
func (s *Surface) ReadPageRange(regID string, start, end int) (model.PageContent, error) {
	info, err := s.requireRegulation(regID)
	if err != nil {
		return model.PageContent{}, err
	}
	if start < 1 || end < start || end > info.TotalPages {
		return model.PageContent{}, fmt.Errorf("invalid page range [%d, %d] for %q (1..%d): %w", start, end, regID, info.TotalPages, errs.ErrValidation)
	}

	var pages []model.Page
	for n := start; n <= end; n++ {
		page, err := s.Pages.LoadPage(regID, n)
		if err != nil {
			return model.PageContent{}, err
		}
		pages = append(pages, *page)
	}

	content := model.PageContent{Pages: pages}

	registry, err := s.Pages.LoadTableRegistry(regID)
	if err != nil {
		return model.PageContent{}, err
	}
	if registry == nil {
		return content, nil
	}

	allPages, err := s.Pages.LoadAllPages(regID)
	if err != nil {
		return model.PageContent{}, err
	}

	tableIDs := make([]string, 0, len(registry.Tables))
	for id := range registry.Tables {
		tableIDs = append(tableIDs, id)
	}
	sort.Strings(tableIDs)
	for _, tableID := range tableIDs {
		entry := registry.Tables[tableID]
		if entry.StartPage >= start && entry.EndPage <= end {
			stitched, err := tables.GetFullTable(*registry, allPages, tableID)
			if err != nil {
				return model.PageContent{}, err
			}
			content.StitchedTables = append(content.StitchedTables, *stitched)
		} else if overlaps(entry.StartPage, entry.EndPage, start, end) {
			content.PartialTables = append(content.PartialTables, model.PartialTable{TableID: tableID, Segments: entry.Segments})
		}
	}
	return content, nil
}

func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart <= bEnd && bStart <= aEnd
}

// ReadChapterContent implements read_chapter_content: resolve a section, then
// delegate to ReadPageRange. includeChildren extends the range to cover
// every descendant's page range, not just the matched node's own.
func (s *Surface) ReadChapterContent(regID, sectionNumber string, includeChildren bool) (model.PageContent, error) {
	if _, err := s.requireRegulation(regID); err != nil {
		return model.PageContent{}, err
	}
	pages, err := s.Pages.LoadAllPages(regID)
	if err != nil {
		return model.PageContent{}, err
	}
	tree := toc.Build(pages)
	item, err := toc.ResolveSection(tree, sectionNumber)
	if err != nil {
		return model.PageContent{}, fmt.Errorf("section %q in %q: %w", sectionNumber, regID, err)
	}

	start, end := item.PageStart, item.PageEnd
	if includeChildren {
		start, end = widestRange(item)
	}
	return s.ReadPageRange(regID, start, end)
}

func widestRange(item *model.TocItem) (int, int) {
	start, end := item.PageStart, item.PageEnd
	for _, c := range item.Children {
		cs, ce := widestRange(c)
		if cs < start {
			start = cs
		}
		if ce > end {
			end = ce
		}
	}
	return start, end
}

// SearchTables implements the search_tables tool. If regID is empty, every
// ingested regulation's registry is searched.
func (s *Surface) SearchTables(regID, query string, mode tables.SearchMode) ([]model.TableHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required: %w", errs.ErrValidation)
	}
	if mode == "" {
		mode = tables.ModeHybrid
	}

	regIDs := []string{regID}
	if regID == "" {
		infos, err := s.Pages.ListRegulations()
		if err != nil {
			return nil, err
		}
		regIDs = regIDs[:0]
		for _, info := range infos {
			regIDs = append(regIDs, info.RegID)
		}
	} else if _, err := s.requireRegulation(regID); err != nil {
		return nil, err
	}

	var all []model.TableHit
	for _, id := range regIDs {
		registry, err := s.Pages.LoadTableRegistry(id)
		if err != nil {
			return nil, err
		}
		if registry == nil {
			continue
		}
		pages, err := s.Pages.LoadAllPages(id)
		if err != nil {
			return nil, err
		}
		all = append(all, tables.Search(*registry, pages, query, mode)...)
	}

	// Each registry's hits arrive locally sorted; re-sort so the combined
	// list is score-ordered across regulations too.
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		if all[i].RegID != all[j].RegID {
			return all[i].RegID < all[j].RegID
		}
		return all[i].TableID < all[j].TableID
	})
	return all, nil
}

// GetTableByID implements the get_table_by_id tool.
func (s *Surface) GetTableByID(regID, tableID string) (*model.StitchedTable, error) {
	if _, err := s.requireRegulation(regID); err != nil {
		return nil, err
	}
	registry, err := s.Pages.LoadTableRegistry(regID)
	if err != nil {
		return nil, err
	}
	if registry == nil {
		return nil, fmt.Errorf("regulation %q: %w", regID, errs.ErrIndexMissing)
	}
	pages, err := s.Pages.LoadAllPages(regID)
	if err != nil {
		return nil, err
	}
	return tables.GetFullTable(*registry, pages, tableID)
}

// LookupAnnotation implements the lookup_annotation tool.
func (s *Surface) LookupAnnotation(regID, label string, pageHint int) (*model.Annotation, error) {
	if _, err := s.requireRegulation(regID); err != nil {
		return nil, err
	}
	ann, _, err := s.Annotate.Lookup(regID, label, pageHint)
	return ann, err
}

// ResolveReference implements the resolve_reference tool.
func (s *Surface) ResolveReference(regID, phrase string) (*model.ReferenceTarget, error) {
	if _, err := s.requireRegulation(regID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(phrase) == "" {
		return nil, fmt.Errorf("reference phrase is required: %w", errs.ErrValidation)
	}

	pages, err := s.Pages.LoadAllPages(regID)
	if err != nil {
		return nil, err
	}
	tree := toc.Build(pages)
	registry, err := s.Pages.LoadTableRegistry(regID)
	if err != nil {
		return nil, err
	}
	if registry == nil {
		registry = &model.TableRegistry{RegID: regID, Tables: map[string]model.TableEntry{}, Reverse: map[string]string{}}
	}

	info, err := s.Pages.LoadInfo(regID)
	if err != nil {
		return nil, err
	}

	return s.Reference.Resolve(regID, phrase, tree, *registry, pages, info.TotalPages)
}
