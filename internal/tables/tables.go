// Package tables builds and serves the cross-page table registry. A
// logical table is modeled as an arena of model.TableEntry records plus a
// reverse map from segment block_id to logical table id: the registry is
// the single relation, never a pointer embedded in a block.
package tables

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jackzampolin/regcore/internal/errs"
	"github.com/jackzampolin/regcore/internal/model"
)

// Build scans a regulation's pages in document order and chains truncated
// table segments into logical tables. A chain continues while the
// current page's last table block has ContinuesToNext true and the next
// page opens with a table block (directly, or after ContinuesFromPrev
// confirms the leading block is a continuation). Any other page layout
// breaks the chain at that page, per the ambiguous-continuation rule.
func Build(regID string, pages []model.Page) model.TableRegistry {
	reg := model.TableRegistry{
		RegID:   regID,
		Tables:  make(map[string]model.TableEntry),
		Reverse: make(map[string]string),
	}

	seq := 0
	for i := 0; i < len(pages); i++ {
		page := pages[i]
		lastTable := lastTableBlock(page)
		if lastTable == nil || !lastTable.Table.ContinuesToNext {
			continue
		}
		if _, already := reg.Reverse[lastTable.BlockID]; already {
			continue
		}

		segments := []segment{{page: page.PageNum, block: *lastTable}}
		cur := i
		for cur+1 < len(pages) {
			next := pages[cur+1]
			lead := leadingTableBlock(next)
			if lead == nil {
				break
			}
			segments = append(segments, segment{page: next.PageNum, block: *lead})
			cur++
			if !lead.Table.ContinuesToNext {
				break
			}
		}

		if len(segments) < 2 {
			continue
		}

		seq++
		tableID := fmt.Sprintf("T%03d", seq)
		entry := model.TableEntry{
			TableID:   tableID,
			StartPage: segments[0].page,
			EndPage:   segments[len(segments)-1].page,
			CrossPage: true,
			Caption:   firstCaption(segments),
		}
		for _, s := range segments {
			entry.Segments = append(entry.Segments, s.block.BlockID)
			reg.Reverse[s.block.BlockID] = tableID
		}
		reg.Tables[tableID] = entry
	}

	return reg
}

type segment struct {
	page  int
	block model.ContentBlock
}

// lastTableBlock returns the last table block on a page, or nil if the
// page's final content block is not itself a table; an intermediate
// truncated table followed by text is treated as self-contained.
func lastTableBlock(page model.Page) *model.ContentBlock {
	if len(page.Blocks) == 0 {
		return nil
	}
	last := page.Blocks[len(page.Blocks)-1]
	if last.Kind != model.BlockTable || last.Table == nil {
		return nil
	}
	return &last
}

// leadingTableBlock returns the first block of a page if it is a table,
// which is the continuation candidate regardless of whether
// ContinuesFromPrev was also set on the page.
func leadingTableBlock(page model.Page) *model.ContentBlock {
	if len(page.Blocks) == 0 {
		return nil
	}
	first := page.Blocks[0]
	if first.Kind != model.BlockTable || first.Table == nil {
		return nil
	}
	return &first
}

func firstCaption(segments []segment) string {
	for _, s := range segments {
		if s.block.Table.Caption != "" {
			return s.block.Table.Caption
		}
	}
	return ""
}

// GetFullTable reassembles a logical table's segments into a single
// StitchedTable. Row and column headers come from the first
// segment; rows are the concatenation of every segment's non-header rows
// in document order, with duplicate header rows at the top of
// continuation segments suppressed structurally.
func GetFullTable(registry model.TableRegistry, pages []model.Page, tableID string) (*model.StitchedTable, error) {
	entry, ok := registry.Tables[tableID]
	if !ok {
		return nil, fmt.Errorf("table %q in regulation %q: %w", tableID, registry.RegID, errs.ErrNotFound)
	}

	blocksByID := indexBlocks(pages)

	var firstMeta *model.TableMeta
	var bodyRows [][]string
	for i, blockID := range entry.Segments {
		block, ok := blocksByID[blockID]
		if !ok {
			return nil, fmt.Errorf("table %q segment %q missing from pages: %w", tableID, blockID, errs.ErrIntegrity)
		}
		meta := block.Table
		if meta == nil {
			return nil, fmt.Errorf("table %q segment %q is not a table block: %w", tableID, blockID, errs.ErrIntegrity)
		}
		if firstMeta == nil {
			firstMeta = meta
		}
		rows := rowsOf(*meta)
		if i > 0 && len(bodyRows) > 0 && len(rows) > 0 && sameRow(rows[0], firstMeta.ColHeaders) {
			rows = rows[1:]
		}
		bodyRows = append(bodyRows, rows...)
	}

	if firstMeta == nil {
		return nil, fmt.Errorf("table %q has no segments: %w", tableID, errs.ErrIntegrity)
	}

	return &model.StitchedTable{
		TableID:    tableID,
		Caption:    entry.Caption,
		RowHeaders: firstMeta.RowHeaders,
		Columns:    firstMeta.ColHeaders,
		Rows:       bodyRows,
	}, nil
}

func indexBlocks(pages []model.Page) map[string]model.ContentBlock {
	out := make(map[string]model.ContentBlock)
	for _, page := range pages {
		for _, b := range page.Blocks {
			out[b.BlockID] = b
		}
	}
	return out
}

// rowsOf reconstructs row-major string rows from a table's flat cell list.
func rowsOf(meta model.TableMeta) [][]string {
	if meta.RowCount == 0 || meta.ColCount == 0 {
		return nil
	}
	rows := make([][]string, meta.RowCount)
	for i := range rows {
		rows[i] = make([]string, meta.ColCount)
	}
	for _, cell := range meta.Cells {
		if cell.Row < 0 || cell.Row >= meta.RowCount || cell.Col < 0 || cell.Col >= meta.ColCount {
			continue
		}
		rows[cell.Row][cell.Col] = cell.Text
	}
	return rows
}

func sameRow(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if strings.TrimSpace(a[i]) != strings.TrimSpace(b[i]) {
			return false
		}
	}
	return true
}

// SearchMode enumerates the matching strategy for search_tables.
type SearchMode string

const (
	ModeLexical  SearchMode = "lexical"
	ModeSemantic SearchMode = "semantic"
	ModeHybrid   SearchMode = "hybrid"
)

// Search matches a query against every logical table's caption and cell
// text. Mode selects nothing beyond the
// matching strategy below: lexical and hybrid both use substring scoring
// here since table cells are short, structured text rather than prose
// suited to the block-level lexical/vector indices; semantic mode widens
// matching to token overlap so near-miss captions still surface.
func Search(registry model.TableRegistry, pages []model.Page, query string, mode SearchMode) []model.TableHit {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	blocksByID := indexBlocks(pages)

	ids := make([]string, 0, len(registry.Tables))
	for id := range registry.Tables {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var hits []model.TableHit
	for _, id := range ids {
		entry := registry.Tables[id]
		score, snippet := scoreTable(entry, blocksByID, q, mode)
		if score <= 0 {
			continue
		}
		hits = append(hits, model.TableHit{
			TableID: id,
			RegID:   registry.RegID,
			Caption: entry.Caption,
			Snippet: snippet,
			Score:   score,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].TableID < hits[j].TableID
	})
	return hits
}

func scoreTable(entry model.TableEntry, blocksByID map[string]model.ContentBlock, q string, mode SearchMode) (float64, string) {
	captionLower := strings.ToLower(entry.Caption)
	if strings.Contains(captionLower, q) {
		return 2.0, entry.Caption
	}

	for _, blockID := range entry.Segments {
		block, ok := blocksByID[blockID]
		if !ok || block.Table == nil {
			continue
		}
		for _, cell := range block.Table.Cells {
			cellLower := strings.ToLower(cell.Text)
			if strings.Contains(cellLower, q) {
				return 1.0, cell.Text
			}
			if mode == ModeSemantic && tokenOverlap(cellLower, q) {
				return 0.5, cell.Text
			}
		}
	}
	return 0, ""
}

func tokenOverlap(text, query string) bool {
	for _, r := range query {
		if strings.ContainsRune(text, r) {
			return true
		}
	}
	return false
}
