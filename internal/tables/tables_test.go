package tables

import (
	"testing"

	"github.com/jackzampolin/regcore/internal/model"
)

// page10/page11 ground the cross-page stitching scenario: page 10 ends with
// a truncated 3-column table (rows r1..r4), page 11 opens with the
// continuation (rows r5..r8) and repeats the column headers as its first
// row.
func twoPageTableFixture() []model.Page {
	colHeaders := []string{"等级", "电压", "备注"}

	seg1 := model.TableMeta{
		Caption:         "表6-2 电压等级分类",
		ContinuesToNext: true,
		RowCount:        4,
		ColCount:        3,
		ColHeaders:      colHeaders,
		Cells: []model.TableCell{
			{Row: 0, Col: 0, Text: "r1c1"}, {Row: 0, Col: 1, Text: "r1c2"}, {Row: 0, Col: 2, Text: "r1c3"},
			{Row: 1, Col: 0, Text: "r2c1"}, {Row: 1, Col: 1, Text: "r2c2"}, {Row: 1, Col: 2, Text: "r2c3"},
			{Row: 2, Col: 0, Text: "r3c1"}, {Row: 2, Col: 1, Text: "r3c2"}, {Row: 2, Col: 2, Text: "r3c3"},
			{Row: 3, Col: 0, Text: "r4c1"}, {Row: 3, Col: 1, Text: "r4c2"}, {Row: 3, Col: 2, Text: "r4c3"},
		},
	}

	seg2 := model.TableMeta{
		ContinuesToNext: false,
		RowCount:        5,
		ColCount:        3,
		ColHeaders:      colHeaders,
		Cells: []model.TableCell{
			// repeated header row, must be suppressed on stitch
			{Row: 0, Col: 0, Text: "等级"}, {Row: 0, Col: 1, Text: "电压"}, {Row: 0, Col: 2, Text: "备注"},
			{Row: 1, Col: 0, Text: "r5c1"}, {Row: 1, Col: 1, Text: "r5c2"}, {Row: 1, Col: 2, Text: "r5c3"},
			{Row: 2, Col: 0, Text: "r6c1"}, {Row: 2, Col: 1, Text: "r6c2"}, {Row: 2, Col: 2, Text: "r6c3"},
			{Row: 3, Col: 0, Text: "r7c1"}, {Row: 3, Col: 1, Text: "r7c2"}, {Row: 3, Col: 2, Text: "r7c3"},
			{Row: 4, Col: 0, Text: "r8c1"}, {Row: 4, Col: 1, Text: "r8c2"}, {Row: 4, Col: 2, Text: "r8c3"},
		},
	}

	return []model.Page{
		{
			RegID: "r1", PageNum: 10,
			Blocks: []model.ContentBlock{
				{BlockID: "p10b0", Kind: model.BlockHeading, Text: "6.2 电压等级"},
				{BlockID: "p10b1", Kind: model.BlockTable, Table: &seg1},
			},
			ContinuesToNext: true,
		},
		{
			RegID: "r1", PageNum: 11,
			Blocks: []model.ContentBlock{
				{BlockID: "p11b0", Kind: model.BlockTable, Table: &seg2},
				{BlockID: "p11b1", Kind: model.BlockText, Text: "以上为全部等级。"},
			},
			ContinuesFromPrev: true,
		},
	}
}

func TestBuildChainsTruncatedSegments(t *testing.T) {
	pages := twoPageTableFixture()
	reg := Build("r1", pages)

	if len(reg.Tables) != 1 {
		t.Fatalf("len(Tables) = %d, want 1", len(reg.Tables))
	}
	var entry model.TableEntry
	for _, e := range reg.Tables {
		entry = e
	}
	if !entry.CrossPage {
		t.Error("CrossPage = false, want true")
	}
	if entry.StartPage != 10 || entry.EndPage != 11 {
		t.Errorf("range = [%d,%d], want [10,11]", entry.StartPage, entry.EndPage)
	}
	if entry.Caption != "表6-2 电压等级分类" {
		t.Errorf("Caption = %q", entry.Caption)
	}
	if len(entry.Segments) != 2 {
		t.Fatalf("len(Segments) = %d, want 2", len(entry.Segments))
	}
	for _, blockID := range []string{"p10b1", "p11b0"} {
		if reg.Reverse[blockID] != entry.TableID {
			t.Errorf("Reverse[%q] = %q, want %q", blockID, reg.Reverse[blockID], entry.TableID)
		}
	}
}

func TestGetFullTableSuppressesRepeatedHeader(t *testing.T) {
	pages := twoPageTableFixture()
	reg := Build("r1", pages)

	var tableID string
	for id := range reg.Tables {
		tableID = id
	}

	stitched, err := GetFullTable(reg, pages, tableID)
	if err != nil {
		t.Fatalf("GetFullTable: %v", err)
	}
	if len(stitched.Columns) != 3 {
		t.Fatalf("len(Columns) = %d, want 3", len(stitched.Columns))
	}
	if len(stitched.Rows) != 8 {
		t.Fatalf("len(Rows) = %d, want 8 (no duplicated header row)", len(stitched.Rows))
	}
	if stitched.Rows[0][0] != "r1c1" || stitched.Rows[7][0] != "r8c1" {
		t.Errorf("rows out of order: first=%v last=%v", stitched.Rows[0], stitched.Rows[7])
	}
}

func TestGetFullTableUnknownID(t *testing.T) {
	pages := twoPageTableFixture()
	reg := Build("r1", pages)
	if _, err := GetFullTable(reg, pages, "T999"); err == nil {
		t.Fatal("expected error for unknown table id")
	}
}

func TestSearchMatchesCaptionThenCells(t *testing.T) {
	pages := twoPageTableFixture()
	reg := Build("r1", pages)

	hits := Search(reg, pages, "电压等级分类", ModeHybrid)
	if len(hits) != 1 {
		t.Fatalf("len(hits) = %d, want 1", len(hits))
	}
	if hits[0].Snippet != "表6-2 电压等级分类" {
		t.Errorf("Snippet = %q, want caption match", hits[0].Snippet)
	}

	hits = Search(reg, pages, "r6c2", ModeLexical)
	if len(hits) != 1 {
		t.Fatalf("len(hits) = %d, want 1", len(hits))
	}
	if hits[0].Snippet != "r6c2" {
		t.Errorf("Snippet = %q, want cell match", hits[0].Snippet)
	}
}

func TestSearchNoMatch(t *testing.T) {
	pages := twoPageTableFixture()
	reg := Build("r1", pages)
	if hits := Search(reg, pages, "nonexistent", ModeHybrid); len(hits) != 0 {
		t.Errorf("len(hits) = %d, want 0", len(hits))
	}
}
