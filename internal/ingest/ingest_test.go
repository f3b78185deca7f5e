package ingest

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/jackzampolin/regcore/internal/errs"
	"github.com/jackzampolin/regcore/internal/home"
	"github.com/jackzampolin/regcore/internal/lexindex"
	"github.com/jackzampolin/regcore/internal/model"
	"github.com/jackzampolin/regcore/internal/pagestore"
)

func newTestIngestor(t *testing.T) *Ingestor {
	t.Helper()
	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("home.New: %v", err)
	}
	if err := h.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists: %v", err)
	}
	lex, err := lexindex.Open(h.LexicalIndexDir())
	if err != nil {
		t.Fatalf("lexindex.Open: %v", err)
	}
	t.Cleanup(func() { lex.Close() })
	cfg := Config{VectorContentLimit: 500, TableRegistryAutobuild: true}
	return New(pagestore.New(h), lex, nil, nil, cfg, slog.Default())
}

func testBundle(regID string) Bundle {
	return Bundle{
		Info: model.RegulationInfo{RegID: regID, Title: "电网安全稳定导则"},
		Pages: []model.Page{
			{
				RegID: regID, PageNum: 1, ChapterPath: []string{"第一章"},
				Blocks:       []model.ContentBlock{{BlockID: "b1", Kind: model.BlockText, Text: "母线失压处理"}},
				RenderedText: "母线失压处理",
			},
			{
				RegID: regID, PageNum: 2, ChapterPath: []string{"第一章"},
				Blocks:       []model.ContentBlock{{BlockID: "b2", Kind: model.BlockText, Text: "系统电压恢复"}},
				RenderedText: "系统电压恢复",
			},
		},
	}
}

func TestIngestCommitsPagesAndIndices(t *testing.T) {
	ing := newTestIngestor(t)
	if err := ing.Ingest(context.Background(), testBundle("reg-a")); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	info, err := ing.Pages.LoadInfo("reg-a")
	if err != nil {
		t.Fatalf("LoadInfo: %v", err)
	}
	if info.TotalPages != 2 {
		t.Errorf("TotalPages = %d, want 2", info.TotalPages)
	}
	if info.IngestedAt == "" {
		t.Error("IngestedAt not stamped")
	}

	hits, err := ing.Lex.Query("母线失压", nil, nil, 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) == 0 || hits[0].Record.BlockID != "b1" {
		t.Errorf("lexical index not built from ingested pages: %+v", hits)
	}

	registry, err := ing.Pages.LoadTableRegistry("reg-a")
	if err != nil {
		t.Fatalf("LoadTableRegistry: %v", err)
	}
	if registry == nil {
		t.Error("table registry not autobuilt")
	}
}

func TestIngestThenDeleteLeavesNoRecords(t *testing.T) {
	ing := newTestIngestor(t)
	ctx := context.Background()
	if err := ing.Ingest(ctx, testBundle("reg-a")); err != nil {
		t.Fatalf("Ingest reg-a: %v", err)
	}
	if err := ing.Ingest(ctx, testBundle("reg-b")); err != nil {
		t.Fatalf("Ingest reg-b: %v", err)
	}

	if err := ing.Delete(ctx, "reg-a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := ing.Pages.LoadInfo("reg-a"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("LoadInfo after delete = %v, want ErrNotFound", err)
	}
	hits, err := ing.Lex.Query("电压", nil, nil, 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	for _, h := range hits {
		if h.Record.RegID == "reg-a" {
			t.Error("deleted regulation still present in lexical index")
		}
	}
	if len(hits) == 0 {
		t.Error("surviving regulation's records disappeared with the delete")
	}
}

func TestRebuildClearsDirtyFlag(t *testing.T) {
	ing := newTestIngestor(t)
	ctx := context.Background()
	if err := ing.Ingest(ctx, testBundle("reg-a")); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if err := ing.Pages.MarkDirty("reg-a"); err != nil {
		t.Fatalf("MarkDirty: %v", err)
	}

	if err := ing.Rebuild(ctx, "reg-a"); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	info, err := ing.Pages.LoadInfo("reg-a")
	if err != nil {
		t.Fatalf("LoadInfo: %v", err)
	}
	if info.Dirty {
		t.Error("rebuild left the dirty flag set")
	}
}

func TestValidateBundle(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Bundle)
		wantErr error
	}{
		{
			name:    "bad reg_id",
			mutate:  func(b *Bundle) { b.Info.RegID = "含中文" },
			wantErr: errs.ErrValidation,
		},
		{
			name:    "no pages",
			mutate:  func(b *Bundle) { b.Pages = nil },
			wantErr: errs.ErrValidation,
		},
		{
			name:    "sparse page numbers",
			mutate:  func(b *Bundle) { b.Pages[1].PageNum = 3 },
			wantErr: errs.ErrValidation,
		},
		{
			name:    "duplicate block_id",
			mutate:  func(b *Bundle) { b.Pages[1].Blocks[0].BlockID = "b1" },
			wantErr: errs.ErrIntegrity,
		},
		{
			name:    "declared total mismatch",
			mutate:  func(b *Bundle) { b.Info.TotalPages = 7 },
			wantErr: errs.ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle := testBundle("reg-a")
			tt.mutate(&bundle)
			if err := validateBundle(bundle); !errors.Is(err, tt.wantErr) {
				t.Errorf("validateBundle = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
