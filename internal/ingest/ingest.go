// Package ingest drives the write side of the core: it accepts a parsed
// regulation bundle from the upstream parser boundary, commits it to the
// page store, then derives the lexical index, the vector index, and the
// table registry from the committed pages, in that order. Rebuild derives
// them again in the same order; deletion clears both indices before it
// removes the regulation from the page store.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"time"

	"github.com/jackzampolin/regcore/internal/errs"
	"github.com/jackzampolin/regcore/internal/hybrid"
	"github.com/jackzampolin/regcore/internal/lexindex"
	"github.com/jackzampolin/regcore/internal/model"
	"github.com/jackzampolin/regcore/internal/pagestore"
	"github.com/jackzampolin/regcore/internal/tables"
	"github.com/jackzampolin/regcore/internal/vecindex"
)

// Bundle is the parser-boundary payload: a manifest plus every page in
// order. This is the JSON shape `regcore api regulations ingest` posts.
type Bundle struct {
	Info  model.RegulationInfo `json:"info"`
	Pages []model.Page         `json:"pages"`
}

// LoadBundle reads a Bundle from a JSON file on disk.
func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bundle: %w", err)
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decoding bundle %s: %w", path, errs.ErrValidation)
	}
	return &b, nil
}

var regIDPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// Config tunes the derived-index build.
type Config struct {
	// VectorContentLimit caps the characters of block text embedded per
	// vector record. The vector index stores at most 500 characters of
	// that text whatever the limit.
	VectorContentLimit int

	// TableRegistryAutobuild controls whether ingest builds the table
	// registry immediately after committing pages.
	TableRegistryAutobuild bool
}

// Ingestor owns the ingest, rebuild, and delete flows across the page
// store and both indices. Writers are exclusive per regulation; callers
// serialize externally.
type Ingestor struct {
	Pages  *pagestore.Store
	Lex    *lexindex.Index
	Vec    *vecindex.Index
	Embed  hybrid.Embedder
	Cfg    Config
	Logger *slog.Logger
}

// New builds an Ingestor. embed may be nil, in which case vector indexing
// is skipped and hybrid search degrades to lexical-only until a rebuild
// with an embedder configured.
func New(pages *pagestore.Store, lex *lexindex.Index, vec *vecindex.Index, embed hybrid.Embedder, cfg Config, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.VectorContentLimit <= 0 {
		cfg.VectorContentLimit = 500
	}
	return &Ingestor{Pages: pages, Lex: lex, Vec: vec, Embed: embed, Cfg: cfg, Logger: logger}
}

// Ingest commits a bundle atomically and derives every index from the
// committed pages. A prior generation with the same reg_id is replaced;
// its index records are dropped before the new ones are written so a
// re-ingest never leaves stale blocks behind.
func (ing *Ingestor) Ingest(ctx context.Context, bundle Bundle) error {
	if err := validateBundle(bundle); err != nil {
		return err
	}

	info := bundle.Info
	if info.TotalPages == 0 {
		info.TotalPages = len(bundle.Pages)
	}
	if info.IngestedAt == "" {
		info.IngestedAt = time.Now().UTC().Format(time.RFC3339)
	}
	if ing.Vec != nil {
		info.VectorDim = ing.Vec.Dimension()
	}

	if err := ing.Pages.SaveRegulation(info, bundle.Pages); err != nil {
		return err
	}
	ing.Logger.Info("regulation committed", "reg_id", info.RegID, "pages", info.TotalPages)

	return ing.buildDerived(ctx, info.RegID, bundle.Pages)
}

// Rebuild discards and recomputes every derived representation for one
// regulation from the page store alone, then clears its rebuild flag.
func (ing *Ingestor) Rebuild(ctx context.Context, regID string) error {
	pages, err := ing.Pages.LoadAllPages(regID)
	if err != nil {
		return err
	}
	if err := ing.buildDerived(ctx, regID, pages); err != nil {
		return err
	}
	return ing.Pages.ClearDirty(regID)
}

// Delete removes a regulation from the page store and both indices. After
// it returns no component holds a record with the given reg_id.
func (ing *Ingestor) Delete(ctx context.Context, regID string) error {
	if err := ing.Lex.DeleteRegulation(regID); err != nil {
		return err
	}
	if ing.Vec != nil {
		if err := ing.Vec.DeleteRegulation(ctx, regID); err != nil {
			return err
		}
	}
	if err := ing.Pages.DeleteRegulation(regID); err != nil {
		return err
	}
	ing.Logger.Info("regulation deleted", "reg_id", regID)
	return nil
}

func (ing *Ingestor) buildDerived(ctx context.Context, regID string, pages []model.Page) error {
	if err := ing.Lex.DeleteRegulation(regID); err != nil {
		return fmt.Errorf("clearing lexical records for %q: %w", regID, err)
	}
	lexRecords := lexindex.RecordsFromPages(pages)
	if err := ing.Lex.IndexRegulation(lexRecords); err != nil {
		return err
	}
	ing.Logger.Info("lexical index built", "reg_id", regID, "blocks", len(lexRecords))

	if err := ing.indexVectors(ctx, regID, pages); err != nil {
		return err
	}

	if ing.Cfg.TableRegistryAutobuild {
		registry := tables.Build(regID, pages)
		if err := ing.Pages.SaveTableRegistry(regID, registry); err != nil {
			return err
		}
		ing.Logger.Info("table registry built", "reg_id", regID, "tables", len(registry.Tables))
	}
	return nil
}

func (ing *Ingestor) indexVectors(ctx context.Context, regID string, pages []model.Page) error {
	if ing.Vec == nil {
		return nil
	}
	if err := ing.Vec.DeleteRegulation(ctx, regID); err != nil {
		return fmt.Errorf("clearing vector records for %q: %w", regID, err)
	}
	if ing.Embed == nil {
		ing.Logger.Warn("no embedder configured, skipping vector index", "reg_id", regID)
		return nil
	}

	records := vecindex.RecordsFromPages(pages, ing.Cfg.VectorContentLimit)
	for i := range records {
		vec, err := ing.Embed.Embed(ctx, records[i].Content)
		if err != nil {
			return fmt.Errorf("embedding block %s/%s: %w", regID, records[i].BlockID, err)
		}
		records[i].Vector = vec
	}
	if err := ing.Vec.IndexRegulation(ctx, records); err != nil {
		return err
	}
	ing.Logger.Info("vector index built", "reg_id", regID, "blocks", len(records))
	return nil
}

// validateBundle enforces the data-model invariants the core can check
// before anything is written: a well-formed reg_id, dense page numbers,
// and block ids unique within the regulation.
func validateBundle(bundle Bundle) error {
	if !regIDPattern.MatchString(bundle.Info.RegID) {
		return fmt.Errorf("reg_id %q is not an ASCII slug: %w", bundle.Info.RegID, errs.ErrValidation)
	}
	if len(bundle.Pages) == 0 {
		return fmt.Errorf("bundle for %q has no pages: %w", bundle.Info.RegID, errs.ErrValidation)
	}
	if bundle.Info.TotalPages != 0 && bundle.Info.TotalPages != len(bundle.Pages) {
		return fmt.Errorf("manifest declares %d pages but bundle has %d: %w",
			bundle.Info.TotalPages, len(bundle.Pages), errs.ErrValidation)
	}

	seen := make(map[string]int)
	for i, page := range bundle.Pages {
		if page.PageNum != i+1 {
			return fmt.Errorf("page numbers not dense: index %d carries page_num %d: %w",
				i, page.PageNum, errs.ErrValidation)
		}
		for _, block := range page.Blocks {
			if block.BlockID == "" {
				return fmt.Errorf("page %d has a block with no block_id: %w", page.PageNum, errs.ErrIntegrity)
			}
			if prev, dup := seen[block.BlockID]; dup {
				return fmt.Errorf("block_id %q appears on both page %d and page %d: %w",
					block.BlockID, prev, page.PageNum, errs.ErrIntegrity)
			}
			seen[block.BlockID] = page.PageNum
		}
	}
	return nil
}
