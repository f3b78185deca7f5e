// Package pagestore persists regulations at page granularity. It is the
// single authority on disk: the lexical and vector indices hold only
// references back into it. Writes commit atomically by writing a full
// generation to a temp directory and renaming it into place.
package pagestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jackzampolin/regcore/internal/errs"
	"github.com/jackzampolin/regcore/internal/home"
	"github.com/jackzampolin/regcore/internal/model"
)

const (
	manifestFile = "info.json"
	registryFile = "table_registry.json"
)

// Store is the on-disk page store rooted at a home directory.
type Store struct {
	home *home.Dir
}

// New returns a Store rooted at the given home directory's pages dir.
func New(h *home.Dir) *Store {
	return &Store{home: h}
}

// ListRegulations returns the manifest of every regulation currently
// committed to the store.
func (s *Store) ListRegulations() ([]model.RegulationInfo, error) {
	root := s.home.PagesDir()
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading pages dir: %w", err)
	}

	var infos []model.RegulationInfo
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := s.LoadInfo(e.Name())
		if err != nil {
			continue
		}
		infos = append(infos, *info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].RegID < infos[j].RegID })
	return infos, nil
}

// LoadInfo loads a regulation's manifest.
func (s *Store) LoadInfo(regID string) (*model.RegulationInfo, error) {
	path := filepath.Join(s.home.RegulationDir(regID), manifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("regulation %q: %w", regID, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("reading manifest for %q: %w", regID, err)
	}
	var info model.RegulationInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("decoding manifest for %q: %w", regID, errs.ErrIntegrity)
	}
	return &info, nil
}

// LoadPage loads a single page of a regulation. page_num must lie in
// [1, total_pages]; anything else fails with ErrNotFound.
func (s *Store) LoadPage(regID string, pageNum int) (*model.Page, error) {
	info, err := s.LoadInfo(regID)
	if err != nil {
		return nil, err
	}
	if pageNum < 1 || pageNum > info.TotalPages {
		return nil, fmt.Errorf("page %d of %q (1..%d): %w", pageNum, regID, info.TotalPages, errs.ErrNotFound)
	}

	path := filepath.Join(s.home.RegulationDir(regID), pageFileName(pageNum))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("page %d of %q: %w", pageNum, regID, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("reading page %d of %q: %w", pageNum, regID, err)
	}
	var page model.Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("decoding page %d of %q: %w", pageNum, regID, errs.ErrIntegrity)
	}
	if page.PageNum != pageNum {
		return nil, fmt.Errorf("page %d of %q declares page_num %d: %w", pageNum, regID, page.PageNum, errs.ErrIntegrity)
	}
	return &page, nil
}

// SaveRegulation writes a full generation of a regulation atomically. Any
// prior generation with the same reg_id is replaced only once every file
// has been written and the directory has been renamed into place.
func (s *Store) SaveRegulation(info model.RegulationInfo, pages []model.Page) error {
	if info.RegID == "" {
		return fmt.Errorf("regulation manifest missing reg_id: %w", errs.ErrValidation)
	}
	if len(pages) != info.TotalPages {
		return fmt.Errorf("manifest declares %d pages but %d were given: %w", info.TotalPages, len(pages), errs.ErrValidation)
	}

	finalDir := s.home.RegulationDir(info.RegID)
	if err := os.MkdirAll(filepath.Dir(finalDir), 0o755); err != nil {
		return fmt.Errorf("preparing pages dir: %w", err)
	}

	tmpDir, err := os.MkdirTemp(filepath.Dir(finalDir), ".ingest-"+info.RegID+"-")
	if err != nil {
		return fmt.Errorf("creating staging dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	manifestData, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, manifestFile), manifestData, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	for i, page := range pages {
		wantNum := i + 1
		if page.PageNum != wantNum {
			return fmt.Errorf("pages not dense: index %d has page_num %d: %w", i, page.PageNum, errs.ErrValidation)
		}
		data, err := json.MarshalIndent(page, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling page %d: %w", page.PageNum, err)
		}
		path := filepath.Join(tmpDir, pageFileName(page.PageNum))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing page %d: %w", page.PageNum, err)
		}
	}

	if err := os.RemoveAll(finalDir); err != nil {
		return fmt.Errorf("clearing previous generation: %w", err)
	}
	if err := os.Rename(tmpDir, finalDir); err != nil {
		return fmt.Errorf("committing new generation: %w", err)
	}
	return nil
}

// SaveTableRegistry persists a regulation's table registry.
func (s *Store) SaveTableRegistry(regID string, registry model.TableRegistry) error {
	dir := s.home.RegulationDir(regID)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("regulation %q: %w", regID, errs.ErrNotFound)
	}
	data, err := json.MarshalIndent(registry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling table registry: %w", err)
	}
	tmpPath := filepath.Join(dir, registryFile+".tmp")
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing table registry: %w", err)
	}
	return os.Rename(tmpPath, filepath.Join(dir, registryFile))
}

// LoadTableRegistry loads a regulation's table registry. Returns
// (nil, nil) if the regulation has no registry built yet.
func (s *Store) LoadTableRegistry(regID string) (*model.TableRegistry, error) {
	path := filepath.Join(s.home.RegulationDir(regID), registryFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading table registry for %q: %w", regID, err)
	}
	var reg model.TableRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decoding table registry for %q: %w", regID, errs.ErrIntegrity)
	}
	return &reg, nil
}

// DeleteRegulation removes a regulation's entire directory.
func (s *Store) DeleteRegulation(regID string) error {
	dir := s.home.RegulationDir(regID)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("regulation %q: %w", regID, errs.ErrNotFound)
		}
		return err
	}
	return os.RemoveAll(dir)
}

// MarkDirty flags a regulation's indices as needing a rebuild without
// rewriting its page data.
func (s *Store) MarkDirty(regID string) error {
	return s.setDirty(regID, true)
}

// ClearDirty removes the rebuild flag after indices have been recomputed.
func (s *Store) ClearDirty(regID string) error {
	return s.setDirty(regID, false)
}

func (s *Store) setDirty(regID string, dirty bool) error {
	info, err := s.LoadInfo(regID)
	if err != nil {
		return err
	}
	info.Dirty = dirty
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	path := filepath.Join(s.home.RegulationDir(regID), manifestFile)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// LoadAllPages loads every page of a regulation in order, for use by index
// builders and the table registry builder.
func (s *Store) LoadAllPages(regID string) ([]model.Page, error) {
	info, err := s.LoadInfo(regID)
	if err != nil {
		return nil, err
	}
	pages := make([]model.Page, 0, info.TotalPages)
	for n := 1; n <= info.TotalPages; n++ {
		page, err := s.LoadPage(regID, n)
		if err != nil {
			return nil, err
		}
		pages = append(pages, *page)
	}
	return pages, nil
}

func pageFileName(pageNum int) string {
	return fmt.Sprintf("page_%05d.json", pageNum)
}
