package reference

import (
	"testing"

	"github.com/jackzampolin/regcore/internal/annotations"
	"github.com/jackzampolin/regcore/internal/errs"
	"github.com/jackzampolin/regcore/internal/model"
	"github.com/jackzampolin/regcore/internal/toc"
)

type fakePages struct {
	info  model.RegulationInfo
	pages map[int]model.Page
}

func (f *fakePages) LoadInfo(regID string) (*model.RegulationInfo, error) {
	if regID != f.info.RegID {
		return nil, errs.ErrNotFound
	}
	return &f.info, nil
}

func (f *fakePages) LoadPage(regID string, pageNum int) (*model.Page, error) {
	if regID != f.info.RegID {
		return nil, errs.ErrNotFound
	}
	page, ok := f.pages[pageNum]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &page, nil
}

func fixture() (model.TocTree, model.TableRegistry, []model.Page, *annotations.Resolver) {
	pages := []model.Page{
		{PageNum: 80, ChapterPath: []string{"第六章 电压质量"}},
		{PageNum: 95, ChapterPath: []string{"第六章 电压质量"},
			Annotations: []model.Annotation{{Label: "注①", Body: "220kV 及以上"}}},
	}
	tree := toc.Build(pages)

	registry := model.TableRegistry{
		RegID: "r1",
		Tables: map[string]model.TableEntry{
			"T001": {TableID: "T001", StartPage: 90, EndPage: 91, Caption: "表6-2 电压等级分类"},
		},
		Reverse: map[string]string{},
	}

	store := &fakePages{
		info:  model.RegulationInfo{RegID: "r1", TotalPages: 100},
		pages: map[int]model.Page{95: pages[1]},
	}
	ann := annotations.New(store)
	return tree, registry, pages, ann
}

func TestClassifySpecificityOrdering(t *testing.T) {
	candidates := Classify("见第六章")
	if len(candidates) == 0 {
		t.Fatal("no candidates")
	}
	if candidates[0].Target.Kind != model.RefChapter {
		t.Errorf("top candidate kind = %q, want chapter", candidates[0].Target.Kind)
	}
}

func TestClassifyAnnotationBeatsPage(t *testing.T) {
	candidates := Classify("见注1")
	if candidates[0].Target.Kind != model.RefAnnotation {
		t.Errorf("top candidate kind = %q, want annotation", candidates[0].Target.Kind)
	}
}

func TestResolveChapterReference(t *testing.T) {
	tree, registry, pages, ann := fixture()
	r := New(ann)

	target, err := r.Resolve("r1", "见第六章", tree, registry, pages, 100)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if target.Kind != model.RefChapter {
		t.Errorf("Kind = %q, want chapter", target.Kind)
	}
	if target.PageStart != 80 || target.PageEnd != 95 {
		t.Errorf("range = [%d,%d], want [80,95]", target.PageStart, target.PageEnd)
	}
}

func TestResolveTableReference(t *testing.T) {
	tree, registry, pages, ann := fixture()
	r := New(ann)

	target, err := r.Resolve("r1", "参见表6-2", tree, registry, pages, 100)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if target.Kind != model.RefTable || target.Target != "T001" {
		t.Errorf("got kind=%q target=%q, want table T001", target.Kind, target.Target)
	}
}

func TestResolveAnnotationReference(t *testing.T) {
	tree, registry, pages, ann := fixture()
	r := New(ann)

	target, err := r.Resolve("r1", "见注1", tree, registry, pages, 100)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if target.Kind != model.RefAnnotation {
		t.Errorf("Kind = %q, want annotation", target.Kind)
	}
	if target.PageStart != 95 {
		t.Errorf("PageStart = %d, want 95", target.PageStart)
	}
}

func TestResolvePageReference(t *testing.T) {
	tree, registry, pages, ann := fixture()
	r := New(ann)

	target, err := r.Resolve("r1", "P50", tree, registry, pages, 100)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if target.Kind != model.RefPage || target.PageStart != 50 {
		t.Errorf("got kind=%q start=%d, want page 50", target.Kind, target.PageStart)
	}
}

func TestResolveFailsWhenSoleCandidateUnresolved(t *testing.T) {
	tree, registry, pages, ann := fixture()
	r := New(ann)

	// "表9-9" classifies as a table reference first but no such table
	// exists; nothing else matches, so resolution must fail outright.
	if _, err := r.Resolve("r1", "表9-9", tree, registry, pages, 100); err == nil {
		t.Fatal("expected error for unresolvable phrase")
	}
}

func TestResolveUnclassifiablePhrase(t *testing.T) {
	tree, registry, pages, ann := fixture()
	r := New(ann)

	if _, err := r.Resolve("r1", "普通文本没有引用", tree, registry, pages, 100); !errs.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
