package annotations

import (
	"testing"

	"github.com/jackzampolin/regcore/internal/errs"
	"github.com/jackzampolin/regcore/internal/model"
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

func TestLookupWithPageHintAndNormalization(t *testing.T) {
	// S3: page 25 carries annotation "注①": "仅限 220kV 以上".
	store := &fakePages{
		info: model.RegulationInfo{RegID: "gb-38755-2019", TotalPages: 30},
		pages: map[int]model.Page{
			25: {
				RegID: "gb-38755-2019", PageNum: 25,
				Annotations: []model.Annotation{{Label: "注①", Body: "仅限 220kV 以上"}},
			},
		},
	}
	r := New(store)

	ann, pageNum, err := r.Lookup("gb-38755-2019", "注1", 25)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if ann.Label != "注①" {
		t.Errorf("Label = %q, want 注①", ann.Label)
	}
	if ann.Body != "仅限 220kV 以上" {
		t.Errorf("Body = %q, want 仅限 220kV 以上", ann.Body)
	}
	if pageNum != 25 {
		t.Errorf("pageNum = %d, want 25", pageNum)
	}
}

func TestLookupNotFound(t *testing.T) {
	store := &fakePages{
		info:  model.RegulationInfo{RegID: "r1", TotalPages: 5},
		pages: map[int]model.Page{},
	}
	r := New(store)
	if _, _, err := r.Lookup("r1", "注99", 0); !errs.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLookupPrecedenceExactOverNormalized(t *testing.T) {
	store := &fakePages{
		info: model.RegulationInfo{RegID: "r1", TotalPages: 3},
		pages: map[int]model.Page{
			1: {RegID: "r1", PageNum: 1, Annotations: []model.Annotation{{Label: "注1", Body: "exact"}}},
			2: {RegID: "r1", PageNum: 2, Annotations: []model.Annotation{{Label: "注①", Body: "normalized"}}},
		},
	}
	r := New(store)
	ann, pageNum, err := r.Lookup("r1", "注1", 0)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if ann.Body != "exact" || pageNum != 1 {
		t.Errorf("got body=%q page=%d, want exact match on page 1", ann.Body, pageNum)
	}
}

func TestLookupAdjacentPagePreference(t *testing.T) {
	store := &fakePages{
		info: model.RegulationInfo{RegID: "r1", TotalPages: 10},
		pages: map[int]model.Page{
			3: {RegID: "r1", PageNum: 3, Annotations: []model.Annotation{{Label: "注①", Body: "near"}}},
			8: {RegID: "r1", PageNum: 8, Annotations: []model.Annotation{{Label: "注①", Body: "far"}}},
		},
	}
	r := New(store)
	ann, pageNum, err := r.Lookup("r1", "注1", 4)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if ann.Body != "near" || pageNum != 3 {
		t.Errorf("got body=%q page=%d, want the page-3 match closest to hint 4", ann.Body, pageNum)
	}
}
