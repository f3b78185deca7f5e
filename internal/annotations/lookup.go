package annotations

import (
	"fmt"
	"strings"

	"github.com/jackzampolin/regcore/internal/errs"
	"github.com/jackzampolin/regcore/internal/model"
)

// PageSource is the capability the resolver needs from the page store.
type PageSource interface {
	LoadPage(regID string, pageNum int) (*model.Page, error)
	LoadInfo(regID string) (*model.RegulationInfo, error)
}

// Resolver looks up annotations within a regulation.
type Resolver struct {
	Pages PageSource
}

// New builds a Resolver over a page source, ordinarily a *pagestore.Store.
func New(pages PageSource) *Resolver {
	return &Resolver{Pages: pages}
}

// match records one candidate annotation plus how it was found, so the
// precedence and distance tie-break rules can be applied after scanning.
type match struct {
	page       int
	annotation model.Annotation
	precedence int // 0 = exact, 1 = normalized, 2 = prefix
}

// Lookup resolves an annotation label within a regulation.
//
// If pageHint > 0, the hinted page is searched first, then its ±1
// neighbors, before falling back to every page. Otherwise every page is
// scanned. Within a precedence class (exact, then normalized, then
// prefix) the match closest to pageHint wins; matches are never
// considered across a higher-precedence class even if farther away.
func (r *Resolver) Lookup(regID, label string, pageHint int) (*model.Annotation, int, error) {
	if strings.TrimSpace(label) == "" {
		return nil, 0, fmt.Errorf("annotation label is empty: %w", errs.ErrValidation)
	}

	info, err := r.Pages.LoadInfo(regID)
	if err != nil {
		return nil, 0, err
	}

	pagesToScan := scanOrder(info.TotalPages, pageHint)

	var best *match
	for _, pageNum := range pagesToScan {
		page, err := r.Pages.LoadPage(regID, pageNum)
		if err != nil {
			continue
		}
		for _, ann := range page.Annotations {
			precedence, ok := classify(ann.Label, label)
			if !ok {
				continue
			}
			cand := match{page: pageNum, annotation: ann, precedence: precedence}
			if best == nil || better(cand, *best, pageHint) {
				best = &cand
			}
		}
	}

	if best == nil {
		return nil, 0, fmt.Errorf("annotation %q in regulation %q: %w", label, regID, errs.ErrNotFound)
	}
	return &best.annotation, best.page, nil
}

// classify reports which precedence class stored matches query, or false
// if it doesn't match at all.
func classify(stored, query string) (int, bool) {
	if stored == query {
		return 0, true
	}
	if Equal(stored, query) {
		return 1, true
	}
	if strings.HasPrefix(stored, query) || strings.HasPrefix(query, stored) {
		return 2, true
	}
	return 0, false
}

// better reports whether candidate a should replace the current best b:
// a strictly higher precedence class always wins; within the same class,
// the page closer to pageHint wins (ties keep the earlier-found b).
func better(a, b match, pageHint int) bool {
	if a.precedence != b.precedence {
		return a.precedence < b.precedence
	}
	if pageHint <= 0 {
		return false
	}
	return distance(a.page, pageHint) < distance(b.page, pageHint)
}

func distance(page, hint int) int {
	d := page - hint
	if d < 0 {
		return -d
	}
	return d
}

// scanOrder returns the page numbers to search, in priority order: the
// hint, then its immediate neighbors, then every remaining page in
// document order. With no hint, it is simply every page in order.
func scanOrder(totalPages, pageHint int) []int {
	if pageHint <= 0 || pageHint > totalPages {
		order := make([]int, 0, totalPages)
		for p := 1; p <= totalPages; p++ {
			order = append(order, p)
		}
		return order
	}

	seen := make(map[int]bool, totalPages)
	order := make([]int, 0, totalPages)
	add := func(p int) {
		if p < 1 || p > totalPages || seen[p] {
			return
		}
		seen[p] = true
		order = append(order, p)
	}

	add(pageHint)
	add(pageHint - 1)
	add(pageHint + 1)
	for p := 1; p <= totalPages; p++ {
		add(p)
	}
	return order
}
