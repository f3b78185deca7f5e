// Package reference classifies and resolves cross-reference phrases:
// 见第六章, 参见表6-2, 见注N, P数字, and the like. The classifier is a
// small tagged dispatch over pattern kinds producing a shared
// model.ReferenceTarget; a new reference form is a new variant, not a
// new type hierarchy.
package reference

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jackzampolin/regcore/internal/annotations"
	"github.com/jackzampolin/regcore/internal/errs"
	"github.com/jackzampolin/regcore/internal/model"
	"github.com/jackzampolin/regcore/internal/toc"
)

var (
	chapterPattern    = regexp.MustCompile(`见?第([一二三四五六七八九十百千0-9]+)[章节]`)
	tableCaptionRef   = regexp.MustCompile(`表\s*([0-9]+-[0-9]+|[0-9]+)`)
	annotationRefPat  = regexp.MustCompile(`见?注\s*([0-9①②③④⑤⑥⑦⑧⑨⑩一二三四五六七八九十]+)`)
	schemeAnnotation  = regexp.MustCompile(`方案\s*([A-Za-z一二三四五六七八九十0-9]+)`)
	pageRefPat        = regexp.MustCompile(`(?:P|第)\s*([0-9]+)\s*页?`)
	pageLetterRefOnly = regexp.MustCompile(`^P([0-9]+)$`)
)

// Candidate is one classification of a reference phrase, ranked by
// specificity: more constrained patterns rank higher.
type Candidate struct {
	Target      model.ReferenceTarget
	Specificity int
}

// Resolver resolves reference phrases within a regulation, delegating
// annotation references to the annotation lookup and table/chapter
// references to the registry and TOC already built for the regulation.
type Resolver struct {
	Annotations *annotations.Resolver
}

// New builds a Resolver over the annotation lookup.
func New(ann *annotations.Resolver) *Resolver {
	return &Resolver{Annotations: ann}
}

// Classify returns every pattern the phrase matches, most specific first,
// without resolving targets yet. A page reference is least specific
// (matches almost any "N" in text); an explicit table-caption or
// annotation-N pattern is most specific.
func Classify(phrase string) []Candidate {
	var out []Candidate
	phrase = strings.TrimSpace(phrase)

	if m := annotationRefPat.FindStringSubmatch(phrase); m != nil {
		out = append(out, Candidate{Target: model.ReferenceTarget{Kind: model.RefAnnotation, Target: "注" + m[1]}, Specificity: 4})
	}
	if m := schemeAnnotation.FindStringSubmatch(phrase); m != nil {
		out = append(out, Candidate{Target: model.ReferenceTarget{Kind: model.RefAnnotation, Target: "方案" + m[1]}, Specificity: 4})
	}
	if m := tableCaptionRef.FindStringSubmatch(phrase); m != nil {
		out = append(out, Candidate{Target: model.ReferenceTarget{Kind: model.RefTable, Target: m[1]}, Specificity: 3})
	}
	if m := chapterPattern.FindStringSubmatch(phrase); m != nil {
		out = append(out, Candidate{Target: model.ReferenceTarget{Kind: model.RefChapter, Target: m[1]}, Specificity: 2})
	}
	if m := pageRefPat.FindStringSubmatch(phrase); m != nil {
		out = append(out, Candidate{Target: model.ReferenceTarget{Kind: model.RefPage, Target: m[1]}, Specificity: 1})
	}

	sortBySpecificity(out)
	return out
}

func sortBySpecificity(c []Candidate) {
	for i := 1; i < len(c); i++ {
		for j := i; j > 0 && c[j-1].Specificity < c[j].Specificity; j-- {
			c[j-1], c[j] = c[j], c[j-1]
		}
	}
}

// Resolve classifies phrase and resolves the most specific candidate into
// a full ReferenceTarget with a concrete page range, falling back to the
// next candidate if resolution fails. If every candidate fails to
// resolve, returns errs.ErrNotFound with the phrase attached.
func (r *Resolver) Resolve(regID, phrase string, tree model.TocTree, registry model.TableRegistry, pages []model.Page, totalPages int) (*model.ReferenceTarget, error) {
	candidates := Classify(phrase)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("phrase %q classified as no known reference pattern: %w", phrase, errs.ErrNotFound)
	}

	var lastErr error
	for _, cand := range candidates {
		target, err := r.resolveCandidate(regID, cand, tree, registry, pages, totalPages)
		if err == nil {
			target.Specificity = cand.Specificity
			return target, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("reference %q: %w", phrase, joinNotFound(lastErr))
}

func joinNotFound(err error) error {
	if err == nil {
		return errs.ErrNotFound
	}
	if errs.Is(err, errs.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%v: %w", err, errs.ErrNotFound)
}

func (r *Resolver) resolveCandidate(regID string, cand Candidate, tree model.TocTree, registry model.TableRegistry, pages []model.Page, totalPages int) (*model.ReferenceTarget, error) {
	switch cand.Target.Kind {
	case model.RefChapter:
		return resolveChapter(cand.Target.Target, tree)
	case model.RefTable:
		return resolveTable(regID, cand.Target.Target, registry)
	case model.RefAnnotation:
		return r.resolveAnnotation(regID, cand.Target.Target, pages)
	case model.RefPage:
		return resolvePage(cand.Target.Target, totalPages)
	default:
		return nil, errs.ErrValidation
	}
}

func resolveChapter(numeral string, tree model.TocTree) (*model.ReferenceTarget, error) {
	arabic, ok := chineseOrArabic(numeral)
	if !ok {
		return nil, errs.ErrNotFound
	}
	item, err := toc.ResolveSection(tree, arabic)
	if err != nil {
		return nil, err
	}
	return &model.ReferenceTarget{Kind: model.RefChapter, Target: item.Title, PageStart: item.PageStart, PageEnd: item.PageEnd}, nil
}

func resolveTable(regID, caption string, registry model.TableRegistry) (*model.ReferenceTarget, error) {
	ids := make([]string, 0, len(registry.Tables))
	for id := range registry.Tables {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		entry := registry.Tables[id]
		if strings.Contains(entry.Caption, caption) {
			return &model.ReferenceTarget{Kind: model.RefTable, Target: id, PageStart: entry.StartPage, PageEnd: entry.EndPage}, nil
		}
	}
	return nil, fmt.Errorf("table caption %q in %q: %w", caption, regID, errs.ErrNotFound)
}

func (r *Resolver) resolveAnnotation(regID, label string, pages []model.Page) (*model.ReferenceTarget, error) {
	if r.Annotations == nil {
		return nil, errs.ErrNotFound
	}
	ann, pageNum, err := r.Annotations.Lookup(regID, label, 0)
	if err != nil {
		return nil, err
	}
	return &model.ReferenceTarget{Kind: model.RefAnnotation, Target: ann.Label, PageStart: pageNum, PageEnd: pageNum}, nil
}

func resolvePage(numeral string, totalPages int) (*model.ReferenceTarget, error) {
	n, err := strconv.Atoi(numeral)
	if err != nil || n < 1 || n > totalPages {
		return nil, errs.ErrNotFound
	}
	return &model.ReferenceTarget{Kind: model.RefPage, Target: numeral, PageStart: n, PageEnd: n}, nil
}

// chineseOrArabic normalizes a chapter numeral (Arabic or Chinese) to its
// Arabic string form for matching against TocItem.SectionNumber.
func chineseOrArabic(s string) (string, bool) {
	if _, err := strconv.Atoi(s); err == nil {
		return s, true
	}
	return chineseToArabicString(s)
}

func chineseToArabicString(s string) (string, bool) {
	digitValue := map[rune]int{'零': 0, '一': 1, '二': 2, '三': 3, '四': 4, '五': 5, '六': 6, '七': 7, '八': 8, '九': 9}
	unitValue := map[rune]int{'十': 10, '百': 100, '千': 1000}
	total, pending := 0, 0
	for _, r := range s {
		if d, ok := digitValue[r]; ok {
			pending = d
			continue
		}
		if u, ok := unitValue[r]; ok {
			if pending == 0 {
				pending = 1
			}
			total += pending * u
			pending = 0
			continue
		}
		return "", false
	}
	total += pending
	return strconv.Itoa(total), true
}
