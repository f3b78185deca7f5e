// Package toc builds the chapter forest from each page's chapter_path,
// driven entirely from already-ingested path sequences rather than any
// heading re-detection. Section numbers are parsed from heading titles
// with both Chinese ordinal (第六章) and Arabic dotted (6.1.2) grammars.
package toc

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jackzampolin/regcore/internal/errs"
	"github.com/jackzampolin/regcore/internal/model"
)

const untitledNode = "(untitled)"

// Build derives the chapter forest for a regulation from its pages'
// chapter_path sequences. A path [A, B, C] on pages 10-12 produces nodes
// at levels 1, 2, 3 whose ranges cover those pages; adjacent pages
// sharing the same path prefix merge into one node's range. Pages with an
// empty chapter_path attach to a synthetic "(untitled)" level-1 node.
func Build(pages []model.Page) model.TocTree {
	root := &model.TocItem{Level: 0}
	for _, page := range pages {
		path := page.ChapterPath
		if len(path) == 0 {
			path = []string{untitledNode}
		}
		insert(root, path, page.PageNum)
	}
	sortTree(root)
	return model.TocTree{Nodes: root.Children}
}

// insert walks/creates the node chain for path, extending or creating the
// leaf's page range to cover pageNum; every ancestor's range is extended
// to contain it too.
func insert(root *model.TocItem, path []string, pageNum int) {
	cur := root
	for level, title := range path {
		var child *model.TocItem
		for _, c := range cur.Children {
			if c.Title == title {
				child = c
				break
			}
		}
		if child == nil {
			child = &model.TocItem{Title: title, Level: level + 1, PageStart: pageNum, PageEnd: pageNum, SectionNumber: parseSectionNumber(title)}
			cur.Children = append(cur.Children, child)
		}
		if pageNum < child.PageStart {
			child.PageStart = pageNum
		}
		if pageNum > child.PageEnd {
			child.PageEnd = pageNum
		}
		cur = child
	}
}

func sortTree(node *model.TocItem) {
	sortByStart(node.Children)
	for _, c := range node.Children {
		sortTree(c)
	}
}

func sortByStart(items []*model.TocItem) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && items[j-1].PageStart > items[j].PageStart; j-- {
			items[j-1], items[j] = items[j], items[j-1]
		}
	}
}

// Truncate returns a copy of tree restricted to maxLevel levels of depth.
// maxLevel <= 0 means no truncation.
func Truncate(tree model.TocTree, maxLevel int) model.TocTree {
	if maxLevel <= 0 {
		return tree
	}
	out := model.TocTree{Nodes: make([]*model.TocItem, 0, len(tree.Nodes))}
	for _, n := range tree.Nodes {
		out.Nodes = append(out.Nodes, truncateItem(n, maxLevel))
	}
	return out
}

func truncateItem(item *model.TocItem, remaining int) *model.TocItem {
	cp := *item
	if remaining <= 1 || len(item.Children) == 0 {
		cp.Children = nil
		return &cp
	}
	cp.Children = make([]*model.TocItem, 0, len(item.Children))
	for _, c := range item.Children {
		cp.Children = append(cp.Children, truncateItem(c, remaining-1))
	}
	return &cp
}

// Flatten produces the flat parent-pointer view of the chapter structure
// via a pre-order walk.
func Flatten(tree model.TocTree) []model.ChapterNode {
	var out []model.ChapterNode
	for _, n := range tree.Nodes {
		flattenInto(n, -1, &out)
	}
	return out
}

func flattenInto(item *model.TocItem, parentIdx int, out *[]model.ChapterNode) {
	idx := len(*out)
	*out = append(*out, model.ChapterNode{
		Title:         item.Title,
		Level:         item.Level,
		PageStart:     item.PageStart,
		PageEnd:       item.PageEnd,
		SectionNumber: item.SectionNumber,
		ParentIndex:   parentIdx,
	})
	for _, c := range item.Children {
		flattenInto(c, idx, out)
	}
}

// PageChapterPath returns the chapter_path recorded for a page, mapping
// an empty path to the synthetic untitled node.
func PageChapterPath(page model.Page) []string {
	if len(page.ChapterPath) == 0 {
		return []string{untitledNode}
	}
	return page.ChapterPath
}

// ResolveSection finds the TocItem whose section number matches, searching
// depth-first in document order.
func ResolveSection(tree model.TocTree, sectionNumber string) (*model.TocItem, error) {
	sectionNumber = strings.TrimSpace(sectionNumber)
	for _, n := range tree.Nodes {
		if found := findSection(n, sectionNumber); found != nil {
			return found, nil
		}
	}
	return nil, errs.ErrNotFound
}

func findSection(item *model.TocItem, sectionNumber string) *model.TocItem {
	if item.SectionNumber == sectionNumber {
		return item
	}
	for _, c := range item.Children {
		if found := findSection(c, sectionNumber); found != nil {
			return found
		}
	}
	return nil
}

var (
	arabicSection  = regexp.MustCompile(`^\s*(\d+(?:\.\d+)*)`)
	chineseChapter = regexp.MustCompile(`^第([一二三四五六七八九十百千0-9]+)章`)
	chineseSection = regexp.MustCompile(`^第([一二三四五六七八九十百千0-9]+)节`)
)

// parseSectionNumber extracts a section number from a heading title where
// parseable: Arabic dotted numerals like "6.1.2", or Chinese
// ordinal chapter/section markers like "第六章"/"第六节", normalized to an
// Arabic numeral string ("6") so resolve_section can match either a raw
// Arabic argument or the canonical form. Unparseable titles return "".
func parseSectionNumber(title string) string {
	title = strings.TrimSpace(title)
	if m := arabicSection.FindStringSubmatch(title); m != nil {
		return m[1]
	}
	if m := chineseChapter.FindStringSubmatch(title); m != nil {
		if n, ok := chineseNumeralToArabic(m[1]); ok {
			return strconv.Itoa(n)
		}
	}
	if m := chineseSection.FindStringSubmatch(title); m != nil {
		if n, ok := chineseNumeralToArabic(m[1]); ok {
			return strconv.Itoa(n)
		}
	}
	return ""
}

var chineseDigitValue = map[rune]int{
	'零': 0, '一': 1, '二': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

var chineseUnitValue = map[rune]int{'十': 10, '百': 100, '千': 1000}

// chineseNumeralToArabic converts a Chinese ordinal numeral (covering the
// range this corpus's chapter counts realistically span, one through a
// few thousand) to its Arabic integer value. "十" alone is 10; "十二" is 12;
// "二十三" is 23; "一百二十" is 120.
func chineseNumeralToArabic(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}

	total, pending := 0, 0
	for _, r := range s {
		if d, ok := chineseDigitValue[r]; ok {
			pending = d
			continue
		}
		if u, ok := chineseUnitValue[r]; ok {
			if pending == 0 {
				pending = 1
			}
			total += pending * u
			pending = 0
			continue
		}
		return 0, false
	}
	total += pending
	return total, true
}
