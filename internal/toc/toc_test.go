package toc

import (
	"testing"

	"github.com/jackzampolin/regcore/internal/model"
)

func fixturePages() []model.Page {
	return []model.Page{
		{PageNum: 1, ChapterPath: []string{}},
		{PageNum: 80, ChapterPath: []string{"第六章 电压质量"}},
		{PageNum: 81, ChapterPath: []string{"第六章 电压质量", "6.1 一般规定"}},
		{PageNum: 82, ChapterPath: []string{"第六章 电压质量", "6.1 一般规定"}},
		{PageNum: 83, ChapterPath: []string{"第六章 电压质量", "6.2 电压等级"}},
		{PageNum: 95, ChapterPath: []string{"第六章 电压质量"}},
		{PageNum: 96, ChapterPath: []string{"第七章 附则"}},
	}
}

func TestBuildRangesContainChildren(t *testing.T) {
	tree := Build(fixturePages())
	if len(tree.Nodes) != 3 {
		t.Fatalf("len(Nodes) = %d, want 3 ((untitled), 第六章, 第七章)", len(tree.Nodes))
	}

	ch6 := tree.Nodes[1]
	if ch6.Title != "第六章 电压质量" {
		t.Fatalf("Nodes[1].Title = %q", ch6.Title)
	}
	if ch6.PageStart != 80 || ch6.PageEnd != 95 {
		t.Errorf("第六章 range = [%d,%d], want [80,95]", ch6.PageStart, ch6.PageEnd)
	}
	if len(ch6.Children) != 2 {
		t.Fatalf("len(第六章.Children) = %d, want 2", len(ch6.Children))
	}
	for _, child := range ch6.Children {
		if child.PageStart < ch6.PageStart || child.PageEnd > ch6.PageEnd {
			t.Errorf("child %q range [%d,%d] escapes parent range [%d,%d]",
				child.Title, child.PageStart, child.PageEnd, ch6.PageStart, ch6.PageEnd)
		}
	}
}

func TestBuildUntitledFallback(t *testing.T) {
	tree := Build(fixturePages())
	if tree.Nodes[0].Title != untitledNode {
		t.Errorf("Nodes[0].Title = %q, want %q", tree.Nodes[0].Title, untitledNode)
	}
}

func TestTruncate(t *testing.T) {
	tree := Build(fixturePages())
	truncated := Truncate(tree, 1)
	for _, n := range truncated.Nodes {
		if len(n.Children) != 0 {
			t.Errorf("node %q kept children after Truncate(1)", n.Title)
		}
	}

	full := Truncate(tree, 0)
	var sawChildren bool
	for _, n := range full.Nodes {
		if len(n.Children) > 0 {
			sawChildren = true
		}
	}
	if !sawChildren {
		t.Error("Truncate(0) should return the tree unchanged")
	}
}

func TestFlatten(t *testing.T) {
	tree := Build(fixturePages())
	flat := Flatten(tree)
	// 3 roots + 2 children of 第六章
	if len(flat) != 5 {
		t.Fatalf("len(flat) = %d, want 5", len(flat))
	}
	var ch6Idx int
	for i, n := range flat {
		if n.Title == "第六章 电压质量" {
			ch6Idx = i
		}
	}
	for _, n := range flat {
		if n.ParentIndex == ch6Idx && n.Title != "6.1 一般规定" && n.Title != "6.2 电压等级" {
			t.Errorf("unexpected child of 第六章: %q", n.Title)
		}
	}
}

func TestResolveSection(t *testing.T) {
	tree := Build(fixturePages())

	item, err := ResolveSection(tree, "6")
	if err != nil {
		t.Fatalf("ResolveSection(6): %v", err)
	}
	if item.PageStart != 80 || item.PageEnd != 95 {
		t.Errorf("ResolveSection(6) range = [%d,%d], want [80,95]", item.PageStart, item.PageEnd)
	}

	item, err = ResolveSection(tree, "6.1")
	if err != nil {
		t.Fatalf("ResolveSection(6.1): %v", err)
	}
	if item.PageStart != 81 || item.PageEnd != 82 {
		t.Errorf("ResolveSection(6.1) range = [%d,%d], want [81,82]", item.PageStart, item.PageEnd)
	}

	if _, err := ResolveSection(tree, "99"); err == nil {
		t.Error("expected not-found error for section 99")
	}
}

func TestParseSectionNumberArabicAndChinese(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"6.1.2 计算方法", "6.1.2"},
		{"第六章 电压质量", "6"},
		{"第十二章 附录", "12"},
		{"第二十三节 特殊情况", "23"},
		{"概述", ""},
	}
	for _, tt := range tests {
		if got := parseSectionNumber(tt.title); got != tt.want {
			t.Errorf("parseSectionNumber(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestChineseNumeralToArabic(t *testing.T) {
	tests := []struct {
		s    string
		want int
	}{
		{"六", 6},
		{"十", 10},
		{"十二", 12},
		{"二十三", 23},
		{"一百二十", 120},
	}
	for _, tt := range tests {
		got, ok := chineseNumeralToArabic(tt.s)
		if !ok {
			t.Errorf("chineseNumeralToArabic(%q): ok = false", tt.s)
			continue
		}
		if got != tt.want {
			t.Errorf("chineseNumeralToArabic(%q) = %d, want %d", tt.s, got, tt.want)
		}
	}
}

func TestChineseNumeralToArabicRejectsGarbage(t *testing.T) {
	if _, ok := chineseNumeralToArabic("abc"); ok {
		t.Error("expected ok = false for non-numeral input")
	}
}
