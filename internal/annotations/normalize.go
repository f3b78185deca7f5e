// Package annotations resolves annotation labels within a regulation.
// Normalization is implemented as a pure function over a data table
// rather than inline logic, so the circled-digit/Chinese-numeral
// vocabulary can be extended by editing the table below, not the
// resolver.
package annotations

import "strings"

// circledDigits maps ASCII digit strings to their circled-digit
// equivalents for N in 1..20, the numbering observed in this corpus
// (注1 ≡ 注① ≡ 注一).
var circledDigits = map[string]string{
	"1": "①", "2": "②", "3": "③", "4": "④", "5": "⑤",
	"6": "⑥", "7": "⑦", "8": "⑧", "9": "⑨", "10": "⑩",
	"11": "⑪", "12": "⑫", "13": "⑬", "14": "⑭", "15": "⑮",
	"16": "⑯", "17": "⑰", "18": "⑱", "19": "⑲", "20": "⑳",
}

// chineseDigits maps ASCII digit strings to their Chinese numeral
// equivalents for the same range, covering the 方案一/方案1 style of
// label alongside the circled forms.
var chineseDigits = map[string]string{
	"1": "一", "2": "二", "3": "三", "4": "四", "5": "五",
	"6": "六", "7": "七", "8": "八", "9": "九", "10": "十",
	"11": "十一", "12": "十二", "13": "十三", "14": "十四", "15": "十五",
	"16": "十六", "17": "十七", "18": "十八", "19": "十九", "20": "二十",
}

// circledToDigit and chineseToDigit invert the tables above so an
// arbitrary stored label can be normalized back to its ASCII-digit form.
var circledToDigit = invert(circledDigits)
var chineseToDigit = invert(chineseDigits)

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// Normalize reduces an annotation label to a canonical form: the leading
// non-digit prefix (e.g. "注", "方案") unchanged, and the trailing digit
// run converted to its ASCII form regardless of whether it was written as
// an ASCII digit, a circled digit, or a Chinese numeral. Labels with no
// recognizable digit suffix are returned unchanged (e.g. "方案A").
func Normalize(label string) string {
	prefix, suffix := splitTrailingNumeral(label)
	if suffix == "" {
		return label
	}
	if digit, ok := circledToDigit[suffix]; ok {
		return prefix + digit
	}
	if digit, ok := chineseToDigit[suffix]; ok {
		return prefix + digit
	}
	return prefix + suffix
}

// Equal reports whether two labels refer to the same annotation under the
// normalization rule: exact match, or equal after Normalize.
func Equal(a, b string) bool {
	if a == b {
		return true
	}
	return Normalize(a) == Normalize(b)
}

// splitTrailingNumeral separates a label into its non-numeral prefix and
// its trailing numeral run (ASCII digits, circled digits, or a run of
// Chinese numeral characters). Returns an empty suffix if no trailing
// numeral is found.
func splitTrailingNumeral(label string) (prefix, suffix string) {
	runes := []rune(label)
	end := len(runes)
	start := end
	for start > 0 && isNumeralRune(runes[start-1]) {
		start--
	}
	if start == end {
		return label, ""
	}
	return string(runes[:start]), string(runes[start:end])
}

func isNumeralRune(r rune) bool {
	if r >= '0' && r <= '9' {
		return true
	}
	if _, ok := circledToDigit[string(r)]; ok {
		return true
	}
	if strings.ContainsRune("一二三四五六七八九十", r) {
		return true
	}
	return false
}
