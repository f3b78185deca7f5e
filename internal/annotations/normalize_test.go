package annotations

import (
	"strconv"
	"testing"
)

func TestNormalizeRoundTrip(t *testing.T) {
	// for N in 1..20, "注N" (ASCII) must normalize equal to "注①" (circled
	// digit) and "注一" (Chinese numeral).
	for n := 1; n <= 20; n++ {
		ns := strconv.Itoa(n)
		ascii := Normalize("注" + ns)
		circled := Normalize("注" + circledDigits[ns])
		chinese := Normalize("注" + chineseDigits[ns])
		if ascii != circled {
			t.Errorf("n=%d: Normalize(ASCII)=%q != Normalize(circled)=%q", n, ascii, circled)
		}
		if ascii != chinese {
			t.Errorf("n=%d: Normalize(ASCII)=%q != Normalize(chinese)=%q", n, ascii, chinese)
		}
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"注1", "注①", true},
		{"注1", "注1", true},
		{"注①", "注一", true},
		{"注2", "注①", false},
		{"方案A", "方案A", true},
		{"方案A", "方案B", false},
	}
	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("Equal(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSplitTrailingNumeral(t *testing.T) {
	tests := []struct {
		label      string
		wantPrefix string
		wantSuffix string
	}{
		{"注1", "注", "1"},
		{"注①", "注", "①"},
		{"注一", "注", "一"},
		{"方案A", "方案A", ""},
	}
	for _, tt := range tests {
		prefix, suffix := splitTrailingNumeral(tt.label)
		if prefix != tt.wantPrefix || suffix != tt.wantSuffix {
			t.Errorf("splitTrailingNumeral(%q) = (%q, %q), want (%q, %q)", tt.label, prefix, suffix, tt.wantPrefix, tt.wantSuffix)
		}
	}
}
