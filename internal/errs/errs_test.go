package errs

import (
	"fmt"
	"testing"
)

func TestWrappedSentinelsMatch(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"validation", fmt.Errorf("page_num %d: %w", -1, ErrValidation), ErrValidation},
		{"not found", fmt.Errorf("reg_id %q: %w", "gb-1", ErrNotFound), ErrNotFound},
		{"integrity", fmt.Errorf("table registry: %w", ErrIntegrity), ErrIntegrity},
		{"index missing", fmt.Errorf("lexical index: %w", ErrIndexMissing), ErrIndexMissing},
		{"external", fmt.Errorf("embed(): %w", ErrExternal), ErrExternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !Is(tt.err, tt.want) {
				t.Errorf("Is(%v, %v) = false, want true", tt.err, tt.want)
			}
		})
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	all := []error{ErrValidation, ErrNotFound, ErrIntegrity, ErrIndexMissing, ErrExternal}
	for i, a := range all {
		for j, b := range all {
			if i == j {
				continue
			}
			if Is(a, b) {
				t.Errorf("%v unexpectedly matches %v", a, b)
			}
		}
	}
}
