package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestPadOrTruncMeasuresVisibleCells(t *testing.T) {
	styled := "\x1b[1;31mserver error\x1b[0m"

	padded := padOrTrunc(styled, 20)
	if w := lipgloss.Width(padded); w != 20 {
		t.Errorf("padded width = %d, want 20", w)
	}
	if !strings.Contains(padded, "server error") {
		t.Errorf("padded = %q, styled text lost", padded)
	}

	trunc := padOrTrunc(styled, 6)
	if w := lipgloss.Width(trunc); w != 6 {
		t.Errorf("truncated width = %d, want 6", w)
	}

	// Plain text still pads and truncates exactly.
	if got := padOrTrunc("abc", 5); got != "abc  " {
		t.Errorf("padOrTrunc(abc, 5) = %q", got)
	}
	if got := padOrTrunc("abcdef", 4); got != "abcd" {
		t.Errorf("padOrTrunc(abcdef, 4) = %q", got)
	}
}
