package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/freepare/freepare/pkg/model"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"History", 10, "History"},
		{"Ancient History", 8, "Ancient…"},
		{"इतिहास और संस्कृति", 6, ""},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.width)
		if tt.want != "" && got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
		if w := runewidth.StringWidth(got); w > tt.width {
			t.Errorf("truncate(%q, %d) is %d cells wide", tt.in, tt.width, w)
		}
	}
	if got := truncateRunesHelper("abcdef", 2, "..."); got != ".." {
		t.Errorf("oversized suffix should be clipped, got %q", got)
	}
}

func TestPadRightUsesCells(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("日本", 5); runewidth.StringWidth(got) != 5 {
		t.Errorf("wide runes should count as two cells, got %q", got)
	}
	if got := padRight("long", 2); got != "long" {
		t.Errorf("padRight should not cut, got %q", got)
	}
}

func TestWrapWords(t *testing.T) {
	lines := wrapWords("Indus valley to the Mauryas and beyond", 12)
	for _, l := range lines {
		if runewidth.StringWidth(l) > 12 {
			t.Errorf("line %q is wider than 12", l)
		}
	}
	if strings.Join(lines, " ") != "Indus valley to the Mauryas and beyond" {
		t.Errorf("wrap lost words: %v", lines)
	}
	if got := wrapWords("Supercalifragilistic", 5); len(got) != 1 || got[0] != "Supe…" {
		t.Errorf("long word should be truncated, got %v", got)
	}
	if wrapWords("anything", 0) != nil {
		t.Error("zero width wraps to nothing")
	}
}

func TestFormatTimeRel(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Time{}, "never"},
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-50 * time.Hour), "2d ago"},
	}
	for _, tt := range tests {
		if got := FormatTimeRel(tt.at, now); got != tt.want {
			t.Errorf("FormatTimeRel(%v) = %q, want %q", tt.at, got, tt.want)
		}
	}
}

func TestFormatReloadDuration(t *testing.T) {
	if got := formatReloadDuration(500 * time.Microsecond); got != "<1ms" {
		t.Errorf("got %q", got)
	}
	if got := formatReloadDuration(42 * time.Millisecond); got != "42ms" {
		t.Errorf("got %q", got)
	}
	if got := formatReloadDuration(1500 * time.Millisecond); got != "1.5s" {
		t.Errorf("got %q", got)
	}
}

func TestRenderProgressBar(t *testing.T) {
	theme := newTestTheme()
	tests := []struct {
		percent int
		filled  int
		label   string
	}{
		{0, 0, "  0%"},
		{1, 1, "  1%"},
		{50, 5, " 50%"},
		{150, 10, "100%"},
	}
	for _, tt := range tests {
		out := stripANSI(RenderProgressBar(tt.percent, 10, theme))
		if got := strings.Count(out, "█"); got != tt.filled {
			t.Errorf("percent %d: %d filled cells, want %d", tt.percent, got, tt.filled)
		}
		if !strings.HasSuffix(out, tt.label) {
			t.Errorf("percent %d: %q should end with %q", tt.percent, out, tt.label)
		}
	}
	if got := RenderProgressBar(30, 0, theme); got != "30%" {
		t.Errorf("zero width renders the label only, got %q", got)
	}
}

func TestThemeKinds(t *testing.T) {
	theme := newTestTheme()
	for kind, letter := range map[model.Kind]string{
		model.KindExam: "E", model.KindSubject: "S", model.KindTopic: "T",
		model.KindPaper: "P", model.KindContent: "C", model.Kind("other"): "·",
	} {
		got, _ := theme.KindIcon(kind)
		if got != letter {
			t.Errorf("KindIcon(%s) = %q, want %q", kind, got, letter)
		}
		if stripANSI(RenderKindBadge(kind, theme)) != letter {
			t.Errorf("badge for %s should be %q", kind, letter)
		}
	}
	if theme.KindColor(model.KindPaper) != theme.Paper {
		t.Error("paper color mismatch")
	}
}

func TestThemeForForcesBackground(t *testing.T) {
	r := lipgloss.NewRenderer(nil)
	ThemeFor("light", r)
	if r.HasDarkBackground() {
		t.Error("light theme should force a light background")
	}
	ThemeFor("dark", r)
	if !r.HasDarkBackground() {
		t.Error("dark theme should force a dark background")
	}
}
