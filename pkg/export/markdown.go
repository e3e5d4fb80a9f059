package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/freepare/freepare/pkg/model"
	"github.com/freepare/freepare/pkg/progress"
)

// GenerateMarkdown renders a progress report for the forest: a summary table,
// one section per root, and a nested list of every entity below it.
func GenerateMarkdown(forest []*model.Entity, done model.CompletedSet, cfg Config) string {
	var sb strings.Builder

	exp := &SQLiteExporter{Forest: forest, Completed: done, Config: cfg}
	rows := exp.Flatten()
	meta := exp.Meta(rows)

	title := cfg.Title
	if title == "" {
		title = DefaultConfig().Title
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(title)))
	sb.WriteString(fmt.Sprintf("*Generated: %s*\n\n", meta.GeneratedAt.Format(time.RFC1123)))

	overall := progress.Forest(forest, done)
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| **Tests completed** | %d / %d |\n", overall.CompletedLeaves, overall.TotalLeaves))
	sb.WriteString(fmt.Sprintf("| **Progress** | %d%% |\n", overall.Percent))
	sb.WriteString(fmt.Sprintf("| Top-level entities | %d |\n", len(forest)))
	sb.WriteString(fmt.Sprintf("| Entities | %d |\n\n", meta.EntityCount))

	if len(rows) == 0 {
		sb.WriteString("No items found.\n")
		return sb.String()
	}

	for _, r := range rows {
		if r.Depth == 0 {
			sb.WriteString(fmt.Sprintf("## %s %s\n\n", kindIcon(r.Kind), escapeMarkdown(r.Name)))
			sb.WriteString(fmt.Sprintf("%s · %s\n\n", r.Kind.Label(), statsText(r)))
			continue
		}
		indent := strings.Repeat("  ", r.Depth-1)
		sb.WriteString(fmt.Sprintf("%s- %s %s (%s)\n", indent, kindIcon(r.Kind), escapeMarkdown(r.Name), statsText(r)))
	}
	sb.WriteString("\n")

	return sb.String()
}

// SaveMarkdown writes the report to path.
func SaveMarkdown(path string, forest []*model.Entity, done model.CompletedSet, cfg Config) error {
	if err := os.WriteFile(path, []byte(GenerateMarkdown(forest, done, cfg)), 0644); err != nil {
		return fmt.Errorf("write markdown report: %w", err)
	}
	return nil
}

func statsText(r ExportEntity) string {
	if r.Leaf {
		if r.CompletedLeaves > 0 {
			return "completed"
		}
		return "not attempted"
	}
	return fmt.Sprintf("%d/%d tests, %d%%", r.CompletedLeaves, r.TotalLeaves, r.Percent)
}

func kindIcon(k model.Kind) string {
	switch k {
	case model.KindExam:
		return "🎓"
	case model.KindSubject:
		return "📚"
	case model.KindTopic:
		return "📖"
	case model.KindPaper:
		return "📝"
	default:
		return "📄"
	}
}

var markdownEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"*", "\\*",
	"_", "\\_",
	"`", "\\`",
	"[", "\\[",
	"]", "\\]",
	"\n", " ",
	"\r", "",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
