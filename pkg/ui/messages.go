package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/freepare/freepare/pkg/metrics"
	"github.com/freepare/freepare/pkg/model"
	"github.com/freepare/freepare/pkg/navigator"
	"github.com/freepare/freepare/pkg/store"
	"github.com/freepare/freepare/pkg/watcher"
)

// ExamSource fetches the exam behind a leaf. *api.Client implements it.
type ExamSource interface {
	Exam(ctx context.Context, examID string) (*model.Exam, error)
}

// FileChangedMsg is sent when the watched entities file changes.
type FileChangedMsg struct{}

// treeLoadedMsg carries a tree fetch result back to the UI goroutine.
type treeLoadedMsg struct {
	res    store.TreeResult
	reload bool
}

// completedLoadedMsg carries a completed-set fetch result.
type completedLoadedMsg struct {
	res store.CompletedResult
}

// examLoadedMsg carries the exam for a launched leaf. seq ties it to the
// launch that asked for it.
type examLoadedMsg struct {
	seq    uint64
	launch navigator.Launch
	exam   *model.Exam
	err    error
}

// statusClearMsg clears the status line if it is still the one with seq.
type statusClearMsg struct {
	seq uint64
}

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

func fetchTreeCmd(ctx context.Context, s *store.TreeStore, gen uint64, reload bool) tea.Cmd {
	return func() tea.Msg {
		return treeLoadedMsg{res: s.Fetch(ctx, gen), reload: reload}
	}
}

func fetchCompletedCmd(ctx context.Context, s *store.CompletedStore, gen uint64) tea.Cmd {
	return func() tea.Msg {
		return completedLoadedMsg{res: s.Fetch(ctx, gen)}
	}
}

func fetchExamCmd(ctx context.Context, src ExamSource, seq uint64, l navigator.Launch) tea.Cmd {
	return func() tea.Msg {
		defer metrics.Timer(metrics.ExamLoad)()
		exam, err := src.Exam(ctx, l.ExamID)
		return examLoadedMsg{seq: seq, launch: l, exam: exam, err: err}
	}
}

func clearStatusCmd(seq uint64, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return statusClearMsg{seq: seq}
	})
}
