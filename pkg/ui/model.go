// Package ui is the terminal front end: a card browser over the content
// hierarchy, an entity detail pane and the quiz view.
package ui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/freepare/freepare/internal/datasource"
	"github.com/freepare/freepare/pkg/hierarchy"
	"github.com/freepare/freepare/pkg/logging"
	"github.com/freepare/freepare/pkg/metrics"
	"github.com/freepare/freepare/pkg/model"
	"github.com/freepare/freepare/pkg/navigator"
	"github.com/freepare/freepare/pkg/quiz"
	"github.com/freepare/freepare/pkg/session"
	"github.com/freepare/freepare/pkg/store"
	"github.com/freepare/freepare/pkg/watcher"
)

// focus identifies which pane receives keys.
type focus int

const (
	focusCards focus = iota
	focusSearch
	focusDetail
	focusQuiz
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	statusTTL     = 5 * time.Second
	singleColumn  = 96

	emptyLevelText = "No items found for this level."
)

// Model is the root bubbletea model.
type Model struct {
	ctx      context.Context
	h        *hierarchy.Hierarchy
	exams    ExamSource
	watcher  *watcher.Watcher
	log      *logging.Logger
	theme    Theme
	md       *MarkdownRenderer
	now      func() time.Time
	copyText func(string) error

	width    int
	height   int
	focused  focus
	selected int

	search        textinput.Model
	searchVisible bool

	spinner spinner.Model
	detail  viewport.Model

	quizView    QuizModel
	quizOpen    bool
	examSeq     uint64
	examLoading bool
	pendingLeaf *model.Entity

	startPath   []string
	startLaunch *navigator.Launch
	prevForest  []*model.Entity

	sessionExpired bool

	statusMsg     string
	statusIsError bool
	statusSeq     uint64
}

// Option configures a Model.
type Option func(*Model)

// WithExamSource enables launching tests. Without one, leaves only report
// their route.
func WithExamSource(src ExamSource) Option {
	return func(m *Model) { m.exams = src }
}

// WithWatcher reloads the hierarchy whenever w reports a change.
func WithWatcher(w *watcher.Watcher) Option {
	return func(m *Model) { m.watcher = w }
}

// WithLogger sets the event logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// WithTheme overrides the theme.
func WithTheme(t Theme) Option {
	return func(m *Model) { m.theme = t }
}

// WithMarkdownStyle selects the glamour style ("dark", "light", "notty" or
// auto).
func WithMarkdownStyle(style string) Option {
	return func(m *Model) { m.md = NewMarkdownRenderer(style) }
}

// WithSearchVisible sets whether the search box starts shown.
func WithSearchVisible(visible bool) Option {
	return func(m *Model) { m.searchVisible = visible }
}

// WithSession shows the expired-session notice for an expired token.
func WithSession(info session.Info) Option {
	return func(m *Model) { m.sessionExpired = info.Expired }
}

// WithStartPath descends through segments (ids or names) after the first
// successful load.
func WithStartPath(segments []string) Option {
	return func(m *Model) { m.startPath = segments }
}

// WithStartLaunch opens the quiz for l on start.
func WithStartLaunch(l navigator.Launch) Option {
	return func(m *Model) { m.startLaunch = &l }
}

// WithContext sets the context used for background fetches.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// WithClipboard overrides the clipboard writer, for tests.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) { m.copyText = write }
}

// NewModel creates the browser over h.
func NewModel(h *hierarchy.Hierarchy, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "search this level..."
	ti.Prompt = "/ "
	ti.CharLimit = 80
	ti.Width = 40

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := Model{
		ctx:           context.Background(),
		h:             h,
		log:           logging.Nop(),
		theme:         DefaultTheme(lipgloss.DefaultRenderer()),
		md:            NewMarkdownRenderer("auto"),
		now:           time.Now,
		copyText:      clipboard.WriteAll,
		width:         defaultWidth,
		height:        defaultHeight,
		search:        ti,
		searchVisible: true,
		spinner:       sp,
		detail:        viewport.New(defaultWidth-4, defaultHeight-6),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.startLaunch != nil && m.exams != nil {
		m.examSeq = 1
		m.examLoading = true
		m.focused = focusQuiz
	}
	m.spinner.Style = m.theme.Renderer.NewStyle().Foreground(ColorInfo).Bold(true)
	return m
}

// Init starts the first load of both stores.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadCmd(false), m.spinner.Tick}
	if m.watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.watcher))
	}
	if m.examLoading && m.startLaunch != nil {
		cmds = append(cmds, fetchExamCmd(m.ctx, m.exams, m.examSeq, *m.startLaunch))
	}
	return tea.Batch(cmds...)
}

// loadCmd begins a load of both stores. Begin runs here, on the UI
// goroutine; the fetches run as commands.
func (m Model) loadCmd(reload bool) tea.Cmd {
	treeGen := m.h.Tree.Begin()
	doneGen := m.h.Completed.Begin()
	return tea.Batch(
		fetchTreeCmd(m.ctx, m.h.Tree, treeGen, reload),
		fetchCompletedCmd(m.ctx, m.h.Completed, doneGen),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.detail.Width = max(m.width-4, 10)
		m.detail.Height = max(m.height-6, 3)
		m.search.Width = max(m.width-8, 10)
		if m.quizOpen {
			m.quizView.SetSize(m.width, m.height-1)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case statusClearMsg:
		if msg.seq == m.statusSeq {
			m.statusMsg = ""
			m.statusIsError = false
		}
		return m, nil

	case treeLoadedMsg:
		return m.handleTreeLoaded(msg)

	case completedLoadedMsg:
		if m.h.ApplyCompleted(msg.res) {
			var pf *store.ProgressFetchFailure
			if errors.As(msg.res.Err, &pf) && (pf.Status == http.StatusUnauthorized || pf.Status == http.StatusForbidden) {
				m.sessionExpired = true
			}
		}
		return m, nil

	case examLoadedMsg:
		return m.handleExamLoaded(msg)

	case FileChangedMsg:
		m.prevForest = m.h.Tree.Forest()
		cmds = append(cmds, m.setStatus("Reloading...", false), m.loadCmd(true), m.spinner.Tick)
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher))
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		switch m.focused {
		case focusSearch:
			return m.handleSearchKeys(msg)
		case focusDetail:
			return m.handleDetailKeys(msg)
		case focusQuiz:
			return m.handleQuizKeys(msg)
		default:
			return m.handleCardKeys(msg)
		}
	}

	if m.focused == focusQuiz && m.quizOpen {
		var cmd tea.Cmd
		m.quizView, cmd = m.quizView.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) loading() bool {
	return m.h.Tree.Loading() || m.examLoading
}

func (m Model) handleTreeLoaded(msg treeLoadedMsg) (tea.Model, tea.Cmd) {
	replaced := m.h.ApplyTree(msg.res)
	if msg.res.Generation != m.h.Tree.Generation() {
		return m, nil
	}
	if msg.res.Err != nil {
		m.log.Warn("ui_tree_load_failed", "error", msg.res.Err.Error())
		return m, m.setStatus(msg.res.Err.Error()+" (press r to retry)", true)
	}
	if !replaced {
		return m, nil
	}

	m.selected = 0
	m.search.SetValue("")
	if m.focused == focusDetail {
		m.focused = focusCards
	}

	var cmd tea.Cmd
	switch {
	case msg.reload:
		diff := datasource.Diff(m.prevForest, m.h.Tree.Forest())
		m.prevForest = nil
		cmd = m.setStatus(fmt.Sprintf("Reloaded in %s: %s", formatReloadDuration(msg.res.Duration), diff.Summary()), false)
	case len(m.startPath) > 0:
		segments := m.startPath
		m.startPath = nil
		if err := m.h.Navigate(segments); err != nil {
			cmd = m.setStatus(err.Error(), true)
		}
	case len(msg.res.Issues) > 0:
		cmd = m.setStatus(fmt.Sprintf("%d validation issues (first: %s)", len(msg.res.Issues), msg.res.Issues[0].String()), true)
	}
	if m.quizOpen && m.quizView.leaf == nil {
		m.quizView.leaf = m.findLeaf(m.quizView.Quiz().Launch())
	}
	return m, cmd
}

func (m Model) handleExamLoaded(msg examLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.examSeq {
		return m, nil
	}
	m.examLoading = false
	if msg.err != nil {
		m.log.Warn("ui_exam_load_failed", "exam_id", msg.launch.ExamID, "error", msg.err.Error())
		m.focused = focusCards
		return m, m.setStatus(fmt.Sprintf("Unable to load %s: %v", msg.launch.TestName, msg.err), true)
	}
	leaf := m.pendingLeaf
	if leaf == nil {
		leaf = m.findLeaf(msg.launch)
	}
	m.quizView = NewQuizModel(quiz.New(msg.exam, msg.launch), leaf, m.theme, m.md)
	m.quizView.SetSize(m.width, m.height-1)
	m.quizOpen = true
	m.focused = focusQuiz
	m.log.Info("ui_quiz_opened", "exam_id", msg.launch.ExamID, "questions", len(m.quizView.Quiz().Questions()))
	return m, nil
}

// findLeaf looks for the leaf a launch was built from.
func (m Model) findLeaf(l navigator.Launch) *model.Entity {
	var found *model.Entity
	var walk func(level []*model.Entity, depth int)
	walk = func(level []*model.Entity, depth int) {
		for _, e := range level {
			if found != nil || e == nil || depth > 64 {
				return
			}
			if cand, ok := navigator.LaunchFor(e); ok && cand == l {
				found = e
				return
			}
			walk(e.Children, depth+1)
		}
	}
	walk(m.h.Tree.Forest(), 0)
	return found
}

// columns returns how many cards fit side by side. Levels made only of
// tests are a single column.
func (m Model) columns() int {
	if m.h.LeafLevel() {
		return 1
	}
	return max(1, m.width/CardWidth)
}

func (m Model) cards() []hierarchy.Card {
	return m.h.Cards()
}

func (m Model) selectedCard() (hierarchy.Card, bool) {
	cards := m.cards()
	if m.selected < 0 || m.selected >= len(cards) {
		return hierarchy.Card{}, false
	}
	return cards[m.selected], true
}

func (m *Model) moveSelection(delta int) {
	n := len(m.cards())
	if n == 0 {
		m.selected = 0
		return
	}
	next := m.selected + delta
	if next < 0 {
		next = 0
	}
	if next >= n {
		next = n - 1
	}
	m.selected = next
}

func (m Model) handleCardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := m.columns()
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "down", "j":
		m.moveSelection(cols)
	case "up", "k":
		m.moveSelection(-cols)
	case "right", "l":
		m.moveSelection(1)
	case "left", "h":
		m.moveSelection(-1)
	case "home", "g":
		m.selected = 0
	case "end", "G":
		m.moveSelection(len(m.cards()))
	case "enter", " ":
		return m.openSelected()
	case "backspace", "esc", "u":
		if m.h.Back() {
			m.afterNavigate()
		}
	case "H":
		if m.h.Cursor.AscendTo(0) {
			m.afterNavigate()
		}
	case "/":
		return m.toggleSearch()
	case "tab":
		if m.searchVisible {
			m.focused = focusSearch
			return m, m.search.Focus()
		}
	case "r":
		m.prevForest = nil
		return m, tea.Batch(m.setStatus("Retrying...", false), m.loadCmd(false), m.spinner.Tick)
	case "i":
		if c, ok := m.selectedCard(); ok {
			m.detail.SetContent(m.renderDetail(c))
			m.detail.GotoTop()
			m.focused = focusDetail
		}
	case "y":
		return m, m.copySelection()
	case "v":
		return m, m.copyVideo()
	}
	return m, nil
}

func (m *Model) afterNavigate() {
	m.selected = 0
	m.search.SetValue("")
}

// toggleSearch shows the search box and focuses it, or hides it and drops
// the query.
func (m Model) toggleSearch() (tea.Model, tea.Cmd) {
	if m.searchVisible {
		m.searchVisible = false
		m.search.SetValue("")
		m.search.Blur()
		m.h.Cursor.SetQuery("")
		m.selected = 0
		m.focused = focusCards
		return m, nil
	}
	m.searchVisible = true
	m.focused = focusSearch
	return m, m.search.Focus()
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "enter", "tab", "down":
		m.search.Blur()
		m.focused = focusCards
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.h.Cursor.Query() {
		m.h.Cursor.SetQuery(m.search.Value())
		m.selected = 0
	}
	return m, cmd
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "i", "q", "backspace":
		m.focused = focusCards
		return m, nil
	case "enter":
		m.focused = focusCards
		return m.openSelected()
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m Model) handleQuizKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.examLoading {
		if msg.String() == "esc" {
			m.examLoading = false
			m.examSeq++
			m.focused = focusCards
		}
		return m, nil
	}
	if !m.quizOpen {
		m.focused = focusCards
		return m, nil
	}

	var cmd tea.Cmd
	m.quizView, cmd = m.quizView.Update(msg)

	if sub, ok := m.quizView.TakeSubmission(); ok {
		cmd = tea.Batch(cmd, m.recordSubmission(sub))
	}
	if m.quizView.IsCloseRequested() {
		m.quizOpen = false
		m.pendingLeaf = nil
		m.focused = focusCards
	}
	return m, cmd
}

// recordSubmission marks the launched leaf completed for this session.
func (m *Model) recordSubmission(sub quiz.Submission) tea.Cmd {
	m.log.Info("ui_quiz_submitted", "exam_id", sub.ExamID, "score", sub.TotalScore)
	if leaf := m.quizView.Leaf(); leaf != nil {
		m.h.Completed.Mark(leaf.Key())
	} else {
		m.h.Completed.Mark(sub.ExamID)
	}
	return m.setStatus(fmt.Sprintf("Submitted %s: %s correct", sub.TestName, sub.TotalScore), false)
}

// openSelected launches a leaf or descends into a parent.
func (m Model) openSelected() (tea.Model, tea.Cmd) {
	c, ok := m.selectedCard()
	if !ok {
		return m, nil
	}
	launch, isLeaf := m.h.Open(c.Entity)
	if !isLeaf {
		m.afterNavigate()
		return m, nil
	}
	if m.exams == nil {
		return m, m.setStatus("Tests need the API backend. Route: "+launch.Route(), true)
	}
	m.examSeq++
	m.examLoading = true
	m.pendingLeaf = c.Entity
	m.focused = focusQuiz
	m.log.Info("ui_launch", "exam_id", launch.ExamID, "route", launch.Route())
	return m, tea.Batch(fetchExamCmd(m.ctx, m.exams, m.examSeq, launch), m.spinner.Tick)
}

// copySelection copies the quiz route of a leaf, or the --path of a parent.
func (m *Model) copySelection() tea.Cmd {
	c, ok := m.selectedCard()
	if !ok {
		return m.setStatus("❌ Nothing selected", true)
	}
	text := c.Launch.Route()
	if !c.Leaf {
		segs := make([]string, 0, m.h.Cursor.Depth()+1)
		for _, e := range m.h.Cursor.Path() {
			segs = append(segs, e.Key())
		}
		text = strings.Join(append(segs, c.Entity.Key()), "/")
	}
	return m.copy(text)
}

func (m *Model) copyVideo() tea.Cmd {
	c, ok := m.selectedCard()
	if !ok || !c.Entity.HasVideo() {
		return m.setStatus("❌ No video for this item", true)
	}
	return m.copy(strings.TrimSpace(c.Entity.VideoLink))
}

func (m *Model) copy(text string) tea.Cmd {
	if err := m.copyText(text); err != nil {
		return m.setStatus(fmt.Sprintf("❌ Clipboard error: %v", err), true)
	}
	return m.setStatus("📋 Copied "+text, false)
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.statusMsg = text
	m.statusIsError = isErr
	if isErr {
		return nil
	}
	return clearStatusCmd(m.statusSeq, statusTTL)
}

// View renders the active pane.
func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()

	if m.focused == focusQuiz {
		if m.examLoading || !m.quizOpen {
			return m.renderCentered(m.spinner.View() + " Loading test...")
		}
		return m.quizView.View()
	}

	parts := []string{m.renderHeader()}
	if notice := m.renderNotices(); notice != "" {
		parts = append(parts, notice)
	}
	if m.searchVisible {
		parts = append(parts, m.renderSearch())
	}

	used := lipgloss.Height(strings.Join(parts, "\n")) + 1
	bodyHeight := max(m.height-used, 3)

	if m.focused == focusDetail {
		parts = append(parts, PanelStyle.Width(max(m.width-2, 10)).Render(m.detail.View()))
	} else {
		parts = append(parts, m.renderBody(bodyHeight))
	}
	parts = append(parts, m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderCentered(s string) string {
	return lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, s)
}

func (m Model) renderHeader() string {
	t := m.theme
	crumbs := append([]string{"Home"}, m.h.Cursor.Breadcrumb()...)
	trail := strings.Join(crumbs, " › ")

	stats := m.h.Level()
	right := fmt.Sprintf("%d/%d tests · %d%%", stats.CompletedLeaves, stats.TotalLeaves, stats.Percent)

	left := t.Header.Render("FREEPARE") + " " + t.PrimaryBold.Render(truncate(trail, max(m.width-len(right)-14, 10)))
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + t.MutedText.Render(right)
}

func (m Model) renderNotices() string {
	t := m.theme
	var lines []string
	if m.sessionExpired {
		lines = append(lines, t.Notice.Render("Session expired. Progress is not shown until you sign in again."))
	}
	if err := m.h.Tree.Err(); err != nil && m.h.Tree.Loaded() {
		lines = append(lines, t.Banner.Render(truncate(err.Error(), max(m.width-12, 10))+"  [r] Retry"))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderSearch() string {
	style := PanelStyle
	if m.focused == focusSearch {
		style = FocusedPanelStyle
	}
	return style.Width(max(m.width-2, 10)).Render(m.search.View())
}

func (m Model) renderBody(height int) string {
	t := m.theme
	tree := m.h.Tree

	if !tree.Loaded() {
		if err := tree.Err(); err != nil && !tree.Loading() {
			msg := lipgloss.JoinVertical(lipgloss.Center,
				t.Banner.Render("Unable to load content"),
				"",
				t.DangerText.Render(truncate(err.Error(), max(m.width-8, 10))),
				"",
				t.MutedText.Render("Press r to retry"),
			)
			return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, msg)
		}
		msg := lipgloss.JoinVertical(lipgloss.Center,
			m.spinner.View(),
			"",
			t.Base.Bold(true).Render("Loading content..."),
		)
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, msg)
	}

	cards := m.cards()
	if len(cards) == 0 {
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, t.MutedText.Render(emptyLevelText))
	}

	cols := m.columns()
	cardWidth := CardWidth
	if cols == 1 {
		cardWidth = min(max(m.width-1, 20), singleColumn)
	}

	var lines []string
	selStart, selEnd := 0, 0
	for start := 0; start < len(cards); start += cols {
		end := min(start+cols, len(cards))
		rendered := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			rendered = append(rendered, renderCard(cards[i], cardWidth, i == m.selected, t))
		}
		row := strings.Split(lipgloss.JoinHorizontal(lipgloss.Top, rendered...), "\n")
		if m.selected >= start && m.selected < end {
			selStart, selEnd = len(lines), len(lines)+len(row)
		}
		lines = append(lines, row...)
	}

	offset := 0
	if selEnd > height {
		offset = selEnd - height
	}
	if offset > selStart {
		offset = selStart
	}
	last := min(offset+height, len(lines))
	return strings.Join(lines[offset:last], "\n")
}

func (m Model) renderFooter() string {
	t := m.theme
	if m.statusMsg != "" {
		if m.statusIsError {
			return t.DangerText.Render(truncate(m.statusMsg, m.width))
		}
		return t.SuccessText.Render(truncate(m.statusMsg, m.width))
	}

	hints := "enter open · esc back · / search · i info · y copy · r reload · q quit"
	if m.focused == focusDetail {
		hints = "↑/↓ scroll · enter open · esc close"
	}
	info := ""
	if m.h.Tree.Loaded() {
		info = "loaded " + FormatTimeRel(m.h.Tree.LoadedAt(), m.now())
	}
	if n := len(m.h.Tree.Issues()); n > 0 {
		info += fmt.Sprintf(" · %d issues", n)
	}
	line := t.MutedText.Render(hints)
	gap := m.width - lipgloss.Width(line) - lipgloss.Width(info)
	if gap < 1 {
		return line
	}
	return line + strings.Repeat(" ", gap) + t.MutedText.Render(info)
}

// renderDetail builds the markdown shown by the detail pane.
func (m Model) renderDetail(c hierarchy.Card) string {
	e := c.Entity
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", e.Label())
	fmt.Fprintf(&sb, "**Kind:** %s  \n", e.Kind.Label())
	if e.ID != "" {
		fmt.Fprintf(&sb, "**ID:** `%s`  \n", e.ID)
	}
	if c.ShowProgress {
		fmt.Fprintf(&sb, "**Tests:** %d/%d (%d%%)  \n", c.Stats.CompletedLeaves, c.Stats.TotalLeaves, c.Stats.Percent)
		if c.Stats.Children > 0 {
			fmt.Fprintf(&sb, "**Touched:** %d/%d  \n", c.Stats.Touched, c.Stats.Children)
		}
	}
	if c.Leaf {
		fmt.Fprintf(&sb, "**Route:** `%s`  \n", c.Launch.Route())
	}
	if e.HasVideo() {
		fmt.Fprintf(&sb, "**Video:** %s  \n", strings.TrimSpace(e.VideoLink))
	}
	if e.Malformed {
		sb.WriteString("\n> This record was malformed in the source data.\n")
	}

	if strings.TrimSpace(e.Description) != "" {
		fmt.Fprintf(&sb, "\n## Description\n\n%s\n", e.Description)
	}

	if len(e.Children) > 0 {
		sb.WriteString("\n## Contents\n\n")
		done := m.h.Completed.Set()
		for _, child := range e.Children {
			if child == nil {
				continue
			}
			cc := hierarchy.NewCard(child, done)
			fmt.Fprintf(&sb, "- %s (%d/%d)\n", child.Label(), cc.Stats.CompletedLeaves, cc.Stats.TotalLeaves)
		}
	}
	return m.md.Render(sb.String(), max(m.detail.Width-2, 20))
}
