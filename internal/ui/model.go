package ui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"quarkgrid/internal/catalog"
	"quarkgrid/internal/config"
	"quarkgrid/internal/domain"
	"quarkgrid/internal/pagination"
	"quarkgrid/internal/ui/views"
)

// Context ids owned by the UI
const (
	ParticlesContext = "particles"
	ElementsContext  = "elements"
)

const feedSize = 5

type subscription struct {
	contextID string
	listener  *domain.Listener
}

// Model represents the UI state
type Model struct {
	linear *pagination.LinearService
	grid   *pagination.GridService
	cfg    *config.Config
	logger *slog.Logger

	view      string
	width     int
	height    int
	keys      keyMap
	help      help.Model
	styles    *views.Styles
	status    string
	statusErr bool
	feed      []string // most recent first
	paused    bool     // rendering paused while the pager owns the terminal

	subs    []subscription
	history *HistoryViewer
	program *tea.Program
}

// NewModel subscribes to both services and creates the particle deck and the
// periodic table contexts
func NewModel(linear *pagination.LinearService, grid *pagination.GridService, cfg *config.Config, logger *slog.Logger) (*Model, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Model{
		linear: linear,
		grid:   grid,
		cfg:    cfg,
		logger: logger,
		view:   cfg.UISettings.StartView,
		keys:   newKeyMap(),
		help:   help.New(),
		styles: views.NewStyles(),
	}

	// Two independent surfaces per context: the event feed and the status line
	for _, id := range []string{ParticlesContext, ElementsContext} {
		feed := &domain.Listener{
			OnPageChange:      m.recordEvent,
			OnPaginationReady: m.recordEvent,
		}
		status := &domain.Listener{OnPageChange: m.announceRecovery}
		for _, l := range []*domain.Listener{feed, status} {
			if err := m.subscribe(id, l); err != nil {
				return nil, err
			}
		}
	}

	if err := m.createContexts(); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

func (m *Model) subscribe(contextID string, l *domain.Listener) error {
	var err error
	if contextID == ParticlesContext {
		err = m.linear.AddListener(contextID, l)
	} else {
		err = m.grid.AddListener(contextID, l)
	}
	if err != nil {
		return err
	}
	m.subs = append(m.subs, subscription{contextID: contextID, listener: l})
	return nil
}

// Close unsubscribes the model's listeners
func (m *Model) Close() {
	for _, s := range m.subs {
		if s.contextID == ParticlesContext {
			m.linear.RemoveListener(s.contextID, s.listener)
		} else {
			m.grid.RemoveListener(s.contextID, s.listener)
		}
	}
	m.subs = nil
}

func (m *Model) createContexts() error {
	state := m.cfg.State()
	if _, err := m.linear.CreateContext(ParticlesContext, catalog.ParticlePages(), state); err != nil {
		return fmt.Errorf("create particle deck: %w", err)
	}

	var rules *domain.NavigationRules
	if m.cfg.UISettings.SkipGaps {
		rules = &domain.NavigationRules{
			CustomNavigation: pagination.SkipGaps(catalog.OccupiedPositions(), catalog.TableDimensions),
		}
	}
	if _, err := m.grid.CreateContext(ElementsContext, catalog.ElementPages(), catalog.TableDimensions, state, rules); err != nil {
		return fmt.Errorf("create periodic table: %w", err)
	}
	return nil
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.history = NewHistoryViewer(p)
}

func (m *Model) recordEvent(e domain.Event) {
	m.feed = append([]string{formatEvent(e, false)}, m.feed...)
	if len(m.feed) > feedSize {
		m.feed = m.feed[:feedSize]
	}
}

func (m *Model) announceRecovery(e domain.Event) {
	if e.Metadata[domain.MetaReason] != domain.ReasonRecovered {
		return
	}
	title, _ := e.Metadata[domain.MetaPageTitle].(string)
	m.setStatus(fmt.Sprintf("Selection moved to %s", title), false)
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case pauseRenderingMsg:
		m.paused = true

	case resumeRenderingMsg:
		m.paused = false

	case historyPagerMsg:
		if msg.err != nil {
			m.logger.Error("event log pager failed", "error", msg.err)
			m.setStatus("Could not open event log", true)
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Switch):
		if m.view == config.ViewElements {
			m.view = config.ViewParticles
		} else {
			m.view = config.ViewElements
		}
		m.setStatus("", false)
		return m, nil
	case key.Matches(msg, m.keys.History):
		return m, m.showHistory()
	case key.Matches(msg, m.keys.Reset):
		if err := m.createContexts(); err != nil {
			m.logger.Error("reset failed", "error", err)
			m.setStatus("Reset failed", true)
		} else {
			m.setStatus("Reset", false)
		}
		return m, nil
	case key.Matches(msg, m.keys.Lock):
		m.toggleLock()
		return m, nil
	}

	if m.locked() {
		if isNavigation(msg, m.keys) || key.Matches(msg, m.keys.Toggle) {
			m.setStatus("View is locked (L to unlock)", true)
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.Toggle) {
		m.togglePage()
		return m, nil
	}
	if m.view == config.ViewParticles {
		m.navigateDeck(msg)
	} else {
		m.navigateTable(msg)
	}
	return m, nil
}

func isNavigation(msg tea.KeyMsg, k keyMap) bool {
	return key.Matches(msg, k.Up, k.Down, k.Left, k.Right, k.First, k.Last)
}

// locked reports whether the current view's context is globally disabled
func (m *Model) locked() bool {
	if m.view == config.ViewParticles {
		ctx, ok := m.linear.GetContext(ParticlesContext)
		return ok && !ctx.State.Selectable()
	}
	ctx, ok := m.grid.GetContext(ElementsContext)
	return ok && !ctx.State.Selectable()
}

func (m *Model) toggleLock() {
	next := domain.StateDisabled
	if m.locked() {
		next = domain.StateActive
	}
	var ok bool
	if m.view == config.ViewParticles {
		ok = m.linear.UpdateState(ParticlesContext, next)
	} else {
		ok = m.grid.UpdateState(ElementsContext, next)
	}
	if ok && next == domain.StateDisabled {
		m.setStatus("View locked", false)
	} else if ok {
		m.setStatus("View unlocked", false)
	}
}

func (m *Model) navigateDeck(msg tea.KeyMsg) {
	ctx, ok := m.linear.GetContext(ParticlesContext)
	if !ok || ctx.TotalPages == 0 {
		return
	}

	target := ctx.CurrentPageIndex
	switch {
	case key.Matches(msg, m.keys.Left, m.keys.Up):
		target--
	case key.Matches(msg, m.keys.Right, m.keys.Down):
		target++
	case key.Matches(msg, m.keys.First):
		target = 1
	case key.Matches(msg, m.keys.Last):
		target = ctx.TotalPages
	default:
		return
	}

	if target < 1 || target > ctx.TotalPages {
		return
	}
	if m.linear.ChangePage(ParticlesContext, target) {
		m.setStatus("", false)
		return
	}
	page := ctx.Pages[target-1]
	m.setStatus(fmt.Sprintf("%s is %s", page.Title, page.State), true)
}

func (m *Model) navigateTable(msg tea.KeyMsg) {
	var dir domain.Direction
	switch {
	case key.Matches(msg, m.keys.Up):
		dir = domain.DirectionUp
	case key.Matches(msg, m.keys.Down):
		dir = domain.DirectionDown
	case key.Matches(msg, m.keys.Left):
		dir = domain.DirectionLeft
	case key.Matches(msg, m.keys.Right):
		dir = domain.DirectionRight
	case key.Matches(msg, m.keys.First):
		m.jumpTable(catalog.Elements[0].Position())
		return
	case key.Matches(msg, m.keys.Last):
		m.jumpTable(catalog.Elements[len(catalog.Elements)-1].Position())
		return
	default:
		return
	}

	if m.grid.Move(ElementsContext, dir) {
		m.setStatus("", false)
		return
	}
	// There was a cell to go to, so it must be unselectable
	if to, ok := m.grid.Navigate(ElementsContext, dir); ok {
		m.explainBlocked(to)
	}
}

func (m *Model) jumpTable(to domain.Position) {
	if m.grid.ChangePosition(ElementsContext, to) {
		m.setStatus("", false)
		return
	}
	m.explainBlocked(to)
}

func (m *Model) explainBlocked(to domain.Position) {
	ctx, ok := m.grid.GetContext(ElementsContext)
	if !ok {
		return
	}
	if page, ok := ctx.PageAt(to); ok {
		m.setStatus(fmt.Sprintf("%s is %s", page.Title, page.State), true)
	}
}

// togglePage disables the active page, which makes the service move the
// selection. A disabled page that is still active (forced) is re-enabled.
func (m *Model) togglePage() {
	if m.view == config.ViewParticles {
		ctx, ok := m.linear.GetContext(ParticlesContext)
		if !ok {
			return
		}
		page, ok := ctx.ActivePage()
		if !ok {
			return
		}
		next := domain.StateDisabled
		if page.State == domain.StateDisabled {
			next = domain.StateActive
		}
		m.linear.UpdatePageStates(ParticlesContext, []pagination.PageStateUpdate{{Index: page.Index, State: next}})
		return
	}

	ctx, ok := m.grid.GetContext(ElementsContext)
	if !ok {
		return
	}
	page, ok := ctx.ActivePage()
	if !ok {
		return
	}
	next := domain.StateDisabled
	if page.State == domain.StateDisabled {
		next = domain.StateActive
	}
	m.grid.UpdatePageStates(ElementsContext, []pagination.GridPageStateUpdate{{Position: page.Position, State: next}})
}

func (m *Model) showHistory() tea.Cmd {
	events := append(m.linear.EventHistory(""), m.grid.EventHistory("")...)
	content := renderHistory(events)
	return func() tea.Msg {
		if m.history == nil || m.program == nil {
			return historyPagerMsg{err: fmt.Errorf("program not set")}
		}
		m.program.Send(pauseRenderingMsg{})
		err := m.history.Show(content)
		m.program.Send(resumeRenderingMsg{})
		return historyPagerMsg{err: err}
	}
}

// View renders the UI
func (m *Model) View() string {
	if m.paused {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("quarkgrid"))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	if m.view == config.ViewParticles {
		if ctx, ok := m.linear.GetContext(ParticlesContext); ok {
			b.WriteString(views.RenderDeck(ctx, m.styles, particleDetail))
		}
	} else if ctx, ok := m.grid.GetContext(ElementsContext); ok {
		b.WriteString(views.RenderGrid(ctx, m.styles))
		b.WriteString("\n")
		b.WriteString(views.RenderGridDetail(ctx, m.styles))
	}
	b.WriteString("\n")

	if len(m.feed) > 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.Feed.Render(strings.Join(m.feed, "\n")))
		b.WriteString("\n")
	}

	if m.status != "" {
		style := m.styles.Status
		if m.statusErr {
			style = m.styles.StatusError
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return m.styles.Main.Render(b.String())
}

func (m *Model) renderTabs() string {
	tabs := []struct{ view, label string }{
		{config.ViewElements, "Elements"},
		{config.ViewParticles, "Particles"},
	}
	out := make([]string, len(tabs))
	for i, t := range tabs {
		style := m.styles.Tab
		if t.view == m.view {
			style = m.styles.TabActive
		}
		label := t.label
		if m.view == t.view && m.locked() {
			label += " " + m.styles.Locked.Render("[locked]")
		}
		out[i] = style.Render(label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, out...)
}

func particleDetail(page domain.Page) []string {
	p, ok := catalog.ParticleByID(page.ID)
	if !ok {
		return nil
	}
	return []string{
		fmt.Sprintf("Kind:   %s", p.Kind),
		fmt.Sprintf("Charge: %s", p.Charge),
		fmt.Sprintf("Spin:   %s", p.Spin),
	}
}
