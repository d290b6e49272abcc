package ui

import (
	"errors"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quarkgrid/internal/config"
	"quarkgrid/internal/domain"
	"quarkgrid/internal/pagination"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, mutate func(*config.Config)) *Model {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	m, err := NewModel(
		pagination.NewLinearService(pagination.WithLogger(logger)),
		pagination.NewGridService(pagination.WithLogger(logger)),
		cfg, logger,
	)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func (m *Model) press(msgs ...tea.KeyMsg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

func activeElement(t *testing.T, m *Model) domain.GridPage {
	t.Helper()
	ctx, ok := m.grid.GetContext(ElementsContext)
	require.True(t, ok)
	page, ok := ctx.ActivePage()
	require.True(t, ok)
	return page
}

func currentParticle(t *testing.T, m *Model) int {
	t.Helper()
	ctx, ok := m.linear.GetContext(ParticlesContext)
	require.True(t, ok)
	return ctx.CurrentPageIndex
}

func TestNewModelCreatesContexts(t *testing.T) {
	m := newTestModel(t, nil)

	assert.Equal(t, config.ViewElements, m.view)
	assert.Equal(t, "H", activeElement(t, m).ID)
	assert.Equal(t, 1, currentParticle(t, m))

	// Both PaginationReady events reach the feed
	require.Len(t, m.feed, 2)
	assert.Contains(t, m.feed[0], string(domain.EventPaginationReady))
}

func TestTableNavigationSkipsGaps(t *testing.T) {
	m := newTestModel(t, nil)

	m.press(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "He", activeElement(t, m).ID)

	m.press(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "Ne", activeElement(t, m).ID)

	m.press(runes("g"))
	assert.Equal(t, "H", activeElement(t, m).ID)

	m.press(runes("G"))
	assert.Equal(t, "Kr", activeElement(t, m).ID)
}

func TestTableNavigationWithoutGapSkipping(t *testing.T) {
	m := newTestModel(t, func(c *config.Config) { c.UISettings.SkipGaps = false })

	m.press(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "H", activeElement(t, m).ID, "empty neighbour blocks the move")

	m.press(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "Li", activeElement(t, m).ID)
}

func TestTableMoveOntoDisabledElement(t *testing.T) {
	m := newTestModel(t, nil)
	require.True(t, m.grid.UpdatePageStates(ElementsContext, []pagination.GridPageStateUpdate{
		{Position: domain.Position{X: 17, Y: 0}, State: domain.StateDisabled},
	}))

	m.press(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "H", activeElement(t, m).ID)
	assert.Equal(t, "Helium is disabled", m.status)
	assert.True(t, m.statusErr)

	m.press(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "Li", activeElement(t, m).ID)
	assert.Empty(t, m.status)
}

func TestDeckNavigation(t *testing.T) {
	m := newTestModel(t, func(c *config.Config) { c.UISettings.StartView = config.ViewParticles })

	m.press(tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 3, currentParticle(t, m))

	m.press(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 2, currentParticle(t, m))

	// Left from the first page is a no-op
	m.press(runes("g"), tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 1, currentParticle(t, m))
	assert.Empty(t, m.status)
}

func TestDeckRejectsUnavailableParticle(t *testing.T) {
	m := newTestModel(t, func(c *config.Config) { c.UISettings.StartView = config.ViewParticles })

	m.press(runes("G"))
	assert.Equal(t, 1, currentParticle(t, m))
	assert.Equal(t, "Graviton is unavailable", m.status)
	assert.True(t, m.statusErr)
}

func TestSwitchView(t *testing.T) {
	m := newTestModel(t, nil)

	m.press(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, config.ViewParticles, m.view)

	m.press(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 2, currentParticle(t, m))
	assert.Equal(t, "H", activeElement(t, m).ID, "table is untouched")

	m.press(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, config.ViewElements, m.view)
}

func TestTogglePageMovesSelection(t *testing.T) {
	m := newTestModel(t, func(c *config.Config) { c.UISettings.StartView = config.ViewParticles })

	m.press(runes("x"))
	ctx, _ := m.linear.GetContext(ParticlesContext)
	assert.Equal(t, domain.StateDisabled, ctx.Pages[0].State)
	assert.Equal(t, 2, ctx.CurrentPageIndex)
	assert.Equal(t, "Selection moved to Down quark", m.status)
	assert.Contains(t, m.feed[0], "(recovered)")

	// Disabled pages can't be navigated back to
	m.press(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 2, currentParticle(t, m))
	assert.Equal(t, "Up quark is disabled", m.status)
}

func TestTogglePageOnTable(t *testing.T) {
	m := newTestModel(t, nil)

	m.press(runes("x"))
	ctx, _ := m.grid.GetContext(ElementsContext)
	h, _ := ctx.PageAt(domain.Position{X: 0, Y: 0})
	assert.Equal(t, domain.StateDisabled, h.State)
	assert.False(t, h.IsActive)
	assert.Equal(t, "Selection moved to Helium", m.status)
}

func TestLockBlocksNavigation(t *testing.T) {
	m := newTestModel(t, nil)

	m.press(runes("L"))
	assert.True(t, m.locked())
	assert.Equal(t, "View locked", m.status)

	m.press(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "H", activeElement(t, m).ID)
	assert.Equal(t, "View is locked (L to unlock)", m.status)

	// The other view has its own context state
	m.press(tea.KeyMsg{Type: tea.KeyTab})
	assert.False(t, m.locked())

	m.press(tea.KeyMsg{Type: tea.KeyTab}, runes("L"))
	assert.False(t, m.locked())
	m.press(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "He", activeElement(t, m).ID)
}

func TestResetRestoresContexts(t *testing.T) {
	m := newTestModel(t, nil)

	m.press(tea.KeyMsg{Type: tea.KeyRight}, runes("x"))
	m.press(runes("r"))

	assert.Equal(t, "H", activeElement(t, m).ID)
	assert.Equal(t, "Reset", m.status)
	ctx, _ := m.grid.GetContext(ElementsContext)
	for _, p := range ctx.Pages {
		assert.Equal(t, domain.StateActive, p.State, p.ID)
	}
}

func TestFeedKeepsMostRecent(t *testing.T) {
	m := newTestModel(t, func(c *config.Config) { c.UISettings.StartView = config.ViewParticles })

	for i := 0; i < 8; i++ {
		m.press(tea.KeyMsg{Type: tea.KeyRight})
	}
	require.Len(t, m.feed, feedSize)
	assert.Contains(t, m.feed[0], "page 9")
}

func TestCloseUnsubscribes(t *testing.T) {
	m := newTestModel(t, nil)
	m.Close()

	before := len(m.feed)
	require.True(t, m.linear.ChangePage(ParticlesContext, 2))
	assert.Len(t, m.feed, before)
}

func TestViewRendering(t *testing.T) {
	m := newTestModel(t, nil)
	assert.Equal(t, "Loading...", m.View())

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	out := m.View()
	assert.Contains(t, out, "quarkgrid")
	assert.Contains(t, out, "Hydrogen")
	assert.Contains(t, out, "Elements")

	m.press(tea.KeyMsg{Type: tea.KeyTab})
	out = m.View()
	assert.Contains(t, out, "Up quark")
	assert.Contains(t, out, "1/18")

	m.press(runes("L"))
	assert.Contains(t, m.View(), "[locked]")

	m.Update(pauseRenderingMsg{})
	assert.Empty(t, m.View())
	m.Update(resumeRenderingMsg{})
	assert.NotEmpty(t, m.View())
}

func TestHistoryWithoutProgram(t *testing.T) {
	m := newTestModel(t, nil)

	_, cmd := m.Update(runes("e"))
	require.NotNil(t, cmd)
	msg := cmd()
	pager, ok := msg.(historyPagerMsg)
	require.True(t, ok)
	assert.Error(t, pager.err)

	m.Update(pager)
	assert.Equal(t, "Could not open event log", m.status)
	assert.True(t, m.statusErr)
}

func TestRenderHistoryOrdersEvents(t *testing.T) {
	m := newTestModel(t, nil)
	m.press(tea.KeyMsg{Type: tea.KeyRight})

	out := renderHistory(m.grid.EventHistory(ElementsContext))
	assert.Contains(t, out, "(2 events)")
	assert.Contains(t, out, "Helium")

	p := domain.Position{X: 17, Y: 0}
	line := formatEvent(domain.Event{
		Type:      domain.EventPageChanged,
		ContextID: ElementsContext,
		Position:  &p,
		Metadata:  map[string]any{domain.MetaPageTitle: "Helium"},
	}, false)
	assert.Contains(t, line, "(17,0) Helium")
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(t, nil)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestHistoryPagerErrorLogged(t *testing.T) {
	m := newTestModel(t, nil)
	m.Update(historyPagerMsg{err: errors.New("boom")})
	assert.True(t, m.statusErr)

	m.Update(historyPagerMsg{})
	assert.Equal(t, "Could not open event log", m.status, "success leaves status alone")
}
