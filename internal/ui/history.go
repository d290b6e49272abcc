package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/noborus/ov/oviewer"

	"quarkgrid/internal/domain"
)

// HistoryViewer shows the pagination event log in the ov pager
type HistoryViewer struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewHistoryViewer creates a new history viewer
func NewHistoryViewer(program *tea.Program) *HistoryViewer {
	return &HistoryViewer{program: program}
}

// Show releases the terminal, runs ov over content and restores the terminal
func (h *HistoryViewer) Show(content string) error {
	if h.program == nil {
		return fmt.Errorf("program not set")
	}

	if err := h.program.ReleaseTerminal(); err != nil {
		return err
	}
	defer func() {
		// Small delay to ensure ov has fully exited before restoring terminal
		time.Sleep(100 * time.Millisecond)
		_ = h.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return err
	}

	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}

// renderHistory formats events oldest first, one per line
func renderHistory(events []domain.Event) string {
	sorted := make([]domain.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var b strings.Builder
	b.WriteString(fmt.Sprintf("quarkgrid event log (%d events)\n\n", len(sorted)))
	for _, e := range sorted {
		b.WriteString(formatEvent(e, true))
		b.WriteString("\n")
	}
	return b.String()
}

// formatEvent renders one event; full adds the timestamp and metadata
func formatEvent(e domain.Event, full bool) string {
	where := fmt.Sprintf("page %d", e.PageIndex)
	if e.Position != nil {
		where = e.Position.String()
	}

	line := fmt.Sprintf("%-15s %-10s %s", e.Type, e.ContextID, where)
	if title, ok := e.Metadata[domain.MetaPageTitle].(string); ok {
		line += " " + title
	}
	if reason, ok := e.Metadata[domain.MetaReason].(string); ok && reason == domain.ReasonRecovered {
		line += " (recovered)"
	}
	if !full {
		return line
	}

	keys := make([]string, 0, len(e.Metadata))
	for k := range e.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	meta := make([]string, len(keys))
	for i, k := range keys {
		meta[i] = fmt.Sprintf("%s=%v", k, e.Metadata[k])
	}
	return fmt.Sprintf("%s  %s  [%s]", e.Timestamp.Format("15:04:05.000"), line, strings.Join(meta, " "))
}
