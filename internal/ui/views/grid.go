package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"quarkgrid/internal/domain"
)

// RenderGrid draws a grid context cell by cell. Empty cells are blank and
// unselectable pages are dimmed.
func RenderGrid(ctx *domain.GridContext, styles *Styles) string {
	cells := make(map[domain.Position]domain.GridPage, len(ctx.Pages))
	for _, p := range ctx.Pages {
		cells[p.Position] = p
	}

	var b strings.Builder
	for y := 0; y < ctx.Dimensions.Height; y++ {
		row := make([]string, 0, ctx.Dimensions.Width)
		for x := 0; x < ctx.Dimensions.Width; x++ {
			page, ok := cells[domain.Position{X: x, Y: y}]
			switch {
			case !ok:
				row = append(row, styles.Cell.Render(""))
			case page.IsActive:
				row = append(row, styles.CellActive.Render(page.ID))
			case !page.State.Selectable():
				row = append(row, styles.CellOff.Render(page.ID))
			default:
				color := CategoryColor(page.Metadata["category"])
				row = append(row, styles.Cell.Foreground(lipgloss.Color(color)).Render(page.ID))
			}
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderGridDetail describes the active page of a grid context
func RenderGridDetail(ctx *domain.GridContext, styles *Styles) string {
	page, ok := ctx.ActivePage()
	if !ok {
		return styles.Dim.Render("nothing selected")
	}
	lines := []string{
		styles.Title.Render(fmt.Sprintf("%s  %s", page.ID, page.Title)),
		fmt.Sprintf("Atomic number: %s", page.Metadata["number"]),
		fmt.Sprintf("Category:      %s", page.Metadata["category"]),
		fmt.Sprintf("Position:      %s", page.Position),
	}
	if badge := StateBadge(page.State); badge != "" {
		lines = append(lines, styles.Locked.Render(badge))
	}
	return styles.Card.Render(strings.Join(lines, "\n"))
}
