package views

import (
	"fmt"
	"strings"

	"quarkgrid/internal/domain"
)

// CardDetail is the extra text shown on a deck card
type CardDetail func(page domain.Page) []string

// RenderDeck draws the active page of a linear context as a card with a
// page indicator underneath
func RenderDeck(ctx *domain.Context, styles *Styles, detail CardDetail) string {
	page, ok := ctx.ActivePage()
	if !ok {
		return styles.Dim.Render("no pages")
	}

	lines := []string{styles.Title.Render(page.Title)}
	if detail != nil {
		lines = append(lines, detail(page)...)
	}
	if badge := StateBadge(page.State); badge != "" {
		lines = append(lines, styles.Locked.Render(badge))
	}

	var b strings.Builder
	b.WriteString(styles.Card.Render(strings.Join(lines, "\n")))
	b.WriteString("\n")
	b.WriteString(RenderIndicator(ctx, styles))
	return b.String()
}

// RenderIndicator renders one dot per page, e.g. "○ ● ○ ×  2/5"
func RenderIndicator(ctx *domain.Context, styles *Styles) string {
	dots := make([]string, len(ctx.Pages))
	for i, p := range ctx.Pages {
		switch {
		case p.IsActive:
			dots[i] = "●"
		case !p.State.Selectable():
			dots[i] = styles.Dim.Render("×")
		default:
			dots[i] = "○"
		}
	}
	return fmt.Sprintf("%s  %d/%d", strings.Join(dots, " "), ctx.CurrentPageIndex, ctx.TotalPages)
}
