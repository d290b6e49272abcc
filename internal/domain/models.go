package domain

import (
	"fmt"
	"strings"
)

// PageState is the lifecycle state of a page or of a whole context
type PageState string

// The authoritative state set. UI layers that talk about "error" or "locked"
// pages must map onto one of these.
const (
	StateActive      PageState = "active"
	StateInactive    PageState = "inactive"
	StateDisabled    PageState = "disabled"
	StateUnavailable PageState = "unavailable"
)

// Selectable reports whether a page in this state may become the active page
func (s PageState) Selectable() bool {
	return s == StateActive || s == StateInactive
}

// Valid reports whether s is one of the four known states
func (s PageState) Valid() bool {
	switch s {
	case StateActive, StateInactive, StateDisabled, StateUnavailable:
		return true
	}
	return false
}

// ParsePageState converts a config or flag value into a PageState
func ParsePageState(v string) (PageState, error) {
	s := PageState(strings.ToLower(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown page state %q", v)
	}
	return s, nil
}

// PageInput describes a page handed to LinearService.CreateContext.
// Index and activity are assigned by the service.
type PageInput struct {
	ID    string
	Title string
	State PageState
}

// Page is one entry of a linear context
type Page struct {
	ID       string
	Title    string
	State    PageState
	Index    int // 1-based
	IsActive bool
}

// Context is a linear pagination instance
type Context struct {
	ID               string
	Pages            []Page
	CurrentPageIndex int // 1-based, 0 when the context has no pages
	TotalPages       int
	State            PageState
}

// Clone returns a deep copy so callers can't reach into the service store
func (c *Context) Clone() *Context {
	cp := *c
	cp.Pages = append([]Page(nil), c.Pages...)
	return &cp
}

// ActivePage returns the page flagged active, if any
func (c *Context) ActivePage() (Page, bool) {
	for _, p := range c.Pages {
		if p.IsActive {
			return p, true
		}
	}
	return Page{}, false
}

// Position is a cell on a 2-D grid, origin at the top-left
type Position struct {
	X int
	Y int
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Dimensions is the size of a grid
type Dimensions struct {
	Width  int
	Height int
}

// Contains reports whether p lies inside the grid
func (d Dimensions) Contains(p Position) bool {
	return p.X >= 0 && p.X < d.Width && p.Y >= 0 && p.Y < d.Height
}

// Clamp restricts p to the grid bounds
func (d Dimensions) Clamp(p Position) Position {
	return Position{X: clamp(p.X, 0, d.Width-1), Y: clamp(p.Y, 0, d.Height-1)}
}

func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// Direction represents movement directions on a grid
type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// Delta returns the unit step for the direction
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case DirectionUp:
		return 0, -1
	case DirectionDown:
		return 0, 1
	case DirectionLeft:
		return -1, 0
	case DirectionRight:
		return 1, 0
	}
	return 0, 0
}

// GridPage is a page placed on a grid
type GridPage struct {
	ID       string
	Position Position
	Title    string
	State    PageState
	IsActive bool
	Metadata map[string]string // caller annotations, e.g. atomic number
}

// CustomNavigation overrides default adjacency. Returning false means no movement.
type CustomNavigation func(from Position, dir Direction) (Position, bool)

// NavigationRules customise how Navigate resolves a direction
type NavigationRules struct {
	ValidPositions   []Position
	CustomNavigation CustomNavigation
}

// GridContext is a 2-D pagination instance
type GridContext struct {
	ID              string
	Pages           []GridPage
	CurrentPosition Position
	Dimensions      Dimensions
	State           PageState
	Rules           *NavigationRules
}

// Clone returns a deep copy of the context, metadata maps included
func (c *GridContext) Clone() *GridContext {
	cp := *c
	cp.Pages = make([]GridPage, len(c.Pages))
	for i, p := range c.Pages {
		if p.Metadata != nil {
			md := make(map[string]string, len(p.Metadata))
			for k, v := range p.Metadata {
				md[k] = v
			}
			p.Metadata = md
		}
		cp.Pages[i] = p
	}
	if c.Rules != nil {
		rules := *c.Rules
		rules.ValidPositions = append([]Position(nil), c.Rules.ValidPositions...)
		cp.Rules = &rules
	}
	return &cp
}

// PageAt returns the page occupying p
func (c *GridContext) PageAt(p Position) (GridPage, bool) {
	for _, page := range c.Pages {
		if page.Position == p {
			return page, true
		}
	}
	return GridPage{}, false
}

// ActivePage returns the page flagged active, if any
func (c *GridContext) ActivePage() (GridPage, bool) {
	for _, p := range c.Pages {
		if p.IsActive {
			return p, true
		}
	}
	return GridPage{}, false
}
