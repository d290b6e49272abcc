package catalog

import (
	"strconv"

	"quarkgrid/internal/domain"
)

// Element is one cell of the periodic table
type Element struct {
	Number   int
	Symbol   string
	Name     string
	Group    int // 1-18
	Period   int
	Category string
}

// Elements covers the first four periods, which have no f-block gaps to handle
var Elements = []Element{
	{1, "H", "Hydrogen", 1, 1, "nonmetal"},
	{2, "He", "Helium", 18, 1, "noble gas"},
	{3, "Li", "Lithium", 1, 2, "alkali metal"},
	{4, "Be", "Beryllium", 2, 2, "alkaline earth metal"},
	{5, "B", "Boron", 13, 2, "metalloid"},
	{6, "C", "Carbon", 14, 2, "nonmetal"},
	{7, "N", "Nitrogen", 15, 2, "nonmetal"},
	{8, "O", "Oxygen", 16, 2, "nonmetal"},
	{9, "F", "Fluorine", 17, 2, "halogen"},
	{10, "Ne", "Neon", 18, 2, "noble gas"},
	{11, "Na", "Sodium", 1, 3, "alkali metal"},
	{12, "Mg", "Magnesium", 2, 3, "alkaline earth metal"},
	{13, "Al", "Aluminium", 13, 3, "post-transition metal"},
	{14, "Si", "Silicon", 14, 3, "metalloid"},
	{15, "P", "Phosphorus", 15, 3, "nonmetal"},
	{16, "S", "Sulfur", 16, 3, "nonmetal"},
	{17, "Cl", "Chlorine", 17, 3, "halogen"},
	{18, "Ar", "Argon", 18, 3, "noble gas"},
	{19, "K", "Potassium", 1, 4, "alkali metal"},
	{20, "Ca", "Calcium", 2, 4, "alkaline earth metal"},
	{21, "Sc", "Scandium", 3, 4, "transition metal"},
	{22, "Ti", "Titanium", 4, 4, "transition metal"},
	{23, "V", "Vanadium", 5, 4, "transition metal"},
	{24, "Cr", "Chromium", 6, 4, "transition metal"},
	{25, "Mn", "Manganese", 7, 4, "transition metal"},
	{26, "Fe", "Iron", 8, 4, "transition metal"},
	{27, "Co", "Cobalt", 9, 4, "transition metal"},
	{28, "Ni", "Nickel", 10, 4, "transition metal"},
	{29, "Cu", "Copper", 11, 4, "transition metal"},
	{30, "Zn", "Zinc", 12, 4, "transition metal"},
	{31, "Ga", "Gallium", 13, 4, "post-transition metal"},
	{32, "Ge", "Germanium", 14, 4, "metalloid"},
	{33, "As", "Arsenic", 15, 4, "metalloid"},
	{34, "Se", "Selenium", 16, 4, "nonmetal"},
	{35, "Br", "Bromine", 17, 4, "halogen"},
	{36, "Kr", "Krypton", 18, 4, "noble gas"},
}

// TableDimensions is the size of the grid Elements is laid out on
var TableDimensions = domain.Dimensions{Width: 18, Height: 4}

// Position maps group/period onto zero-based grid coordinates
func (e Element) Position() domain.Position {
	return domain.Position{X: e.Group - 1, Y: e.Period - 1}
}

// ElementPages converts Elements into grid pages
func ElementPages() []domain.GridPage {
	pages := make([]domain.GridPage, len(Elements))
	for i, e := range Elements {
		pages[i] = domain.GridPage{
			ID:       e.Symbol,
			Position: e.Position(),
			Title:    e.Name,
			State:    domain.StateActive,
			Metadata: map[string]string{
				"number":   strconv.Itoa(e.Number),
				"category": e.Category,
			},
		}
	}
	return pages
}

// OccupiedPositions lists every cell holding an element
func OccupiedPositions() []domain.Position {
	out := make([]domain.Position, len(Elements))
	for i, e := range Elements {
		out[i] = e.Position()
	}
	return out
}
