package autochess

// UnitID identifies one unit within an episode. IDs start at 1; zero means
// "no unit" in the position grid.
type UnitID int

// Unit is one creature owned by a player. Position is an attribute of the
// unit; the cell-to-unit grid is a rebuildable cache, never the source of
// truth.
type Unit struct {
	ID      UnitID
	Species SpeciesID
	Stars   int
	Cell    int // 0..NumCells-1
	Items   []ItemID
}

// OnBoard reports whether the unit sits on a combat row.
func (u *Unit) OnBoard() bool {
	return u.Cell >= GridWidth
}

// CellRow returns the grid row for a cell index.
func CellRow(cell int) int { return cell / GridWidth }

// CellCol returns the grid column for a cell index.
func CellCol(cell int) int { return cell % GridWidth }

// IsBoardCell reports whether a cell is on a combat row.
func IsBoardCell(cell int) bool { return CellRow(cell) > BenchRow }

// UnitStrength scores a unit for the default combat simulation: base tier
// scaled by star level, plus a flat bonus per equipped item.
func UnitStrength(u *Unit) int {
	tier := SpeciesByID(u.Species).Tier
	if tier == 0 {
		return 0
	}
	s := tier
	for i := 1; i < u.Stars; i++ {
		s *= 3
	}
	return s + 2*len(u.Items)
}
