// Package maze generates and queries the maze grid a room is played on.
//
// Generation is fully deterministic for a given seed, using the same
// mulberry32 PRNG and recursive-backtracker carving as the browser client,
// so the server validates moves against the exact grid the clients render.
package maze

const (
	// DefaultRows and DefaultCols match the client's 20x20 grid.
	DefaultRows = 20
	DefaultCols = 20

	wall    = 1
	passage = 0
)

// Position is a cell coordinate within the maze grid.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Layout is an immutable generated maze.
type Layout struct {
	rows  int
	cols  int
	cells [][]uint8
	start Position
	goals map[Position]struct{}
}

// DefaultGoals returns the standard single goal cell opposite the start.
func DefaultGoals(rows, cols int) []Position {
	return []Position{{Row: rows - 2, Col: cols - 2}}
}

// Generate builds the maze for the given seed. Goal cells are carved open
// so they are always reachable passages. Dimensions below 5 are clamped.
func Generate(rows, cols int, seed int32, goals []Position) *Layout {
	if rows < 5 {
		rows = 5
	}
	if cols < 5 {
		cols = 5
	}
	if len(goals) == 0 {
		goals = DefaultGoals(rows, cols)
	}

	cells := make([][]uint8, rows)
	for r := range cells {
		cells[r] = make([]uint8, cols)
		for c := range cells[r] {
			cells[r][c] = wall
		}
	}

	carve(cells, rows, cols, seed)

	goalSet := make(map[Position]struct{}, len(goals))
	for _, g := range goals {
		if g.Row >= 0 && g.Row < rows && g.Col >= 0 && g.Col < cols {
			cells[g.Row][g.Col] = passage
			connectOrphan(cells, rows, cols, g)
			goalSet[g] = struct{}{}
		}
	}

	return &Layout{
		rows:  rows,
		cols:  cols,
		cells: cells,
		start: Position{Row: 1, Col: 1},
		goals: goalSet,
	}
}

// carve runs the recursive backtracker over odd-indexed cells, knocking
// out the wall between each visited pair.
func carve(cells [][]uint8, rows, cols int, seed int32) {
	rand := newMulberry32(seed)

	type frame struct{ row, col int }
	stack := []frame{{1, 1}}
	cells[1][1] = passage

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		row, col := cur.row, cur.col

		var neighbors []frame
		if row > 1 && cells[row-2][col] == wall {
			neighbors = append(neighbors, frame{row - 2, col})
		}
		if row < rows-2 && cells[row+2][col] == wall {
			neighbors = append(neighbors, frame{row + 2, col})
		}
		if col > 1 && cells[row][col-2] == wall {
			neighbors = append(neighbors, frame{row, col - 2})
		}
		if col < cols-2 && cells[row][col+2] == wall {
			neighbors = append(neighbors, frame{row, col + 2})
		}

		if len(neighbors) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		next := neighbors[int(rand.next()*float64(len(neighbors)))]
		cells[(row+next.row)/2][(col+next.col)/2] = passage
		cells[next.row][next.col] = passage
		stack = append(stack, next)
	}
}

// connectOrphan opens a wall next to a goal cell that the carver left fully
// enclosed. Even-indexed goals (such as the default on a 20x20 grid) sit
// outside the backtracker's odd-cell lattice and need this to be reachable.
func connectOrphan(cells [][]uint8, rows, cols int, g Position) {
	neighbors := []Position{
		{Row: g.Row - 1, Col: g.Col},
		{Row: g.Row + 1, Col: g.Col},
		{Row: g.Row, Col: g.Col - 1},
		{Row: g.Row, Col: g.Col + 1},
	}
	for _, n := range neighbors {
		if n.Row >= 0 && n.Row < rows && n.Col >= 0 && n.Col < cols && cells[n.Row][n.Col] == passage {
			return
		}
	}
	if g.Col >= 2 {
		cells[g.Row][g.Col-1] = passage
	} else if g.Row >= 2 {
		cells[g.Row-1][g.Col] = passage
	}
}

// Rows returns the grid's row count.
func (l *Layout) Rows() int { return l.rows }

// Cols returns the grid's column count.
func (l *Layout) Cols() int { return l.cols }

// Start returns the defined starting cell.
func (l *Layout) Start() Position { return l.start }

// InBounds reports whether the coordinate lies within the grid.
func (l *Layout) InBounds(row, col int) bool {
	return row >= 0 && row < l.rows && col >= 0 && col < l.cols
}

// IsWall reports whether the cell is a wall. Out-of-bounds counts as wall.
func (l *Layout) IsWall(row, col int) bool {
	if !l.InBounds(row, col) {
		return true
	}
	return l.cells[row][col] == wall
}

// IsGoal reports whether the cell is one of the configured goal cells.
func (l *Layout) IsGoal(row, col int) bool {
	_, ok := l.goals[Position{Row: row, Col: col}]
	return ok
}

// mulberry32 reproduces the client's 32-bit PRNG bit for bit.
type mulberry32 struct {
	state uint32
}

func newMulberry32(seed int32) *mulberry32 {
	return &mulberry32{state: uint32(seed)}
}

// next returns a float in [0, 1).
func (m *mulberry32) next() float64 {
	m.state += 0x6D2B79F5
	t := m.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296.0
}
