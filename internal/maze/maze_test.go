package maze

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type MazeSuite struct {
	suite.Suite
}

func TestMazeSuite(t *testing.T) {
	suite.Run(t, new(MazeSuite))
}

func (s *MazeSuite) TestSameSeedGeneratesIdenticalMaze() {
	a := Generate(DefaultRows, DefaultCols, 12345, nil)
	b := Generate(DefaultRows, DefaultCols, 12345, nil)

	for row := 0; row < DefaultRows; row++ {
		for col := 0; col < DefaultCols; col++ {
			s.Equal(a.IsWall(row, col), b.IsWall(row, col),
				"cell (%d,%d) differs between identically-seeded mazes", row, col)
		}
	}
}

func (s *MazeSuite) TestDifferentSeedsGenerateDifferentMazes() {
	a := Generate(DefaultRows, DefaultCols, 1, nil)
	b := Generate(DefaultRows, DefaultCols, 2, nil)

	differs := false
	for row := 0; row < DefaultRows && !differs; row++ {
		for col := 0; col < DefaultCols; col++ {
			if a.IsWall(row, col) != b.IsWall(row, col) {
				differs = true
				break
			}
		}
	}
	s.True(differs, "expected seeds 1 and 2 to produce different mazes")
}

func (s *MazeSuite) TestStartCellIsOpen() {
	l := Generate(DefaultRows, DefaultCols, 99, nil)
	start := l.Start()
	s.Equal(Position{Row: 1, Col: 1}, start)
	s.False(l.IsWall(start.Row, start.Col))
}

func (s *MazeSuite) TestDefaultGoalIsOpenAndRecognized() {
	l := Generate(DefaultRows, DefaultCols, 7, nil)
	goal := DefaultGoals(DefaultRows, DefaultCols)[0]

	s.False(l.IsWall(goal.Row, goal.Col))
	s.True(l.IsGoal(goal.Row, goal.Col))
	s.False(l.IsGoal(1, 1))
}

func (s *MazeSuite) TestConfiguredGoalCellsAreCarvedOpen() {
	goals := []Position{{Row: 3, Col: 3}, {Row: 5, Col: 7}}
	l := Generate(DefaultRows, DefaultCols, 42, goals)

	for _, g := range goals {
		s.False(l.IsWall(g.Row, g.Col))
		s.True(l.IsGoal(g.Row, g.Col))
	}
}

func (s *MazeSuite) TestBorderIsAllWall() {
	l := Generate(DefaultRows, DefaultCols, 3, nil)
	for col := 0; col < DefaultCols; col++ {
		s.True(l.IsWall(0, col))
	}
	for row := 0; row < DefaultRows; row++ {
		s.True(l.IsWall(row, 0))
	}
}

func (s *MazeSuite) TestOutOfBoundsCountsAsWall() {
	l := Generate(DefaultRows, DefaultCols, 3, nil)

	s.False(l.InBounds(-1, 0))
	s.False(l.InBounds(0, DefaultCols))
	s.True(l.IsWall(-1, 0))
	s.True(l.IsWall(DefaultRows, 0))
}

func (s *MazeSuite) TestTinyDimensionsAreClamped() {
	l := Generate(1, 1, 0, nil)
	s.GreaterOrEqual(l.Rows(), 5)
	s.GreaterOrEqual(l.Cols(), 5)
	s.False(l.IsWall(1, 1))
}

func (s *MazeSuite) TestStartIsConnectedToGoal() {
	// Flood fill from the start; the carved goal must be reachable.
	l := Generate(DefaultRows, DefaultCols, 2026, nil)
	goal := DefaultGoals(DefaultRows, DefaultCols)[0]

	visited := make(map[Position]bool)
	queue := []Position{l.Start()}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if visited[p] || l.IsWall(p.Row, p.Col) {
			continue
		}
		visited[p] = true
		queue = append(queue,
			Position{Row: p.Row - 1, Col: p.Col},
			Position{Row: p.Row + 1, Col: p.Col},
			Position{Row: p.Row, Col: p.Col - 1},
			Position{Row: p.Row, Col: p.Col + 1},
		)
	}

	s.True(visited[goal], "goal cell unreachable from start")
}
