package sudoku

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/operator-framework/searchtree/pkg/search"
	"github.com/operator-framework/searchtree/pkg/store"
)

const size = 9

// Sudoku keeps a board in a trail store. Cells are numbered row by row
// from 0 to 80 and hold digits 1 to 9; empty cells have no entry.
type Sudoku struct {
	board *store.Map[int, int]
	// order lists, per cell, the digits in the order they are tried.
	order [size * size][size]int
}

// NewSudoku places the givens of puzzle, 81 characters read row by row
// where '.' or '0' marks an empty cell. Whitespace is ignored. An empty
// puzzle starts from an empty board. If rng is not nil the candidates
// of every cell are tried in random order, so that an empty board gives
// a different solution on every run. The order is fixed up front, so
// rebuilding a node yields its children in the same order.
func NewSudoku(puzzle string, rng *rand.Rand) (*Sudoku, error) {
	s := &Sudoku{board: store.NewMap[int, int]()}
	for cell := range s.order {
		for i := range s.order[cell] {
			s.order[cell][i] = i + 1
		}
		if rng != nil {
			rng.Shuffle(size, func(i, j int) { s.order[cell][i], s.order[cell][j] = s.order[cell][j], s.order[cell][i] })
		}
	}
	puzzle = strings.Join(strings.Fields(puzzle), "")
	if puzzle == "" {
		return s, nil
	}
	if len(puzzle) != size*size {
		return nil, fmt.Errorf("a puzzle has %d cells, got %d", size*size, len(puzzle))
	}
	for cell, r := range puzzle {
		switch {
		case r == '.' || r == '0':
		case r >= '1' && r <= '9':
			if err := s.place(cell, int(r-'0')); err != nil {
				return nil, fmt.Errorf("invalid given at row %d col %d: %w", cell/size+1, cell%size+1, err)
			}
		default:
			return nil, fmt.Errorf("invalid character %q at row %d col %d", r, cell/size+1, cell%size+1)
		}
	}
	return s, nil
}

// Store returns the board store.
func (s *Sudoku) Store() *store.Map[int, int] {
	return s.board
}

func (s *Sudoku) place(cell, digit int) error {
	if !s.allowed(cell, digit) {
		return search.Fail("%d does not fit at row %d col %d", digit, cell/size+1, cell%size+1)
	}
	s.board.Set(cell, digit)
	return nil
}

func (s *Sudoku) allowed(cell, digit int) bool {
	if _, ok := s.board.Get(cell); ok {
		return false
	}
	row, col := cell/size, cell%size
	boxRow, boxCol := row/3*3, col/3*3
	for i := 0; i < size; i++ {
		for _, peer := range []int{
			row*size + i,
			i*size + col,
			(boxRow+i/3)*size + boxCol + i%3,
		} {
			if d, ok := s.board.Get(peer); ok && d == digit {
				return false
			}
		}
	}
	return true
}

func (s *Sudoku) candidates(cell int) []int {
	var digits []int
	for _, d := range s.order[cell] {
		if s.allowed(cell, d) {
			digits = append(digits, d)
		}
	}
	return digits
}

// Fill returns the action that completes the board. It always branches
// on an empty cell with the fewest candidates; a cell without
// candidates is a propagation failure and a cell with one is filled in
// place.
func (s *Sudoku) Fill() search.Action {
	var fill search.Step
	fill = func() (search.Action, error) {
		cell, digits := -1, []int(nil)
		for c := 0; c < size*size; c++ {
			if _, ok := s.board.Get(c); ok {
				continue
			}
			ds := s.candidates(c)
			if cell < 0 || len(ds) < len(digits) {
				cell, digits = c, ds
			}
			if len(ds) < 2 {
				break
			}
		}
		switch {
		case cell < 0:
			return nil, nil
		case len(digits) == 0:
			return nil, search.Fail("no digit fits at row %d col %d", cell/size+1, cell%size+1)
		case len(digits) == 1:
			return search.Combine(s.placeStep(cell, digits[0]), fill), nil
		}
		alternatives := make([]search.Action, len(digits))
		for i, d := range digits {
			alternatives[i] = search.Combine(s.placeStep(cell, d), fill)
		}
		return search.Choose(alternatives...), nil
	}
	return fill
}

func (s *Sudoku) placeStep(cell, digit int) search.Step {
	return func() (search.Action, error) {
		return nil, s.place(cell, digit)
	}
}

// Solved reports whether every cell holds a digit.
func (s *Sudoku) Solved() bool {
	return s.board.Len() == size*size
}

func (s *Sudoku) String() string {
	var b strings.Builder
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			if col != 0 {
				b.WriteByte(' ')
			}
			if d, ok := s.board.Get(row*size + col); ok {
				fmt.Fprintf(&b, "%d", d)
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
