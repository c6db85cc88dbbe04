package engine

import (
	"sync"

	seatModel "openrun/internal/domains/seat/model"
)

// anySeatCode marks the discovery candidate used when a schedule has no
// explicit seat list.
const anySeatCode = "*"

// Candidate is one seat a worker may attempt next.
type Candidate struct {
	ProductCode string
	Name        string
	Any         bool
}

// Board is the per-schedule sold-out set shared by every worker. Once any
// worker confirms a seat gone, no sibling attempts it again.
type Board struct {
	mu      sync.Mutex
	soldOut map[string]struct{}
}

func NewBoard() *Board {
	return &Board{soldOut: make(map[string]struct{})}
}

func (b *Board) MarkSoldOut(productCode string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.soldOut[productCode] = struct{}{}
}

func (b *Board) IsSoldOut(productCode string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.soldOut[productCode]

	return ok
}

// Selector walks the ordered seat list with a private cursor, skipping seats
// the board already knows are gone. Not safe for concurrent use; every worker
// gets its own.
type Selector struct {
	board      *Board
	candidates []Candidate
	cursor     int
}

// Next returns the next seat still worth attempting. The second return is
// false once the worker has exhausted the list.
func (s *Selector) Next() (Candidate, bool) {
	for s.cursor < len(s.candidates) {
		candidate := s.candidates[s.cursor]
		s.cursor++

		if !s.board.IsSoldOut(candidate.ProductCode) {
			return candidate, true
		}
	}

	return Candidate{}, false
}

// NewSelector builds a worker-local selector over the schedule's seat order.
// An empty seat list collapses to a single discovery candidate.
func NewSelector(board *Board, seats []seatModel.Seat) *Selector {
	if len(seats) == 0 {
		return &Selector{
			board:      board,
			candidates: []Candidate{{ProductCode: anySeatCode, Any: true}},
		}
	}

	candidates := make([]Candidate, len(seats))
	for i, seat := range seats {
		candidates[i] = Candidate{ProductCode: seat.ProductCode, Name: seat.Name}
	}

	return &Selector{board: board, candidates: candidates}
}
