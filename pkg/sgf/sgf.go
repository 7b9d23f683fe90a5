// Package sgf implements the minimal slice of the Smart Game Format needed
// to encode tsumego problems: a single root node carrying board size, setup
// stones, labels, a comment, and the player to move. Game records and
// variations are out of scope.
package sgf

import (
	"github.com/gotsumego/tasuki2sgf/pkg/board"
	"github.com/gotsumego/tasuki2sgf/pkg/errors"
)

// MaxSize is the largest board side the SGF single-letter coordinate
// scheme can address ('a' through 'z').
const MaxSize = 26

// Label is a letter mark on an intersection.
type Label struct {
	Point board.Point
	Text  string
}

// Game is one problem position as an SGF document: a root node with
// board size, setup stones, and the player to move.
type Game struct {
	Width  int
	Height int

	Black []board.Point // AB: black setup stones
	White []board.Point // AW: white setup stones

	Player  board.Color // PL
	Comment string      // C
	Labels  []Label     // LB
}

// moveLabel encodes a board's move-to-solve point as a label carrying the
// to-play color letter. The diagram grammar reserves "B" and "W" for move
// markers, so a label with that text is unambiguously the marker.
func moveLabel(p board.Point, toPlay board.Color) Label {
	return Label{Point: p, Text: toPlay.String()}
}

// FromBoard converts a Board into a Game, validating that the dimensions
// fit the SGF coordinate scheme.
func FromBoard(b *board.Board) (*Game, error) {
	if err := checkSize(b.Width, b.Height); err != nil {
		return nil, err
	}
	g := &Game{
		Width:   b.Width,
		Height:  b.Height,
		Black:   b.Stones(board.Black),
		White:   b.Stones(board.White),
		Player:  b.ToPlay,
		Comment: b.Title,
	}
	for _, l := range b.Labels {
		g.Labels = append(g.Labels, Label{Point: l.Point, Text: l.Text})
	}
	if b.MovePoint != nil {
		g.Labels = append(g.Labels, moveLabel(*b.MovePoint, b.ToPlay))
	}
	return g, nil
}

// ToBoard converts the game back into a Board.
func (g *Game) ToBoard() (*board.Board, error) {
	b, err := board.New(g.Width, g.Height)
	if err != nil {
		return nil, err
	}
	for _, p := range g.Black {
		if err := b.Place(p, board.Black); err != nil {
			return nil, err
		}
	}
	for _, p := range g.White {
		if err := b.Place(p, board.White); err != nil {
			return nil, err
		}
	}
	b.ToPlay = g.Player
	b.Title = g.Comment
	for _, l := range g.Labels {
		if l.Text == g.Player.String() {
			p := l.Point
			b.MovePoint = &p
			continue
		}
		b.Labels = append(b.Labels, board.Label{Point: l.Point, Text: l.Text})
	}
	return b, nil
}

// coord encodes a point in SGF's two-letter scheme: column letter then
// row letter, 'a' for index 0, rows counted from the top.
func coord(p board.Point) string {
	return string([]byte{byte('a' + p.Col), byte('a' + p.Row)})
}

// parseCoord decodes a two-letter SGF coordinate.
func parseCoord(s string) (board.Point, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'z' || s[1] < 'a' || s[1] > 'z' {
		return board.Point{}, errors.New(errors.ErrCodeParse, "bad SGF coordinate %q", s)
	}
	return board.Point{Col: int(s[0] - 'a'), Row: int(s[1] - 'a')}, nil
}

func checkSize(w, h int) error {
	if w < 1 || h < 1 {
		return errors.New(errors.ErrCodeUnsupportedBoard, "non-positive board size %dx%d", w, h)
	}
	if w > MaxSize || h > MaxSize {
		return errors.New(errors.ErrCodeUnsupportedBoard, "board %dx%d exceeds the %d-point SGF coordinate limit", w, h, MaxSize)
	}
	return nil
}
