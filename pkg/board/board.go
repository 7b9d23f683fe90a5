// Package board models a single tsumego position: board dimensions, the
// stones placed before the problem starts, and the side to move.
//
// A Board is built once from a parsed diagram, optionally normalized in
// place so black is the side to move, and then consumed by the SGF
// serializer. It carries no state beyond a single problem.
package board

import (
	"sort"
	"strings"

	"github.com/gotsumego/tasuki2sgf/pkg/errors"
)

// Color identifies a stone color or the side to move.
type Color int

// Stone colors.
const (
	Black Color = iota
	White
)

// String returns the SGF color letter ("B" or "W").
func (c Color) String() string {
	if c == White {
		return "W"
	}
	return "B"
}

// Opposite returns the other color.
func (c Color) Opposite() Color {
	if c == Black {
		return White
	}
	return Black
}

// Point is a zero-indexed board intersection. Col runs left to right,
// Row runs top to bottom; (0,0) is the upper-left corner.
type Point struct {
	Col int
	Row int
}

// Label is a letter mark attached to an intersection.
type Label struct {
	Point Point
	Text  string
}

// Board is the abstract position extracted from one diagram block.
type Board struct {
	Width  int
	Height int

	stones map[Point]Color

	// ToPlay is the side to move in the problem.
	ToPlay Color

	// MovePoint is the intersection marked as the move to solve,
	// when the diagram marks one.
	MovePoint *Point

	// Labels are letter marks from the diagram, in placement order.
	Labels []Label

	// Title is the problem caption from the surrounding source.
	Title string
}

// New creates an empty width×height board with black to play.
func New(width, height int) (*Board, error) {
	if width < 1 || height < 1 {
		return nil, errors.New(errors.ErrCodeParse, "zero-size board (%dx%d)", width, height)
	}
	return &Board{
		Width:  width,
		Height: height,
		stones: make(map[Point]Color),
		ToPlay: Black,
	}, nil
}

// Place puts a stone of the given color at p, replacing any stone there.
// Points outside the board are rejected.
func (b *Board) Place(p Point, c Color) error {
	if p.Col < 0 || p.Col >= b.Width || p.Row < 0 || p.Row >= b.Height {
		return errors.New(errors.ErrCodeParse, "stone at (%d,%d) outside %dx%d board", p.Col, p.Row, b.Width, b.Height)
	}
	b.stones[p] = c
	return nil
}

// At returns the stone at p, if any.
func (b *Board) At(p Point) (Color, bool) {
	c, ok := b.stones[p]
	return c, ok
}

// StoneCount returns the total number of stones on the board.
func (b *Board) StoneCount() int {
	return len(b.stones)
}

// Stones returns all points holding a stone of the given color,
// sorted row-major for deterministic output.
func (b *Board) Stones(c Color) []Point {
	var pts []Point
	for p, col := range b.stones {
		if col == c {
			pts = append(pts, p)
		}
	}
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].Row != pts[j].Row {
			return pts[i].Row < pts[j].Row
		}
		return pts[i].Col < pts[j].Col
	})
	return pts
}

// Normalize rewrites the board so black is the side to move. If white is
// to play, every stone's color is swapped; the problem's life-and-death
// semantics are symmetric under color inversion, so coordinates stay
// untouched. Calling Normalize on an already-normalized board is a no-op.
func (b *Board) Normalize() {
	if b.ToPlay == Black {
		return
	}
	for p, c := range b.stones {
		b.stones[p] = c.Opposite()
	}
	b.ToPlay = Black
	b.Title = SwapColorWords(b.Title)
}

// SwapColorWords exchanges the words "black" and "white" in a problem
// title so the caption stays truthful after color inversion.
func SwapColorWords(s string) string {
	const tmp = "\x00"
	s = strings.ReplaceAll(s, "black", tmp)
	s = strings.ReplaceAll(s, "white", "black")
	return strings.ReplaceAll(s, tmp, "white")
}
