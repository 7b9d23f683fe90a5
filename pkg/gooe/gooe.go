// Package gooe extracts go-board diagrams from LaTeX sources written in
// the gooe macro dialect used by tasuki's tsumego collections.
//
// # Diagram syntax
//
// A diagram block looks like:
//
//	\vbox{\vbox{\goo[9]
//	. . . . . . . . .
//	. . @ ! . . . . .
//	...
//	}
//
// The optional bracket argument declares the board size, either a single
// number for a square board or WxH for a rectangular one; it defaults to
// 19. Each following line is one board row, top to bottom. Cell characters:
//
//	.  ,   empty point (',' marks a hoshi in some sources)
//	@      black stone
//	!      white stone
//	B  W   the point to be played, carrying the to-play color
//	A-Z    letter label on an empty point (B and W are taken by markers)
//
// Whitespace between cells is ignored. The gooe macros that appear in raw
// tasuki sources are normalized before scanning: the empty-point macro
// \0?? becomes '.', and the spacing macros \- and \! are removed.
//
// Problem captions are taken from \hfil ... \hfil lines and paired with
// diagrams in source order; a "black to play"/"white to play" phrase in the
// caption supplies the side to move when the diagram has no marker cell.
package gooe

import (
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"strings"

	"github.com/gotsumego/tasuki2sgf/pkg/board"
	"github.com/gotsumego/tasuki2sgf/pkg/errors"
)

// DefaultSize is the board size assumed when a diagram declares none.
const DefaultSize = 19

// Diagram is one raw diagram block cut out of a source file.
// It owns no state beyond the substring it was parsed from.
type Diagram struct {
	Index int    // 1-based position within the source file
	Size  string // raw size argument ("", "9", or "9x13")
	Title string // caption text, may be empty
	Body  string // raw row lines between \goo and the closing brace
}

var (
	openRe  = regexp.MustCompile(`(?m)^\\vbox\{\\vbox\{\\goo(?:\[([0-9]+(?:x[0-9]+)?)\])?[ \t]*\r?\n`)
	titleRe = regexp.MustCompile(`(?m)^\\hfil(.*?)\\hfil`)
)

// Scan returns a one-shot iterator over the diagram blocks in text, in
// source order. A block whose opening macro has no closing brace yields a
// ParseError after all earlier blocks have been yielded; iteration stops
// there.
func Scan(text string) iter.Seq2[Diagram, error] {
	titles := titleRe.FindAllStringSubmatch(text, -1)
	opens := openRe.FindAllStringSubmatchIndex(text, -1)

	return func(yield func(Diagram, error) bool) {
		for i, loc := range opens {
			bodyStart := loc[1]
			end := strings.Index(text[bodyStart:], "}")
			if end < 0 {
				yield(Diagram{}, errors.New(errors.ErrCodeParse, "diagram %d: missing closing delimiter", i+1))
				return
			}

			d := Diagram{
				Index: i + 1,
				Body:  text[bodyStart : bodyStart+end],
			}
			if loc[2] >= 0 {
				d.Size = text[loc[2]:loc[3]]
			}
			if i < len(titles) {
				d.Title = strings.TrimSpace(titles[i][1])
			}
			if !yield(d, nil) {
				return
			}
		}
	}
}

// Extract collects all diagram blocks in text. When a block is malformed
// the diagrams preceding it are still returned alongside the error.
func Extract(text string) ([]Diagram, error) {
	var out []Diagram
	for d, err := range Scan(text) {
		if err != nil {
			return out, err
		}
		out = append(out, d)
	}
	return out, nil
}

// macroRewrites normalizes gooe macros into table characters before cell
// scanning: the empty-point macro becomes '.', spacing macros vanish.
var macroRewrites = [][2]string{
	{`\0??`, "."},
	{`\- `, ""},
	{`\!  `, ""},
}

// Parse interprets one diagram block into a Board. Row 0 of the body is
// the top of the board. Diagrams may declare fewer rows than the board
// height (partial, top-anchored positions); every present row must match
// the declared width exactly.
func Parse(d Diagram) (*board.Board, error) {
	w, h, err := parseSize(d.Size)
	if err != nil {
		return nil, err
	}

	b, err := board.New(w, h)
	if err != nil {
		return nil, err
	}
	b.Title = d.Title

	body := d.Body
	for _, m := range macroRewrites {
		body = strings.ReplaceAll(body, m[0], m[1])
	}

	var marker *board.Point
	var markerColor board.Color

	row := 0
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if row >= h {
			return nil, parseErr(d, "more than %d rows", h)
		}

		col := 0
		for _, ch := range line {
			cell, ok := cellTable[ch]
			if !ok {
				return nil, parseErr(d, "row %d: unknown cell character %q", row+1, ch)
			}
			if cell == cellSkip {
				continue
			}
			if col >= w {
				return nil, parseErr(d, "row %d is wider than the declared width %d", row+1, w)
			}

			p := board.Point{Col: col, Row: row}
			switch cell {
			case cellEmpty:
				// nothing to record
			case cellBlack:
				if err := b.Place(p, board.Black); err != nil {
					return nil, err
				}
			case cellWhite:
				if err := b.Place(p, board.White); err != nil {
					return nil, err
				}
			case cellMoveBlack, cellMoveWhite:
				if marker != nil {
					return nil, parseErr(d, "row %d: second move marker at (%d,%d)", row+1, col, row)
				}
				marker = &p
				markerColor = board.Black
				if cell == cellMoveWhite {
					markerColor = board.White
				}
			case cellLabel:
				b.Labels = append(b.Labels, board.Label{Point: p, Text: string(ch)})
			}
			col++
		}
		if col != w {
			return nil, parseErr(d, "row %d has %d points, board is %d wide", row+1, col, w)
		}
		row++
	}

	if err := resolveToPlay(b, d, marker, markerColor); err != nil {
		return nil, err
	}
	return b, nil
}

// cell classifies one scanned character.
type cell int

const (
	cellSkip cell = iota // whitespace, ignored
	cellEmpty
	cellBlack
	cellWhite
	cellMoveBlack
	cellMoveWhite
	cellLabel
)

// cellTable is the explicit character grammar. Anything absent from the
// table is a ParseError, which keeps the dialect auditable.
var cellTable = buildCellTable()

func buildCellTable() map[rune]cell {
	t := map[rune]cell{
		' ':  cellSkip,
		'\t': cellSkip,
		'\r': cellSkip,
		'.':  cellEmpty,
		',':  cellEmpty,
		'@':  cellBlack,
		'!':  cellWhite,
		'B':  cellMoveBlack,
		'W':  cellMoveWhite,
	}
	for ch := 'A'; ch <= 'Z'; ch++ {
		if ch == 'B' || ch == 'W' {
			continue
		}
		t[ch] = cellLabel
	}
	return t
}

// resolveToPlay decides the side to move: a marker cell wins, otherwise a
// color phrase in the caption. Having neither, or both in disagreement, is
// a ParseError.
func resolveToPlay(b *board.Board, d Diagram, marker *board.Point, markerColor board.Color) error {
	titleColor, titleOK := titleToPlay(d.Title)

	switch {
	case marker != nil && titleOK && markerColor != titleColor:
		return parseErr(d, "move marker says %s to play but caption says %s", markerColor, titleColor)
	case marker != nil:
		b.ToPlay = markerColor
		b.MovePoint = marker
	case titleOK:
		b.ToPlay = titleColor
	default:
		return parseErr(d, "no move marker and no to-play phrase in caption")
	}
	return nil
}

// titleToPlay looks for "black to play" / "white to play" in a caption.
func titleToPlay(title string) (board.Color, bool) {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "black to play"):
		return board.Black, true
	case strings.Contains(t, "white to play"):
		return board.White, true
	}
	return board.Black, false
}

// parseSize interprets the bracket argument of \goo.
func parseSize(s string) (w, h int, err error) {
	if s == "" {
		return DefaultSize, DefaultSize, nil
	}
	if ws, hs, ok := strings.Cut(s, "x"); ok {
		w, err = strconv.Atoi(ws)
		if err != nil {
			return 0, 0, errors.New(errors.ErrCodeParse, "bad board size %q", s)
		}
		h, err = strconv.Atoi(hs)
		if err != nil {
			return 0, 0, errors.New(errors.ErrCodeParse, "bad board size %q", s)
		}
		return w, h, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, 0, errors.New(errors.ErrCodeParse, "bad board size %q", s)
	}
	return n, n, nil
}

func parseErr(d Diagram, format string, args ...any) error {
	return errors.New(errors.ErrCodeParse, "diagram %d: %s", d.Index, fmt.Sprintf(format, args...))
}
