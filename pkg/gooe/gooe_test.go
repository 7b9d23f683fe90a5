package gooe

import (
	"strings"
	"testing"

	"github.com/gotsumego/tasuki2sgf/pkg/board"
	"github.com/gotsumego/tasuki2sgf/pkg/errors"
)

const sampleSource = `\documentclass{book}
\begin{document}
Some prose about the first problem.
\hfil problem 1, white to play \hfil
\vbox{\vbox{\goo[9]
. . . . . . . . .
. . . . . . . . .
. . . . . . . . .
. . @ . . . . . .
. . . . ! . . . .
. . . . . . . . .
. . . . . . . . .
. . . . . . . . .
. . . . . . . . .
}
More prose.
\hfil problem 2, black to play \hfil
\vbox{\vbox{\goo[9]
@ ! . . . . . . .
. . . . . . . . .
. . . . . . . . .
. . . . . . . . .
. . . . . . . . .
. . . . . . . . .
. . . . . . . . .
. . . . . . . . .
. . . . . . . . .
}
\end{document}
`

func TestExtractFindsDiagramsInOrder(t *testing.T) {
	diags, err := Extract(sampleSource)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if len(diags) != 2 {
		t.Fatalf("got %d diagrams, want 2", len(diags))
	}
	if diags[0].Index != 1 || diags[1].Index != 2 {
		t.Errorf("indices = %d, %d", diags[0].Index, diags[1].Index)
	}
	if diags[0].Title != "problem 1, white to play" {
		t.Errorf("title 1 = %q", diags[0].Title)
	}
	if diags[1].Title != "problem 2, black to play" {
		t.Errorf("title 2 = %q", diags[1].Title)
	}
	if diags[0].Size != "9" {
		t.Errorf("size = %q, want 9", diags[0].Size)
	}
}

func TestExtractUnterminatedBlockKeepsEarlierDiagrams(t *testing.T) {
	src := strings.Replace(sampleSource, `. . . . . . . . .
}
\end{document}`, ". . . . . . . . .\n", 1)

	diags, err := Extract(src)
	if err == nil {
		t.Fatal("expected ParseError for missing closing delimiter")
	}
	if !errors.Is(err, errors.ErrCodeParse) {
		t.Errorf("error code = %q, want PARSE_ERROR", errors.GetCode(err))
	}
	if len(diags) != 1 {
		t.Fatalf("diagrams before the bad block should survive, got %d", len(diags))
	}
	if diags[0].Title != "problem 1, white to play" {
		t.Errorf("surviving diagram title = %q", diags[0].Title)
	}
}

func TestExtractIgnoresSurroundingProse(t *testing.T) {
	diags, err := Extract("no diagrams here, just \\LaTeX{} prose")
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("got %d diagrams from plain prose", len(diags))
	}
}

func TestScanIsLazy(t *testing.T) {
	seen := 0
	for _, err := range Scan(sampleSource) {
		if err != nil {
			t.Fatalf("Scan error: %v", err)
		}
		seen++
		break // stop after the first diagram
	}
	if seen != 1 {
		t.Errorf("consumed %d diagrams, want 1", seen)
	}
}

func TestParseScenario9x9(t *testing.T) {
	// Black at (2,3), white at (4,4), white to play.
	diags, err := Extract(sampleSource)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}

	b, err := Parse(diags[0])
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if b.Width != 9 || b.Height != 9 {
		t.Fatalf("board = %dx%d, want 9x9", b.Width, b.Height)
	}
	if b.ToPlay != board.White {
		t.Errorf("ToPlay = %v, want White", b.ToPlay)
	}
	if c, ok := b.At(board.Point{Col: 2, Row: 3}); !ok || c != board.Black {
		t.Errorf("expected black stone at (2,3)")
	}
	if c, ok := b.At(board.Point{Col: 4, Row: 4}); !ok || c != board.White {
		t.Errorf("expected white stone at (4,4)")
	}
	if b.StoneCount() != 2 {
		t.Errorf("stone count = %d, want 2", b.StoneCount())
	}
}

func TestParseMoveMarker(t *testing.T) {
	d := Diagram{Index: 1, Size: "5", Body: `
@ ! . . .
. W . . .
. . . . .
. . . . .
. . . . .
`}
	b, err := Parse(d)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if b.ToPlay != board.White {
		t.Errorf("ToPlay = %v, want White from marker", b.ToPlay)
	}
	if b.MovePoint == nil || *b.MovePoint != (board.Point{Col: 1, Row: 1}) {
		t.Errorf("MovePoint = %v", b.MovePoint)
	}
	// The marked point itself holds no stone.
	if _, ok := b.At(board.Point{Col: 1, Row: 1}); ok {
		t.Error("move marker should not place a stone")
	}
}

func TestParseLabels(t *testing.T) {
	d := Diagram{Index: 1, Size: "3", Title: "black to play", Body: `
@ A .
. . C
. . .
`}
	b, err := Parse(d)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(b.Labels) != 2 {
		t.Fatalf("labels = %d, want 2", len(b.Labels))
	}
	if b.Labels[0].Text != "A" || b.Labels[0].Point != (board.Point{Col: 1, Row: 0}) {
		t.Errorf("label 0 = %+v", b.Labels[0])
	}
	if b.Labels[1].Text != "C" || b.Labels[1].Point != (board.Point{Col: 2, Row: 1}) {
		t.Errorf("label 1 = %+v", b.Labels[1])
	}
}

func TestParseGooeMacros(t *testing.T) {
	d := Diagram{Index: 1, Size: "3", Title: "black to play", Body: "\\0??\\0??\\0??\n\\- @ \\!  ! .\n\\0??\\0??\\0??\n"}
	b, err := Parse(d)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if c, ok := b.At(board.Point{Col: 0, Row: 1}); !ok || c != board.Black {
		t.Error("expected black stone at (0,1)")
	}
	if c, ok := b.At(board.Point{Col: 1, Row: 1}); !ok || c != board.White {
		t.Error("expected white stone at (1,1)")
	}
}

func TestParsePartialDiagramIsTopAnchored(t *testing.T) {
	d := Diagram{Index: 1, Size: "9", Title: "black to play", Body: `
. . . @ . . . . .
. . ! . . . . . .
`}
	b, err := Parse(d)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if b.Height != 9 {
		t.Errorf("height = %d, want 9", b.Height)
	}
	if c, ok := b.At(board.Point{Col: 3, Row: 0}); !ok || c != board.Black {
		t.Error("expected black stone in the top row")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		d    Diagram
	}{
		{"unknown character", Diagram{Index: 1, Size: "3", Title: "black to play", Body: ". ? .\n. . .\n. . .\n"}},
		{"row too wide", Diagram{Index: 1, Size: "3", Title: "black to play", Body: ". . . .\n"}},
		{"row too narrow", Diagram{Index: 1, Size: "3", Title: "black to play", Body: ". .\n"}},
		{"too many rows", Diagram{Index: 1, Size: "2", Title: "black to play", Body: ". .\n. .\n. .\n"}},
		{"zero size", Diagram{Index: 1, Size: "0", Body: ""}},
		{"bad size argument", Diagram{Index: 1, Size: "9xx", Body: ""}},
		{"missing to-play", Diagram{Index: 1, Size: "3", Title: "untitled", Body: ". @ .\n. . .\n. . .\n"}},
		{"two move markers", Diagram{Index: 1, Size: "3", Body: "B . .\n. W .\n. . .\n"}},
		{"marker conflicts with caption", Diagram{Index: 1, Size: "3", Title: "white to play", Body: "B . .\n. . .\n. . .\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.d)
			if err == nil {
				t.Fatal("expected ParseError")
			}
			if !errors.Is(err, errors.ErrCodeParse) {
				t.Errorf("error code = %q, want PARSE_ERROR", errors.GetCode(err))
			}
		})
	}
}

func TestParseDefaultSize(t *testing.T) {
	var rows []string
	for i := 0; i < 19; i++ {
		rows = append(rows, strings.TrimSpace(strings.Repeat(". ", 19)))
	}
	d := Diagram{Index: 1, Title: "black to play", Body: strings.Join(rows, "\n")}
	b, err := Parse(d)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if b.Width != DefaultSize || b.Height != DefaultSize {
		t.Errorf("board = %dx%d, want %dx%d", b.Width, b.Height, DefaultSize, DefaultSize)
	}
}
