package sgf

import (
	"fmt"
	"strings"
)

// Serialize emits the game as SGF text, one root node wrapped in a game
// tree. Stone and label properties are emitted in sorted order so output
// is deterministic.
func (g *Game) Serialize() ([]byte, error) {
	if err := checkSize(g.Width, g.Height); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("(")
	g.writeNode(&b, true)
	b.WriteString(")\n")
	return []byte(b.String()), nil
}

// writeNode writes the root node properties. The header (FF/GM/SZ and the
// trailing CA) is omitted for subgames inside a merged collection, which
// inherit those from the collection root.
func (g *Game) writeNode(b *strings.Builder, header bool) {
	b.WriteString(";")
	if header {
		b.WriteString("FF[4]GM[1]")
		if g.Width == g.Height {
			fmt.Fprintf(b, "SZ[%d]", g.Width)
		} else {
			fmt.Fprintf(b, "SZ[%d:%d]", g.Width, g.Height)
		}
	}
	if g.Comment != "" {
		fmt.Fprintf(b, "\nC[%s]", escapeText(g.Comment))
	}
	fmt.Fprintf(b, "\nPL[%s]", g.Player)
	if len(g.Black) > 0 {
		b.WriteString("\nAB")
		for _, p := range g.Black {
			fmt.Fprintf(b, "[%s]", coord(p))
		}
	}
	if len(g.White) > 0 {
		b.WriteString("\nAW")
		for _, p := range g.White {
			fmt.Fprintf(b, "[%s]", coord(p))
		}
	}
	if len(g.Labels) > 0 {
		b.WriteString("\nLB")
		for _, l := range g.Labels {
			fmt.Fprintf(b, "[%s:%s]", coord(l.Point), escapeText(l.Text))
		}
	}
	if header {
		b.WriteString("\nCA[UTF-8]")
	}
}

// escapeText escapes the characters SGF treats specially inside a
// bracketed property value.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "]", `\]`)
}
