package sgf

import (
	"strconv"
	"strings"

	"github.com/gotsumego/tasuki2sgf/pkg/board"
	"github.com/gotsumego/tasuki2sgf/pkg/errors"
)

// Parse reads the root node of an SGF game tree into a Game. It supports
// exactly the property set Serialize emits (FF, GM, SZ, C, PL, AB, AW, LB,
// CA); unknown properties are skipped, child trees are ignored. This is
// enough to round-trip converter output, not a general SGF reader.
func Parse(data []byte) (*Game, error) {
	props, err := rootProperties(string(data))
	if err != nil {
		return nil, err
	}

	g := &Game{Width: 19, Height: 19, Player: board.Black}

	if vals, ok := props["SZ"]; ok {
		if err := g.parseSize(vals[0]); err != nil {
			return nil, err
		}
	}
	if vals, ok := props["PL"]; ok {
		switch strings.ToUpper(vals[0]) {
		case "B":
			g.Player = board.Black
		case "W":
			g.Player = board.White
		default:
			return nil, errors.New(errors.ErrCodeParse, "bad PL value %q", vals[0])
		}
	}
	if vals, ok := props["C"]; ok {
		g.Comment = vals[0]
	}
	for _, v := range props["AB"] {
		p, err := parseCoord(v)
		if err != nil {
			return nil, err
		}
		g.Black = append(g.Black, p)
	}
	for _, v := range props["AW"] {
		p, err := parseCoord(v)
		if err != nil {
			return nil, err
		}
		g.White = append(g.White, p)
	}
	for _, v := range props["LB"] {
		pt, text, ok := strings.Cut(v, ":")
		if !ok {
			return nil, errors.New(errors.ErrCodeParse, "bad LB value %q", v)
		}
		p, err := parseCoord(pt)
		if err != nil {
			return nil, err
		}
		g.Labels = append(g.Labels, Label{Point: p, Text: text})
	}

	if err := checkSize(g.Width, g.Height); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) parseSize(v string) error {
	if ws, hs, ok := strings.Cut(v, ":"); ok {
		w, errW := strconv.Atoi(ws)
		h, errH := strconv.Atoi(hs)
		if errW != nil || errH != nil {
			return errors.New(errors.ErrCodeParse, "bad SZ value %q", v)
		}
		g.Width, g.Height = w, h
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return errors.New(errors.ErrCodeParse, "bad SZ value %q", v)
	}
	g.Width, g.Height = n, n
	return nil
}

// rootProperties scans the first node of the game tree and collects its
// properties. Multi-value properties (AB[aa][bb]) accumulate in order.
func rootProperties(text string) (map[string][]string, error) {
	i := skipSpace(text, 0)
	if i >= len(text) || text[i] != '(' {
		return nil, errors.New(errors.ErrCodeParse, "SGF must start with '('")
	}
	i = skipSpace(text, i+1)
	if i >= len(text) || text[i] != ';' {
		return nil, errors.New(errors.ErrCodeParse, "expected ';' after '('")
	}
	i++

	props := make(map[string][]string)
	for {
		i = skipSpace(text, i)
		if i >= len(text) {
			return nil, errors.New(errors.ErrCodeParse, "unterminated SGF game tree")
		}
		c := text[i]
		if c == ';' || c == '(' || c == ')' {
			// End of the root node.
			return props, nil
		}

		// Property identifier: one or more uppercase letters.
		start := i
		for i < len(text) && text[i] >= 'A' && text[i] <= 'Z' {
			i++
		}
		if i == start {
			return nil, errors.New(errors.ErrCodeParse, "unexpected character %q in SGF node", c)
		}
		ident := text[start:i]

		// One or more bracketed values.
		nvals := 0
		for {
			i = skipSpace(text, i)
			if i >= len(text) || text[i] != '[' {
				break
			}
			val, next, err := readValue(text, i)
			if err != nil {
				return nil, err
			}
			props[ident] = append(props[ident], val)
			nvals++
			i = next
		}
		if nvals == 0 {
			return nil, errors.New(errors.ErrCodeParse, "property %s has no value", ident)
		}
	}
}

// readValue reads a bracketed property value starting at the '[' at
// text[i], handling backslash escapes. It returns the unescaped value and
// the index just past the closing ']'.
func readValue(text string, i int) (string, int, error) {
	var b strings.Builder
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			if j+1 >= len(text) {
				return "", 0, errors.New(errors.ErrCodeParse, "dangling escape in property value")
			}
			j++
			b.WriteByte(text[j])
		case ']':
			return b.String(), j + 1, nil
		default:
			b.WriteByte(text[j])
		}
	}
	return "", 0, errors.New(errors.ErrCodeParse, "unterminated property value")
}

func skipSpace(text string, i int) int {
	for i < len(text) && (text[i] == ' ' || text[i] == '\t' || text[i] == '\n' || text[i] == '\r') {
		i++
	}
	return i
}
