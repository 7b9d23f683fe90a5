package sgf

import (
	"fmt"
	"strings"

	"github.com/gotsumego/tasuki2sgf/pkg/errors"
)

// MergeCollection combines per-problem games into a single collection SGF:
// a root node with the board size of the first game and the collection
// comment, followed by one child game tree per problem in the given order.
// Problems keep their own comment, player, stones, and labels; the size
// and format header live on the root.
func MergeCollection(games []*Game, comment string) ([]byte, error) {
	if len(games) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no games to merge")
	}
	for _, g := range games {
		if err := checkSize(g.Width, g.Height); err != nil {
			return nil, err
		}
	}

	root := games[0]
	var b strings.Builder
	b.WriteString("(;FF[4]GM[1]")
	if root.Width == root.Height {
		fmt.Fprintf(&b, "SZ[%d]", root.Width)
	} else {
		fmt.Fprintf(&b, "SZ[%d:%d]", root.Width, root.Height)
	}
	fmt.Fprintf(&b, "\nC[%s]", escapeText(comment))

	for _, g := range games {
		b.WriteString("\n(")
		g.writeNode(&b, false)
		b.WriteString(")")
	}
	b.WriteString("\n)\n")
	return []byte(b.String()), nil
}
