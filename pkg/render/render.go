// Package render invokes the external sgf-render executable to turn SGF
// files into image previews. Rendering is delegated entirely to that tool;
// this package only builds its command line, checks its exit status, and
// caches the resulting artifacts. When svgcleaner is available on the
// path, generated SVGs are minified with it.
package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/gotsumego/tasuki2sgf/pkg/cache"
	"github.com/gotsumego/tasuki2sgf/pkg/errors"
	"github.com/gotsumego/tasuki2sgf/pkg/sgf"
)

// DefaultBinary is the renderer executable looked up on the path.
const DefaultBinary = "sgf-render"

// cleanerBinary minifies SVG output when present. Optional.
const cleanerBinary = "svgcleaner"

// DefaultCacheTTL is how long rendered artifacts stay cached.
const DefaultCacheTTL = 30 * 24 * time.Hour

// ShrinkWrap controls how tightly the rendered image crops the board.
type ShrinkWrap int

const (
	// ShrinkNone renders the full board.
	ShrinkNone ShrinkWrap = iota
	// ShrinkFull crops to the bounding box of the stones.
	ShrinkFull
	// ShrinkRows crops rows below the position but keeps full columns,
	// which keeps problems in one collection visually aligned.
	ShrinkRows
)

// Options configure a single render invocation.
type Options struct {
	Style      string // sgf-render style name
	ShrinkWrap ShrinkWrap
}

// DefaultOptions mirror the settings used for tasuki's published diagrams.
func DefaultOptions() Options {
	return Options{Style: "minimalist", ShrinkWrap: ShrinkRows}
}

// Renderer runs sgf-render with artifact caching.
type Renderer struct {
	bin     string
	cleaner string // empty when svgcleaner is not installed
	cache   cache.Cache
}

// New locates the renderer executable and returns a Renderer using it.
// A RenderError is returned when the binary is not on the path. The cache
// may be nil to disable artifact caching.
func New(binary string, c cache.Cache) (*Renderer, error) {
	if binary == "" {
		binary = DefaultBinary
	}
	bin, err := exec.LookPath(binary)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "%s is not available", binary)
	}
	if c == nil {
		c = cache.NewNullCache()
	}

	r := &Renderer{bin: bin, cache: c}
	if cleaner, err := exec.LookPath(cleanerBinary); err == nil {
		r.cleaner = cleaner
	}
	return r, nil
}

// Render turns the SGF file at sgfPath into an image at outPath. The game
// is the parsed form of the same SGF, used to compute the shrink-wrap
// range. Cached artifacts are written without invoking the renderer; the
// first return reports whether the artifact came from the cache.
func (r *Renderer) Render(ctx context.Context, sgfPath, outPath string, game *sgf.Game, opts Options) (bool, error) {
	data, err := os.ReadFile(sgfPath)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeIO, err, "read %s", sgfPath)
	}

	key := cache.RenderKey(cache.Hash(data), cache.RenderKeyOpts{
		Style:      opts.Style,
		ShrinkWrap: fmt.Sprintf("%d", opts.ShrinkWrap),
		Format:     "svg",
	})
	if artifact, hit, _ := r.cache.Get(ctx, key); hit {
		if err := os.WriteFile(outPath, artifact, 0o644); err != nil {
			return false, errors.Wrap(errors.ErrCodeIO, err, "write %s", outPath)
		}
		return true, nil
	}

	args := []string{sgfPath, "--style", opts.Style, "--no-board-labels", "-o", outPath}
	switch opts.ShrinkWrap {
	case ShrinkFull:
		args = append(args, "-s")
	case ShrinkRows:
		if rng, ok := rowRange(game); ok {
			args = append(args, "-r", rng)
		}
	}

	cmd := exec.CommandContext(ctx, r.bin, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return false, errors.Wrap(errors.ErrCodeRender, err, "%s %s: %s", r.bin, sgfPath, firstLine(out))
	}

	if r.cleaner != "" {
		// Best effort; a failed minify leaves the valid uncleaned SVG.
		_ = exec.CommandContext(ctx, r.cleaner, "--quiet", outPath, outPath).Run()
	}

	if artifact, err := os.ReadFile(outPath); err == nil {
		_ = r.cache.Set(ctx, key, artifact, DefaultCacheTTL)
	}
	return false, nil
}

// rowRange computes the sgf-render -r view range for ShrinkRows: the full
// board width from the top row down to one row past the deepest stone.
// Returns !ok for an empty board, which renders uncropped.
func rowRange(game *sgf.Game) (string, bool) {
	if game == nil || (len(game.Black) == 0 && len(game.White) == 0) {
		return "", false
	}

	maxRow := 0
	for _, p := range game.Black {
		if p.Row > maxRow {
			maxRow = p.Row
		}
	}
	for _, p := range game.White {
		if p.Row > maxRow {
			maxRow = p.Row
		}
	}

	lastRow := maxRow + 1
	if lastRow > game.Height-1 {
		lastRow = game.Height - 1
	}
	lastCol := game.Width - 1
	return fmt.Sprintf("aa-%c%c", 'a'+lastCol, 'a'+lastRow), true
}

func firstLine(out []byte) string {
	for i, b := range out {
		if b == '\n' {
			return string(out[:i])
		}
	}
	return string(out)
}
