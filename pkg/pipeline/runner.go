package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gotsumego/tasuki2sgf/pkg/cache"
	"github.com/gotsumego/tasuki2sgf/pkg/collection"
	"github.com/gotsumego/tasuki2sgf/pkg/errors"
	"github.com/gotsumego/tasuki2sgf/pkg/gooe"
	"github.com/gotsumego/tasuki2sgf/pkg/render"
	"github.com/gotsumego/tasuki2sgf/pkg/sgf"
)

// Runner executes the conversion pipeline.
type Runner struct {
	cache  cache.Cache
	logger *log.Logger
}

// NewRunner creates a pipeline runner. The cache backs rendered artifacts
// and may be nil to disable caching; a nil logger discards log output.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = nopLogger()
	}
	return &Runner{cache: c, logger: logger}
}

// written pairs an SGF file on disk with its parsed game, so the renderer
// can compute crop ranges without re-reading the file.
type written struct {
	path string
	game *sgf.Game
}

// Execute converts every .tex file in opts.InputDir. It returns an error
// only for run-level failures (bad options, unreadable input directory,
// unwritable output directory); per-diagram and per-render failures are
// recorded in the Result and leave sibling outputs intact.
func (r *Runner) Execute(ctx context.Context, opts *Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	meta := &collection.Metadata{}
	if opts.CommentsFile != "" {
		m, err := collection.Load(opts.CommentsFile, false)
		if err != nil {
			return nil, err
		}
		meta = m
	}

	entries, err := os.ReadDir(opts.InputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "input directory %s does not exist", opts.InputDir)
		}
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read input directory %s", opts.InputDir)
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "create output directory %s", opts.OutputDir)
	}

	// The renderer is looked up once per run; when it is missing, every
	// written SGF gets a per-file RenderError and conversion proceeds.
	var renderer *render.Renderer
	var rendererErr error
	if opts.Render {
		renderer, rendererErr = render.New(opts.RenderBinary, r.cache)
		if rendererErr != nil {
			r.logger.Warnf("Rendering disabled: %v", rendererErr)
		}
	}

	var only map[string]bool
	if len(opts.Only) > 0 {
		only = make(map[string]bool, len(opts.Only))
		for _, name := range opts.Only {
			only[name] = true
		}
	}

	result := &Result{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".tex") {
			continue
		}
		if only != nil && !only[entry.Name()] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		path := filepath.Join(opts.InputDir, entry.Name())
		r.logger.Infof("Processing %s", path)
		result.Stats.FilesSeen++

		fr := r.convertFile(path, opts, meta, &result.Stats)

		if opts.Render {
			start := time.Now()
			r.renderFile(ctx, renderer, rendererErr, fr, opts, &result.Stats)
			result.Stats.RenderTime += time.Since(start)
		}

		result.Files = append(result.Files, fr.FileResult())
	}

	return result, nil
}

// fileState carries one source file's conversion through the stages.
type fileState struct {
	source   string
	stem     string
	outDir   string
	written  []written
	merged   string
	ndiag    int
	rendered int
	failures []error
}

// FileResult flattens the state into the public result type.
func (f *fileState) FileResult() FileResult {
	fr := FileResult{
		Source:   f.source,
		Diagrams: f.ndiag,
		Merged:   f.merged,
		Rendered: f.rendered,
		Failures: f.failures,
	}
	for _, w := range f.written {
		fr.Written = append(fr.Written, w.path)
	}
	return fr
}

// convertFile runs extract → build → normalize → serialize → write for one
// source file. Each diagram fails independently.
func (r *Runner) convertFile(path string, opts *Options, meta *collection.Metadata, stats *Stats) *fileState {
	start := time.Now()
	defer func() { stats.ConvertTime += time.Since(start) }()

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	fs := &fileState{
		source: path,
		stem:   stem,
		outDir: filepath.Join(opts.OutputDir, stem),
	}

	text, err := os.ReadFile(path)
	if err != nil {
		fs.fail(stats, errors.Wrap(errors.ErrCodeIO, err, "read %s", path))
		return fs
	}

	diagrams, scanErr := gooe.Extract(string(text))
	fs.ndiag = len(diagrams)
	stats.Diagrams += len(diagrams)
	if scanErr != nil {
		// Diagrams before the malformed block are still converted.
		fs.fail(stats, fmt.Errorf("%s: %w", path, scanErr))
	}
	if len(diagrams) == 0 {
		return fs
	}

	sgfDir := filepath.Join(fs.outDir, "sgf")
	if err := os.MkdirAll(sgfDir, 0o755); err != nil {
		fs.fail(stats, errors.Wrap(errors.ErrCodeIO, err, "create %s", sgfDir))
		return fs
	}

	var games []*sgf.Game
	for _, d := range diagrams {
		game, err := r.convertDiagram(d, opts)
		if err != nil {
			fs.fail(stats, fmt.Errorf("%s diagram %d: %w", path, d.Index, err))
			continue
		}

		out := filepath.Join(sgfDir, fmt.Sprintf("%s-%03d.sgf", stem, d.Index))
		data, err := game.Serialize()
		if err != nil {
			fs.fail(stats, fmt.Errorf("%s diagram %d: %w", path, d.Index, err))
			continue
		}
		if err := writeFileAtomic(out, data); err != nil {
			fs.fail(stats, errors.Wrap(errors.ErrCodeIO, err, "write %s", out))
			continue
		}

		r.logger.Debugf("Wrote %s", out)
		fs.written = append(fs.written, written{path: out, game: game})
		games = append(games, game)
		stats.Converted++
	}

	if opts.Merge && len(games) > 0 {
		merged, err := sgf.MergeCollection(games, meta.Comment(stem))
		if err != nil {
			fs.fail(stats, fmt.Errorf("merge %s: %w", path, err))
			return fs
		}
		out := filepath.Join(fs.outDir, stem+".sgf")
		if err := writeFileAtomic(out, merged); err != nil {
			fs.fail(stats, errors.Wrap(errors.ErrCodeIO, err, "write %s", out))
			return fs
		}
		fs.merged = out
	}

	return fs
}

// convertDiagram builds and serializes one board.
func (r *Runner) convertDiagram(d gooe.Diagram, opts *Options) (*sgf.Game, error) {
	b, err := gooe.Parse(d)
	if err != nil {
		return nil, err
	}
	if opts.Normalize {
		b.Normalize()
	}
	return sgf.FromBoard(b)
}

// renderFile renders every SGF written for one source file. Failures are
// recorded per file and never delete the SGF output.
func (r *Runner) renderFile(ctx context.Context, renderer *render.Renderer, rendererErr error, fs *fileState, opts *Options, stats *Stats) {
	if len(fs.written) == 0 && fs.merged == "" {
		return
	}
	if rendererErr != nil {
		for range fs.written {
			fs.failures = append(fs.failures, rendererErr)
			stats.RenderFailed++
		}
		return
	}

	renderDir := filepath.Join(fs.outDir, "render")
	if err := os.MkdirAll(renderDir, 0o755); err != nil {
		fs.failures = append(fs.failures, errors.Wrap(errors.ErrCodeIO, err, "create %s", renderDir))
		stats.RenderFailed++
		return
	}

	for _, w := range fs.written {
		name := strings.TrimSuffix(filepath.Base(w.path), ".sgf") + ".svg"
		out := filepath.Join(renderDir, name)
		hit, err := renderer.Render(ctx, w.path, out, w.game, opts.RenderOptions)
		if err != nil {
			fs.failures = append(fs.failures, err)
			stats.RenderFailed++
			continue
		}
		if hit {
			stats.CacheHits++
		}
		fs.rendered++
		stats.Rendered++
	}
}

func (f *fileState) fail(stats *Stats, err error) {
	f.failures = append(f.failures, err)
	stats.Failed++
}

// writeFileAtomic writes data to a unique temp file in the target
// directory and renames it into place, so a crash or a failing render run
// never leaves a half-written SGF behind.
func writeFileAtomic(path string, data []byte) error {
	tmp := fmt.Sprintf("%s.tmp-%s", path, uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
