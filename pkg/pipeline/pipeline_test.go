package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gotsumego/tasuki2sgf/pkg/board"
	"github.com/gotsumego/tasuki2sgf/pkg/cache"
	"github.com/gotsumego/tasuki2sgf/pkg/errors"
	"github.com/gotsumego/tasuki2sgf/pkg/sgf"
)

const texSource = `\hfil problem 1, white to play \hfil
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
`

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExecuteConvertsDirectory(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeSource(t, in, "easy-1.tex", texSource)
	writeSource(t, in, "notes.txt", "not a tex file")

	runner := NewRunner(nil, nil)
	opts := &Options{InputDir: in, OutputDir: out}
	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if result.Stats.FilesSeen != 1 {
		t.Errorf("FilesSeen = %d, want 1", result.Stats.FilesSeen)
	}
	if result.Stats.Converted != 2 {
		t.Errorf("Converted = %d, want 2", result.Stats.Converted)
	}
	if result.Failed() {
		t.Errorf("unexpected failures: %v", result.Files[0].Failures)
	}

	want := []string{
		filepath.Join(out, "easy-1", "sgf", "easy-1-001.sgf"),
		filepath.Join(out, "easy-1", "sgf", "easy-1-002.sgf"),
	}
	for i, p := range want {
		if result.Files[0].Written[i] != p {
			t.Errorf("Written[%d] = %q, want %q", i, result.Files[0].Written[i], p)
		}
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing output file %s", p)
		}
	}

	// First problem: white to play, not normalized.
	data, err := os.ReadFile(want[0])
	if err != nil {
		t.Fatal(err)
	}
	g, err := sgf.Parse(data)
	if err != nil {
		t.Fatalf("written SGF does not parse: %v", err)
	}
	if g.Player != board.White {
		t.Errorf("player = %v, want White", g.Player)
	}
	if len(g.Black) != 1 || g.Black[0] != (board.Point{Col: 2, Row: 3}) {
		t.Errorf("black stones = %v", g.Black)
	}
}

func TestExecuteNormalize(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeSource(t, in, "easy-1.tex", texSource)

	runner := NewRunner(nil, nil)
	result, err := runner.Execute(context.Background(), &Options{InputDir: in, OutputDir: out, Normalize: true})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	data, err := os.ReadFile(result.Files[0].Written[0])
	if err != nil {
		t.Fatal(err)
	}
	g, err := sgf.Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if g.Player != board.Black {
		t.Error("normalized problem should have black to play")
	}
	// The colors swapped: the black stone is now at the white stone's point.
	if len(g.Black) != 1 || g.Black[0] != (board.Point{Col: 4, Row: 4}) {
		t.Errorf("black stones = %v", g.Black)
	}
	if len(g.White) != 1 || g.White[0] != (board.Point{Col: 2, Row: 3}) {
		t.Errorf("white stones = %v", g.White)
	}
	if !strings.Contains(g.Comment, "black to play") {
		t.Errorf("comment = %q, want black-to-play caption", g.Comment)
	}
}

func TestExecuteMerge(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeSource(t, in, "easy-1.tex", texSource)

	comments := filepath.Join(t.TempDir(), "comments.toml")
	if err := os.WriteFile(comments, []byte("[comments]\n\"easy-1\" = \"Volume one\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := NewRunner(nil, nil)
	result, err := runner.Execute(context.Background(), &Options{
		InputDir:     in,
		OutputDir:    out,
		Merge:        true,
		CommentsFile: comments,
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	merged := result.Files[0].Merged
	if merged != filepath.Join(out, "easy-1", "easy-1.sgf") {
		t.Fatalf("merged path = %q", merged)
	}
	data, err := os.ReadFile(merged)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "C[Volume one]") {
		t.Errorf("merged SGF missing collection comment:\n%s", data)
	}
	if strings.Count(string(data), "(;") != 3 {
		t.Errorf("merged SGF should hold root plus 2 problems:\n%s", data)
	}
}

func TestExecuteMalformedDiagramKeepsSiblings(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	// Second block has no closing brace.
	bad := texSource[:strings.LastIndex(texSource, "}")]
	writeSource(t, in, "broken.tex", bad)

	runner := NewRunner(nil, nil)
	result, err := runner.Execute(context.Background(), &Options{InputDir: in, OutputDir: out})
	if err != nil {
		t.Fatalf("run-level error: %v", err)
	}

	if !result.Failed() {
		t.Error("result should reflect the parse failure")
	}
	fr := result.Files[0]
	if len(fr.Written) != 1 {
		t.Fatalf("diagrams before the bad block should still be written, got %d", len(fr.Written))
	}
	if _, err := os.Stat(fr.Written[0]); err != nil {
		t.Errorf("surviving SGF missing: %v", err)
	}
	if len(fr.Failures) != 1 || !errors.Is(fr.Failures[0], errors.ErrCodeParse) {
		t.Errorf("failures = %v", fr.Failures)
	}
}

func TestExecuteRendererAbsent(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeSource(t, in, "easy-1.tex", texSource)

	runner := NewRunner(nil, nil)
	result, err := runner.Execute(context.Background(), &Options{
		InputDir:     in,
		OutputDir:    out,
		Render:       true,
		RenderBinary: "definitely-not-an-sgf-renderer",
	})
	if err != nil {
		t.Fatalf("missing renderer must not abort SGF generation: %v", err)
	}

	fr := result.Files[0]
	if len(fr.Written) != 2 {
		t.Fatalf("SGF files should still be written, got %d", len(fr.Written))
	}
	for _, p := range fr.Written {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("SGF output deleted: %v", err)
		}
	}
	if result.Stats.RenderFailed != 2 {
		t.Errorf("RenderFailed = %d, want one per written file", result.Stats.RenderFailed)
	}
	if !result.Failed() {
		t.Error("partial failure should be reflected in the result")
	}
	for _, f := range fr.Failures {
		if !errors.Is(f, errors.ErrCodeRender) {
			t.Errorf("failure code = %q, want RENDER_ERROR", errors.GetCode(f))
		}
	}
}

// fakeRenderer writes a stub executable that copies a fixed payload to
// the path following its -o flag, standing in for sgf-render.
func fakeRenderer(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-sgf-render")
	script := `#!/bin/sh
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; fi
  shift
done
echo '<svg/>' > "$out"
`
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExecuteCountsCacheHits(t *testing.T) {
	in := t.TempDir()
	writeSource(t, in, "easy-1.tex", texSource)

	store, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(store, nil)
	opts := Options{
		InputDir:     in,
		Render:       true,
		RenderBinary: fakeRenderer(t),
	}

	// First run populates the cache.
	first := opts
	first.OutputDir = t.TempDir()
	result, err := runner.Execute(context.Background(), &first)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if result.Stats.Rendered != 2 || result.Stats.CacheHits != 0 {
		t.Fatalf("cold run: Rendered = %d, CacheHits = %d; want 2, 0",
			result.Stats.Rendered, result.Stats.CacheHits)
	}

	// Second run over the same sources is served from the cache.
	second := opts
	second.OutputDir = t.TempDir()
	result, err = runner.Execute(context.Background(), &second)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if result.Stats.Rendered != 2 || result.Stats.CacheHits != 2 {
		t.Errorf("warm run: Rendered = %d, CacheHits = %d; want 2, 2",
			result.Stats.Rendered, result.Stats.CacheHits)
	}

	fr := result.Files[0]
	svg := filepath.Join(second.OutputDir, "easy-1", "render", "easy-1-001.svg")
	if _, err := os.Stat(svg); err != nil {
		t.Errorf("cached artifact not written: %v", err)
	}
	if fr.Rendered != 2 {
		t.Errorf("file Rendered = %d, want 2", fr.Rendered)
	}
}

func TestExecuteMissingInputDir(t *testing.T) {
	runner := NewRunner(nil, nil)
	_, err := runner.Execute(context.Background(), &Options{
		InputDir:  filepath.Join(t.TempDir(), "nope"),
		OutputDir: t.TempDir(),
	})
	if err == nil {
		t.Fatal("missing input directory should be fatal")
	}
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("error code = %q, want NOT_FOUND", errors.GetCode(err))
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		ok   bool
	}{
		{"both dirs", Options{InputDir: "in", OutputDir: "out"}, true},
		{"missing input", Options{OutputDir: "out"}, false},
		{"missing output", Options{InputDir: "in"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if (err == nil) != tt.ok {
				t.Errorf("ValidateAndSetDefaults error = %v", err)
			}
			if tt.ok && tt.opts.RenderOptions.Style == "" {
				t.Error("defaults not applied")
			}
		})
	}
}
