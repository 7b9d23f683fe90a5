package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gotsumego/tasuki2sgf/pkg/render"
	"github.com/gotsumego/tasuki2sgf/pkg/sgf"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string // output directory (defaults to the input location)
	style     string // sgf-render style name
	shrink    string // crop mode: none, full, rows
	renderBin string // renderer executable override
	noCache   bool   // bypass the render-artifact cache
}

// renderCommand creates the render command for generating image previews
// from already-converted SGF files.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{style: render.DefaultOptions().Style, shrink: "rows"}

	cmd := &cobra.Command{
		Use:   "render <sgf-file-or-dir>",
		Short: "Render SGF files to SVG images with sgf-render",
		Long: `Render one SGF file, or every SGF file in a directory, to SVG using the
external sgf-render tool. Rendered artifacts are cached by content, so
re-rendering an unchanged collection is cheap.

Examples:
  tasuki2sgf render build/easy/sgf/                 # whole directory
  tasuki2sgf render build/easy/sgf/easy-001.sgf     # single file
  tasuki2sgf render build/easy/sgf/ -o previews/    # separate output dir`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (default: next to the input)")
	cmd.Flags().StringVar(&opts.style, "style", opts.style, "sgf-render style name")
	cmd.Flags().StringVar(&opts.shrink, "shrink", opts.shrink, "image crop mode: none, full, rows")
	cmd.Flags().StringVar(&opts.renderBin, "render-binary", "", "renderer executable (default sgf-render)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the render-artifact cache")

	return cmd
}

// runRender renders the SGF files under the given path.
func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	shrink, err := parseShrink(opts.shrink)
	if err != nil {
		return err
	}
	renderOptions := render.Options{Style: opts.style, ShrinkWrap: shrink}

	files, err := collectSGFFiles(input)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		printInfo("No SGF files under %s", input)
		return nil
	}

	store, err := newCache(opts.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	renderer, err := render.New(opts.renderBin, store)
	if err != nil {
		return err
	}

	if opts.output != "" {
		if err := os.MkdirAll(opts.output, 0o755); err != nil {
			return err
		}
	}

	spinner := newSpinnerWithContext(cmd.Context(), fmt.Sprintf("Rendering %d files", len(files)))
	spinner.Start()

	rendered, cached, failed := 0, 0, 0
	var failures []error
	for _, path := range files {
		spinner.SetMessage(fmt.Sprintf("Rendering %s", filepath.Base(path)))

		game, err := loadGame(path)
		if err != nil {
			failed++
			failures = append(failures, err)
			continue
		}

		out := outputPath(path, opts.output)
		hit, err := renderer.Render(cmd.Context(), path, out, game, renderOptions)
		if err != nil {
			failed++
			failures = append(failures, err)
			continue
		}
		if hit {
			cached++
		}
		rendered++
	}

	if spinner.Cancelled() {
		spinner.Stop()
		return cmd.Context().Err()
	}
	if failed > 0 {
		spinner.StopWithError(fmt.Sprintf("Rendered %d files, %d failed", rendered, failed))
		for _, err := range failures {
			printDetail("%v", err)
		}
		return fmt.Errorf("%d render failures", failed)
	}
	spinner.StopWithSuccess(fmt.Sprintf("Rendered %d files (%d from cache)", rendered, cached))
	return nil
}

// loadGame reads and parses one SGF file.
func loadGame(path string) (*sgf.Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	game, err := sgf.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return game, nil
}

// collectSGFFiles returns the .sgf files under input, sorted by name.
// A single file is returned as is.
func collectSGFFiles(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{input}, nil
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".sgf") {
			continue
		}
		files = append(files, filepath.Join(input, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// outputPath derives the SVG path for one SGF file.
func outputPath(sgfPath, outDir string) string {
	name := strings.TrimSuffix(filepath.Base(sgfPath), filepath.Ext(sgfPath)) + ".svg"
	if outDir == "" {
		return filepath.Join(filepath.Dir(sgfPath), name)
	}
	return filepath.Join(outDir, name)
}
