package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gotsumego/tasuki2sgf/pkg/pipeline"
	"github.com/gotsumego/tasuki2sgf/pkg/render"
)

// convertOpts holds the command-line flags for the convert command.
type convertOpts struct {
	output      string // output directory, one subdirectory per source file
	normalize   bool   // flip every problem so black is to play
	render      bool   // invoke sgf-render on every written SGF
	merge       bool   // also write one collection SGF per source file
	comments    string // TOML file with per-collection comments
	style       string // sgf-render style name
	shrink      string // crop mode: none, full, rows
	renderBin   string // renderer executable override
	noCache     bool   // bypass the render-artifact cache
	interactive bool   // pick source files with a terminal list
}

// convertCommand creates the convert command, the main entry point of the
// tool: it turns a directory of LaTeX problem collections into SGF files.
func (c *CLI) convertCommand() *cobra.Command {
	opts := convertOpts{output: "build", style: render.DefaultOptions().Style, shrink: "rows"}

	cmd := &cobra.Command{
		Use:   "convert <input-dir>",
		Short: "Convert LaTeX tsumego collections to SGF files",
		Long: `Convert every .tex file in the input directory to SGF files, one file
per diagram, under <output>/<collection>/sgf/.

Examples:
  tasuki2sgf convert problems/                      # SGFs only
  tasuki2sgf convert problems/ --normalize          # black always to play
  tasuki2sgf convert problems/ --render --merge     # images and collection SGFs
  tasuki2sgf convert problems/ --interactive        # pick the files to convert`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output directory")
	cmd.Flags().BoolVarP(&opts.normalize, "normalize", "n", false, "flip problems so black is always to play")
	cmd.Flags().BoolVarP(&opts.render, "render", "r", false, "render an image preview for every SGF (requires sgf-render)")
	cmd.Flags().BoolVarP(&opts.merge, "merge", "m", false, "write one merged collection SGF per source file")
	cmd.Flags().StringVar(&opts.comments, "comments", "", "TOML file with per-collection comments for merged SGFs")
	cmd.Flags().StringVar(&opts.style, "style", opts.style, "sgf-render style name")
	cmd.Flags().StringVar(&opts.shrink, "shrink", opts.shrink, "image crop mode: none, full, rows")
	cmd.Flags().StringVar(&opts.renderBin, "render-binary", "", "renderer executable (default sgf-render)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the render-artifact cache")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "select source files interactively")

	return cmd
}

// runConvert builds pipeline options from the flags and executes the run.
func (c *CLI) runConvert(cmd *cobra.Command, inputDir string, opts *convertOpts) error {
	shrink, err := parseShrink(opts.shrink)
	if err != nil {
		return err
	}

	pipeOpts := pipeline.Options{
		InputDir:     inputDir,
		OutputDir:    opts.output,
		Normalize:    opts.normalize,
		Render:       opts.render,
		Merge:        opts.merge,
		CommentsFile: opts.comments,
		RenderBinary: opts.renderBin,
		RenderOptions: render.Options{
			Style:      opts.style,
			ShrinkWrap: shrink,
		},
	}

	if opts.interactive {
		selected, err := pickSourceFiles(inputDir)
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			printInfo("Nothing selected")
			return nil
		}
		pipeOpts.Only = selected
	}

	store, err := newCache(opts.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	c.Logger.Infof("Converting %s", inputDir)
	prog := newProgress(c.Logger)

	runner := pipeline.NewRunner(store, c.Logger)
	result, err := runner.Execute(cmd.Context(), &pipeOpts)
	if err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Converted %d of %d problems from %d files",
		result.Stats.Converted, result.Stats.Diagrams, result.Stats.FilesSeen))

	printConvertResult(result)

	if result.Failed() {
		return fmt.Errorf("%d failures (see above)", result.Stats.Failed+result.Stats.RenderFailed)
	}
	return nil
}

// printConvertResult prints the per-file outcome and the run summary.
func printConvertResult(result *pipeline.Result) {
	for _, fr := range result.Files {
		if len(fr.Failures) == 0 {
			printSuccess("%s: %d problems", fr.Source, fr.Diagrams)
		} else {
			printWarning("%s: %d problems, %d failures", fr.Source, fr.Diagrams, len(fr.Failures))
		}
		if fr.Merged != "" {
			printFile(fr.Merged)
		}
		for _, err := range fr.Failures {
			printDetail("%v", err)
		}
	}
	printStats(result.Stats.FilesSeen, result.Stats.Converted,
		result.Stats.Failed+result.Stats.RenderFailed,
		result.Stats.Rendered, result.Stats.CacheHits)
}

// parseShrink maps the --shrink flag to a render crop mode.
func parseShrink(s string) (render.ShrinkWrap, error) {
	switch s {
	case "none":
		return render.ShrinkNone, nil
	case "full":
		return render.ShrinkFull, nil
	case "rows":
		return render.ShrinkRows, nil
	default:
		return 0, fmt.Errorf("invalid shrink mode: %s (must be 'none', 'full', or 'rows')", s)
	}
}
