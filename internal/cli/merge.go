package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gotsumego/tasuki2sgf/pkg/collection"
	"github.com/gotsumego/tasuki2sgf/pkg/sgf"
)

// mergeOpts holds the command-line flags for the merge command.
type mergeOpts struct {
	output   string // output file (defaults to <dir>.sgf next to the input)
	comment  string // collection comment, verbatim
	comments string // TOML file with per-collection comments, keyed by dir name
}

// mergeCommand creates the merge command, which combines a directory of
// per-problem SGF files into a single collection SGF.
func (c *CLI) mergeCommand() *cobra.Command {
	var opts mergeOpts

	cmd := &cobra.Command{
		Use:   "merge <sgf-dir>",
		Short: "Merge per-problem SGF files into one collection SGF",
		Long: `Merge every SGF file in a directory, in name order, into a single SGF
game collection. The collection comment comes from --comment, or from a
TOML comments file keyed by the directory name.

Examples:
  tasuki2sgf merge build/easy/sgf/ -o easy.sgf
  tasuki2sgf merge build/easy/sgf/ --comments comments.toml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMerge(args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <dir>.sgf next to the input)")
	cmd.Flags().StringVar(&opts.comment, "comment", "", "collection comment")
	cmd.Flags().StringVar(&opts.comments, "comments", "", "TOML file with per-collection comments")

	return cmd
}

// runMerge parses every SGF under dir and writes the merged collection.
func (c *CLI) runMerge(dir string, opts *mergeOpts) error {
	files, err := collectSGFFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no SGF files under %s", dir)
	}

	comment, err := mergeComment(dir, opts)
	if err != nil {
		return err
	}

	games := make([]*sgf.Game, 0, len(files))
	for _, path := range files {
		game, err := loadGame(path)
		if err != nil {
			return err
		}
		games = append(games, game)
	}

	merged, err := sgf.MergeCollection(games, comment)
	if err != nil {
		return err
	}

	out := opts.output
	if out == "" {
		clean := filepath.Clean(dir)
		out = filepath.Join(filepath.Dir(clean), filepath.Base(clean)+".sgf")
	}
	if err := os.WriteFile(out, merged, 0o644); err != nil {
		return err
	}

	printSuccess("Merged %d problems", len(games))
	printFile(out)
	return nil
}

// mergeComment resolves the collection comment from the flags. The
// comments file is keyed by the stem of the directory holding the SGFs,
// matching the layout the convert command produces ("<stem>/sgf").
func mergeComment(dir string, opts *mergeOpts) (string, error) {
	if opts.comment != "" {
		return opts.comment, nil
	}
	if opts.comments == "" {
		return "", nil
	}
	meta, err := collection.Load(opts.comments, false)
	if err != nil {
		return "", err
	}
	clean := filepath.Clean(dir)
	stem := filepath.Base(clean)
	if stem == "sgf" {
		stem = filepath.Base(filepath.Dir(clean))
	}
	return meta.Comment(stem), nil
}
