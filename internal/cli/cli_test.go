package cli

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
)

func TestRootCommandSubcommands(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()

	want := map[string]bool{
		"convert":    false,
		"render":     false,
		"merge":      false,
		"cache":      false,
		"completion": false,
	}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestConvertCommandFlags(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	cmd := c.convertCommand()

	for _, name := range []string{
		"output", "normalize", "render", "merge", "comments",
		"style", "shrink", "render-binary", "no-cache", "interactive",
	} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("convert: missing flag --%s", name)
		}
	}

	if got := cmd.Flags().Lookup("shrink").DefValue; got != "rows" {
		t.Errorf("--shrink default = %q, want %q", got, "rows")
	}
	if got := cmd.Flags().Lookup("style").DefValue; got != "minimalist" {
		t.Errorf("--style default = %q, want %q", got, "minimalist")
	}
}

func TestParseShrink(t *testing.T) {
	for _, s := range []string{"none", "full", "rows"} {
		if _, err := parseShrink(s); err != nil {
			t.Errorf("parseShrink(%q) error: %v", s, err)
		}
	}
	if _, err := parseShrink("tight"); err == nil {
		t.Error("parseShrink(\"tight\") should fail")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		sgfPath string
		outDir  string
		want    string
	}{
		{"build/easy/sgf/easy-001.sgf", "", "build/easy/sgf/easy-001.svg"},
		{"build/easy/sgf/easy-001.sgf", "previews", "previews/easy-001.svg"},
		{"easy-001.sgf", "", "easy-001.svg"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.sgfPath, tt.outDir); got != tt.want {
			t.Errorf("outputPath(%q, %q) = %q, want %q", tt.sgfPath, tt.outDir, got, tt.want)
		}
	}
}
