// Package collection loads per-collection metadata from a TOML file.
//
// A collection is one source .tex file's worth of problems. The metadata
// file maps collection names (source file stems) to the comment placed on
// the merged SGF root:
//
//	[comments]
//	"easy-1" = "Easy tsumego, volume 1"
//	"hard-3" = "Hard tsumego, volume 3"
package collection

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/gotsumego/tasuki2sgf/pkg/errors"
)

// Metadata holds collection-level annotations keyed by source file stem.
type Metadata struct {
	Comments map[string]string `toml:"comments"`
}

// Load reads a TOML metadata file. A missing path is not an error when
// optional is true; an empty Metadata is returned instead.
func Load(path string, optional bool) (*Metadata, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if optional {
			return &Metadata{}, nil
		}
		return nil, errors.New(errors.ErrCodeNotFound, "metadata file %s does not exist", path)
	}

	var m Metadata
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse metadata file %s", path)
	}
	return &m, nil
}

// Comment returns the comment for a collection, or "" when none is set.
func (m *Metadata) Comment(stem string) string {
	if m == nil || m.Comments == nil {
		return ""
	}
	return m.Comments[stem]
}
