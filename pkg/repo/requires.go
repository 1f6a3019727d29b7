package repo

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/odvcencio/revstore/pkg/store"
)

// ErrUnsupportedRequirement is returned when .hg/requires names a feature
// this implementation does not know.
var ErrUnsupportedRequirement = errors.New("unsupported repository requirement")

const requiresFile = "requires"

// DefaultRequirements are written by Init when none are given.
var DefaultRequirements = []string{"revlogv1", store.RequireStore, store.RequireFncache}

var supportedRequirements = []string{"revlogv1", store.RequireStore, store.RequireFncache}

// readRequires parses .hg/requires. A missing file means no requirements.
func readRequires(fsys billy.Filesystem, hgDir string) ([]string, error) {
	data, err := util.ReadFile(fsys, fsys.Join(hgDir, requiresFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read requires: %w", err)
	}
	var reqs []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !slices.Contains(supportedRequirements, line) {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedRequirement, line)
		}
		reqs = append(reqs, line)
	}
	return reqs, nil
}

func writeRequires(fsys billy.Filesystem, hgDir string, reqs []string) error {
	var buf bytes.Buffer
	for _, r := range reqs {
		buf.WriteString(r)
		buf.WriteByte('\n')
	}
	if err := util.WriteFile(fsys, fsys.Join(hgDir, requiresFile), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write requires: %w", err)
	}
	return nil
}
