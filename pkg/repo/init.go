package repo

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"

	"github.com/odvcencio/revstore/pkg/store"
)

// changelogStub occupies .hg/00changelog.i in store layouts so clients that
// only know the plain layout see an empty, unusable changelog.
const changelogStub = "\x00\x00\x00\x02 dummy changelog to prevent using the old repo layout"

// Init creates a new repository at path with the given requirements, or
// DefaultRequirements when none are given. It creates .hg/requires and,
// for store layouts, .hg/store/ and the changelog stub. Returns an error if
// a .hg/ directory already exists.
func Init(path string, requirements []string, opts ...Option) (*Repo, error) {
	o := buildOptions(opts)

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("init: abs path: %w", err)
	}
	if requirements == nil {
		requirements = DefaultRequirements
	}
	for _, req := range requirements {
		if !slices.Contains(supportedRequirements, req) {
			return nil, fmt.Errorf("init: %w: %q", ErrUnsupportedRequirement, req)
		}
	}

	hgDir := filepath.Join(abs, MetaDir)

	// Fail if .hg/ already exists.
	if _, err := o.fs.Stat(hgDir); err == nil {
		return nil, fmt.Errorf("init: repository already exists at %s", hgDir)
	}

	if err := createLayout(o.fs, hgDir, requirements); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	o.log.Info("initialized repository",
		zap.String("path", hgDir),
		zap.Strings("requirements", requirements))
	return openAt(abs, o)
}

// createLayout writes the skeleton of a repository metadata directory.
func createLayout(fsys billy.Filesystem, hgDir string, requirements []string) error {
	if err := fsys.MkdirAll(hgDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", hgDir, err)
	}
	if slices.Contains(requirements, store.RequireStore) {
		storeDir := fsys.Join(hgDir, "store")
		if err := fsys.MkdirAll(storeDir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", storeDir, err)
		}
		if err := util.WriteFile(fsys, fsys.Join(hgDir, "00changelog.i"), []byte(changelogStub), 0o644); err != nil {
			return fmt.Errorf("write changelog stub: %w", err)
		}
	}
	return writeRequires(fsys, hgDir, requirements)
}

// Open searches upward from path for a .hg/ directory and opens the
// repository. Returns an error if no .hg/ directory is found or if the
// repository needs a feature that is not supported.
func Open(path string, opts ...Option) (*Repo, error) {
	o := buildOptions(opts)

	// Resolve to absolute path for consistent traversal.
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		info, err := o.fs.Stat(filepath.Join(cur, MetaDir))
		if err == nil && info.IsDir() {
			return openAt(cur, o)
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			// Reached filesystem root without finding .hg/.
			return nil, fmt.Errorf("open: not a repository (or any parent up to /)")
		}
		cur = parent
	}
}

func openAt(root string, o options) (*Repo, error) {
	hgDir := filepath.Join(root, MetaDir)

	reqs, err := readRequires(o.fs, hgDir)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	cfg, err := readConfig(o.fs, hgDir)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	st, err := store.New(reqs, hgDir, store.NewFSOpenerFunc(o.fs),
		store.WithLogger(o.log),
		store.WithEncodeCache(cfg.Store.EncodeCache))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	return &Repo{
		RootDir:      root,
		HgDir:        hgDir,
		Requirements: reqs,
		Config:       cfg,
		Store:        st,
		fs:           o.fs,
		log:          o.log,
	}, nil
}
