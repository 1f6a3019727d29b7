package repo

import (
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/zap"

	"github.com/odvcencio/revstore/pkg/store"
)

// MetaDir is the name of the repository metadata directory.
const MetaDir = ".hg"

// Repo represents an opened repository.
type Repo struct {
	RootDir      string      // working directory root
	HgDir        string      // .hg/ directory
	Requirements []string    // contents of .hg/requires
	Config       *Config     // .hg/revstore.toml, or defaults
	Store        store.Store // revlog file layout

	fs  billy.Filesystem
	log *zap.Logger
}

type options struct {
	fs  billy.Filesystem
	log *zap.Logger
}

// Option configures Init, Open and Clone.
type Option func(*options)

// WithFilesystem replaces the local filesystem. Paths handed to Init, Open
// and Clone are resolved against it.
func WithFilesystem(fsys billy.Filesystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithLogger sets the logger used by the repository and its store.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

func buildOptions(opts []Option) options {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fs == nil {
		o.fs = osfs.New("/")
	}
	return o
}
