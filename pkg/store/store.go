// Package store lays revlog files out on disk under a repository's
// metadata directory.
//
// Three layouts exist, selected from the repository requirements: a plain
// layout with no name translation, an encoded layout rooted at store/
// that passes every name through pathenc.HybridEncode, and an fncache
// layout that additionally records each written data file in an index so
// hashed names can be enumerated again.
package store

import (
	"fmt"
	"iter"
	"path/filepath"
	"slices"

	"github.com/go-git/go-billy/v5"
	"go.uber.org/zap"
)

// Requirement names that select a layout.
const (
	RequireStore   = "store"
	RequireFncache = "fncache"
)

// Kind identifies a store layout.
type Kind string

const (
	KindBasic   Kind = "basic"
	KindEncoded Kind = "encoded"
	KindFncache Kind = "fncache"
)

// metaFiles are the fixed revlogs copied verbatim by a clone, together
// with the data directory.
var metaFiles = []string{"data", "00manifest.d", "00manifest.i", "00changelog.d", "00changelog.i"}

// Entry describes one revlog file in a store.
type Entry struct {
	// Name is the logical path, such as "data/foo.txt.i". It is empty when
	// Undecodable is set.
	Name string
	// Encoded is the physical path relative to the store root.
	Encoded string
	// Size is the file size in bytes.
	Size int64
	// Undecodable is set when the physical name could not be mapped back
	// to a logical path.
	Undecodable bool
}

// Store is the common contract of all layouts.
type Store interface {
	// Kind reports the layout.
	Kind() Kind
	// Root is the physical directory holding the revlogs.
	Root() string
	// Join returns the physical path of a logical name. It never fails.
	Join(name string) string
	// Open opens a logical name through the layout's opener.
	Open(name string, mode Mode) (billy.File, error)
	// Walk yields data files sorted by name, then the top-level metadata
	// revlogs in reverse name order.
	Walk() iter.Seq2[Entry, error]
	// DataFiles yields the revlogs below data/.
	DataFiles() iter.Seq2[Entry, error]
	// CopyList lists the paths, relative to the repository metadata
	// directory, that a full clone copies verbatim. It starts with
	// "requires".
	CopyList() []string
}

// PathJoiner joins physical path elements.
type PathJoiner func(elem ...string) string

type options struct {
	log       *zap.Logger
	pathJoin  PathJoiner
	cacheSize int
}

// Option configures a Store.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithPathJoiner replaces filepath.Join for physical paths.
func WithPathJoiner(j PathJoiner) Option {
	return func(o *options) {
		o.pathJoin = j
	}
}

// WithEncodeCache memoises up to size encoded names. Zero disables the
// cache.
func WithEncodeCache(size int) Option {
	return func(o *options) {
		o.cacheSize = size
	}
}

// storeBase carries what every layout needs.
type storeBase struct {
	root     string
	pathJoin PathJoiner
	opener   Opener
	log      *zap.Logger
}

func (b *storeBase) Root() string {
	return b.root
}

// New opens the store of the repository metadata directory path using the
// layout its requirements call for: fncache wins over store, and without
// either the plain layout is used.
func New(requirements []string, path string, open OpenerFunc, opts ...Option) (Store, error) {
	o := options{
		log:      zap.NewNop(),
		pathJoin: filepath.Join,
	}
	for _, opt := range opts {
		opt(&o)
	}

	kind := KindBasic
	switch {
	case slices.Contains(requirements, RequireFncache):
		kind = KindFncache
	case slices.Contains(requirements, RequireStore):
		kind = KindEncoded
	}

	root := path
	if kind != KindBasic {
		root = o.pathJoin(path, "store")
	}
	opener, err := open(root)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", root, err)
	}
	base := storeBase{
		root:     root,
		pathJoin: o.pathJoin,
		opener:   opener,
		log:      o.log.With(zap.String("store", root), zap.String("layout", string(kind))),
	}

	var s Store
	switch kind {
	case KindBasic:
		s = &basicStore{storeBase: base}
	case KindEncoded:
		enc, err := newEncoder(o.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("store %s: %w", root, err)
		}
		s = &encodedStore{storeBase: base, enc: enc}
	case KindFncache:
		enc, err := newEncoder(o.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("store %s: %w", root, err)
		}
		s = &fncacheStore{storeBase: base, enc: enc, index: newFncache(opener, enc)}
	}

	base.log.Debug("store opened", zap.Stringer("create_mode", opener.CreateMode()))
	return s, nil
}
