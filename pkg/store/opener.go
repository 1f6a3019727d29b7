package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-git/go-billy/v5"
)

// Mode selects how Opener.Open opens a file.
type Mode int

const (
	// ModeRead opens an existing file read-only.
	ModeRead Mode = iota
	// ModeWrite creates or truncates the file.
	ModeWrite
	// ModeAppend creates the file if needed and appends to it.
	ModeAppend
)

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	case ModeAppend:
		return "append"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Opener hands out byte streams for store-relative, slash-separated names
// and lists directories below the same root. A missing file is reported
// with an error that matches fs.ErrNotExist.
type Opener interface {
	Open(name string, mode Mode) (billy.File, error)
	Stat(name string) (fs.FileInfo, error)
	ReadDir(name string) ([]fs.FileInfo, error)
	// CreateMode is the permission applied to newly created files, or 0
	// when the filesystem default should be used.
	CreateMode() fs.FileMode
}

// OpenerFunc builds an Opener rooted at a physical directory.
type OpenerFunc func(root string) (Opener, error)

// FSOpener is an Opener backed by a go-billy filesystem chrooted at the
// store root.
type FSOpener struct {
	fs         billy.Filesystem
	createMode fs.FileMode
	// chmod forces permissions on a created file when neither the file nor
	// fs can do it. Nil when the filesystem has no permissions to force.
	chmod func(name string, perm fs.FileMode) error
}

var _ Opener = (*FSOpener)(nil)

// NewFSOpenerFunc returns an OpenerFunc that chroots fsys at each requested
// root. The creation mode is probed once per root from the root's own
// permissions; see calcMode.
func NewFSOpenerFunc(fsys billy.Filesystem) OpenerFunc {
	return func(root string) (Opener, error) {
		sub, err := fsys.Chroot(root)
		if err != nil {
			return nil, fmt.Errorf("opener %s: chroot: %w", root, err)
		}
		return &FSOpener{
			fs:         sub,
			createMode: calcMode(fsys, root),
			chmod:      hostChmod(fsys, sub),
		}, nil
	}
}

// CreateMode implements Opener.
func (o *FSOpener) CreateMode() fs.FileMode {
	return o.createMode
}

// Open implements Opener. Parent directories are created on write.
func (o *FSOpener) Open(name string, mode Mode) (billy.File, error) {
	var flag int
	switch mode {
	case ModeRead:
		return o.fs.Open(name)
	case ModeWrite:
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case ModeAppend:
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	default:
		return nil, fmt.Errorf("open %s: unsupported %s", name, mode)
	}

	perm := fs.FileMode(0o666)
	if o.createMode == 0 {
		return o.fs.OpenFile(name, flag, perm)
	}

	perm = o.createMode & 0o666
	_, statErr := o.fs.Stat(name)
	created := errors.Is(statErr, fs.ErrNotExist)

	f, err := o.fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	if created {
		// The process umask has been applied on creation; force the hint.
		if err := o.forceMode(f, name, perm); err != nil {
			f.Close()
			return nil, fmt.Errorf("open %s: chmod: %w", name, err)
		}
	}
	return f, nil
}

// forceMode sets perm on a freshly created file, preferring the open
// handle, then the filesystem, then the host path.
func (o *FSOpener) forceMode(f billy.File, name string, perm fs.FileMode) error {
	var err error
	if c, ok := f.(fileChmod); ok {
		err = c.Chmod(perm)
	} else if ch, ok := o.fs.(billy.Change); ok {
		err = ch.Chmod(name, perm)
	} else if o.chmod != nil {
		err = o.chmod(name, perm)
	}
	if errors.Is(err, billy.ErrNotSupported) {
		return nil
	}
	return err
}

// Stat implements Opener.
func (o *FSOpener) Stat(name string) (fs.FileInfo, error) {
	return o.fs.Stat(name)
}

// ReadDir implements Opener.
func (o *FSOpener) ReadDir(name string) ([]fs.FileInfo, error) {
	return o.fs.ReadDir(name)
}
