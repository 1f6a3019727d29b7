package store

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/helper/chroot"
	"github.com/go-git/go-billy/v5/helper/polyfill"
	"github.com/go-git/go-billy/v5/osfs"
)

// fileChmod is implemented by open files that wrap an *os.File.
type fileChmod interface {
	Chmod(mode fs.FileMode) error
}

// hostChmod returns a chmod on the host path below sub when fsys is the
// operating system's filesystem. osfs exposes neither billy.Change nor the
// file's Chmod through its chroot wrapper, so the host path is the only way
// to reach the permission bits.
func hostChmod(fsys, sub billy.Filesystem) func(string, fs.FileMode) error {
	if !onHost(fsys) {
		return nil
	}
	base := sub.Root()
	return func(name string, perm fs.FileMode) error {
		return os.Chmod(filepath.Join(base, filepath.FromSlash(name)), perm)
	}
}

// onHost reports whether fsys is backed by osfs.
func onHost(fsys billy.Basic) bool {
	switch f := fsys.(type) {
	case *osfs.BoundOS, *osfs.ChrootOS:
		return true
	case *polyfill.Polyfill:
		return onHost(f.Basic)
	case *chroot.ChrootHelper:
		return onHost(f.Underlying())
	}
	return false
}
