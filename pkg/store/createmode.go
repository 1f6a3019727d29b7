package store

import (
	"io/fs"
	"sync"

	"github.com/go-git/go-billy/v5"
)

var processUmask = sync.OnceValue(readUmask)

// calcMode returns the permission newly created store files should get,
// derived from the store root. It returns 0 when the root already matches
// what the umask would produce, or when the root cannot be inspected (for
// example because it does not exist yet).
func calcMode(fsys billy.Filesystem, root string) fs.FileMode {
	info, err := fsys.Stat(root)
	if err != nil {
		return 0
	}
	perm := info.Mode().Perm()
	if 0o777&^processUmask() == perm {
		return 0
	}
	return perm
}
