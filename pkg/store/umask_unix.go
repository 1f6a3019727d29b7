//go:build unix

package store

import (
	"io/fs"

	"golang.org/x/sys/unix"
)

// readUmask reads the process umask. The umask can only be read by
// setting it, so it is restored immediately.
func readUmask() fs.FileMode {
	m := unix.Umask(0)
	unix.Umask(m)
	return fs.FileMode(m) & fs.ModePerm
}
