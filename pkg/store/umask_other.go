//go:build !unix

package store

import "io/fs"

func readUmask() fs.FileMode {
	return 0o022
}
