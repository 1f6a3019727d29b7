package store

import (
	"iter"

	"github.com/go-git/go-billy/v5"
)

// basicStore keeps revlogs directly in the metadata directory under their
// logical names.
type basicStore struct {
	storeBase
}

func (s *basicStore) Kind() Kind { return KindBasic }

func (s *basicStore) Join(name string) string {
	return s.pathJoin(s.root, name)
}

func (s *basicStore) Open(name string, mode Mode) (billy.File, error) {
	return s.opener.Open(name, mode)
}

func (s *basicStore) DataFiles() iter.Seq2[Entry, error] {
	return listing(func() ([]Entry, error) {
		return walkDir(s.opener, "data", true)
	})
}

func (s *basicStore) Walk() iter.Seq2[Entry, error] {
	return walk(s.DataFiles(), s.opener)
}

func (s *basicStore) CopyList() []string {
	return append([]string{"requires"}, metaFiles...)
}
