package store

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"

	"github.com/go-git/go-billy/v5"
	"go.uber.org/zap"
)

// fncacheStore keeps revlogs under store/ with hybrid-encoded names and
// tracks data files in the fncache index.
type fncacheStore struct {
	storeBase
	enc   *encoder
	index *fncache
}

func (s *fncacheStore) Kind() Kind { return KindFncache }

// Join encodes name without consulting the index.
func (s *fncacheStore) Join(name string) string {
	return s.pathJoin(s.root, s.enc.encode(name))
}

func (s *fncacheStore) Open(name string, mode Mode) (billy.File, error) {
	return s.index.Open(name, mode)
}

// DataFiles yields the indexed data files that still exist. Entries whose
// file is gone are skipped, and once the whole index has been read the
// index is rewritten without them. Stopping early leaves the index as is.
func (s *fncacheStore) DataFiles() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		var existing []string
		stale := 0
		for name, err := range readIndex(s.opener) {
			if err != nil {
				yield(Entry{}, err)
				return
			}
			ef := s.enc.encode(name)
			info, err := s.opener.Stat(ef)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					stale++
					continue
				}
				yield(Entry{}, fmt.Errorf("stat %s: %w", ef, err))
				return
			}
			existing = append(existing, name)
			if !yield(Entry{Name: name, Encoded: ef, Size: info.Size()}, nil) {
				return
			}
		}
		if stale == 0 {
			return
		}
		if err := writeIndex(s.opener, existing); err != nil {
			yield(Entry{}, err)
			return
		}
		s.index.reset()
		s.log.Info("pruned stale fncache entries",
			zap.Int("pruned", stale),
			zap.Int("kept", len(existing)))
	}
}

// Walk sorts the data files, which DataFiles yields in index order. The
// whole index is read first, so stale entries are always pruned.
func (s *fncacheStore) Walk() iter.Seq2[Entry, error] {
	return walk(sortedByName(s.DataFiles()), s.opener)
}

func (s *fncacheStore) CopyList() []string {
	files := append(append([]string{}, metaFiles...), "dh", IndexFile)
	return storeCopyList(s.pathJoin, files)
}
