package store

import (
	"iter"

	"github.com/go-git/go-billy/v5"
	"go.uber.org/zap"

	"github.com/odvcencio/revstore/pkg/pathenc"
)

// encodedStore keeps revlogs under store/ with encoded names but no index.
// Hashed names written through it cannot be enumerated, so it is only
// sound for repositories whose paths stay short.
type encodedStore struct {
	storeBase
	enc *encoder
}

func (s *encodedStore) Kind() Kind { return KindEncoded }

func (s *encodedStore) Join(name string) string {
	return s.pathJoin(s.root, s.enc.encode(name))
}

func (s *encodedStore) Open(name string, mode Mode) (billy.File, error) {
	ef := s.enc.encode(name)
	if mode != ModeRead && pathenc.IsHashed(ef) {
		s.log.Warn("hashed name in a store without fncache; it will not be enumerated or cloned",
			zap.String("name", name),
			zap.String("encoded", ef))
	}
	return s.opener.Open(ef, mode)
}

// DataFiles decodes each physical name. Names that do not decode are
// reported with Undecodable set instead of failing the enumeration.
func (s *encodedStore) DataFiles() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		for e, err := range listing(func() ([]Entry, error) {
			return walkDir(s.opener, "data", true)
		}) {
			if err != nil {
				yield(Entry{}, err)
				return
			}
			name, decErr := pathenc.DecodeFilename(e.Encoded)
			if decErr != nil {
				e.Name = ""
				e.Undecodable = true
			} else {
				e.Name = name
			}
			if !yield(e, nil) {
				return
			}
		}
	}
}

func (s *encodedStore) Walk() iter.Seq2[Entry, error] {
	return walk(s.DataFiles(), s.opener)
}

func (s *encodedStore) CopyList() []string {
	return storeCopyList(s.pathJoin, metaFiles)
}

// storeCopyList is the copy list of the layouts rooted at store/. The
// top-level 00changelog.i is the stub that keeps old clients out.
func storeCopyList(join PathJoiner, files []string) []string {
	out := []string{"requires", "00changelog.i"}
	for _, f := range files {
		out = append(out, join("store", f))
	}
	return out
}
