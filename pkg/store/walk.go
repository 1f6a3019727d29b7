package store

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"path"
	"slices"
	"strings"
)

// isRevlog reports whether a directory entry name is a revlog index or
// data file.
func isRevlog(name string) bool {
	return strings.HasSuffix(name, ".d") || strings.HasSuffix(name, ".i")
}

// walkDir lists the revlog files below relpath, sorted by name. Names are
// slash-separated and relative to the opener's root. Subdirectories are
// only visited when recurse is set. A missing relpath yields no entries.
func walkDir(lister Opener, relpath string, recurse bool) ([]Entry, error) {
	dir := relpath
	if dir == "" {
		dir = "."
	}
	info, err := lister.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, nil
	}

	var out []Entry
	visit := []string{relpath}
	for len(visit) > 0 {
		p := visit[len(visit)-1]
		visit = visit[:len(visit)-1]

		dir := p
		if dir == "" {
			dir = "."
		}
		infos, err := lister.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", dir, err)
		}
		for _, fi := range infos {
			fp := path.Join(p, fi.Name())
			switch {
			case fi.Mode().IsRegular() && isRevlog(fi.Name()):
				out = append(out, Entry{Name: fp, Encoded: fp, Size: fi.Size()})
			case fi.IsDir() && recurse:
				visit = append(visit, fp)
			}
		}
	}

	slices.SortFunc(out, func(a, b Entry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

// walk yields every data file, then the top-level metadata revlogs in
// reverse name order so the manifest comes before the changelog.
func walk(data iter.Seq2[Entry, error], lister Opener) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		for e, err := range data {
			if !yield(e, err) || err != nil {
				return
			}
		}
		meta, err := walkDir(lister, "", false)
		if err != nil {
			yield(Entry{}, err)
			return
		}
		slices.Reverse(meta)
		for _, e := range meta {
			if !yield(e, nil) {
				return
			}
		}
	}
}

// listing defers an eager directory listing until iteration starts.
func listing(collect func() ([]Entry, error)) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		list, err := collect()
		if err != nil {
			yield(Entry{}, err)
			return
		}
		for _, e := range list {
			if !yield(e, nil) {
				return
			}
		}
	}
}

// sortedByName drains seq and yields its entries ordered by logical name.
func sortedByName(seq iter.Seq2[Entry, error]) iter.Seq2[Entry, error] {
	return listing(func() ([]Entry, error) {
		var list []Entry
		for e, err := range seq {
			if err != nil {
				return nil, err
			}
			list = append(list, e)
		}
		slices.SortFunc(list, func(a, b Entry) int {
			return strings.Compare(a.Name, b.Name)
		})
		return list, nil
	})
}
