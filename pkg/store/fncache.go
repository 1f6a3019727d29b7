package store

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"strings"

	"github.com/go-git/go-billy/v5"
)

// IndexFile is the name of the filename index inside the store root.
const IndexFile = "fncache"

// ErrCorruptIndex is returned when the filename index holds an empty or
// unterminated line.
var ErrCorruptIndex = errors.New("invalid entry in fncache")

// readIndex yields the logical names recorded in the index, in file
// order. A missing index yields nothing.
func readIndex(o Opener) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		f, err := o.Open(IndexFile, ModeRead)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return
			}
			yield("", fmt.Errorf("read %s: %w", IndexFile, err))
			return
		}
		defer f.Close()

		r := bufio.NewReader(f)
		for n := 1; ; n++ {
			line, err := r.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				yield("", fmt.Errorf("read %s: %w", IndexFile, err))
				return
			}
			if line == "" {
				return
			}
			if len(line) < 2 || line[len(line)-1] != '\n' {
				yield("", fmt.Errorf("%w, line %d", ErrCorruptIndex, n))
				return
			}
			if !yield(line[:len(line)-1], nil) {
				return
			}
		}
	}
}

// writeIndex replaces the index with names.
func writeIndex(o Opener, names []string) error {
	f, err := o.Open(IndexFile, ModeWrite)
	if err != nil {
		return fmt.Errorf("write %s: %w", IndexFile, err)
	}
	w := bufio.NewWriter(f)
	for _, n := range names {
		w.WriteString(n)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", IndexFile, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: close: %w", IndexFile, err)
	}
	return nil
}

type indexState int

const (
	indexUnloaded indexState = iota
	indexLoaded
)

// fncache records every data file opened for writing. The index is read
// on the first such write and appended to for each new name; it may list
// files that no longer exist after a rollback or strip.
type fncache struct {
	opener  Opener
	enc     *encoder
	state   indexState
	entries map[string]struct{}
}

func newFncache(o Opener, enc *encoder) *fncache {
	return &fncache{opener: o, enc: enc}
}

func (c *fncache) load() error {
	entries := make(map[string]struct{})
	for name, err := range readIndex(c.opener) {
		if err != nil {
			return err
		}
		entries[name] = struct{}{}
	}
	c.entries = entries
	c.state = indexLoaded
	return nil
}

// reset drops the in-memory entries so the next write reloads the index.
func (c *fncache) reset() {
	c.entries = nil
	c.state = indexUnloaded
}

func (c *fncache) add(name string) error {
	f, err := c.opener.Open(IndexFile, ModeAppend)
	if err != nil {
		return fmt.Errorf("append %s: %w", IndexFile, err)
	}
	if _, err := io.WriteString(f, name+"\n"); err != nil {
		f.Close()
		return fmt.Errorf("append %s: %w", IndexFile, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("append %s: close: %w", IndexFile, err)
	}
	return nil
}

// Open opens name under its encoded physical name, recording data files
// in the index when they are opened for writing.
func (c *fncache) Open(name string, mode Mode) (billy.File, error) {
	if mode != ModeRead && strings.HasPrefix(name, "data/") {
		if c.state == indexUnloaded {
			if err := c.load(); err != nil {
				return nil, err
			}
		}
		if _, ok := c.entries[name]; !ok {
			if err := c.add(name); err != nil {
				return nil, err
			}
			c.entries[name] = struct{}{}
		}
	}
	return c.opener.Open(c.enc.encode(name), mode)
}
