package store

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/odvcencio/revstore/pkg/pathenc"
)

const indexPath = repoMeta + "/store/fncache"

func readIndexFile(t *testing.T, fsys billy.Filesystem) string {
	t.Helper()
	data, err := util.ReadFile(fsys, indexPath)
	if err != nil {
		t.Fatalf("read fncache: %v", err)
	}
	return string(data)
}

func assertIndex(t *testing.T, fsys billy.Filesystem, want string) {
	t.Helper()
	if got := readIndexFile(t, fsys); got != want {
		t.Errorf("fncache = %q, want %q", got, want)
	}
}

func TestFncacheRecordsWrites(t *testing.T) {
	s, fsys := memStore(t, "store", "fncache")
	writeThrough(t, s, "data/a.i", "1")
	writeThrough(t, s, "data/B.d", "2")
	writeThrough(t, s, "data/a.i", "3")
	writeThrough(t, s, "00changelog.i", "4")

	assertIndex(t, fsys, "data/a.i\ndata/B.d\n")

	if _, err := fsys.Stat(repoMeta + "/store/data/_b.d"); err != nil {
		t.Fatalf("encoded file missing: %v", err)
	}
}

func TestFncacheReadDoesNotRecord(t *testing.T) {
	s, fsys := memStore(t, "store", "fncache")
	writeFile(t, fsys, repoMeta+"/store/data/x.i", "x")

	f, err := s.Open("data/x.i", ModeRead)
	if err != nil {
		t.Fatalf("Open(read): %v", err)
	}
	f.Close()

	if _, err := fsys.Stat(indexPath); err == nil {
		t.Fatal("read created the fncache")
	}
}

func TestFncacheAppendRecords(t *testing.T) {
	s, fsys := memStore(t, "store", "fncache")
	f, err := s.Open("data/log.i", ModeAppend)
	if err != nil {
		t.Fatalf("Open(append): %v", err)
	}
	f.Close()
	assertIndex(t, fsys, "data/log.i\n")
}

func TestFncacheLoadsExistingIndex(t *testing.T) {
	s, fsys := memStore(t, "store", "fncache")
	writeFile(t, fsys, indexPath, "data/old.i\n")

	writeThrough(t, s, "data/old.i", "x")
	writeThrough(t, s, "data/new.i", "y")
	assertIndex(t, fsys, "data/old.i\ndata/new.i\n")
}

func TestFncacheHashedNamesRoundTrip(t *testing.T) {
	s, _ := memStore(t, "store", "fncache")
	long := "data/" + strings.Repeat("VeryLongDirectory/", 10) + "File.txt.i"
	short := "data/short.i"
	writeThrough(t, s, long, "abc")
	writeThrough(t, s, short, "de")

	got := collect(t, s.Walk())
	want := []Entry{
		{Name: long, Encoded: pathenc.HybridEncode(long), Size: 3},
		{Name: short, Encoded: short, Size: 2},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("Walk = %+v, want %+v", got, want)
	}
	if !pathenc.IsHashed(got[0].Encoded) {
		t.Errorf("%q should be hashed", got[0].Encoded)
	}
}

func TestFncacheWalkSortsDataFiles(t *testing.T) {
	s, _ := memStore(t, "store", "fncache")
	writeThrough(t, s, "data/b.i", "b")
	writeThrough(t, s, "data/a.i", "a")
	writeThrough(t, s, "00changelog.i", "c")

	if got := names(collect(t, s.DataFiles())); !slices.Equal(got, []string{"data/b.i", "data/a.i"}) {
		t.Errorf("DataFiles = %v, want index order", got)
	}
	want := []string{"data/a.i", "data/b.i", "00changelog.i"}
	if got := names(collect(t, s.Walk())); !slices.Equal(got, want) {
		t.Errorf("Walk = %v, want %v", got, want)
	}
}

func TestFncacheWalkPrunes(t *testing.T) {
	s, fsys := memStore(t, "store", "fncache")
	writeThrough(t, s, "data/a.i", "1")
	writeThrough(t, s, "data/b.i", "2")
	if err := fsys.Remove(repoMeta + "/store/data/a.i"); err != nil {
		t.Fatal(err)
	}

	for e, err := range s.Walk() {
		if err != nil {
			t.Fatalf("Walk: %v", err)
		}
		if e.Name != "data/b.i" {
			t.Fatalf("first entry = %q, want data/b.i", e.Name)
		}
		break
	}
	assertIndex(t, fsys, "data/b.i\n")
}

func TestFncachePrunesStaleEntries(t *testing.T) {
	s, fsys := memStore(t, "store", "fncache")
	writeThrough(t, s, "data/a.i", "1")
	writeThrough(t, s, "data/b.i", "2")
	writeThrough(t, s, "data/c.i", "3")
	if err := fsys.Remove(repoMeta + "/store/data/b.i"); err != nil {
		t.Fatal(err)
	}

	if got := names(collect(t, s.DataFiles())); !slices.Equal(got, []string{"data/a.i", "data/c.i"}) {
		t.Fatalf("DataFiles = %v", got)
	}
	assertIndex(t, fsys, "data/a.i\ndata/c.i\n")

	// A pruned name written again is recorded again.
	writeThrough(t, s, "data/b.i", "2")
	assertIndex(t, fsys, "data/a.i\ndata/c.i\ndata/b.i\n")
}

func TestFncacheEarlyStopKeepsIndex(t *testing.T) {
	s, fsys := memStore(t, "store", "fncache")
	writeThrough(t, s, "data/a.i", "1")
	writeThrough(t, s, "data/b.i", "2")
	writeThrough(t, s, "data/c.i", "3")
	if err := fsys.Remove(repoMeta + "/store/data/b.i"); err != nil {
		t.Fatal(err)
	}

	for e, err := range s.DataFiles() {
		if err != nil {
			t.Fatalf("DataFiles: %v", err)
		}
		if e.Name != "data/a.i" {
			t.Fatalf("first entry = %q, want data/a.i", e.Name)
		}
		break
	}
	assertIndex(t, fsys, "data/a.i\ndata/b.i\ndata/c.i\n")
}

func TestFncacheMissingIndexIsEmpty(t *testing.T) {
	s, _ := memStore(t, "store", "fncache")
	if got := collect(t, s.DataFiles()); len(got) != 0 {
		t.Fatalf("DataFiles = %v, want empty", got)
	}
}

func TestFncacheCorruptIndex(t *testing.T) {
	cases := map[string]string{
		"empty line":   "data/a.i\n\n",
		"unterminated": "data/a.i\ndata/b.i",
		"lone newline": "\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			s, fsys := memStore(t, "store", "fncache")
			writeThrough(t, s, "data/a.i", "1")
			writeFile(t, fsys, indexPath, content)

			var gotErr error
			for _, err := range s.DataFiles() {
				if err != nil {
					gotErr = err
				}
			}
			if !errors.Is(gotErr, ErrCorruptIndex) {
				t.Fatalf("err = %v, want ErrCorruptIndex", gotErr)
			}
		})
	}
}

func TestFncacheCorruptIndexFailsWrite(t *testing.T) {
	s, fsys := memStore(t, "store", "fncache")
	writeFile(t, fsys, indexPath, "data/a.i")
	_, err := s.Open("data/new.i", ModeWrite)
	if !errors.Is(err, ErrCorruptIndex) {
		t.Fatalf("err = %v, want ErrCorruptIndex", err)
	}
	if !strings.Contains(err.Error(), "line 1") {
		t.Errorf("err = %q, want line number", err)
	}
}

func TestReadIndexOrder(t *testing.T) {
	_, fsys := memStore(t)
	writeFile(t, fsys, "/idx/fncache", "data/z.i\ndata/a.i\n")
	o, err := NewFSOpenerFunc(fsys)("/idx")
	if err != nil {
		t.Fatalf("opener: %v", err)
	}

	var got []string
	for name, err := range readIndex(o) {
		if err != nil {
			t.Fatalf("readIndex: %v", err)
		}
		got = append(got, name)
	}
	if want := []string{"data/z.i", "data/a.i"}; !slices.Equal(got, want) {
		t.Fatalf("readIndex = %v, want %v", got, want)
	}
}
