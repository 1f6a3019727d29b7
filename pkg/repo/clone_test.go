package repo

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"

	"github.com/odvcencio/revstore/pkg/store"
)

func writeRevlog(t *testing.T, r *Repo, name, content string) {
	t.Helper()
	f, err := r.Store.Open(name, store.ModeWrite)
	if err != nil {
		t.Fatalf("Open(%q): %v", name, err)
	}
	if _, err := io.WriteString(f, content); err != nil {
		t.Fatalf("write %q: %v", name, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close %q: %v", name, err)
	}
}

func walkNames(t *testing.T, r *Repo) []string {
	t.Helper()
	var out []string
	for e, err := range r.Store.Walk() {
		if err != nil {
			t.Fatalf("Walk: %v", err)
		}
		out = append(out, e.Name)
	}
	return out
}

func TestCloneCopiesStore(t *testing.T) {
	src := t.TempDir()
	r, err := Init(src, nil)
	if err != nil {
		t.Fatal(err)
	}

	long := "data/" + strings.Repeat("Nested/", 25) + "Deep.txt.i"
	writeRevlog(t, r, "data/a.txt.i", "aaa")
	writeRevlog(t, r, long, "long")
	writeRevlog(t, r, "00changelog.i", "cl")
	writeRevlog(t, r, "00manifest.i", "mf")

	dst := filepath.Join(t.TempDir(), "clone")
	cloned, summary, err := r.Clone(dst)
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}

	// requires, stub changelog, two data files, two revlogs, fncache.
	if summary.Files != 7 {
		t.Errorf("Files = %d, want 7", summary.Files)
	}
	wantSkipped := "store/00manifest.d,store/00changelog.d"
	if got := strings.Join(summary.Skipped, ","); got != wantSkipped {
		t.Errorf("Skipped = %q, want %q", got, wantSkipped)
	}

	want := walkNames(t, r)
	got := walkNames(t, cloned)
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("clone walk = %v, want %v", got, want)
	}

	srcIndex, err := os.ReadFile(filepath.Join(src, ".hg", "store", "fncache"))
	if err != nil {
		t.Fatal(err)
	}
	dstIndex, err := os.ReadFile(filepath.Join(dst, ".hg", "store", "fncache"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(srcIndex, dstIndex) {
		t.Errorf("fncache differs: %q vs %q", dstIndex, srcIndex)
	}

	f, err := cloned.Store.Open(long, store.ModeRead)
	if err != nil {
		t.Fatalf("open hashed revlog in clone: %v", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "long" {
		t.Errorf("content = %q, want %q", data, "long")
	}
}

func TestCloneRefusesExistingRepo(t *testing.T) {
	r, err := Init(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	dst := t.TempDir()
	if _, err := Init(dst, nil); err != nil {
		t.Fatal(err)
	}
	if _, _, err := r.Clone(dst); err == nil {
		t.Fatal("Clone into existing repository should fail")
	}
}

func TestCloneInMemory(t *testing.T) {
	fsys := memfs.New()
	r, err := Init("/src", []string{"revlogv1"}, WithFilesystem(fsys))
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	writeRevlog(t, r, "data/x.i", "x")
	writeRevlog(t, r, "00changelog.i", "c")

	cloned, summary, err := r.Clone("/dst")
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if summary.Files != 3 {
		t.Errorf("Files = %d, want 3", summary.Files)
	}
	if cloned.Store.Kind() != store.KindBasic {
		t.Errorf("clone kind = %q, want %q", cloned.Store.Kind(), store.KindBasic)
	}
	got := walkNames(t, cloned)
	if strings.Join(got, ",") != "data/x.i,00changelog.i" {
		t.Errorf("clone walk = %v", got)
	}
}

// failingFS refuses to create files whose path ends in suffix.
type failingFS struct {
	billy.Filesystem
	suffix string
}

func (f *failingFS) OpenFile(name string, flag int, perm os.FileMode) (billy.File, error) {
	if flag&os.O_CREATE != 0 && strings.HasSuffix(name, f.suffix) {
		return nil, errors.New("disk full")
	}
	return f.Filesystem.OpenFile(name, flag, perm)
}

func TestCloneFailureRemovesPartialMetaDir(t *testing.T) {
	fsys := memfs.New()
	r, err := Init("/src", nil, WithFilesystem(fsys))
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	writeRevlog(t, r, "data/a.i", "a")
	writeRevlog(t, r, "00changelog.i", "c")

	broken := &failingFS{Filesystem: fsys, suffix: "fncache"}
	if _, _, err := r.Clone("/dst", WithFilesystem(broken)); err == nil {
		t.Fatal("Clone should fail when a copy fails")
	}
	if _, err := fsys.Stat("/dst/.hg"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("partial .hg left behind: stat err = %v", err)
	}

	cloned, summary, err := r.Clone("/dst")
	if err != nil {
		t.Fatalf("Clone retry: %v", err)
	}
	if summary.Files != 5 {
		t.Errorf("Files = %d, want 5", summary.Files)
	}
	if got := walkNames(t, cloned); strings.Join(got, ",") != "data/a.i,00changelog.i" {
		t.Errorf("clone walk = %v", got)
	}
}
