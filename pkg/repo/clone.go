package repo

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"
)

// CloneSummary reports what Clone copied.
type CloneSummary struct {
	Files   int      // regular files copied
	Bytes   int64    // bytes copied
	Skipped []string // copy-list entries absent from the source
}

// Clone creates a repository at dst by copying every path of the store's
// copy list verbatim. The destination must not contain a .hg/ directory.
// The clone uses the same filesystem and logger as r unless opts override
// them. A failed clone removes the .hg/ directory it created.
func (r *Repo) Clone(dst string, opts ...Option) (_ *Repo, _ *CloneSummary, err error) {
	o := buildOptions(append([]Option{WithFilesystem(r.fs), WithLogger(r.log)}, opts...))

	abs, err := filepath.Abs(dst)
	if err != nil {
		return nil, nil, fmt.Errorf("clone: abs path: %w", err)
	}
	dstHg := filepath.Join(abs, MetaDir)
	if _, err := o.fs.Stat(dstHg); err == nil {
		return nil, nil, fmt.Errorf("clone: repository already exists at %s", dstHg)
	}
	if err := o.fs.MkdirAll(dstHg, 0o755); err != nil {
		return nil, nil, fmt.Errorf("clone: mkdir %s: %w", dstHg, err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rmErr := util.RemoveAll(o.fs, dstHg); rmErr != nil {
			o.log.Warn("removing partial clone", zap.String("path", dstHg), zap.Error(rmErr))
		}
	}()

	summary := &CloneSummary{}
	for _, rel := range r.Store.CopyList() {
		src := filepath.Join(r.HgDir, rel)
		info, err := r.fs.Stat(src)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				summary.Skipped = append(summary.Skipped, rel)
				continue
			}
			return nil, nil, fmt.Errorf("clone: stat %s: %w", src, err)
		}
		target := filepath.Join(dstHg, rel)
		if info.IsDir() {
			err = copyTree(r.fs, o.fs, src, target, summary)
		} else {
			err = copyFile(r.fs, o.fs, src, target, info.Mode().Perm(), summary)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("clone: %w", err)
		}
	}

	o.log.Info("cloned repository",
		zap.String("from", r.HgDir),
		zap.String("to", dstHg),
		zap.Int("files", summary.Files),
		zap.Int64("bytes", summary.Bytes),
		zap.Int("skipped", len(summary.Skipped)))

	cloned, err := openAt(abs, o)
	if err != nil {
		return nil, nil, fmt.Errorf("clone: %w", err)
	}
	return cloned, summary, nil
}

func copyTree(src, dst billy.Filesystem, from, to string, summary *CloneSummary) error {
	return util.Walk(src, from, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(from, p)
		if err != nil {
			return err
		}
		target := filepath.Join(to, rel)
		if info.IsDir() {
			return dst.MkdirAll(target, 0o755)
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		return copyFile(src, dst, p, target, info.Mode().Perm(), summary)
	})
}

func copyFile(src, dst billy.Filesystem, from, to string, perm os.FileMode, summary *CloneSummary) error {
	in, err := src.Open(from)
	if err != nil {
		return fmt.Errorf("copy %s: %w", from, err)
	}
	defer in.Close()

	out, err := dst.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("copy %s: %w", to, err)
	}
	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", from, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("copy %s: close: %w", to, err)
	}
	summary.Files++
	summary.Bytes += n
	return nil
}
