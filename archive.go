package mjbuild

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fluxcd/pkg/lockedfile"
	"github.com/opencontainers/go-digest"
	"github.com/ulikunitz/xz"
)

const (
	// DefaultFileMode is the permission mode applied to files inside an archive.
	DefaultFileMode int64 = 0o644
	// DefaultDirMode is the permission mode applied to directories inside an archive.
	DefaultDirMode int64 = 0o755
	// DefaultExeFileMode is the permission mode applied to executable files inside an archive.
	DefaultExeFileMode int64 = 0o755
)

// ArchiveResult describes a written archive.
type ArchiveResult struct {
	Path   string
	Digest digest.Digest
	Size   int64
}

// Archive packs the staged tree under buildLib into
// <outDir>/<name>-<version>.tar.xz.
//
// Entries carry no owner, group or timestamps and use default modes, so the
// digest depends only on content. The archive is written to a temporary file
// and renamed into place while holding a lock next to the destination, so
// concurrent packagers never observe a partial archive.
func Archive(buildLib, outDir string, meta *Metadata) (result *ArchiveResult, err error) {
	if f, err := os.Stat(buildLib); err != nil || !f.IsDir() {
		return nil, fmt.Errorf("invalid dir path: %s", buildLib)
	}
	if within(buildLib, outDir) {
		return nil, fmt.Errorf("archive dir %s must be outside %s", outDir, buildLib)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	dest := filepath.Join(outDir, meta.ArtifactName()+".tar.xz")

	unlock, err := lockedfile.MutexAt(dest + ".lock").Lock()
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", dest, err)
	}
	defer unlock()

	tf, err := os.CreateTemp(outDir, meta.ArtifactName()+"-*.tmp")
	if err != nil {
		return nil, err
	}
	tmpName := tf.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	d := digest.Canonical.Digester()
	sz := &writeCounter{}
	mw := io.MultiWriter(d.Hash(), tf, sz)

	xw, err := xz.NewWriter(mw)
	if err != nil {
		tf.Close()
		return nil, err
	}
	tw := tar.NewWriter(xw)

	if err := writeTree(tw, buildLib); err != nil {
		tw.Close()
		xw.Close()
		tf.Close()
		return nil, err
	}

	if err := tw.Close(); err != nil {
		xw.Close()
		tf.Close()
		return nil, err
	}
	if err := xw.Close(); err != nil {
		tf.Close()
		return nil, err
	}
	if err := tf.Close(); err != nil {
		return nil, err
	}

	if err := os.Rename(tmpName, dest); err != nil {
		return nil, err
	}

	return &ArchiveResult{Path: dest, Digest: d.Digest(), Size: sz.written}, nil
}

// writeTree adds every directory and regular file under root to tw.
// Lexical walk order keeps the archive byte-for-byte reproducible.
func writeTree(tw *tar.Writer, root string) error {
	return filepath.WalkDir(root, func(p string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}

		fi, err := de.Info()
		if err != nil {
			return err
		}
		// Ignore anything that is not a file or directory e.g. symlinks
		if m := fi.Mode(); !(m.IsRegular() || m.IsDir()) {
			return nil
		}

		header, err := tar.FileInfoHeader(fi, "")
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		sanitizeHeader(filepath.ToSlash(rel), header)

		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if !fi.Mode().IsRegular() {
			return nil
		}

		f, err := os.Open(p)
		if err != nil {
			return err
		}
		if _, err := io.Copy(tw, f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
}

// sanitizeHeader makes h relative to the archive root and strips
// environment specific data.
func sanitizeHeader(relP string, h *tar.Header) {
	h.Name = relP
	if h.Typeflag == tar.TypeDir {
		h.Name += "/"
	}

	h.Gid = 0
	h.Uid = 0
	h.Uname = ""
	h.Gname = ""
	h.ModTime = time.Time{}
	h.AccessTime = time.Time{}
	h.ChangeTime = time.Time{}

	setDefaultMode(h)
}

func setDefaultMode(h *tar.Header) {
	if h.FileInfo().IsDir() {
		h.Mode = DefaultDirMode
		return
	}

	if h.FileInfo().Mode().IsRegular() {
		mode := h.FileInfo().Mode()
		if mode&os.ModeType == 0 && mode&0o111 != 0 {
			h.Mode = DefaultExeFileMode
			return
		}
		h.Mode = DefaultFileMode
	}
}

// within reports whether p is root or lies below it.
func within(root, p string) bool {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	absP, err := filepath.Abs(p)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absRoot, absP)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// writeCounter is an io.Writer that only records the number of bytes written.
type writeCounter struct {
	written int64
}

func (wc *writeCounter) Write(p []byte) (int, error) {
	n := len(p)
	wc.written += int64(n)
	return n, nil
}
