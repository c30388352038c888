package mjbuild

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// FindDirs walks root and returns, for each pattern, the directory holding
// the first file whose base name matches it.
//
// The walk is lexical, so the result is deterministic: when several
// directories qualify, the one visited first wins. The walk stops as soon as
// every pattern is resolved. Unreadable subdirectories are skipped.
//
// Returns ErrNotFound (wrapped with the unresolved patterns) if any pattern
// matches nothing in the tree.
func FindDirs(root string, patterns ...string) ([]string, error) {
	dirs := make([]string, len(patterns))
	remaining := len(patterns)

	err := walkFiles(root, func(path string) error {
		name := filepath.Base(path)
		for i, pattern := range patterns {
			if dirs[i] != "" || !MatchesGlob(name, pattern) {
				continue
			}
			dirs[i] = filepath.Dir(path)
			remaining--
		}
		if remaining == 0 {
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, &Error{Op: "scan", Path: root, Err: err}
	}

	var missing []string
	for i, dir := range dirs {
		if dir == "" {
			missing = append(missing, patterns[i])
		}
	}
	if len(missing) > 0 {
		return dirs, fmt.Errorf("%w: no files matching %v under %s", ErrNotFound, missing, root)
	}

	return dirs, nil
}

// FindLibrary locates the directories holding the MuJoCo link library for
// goos and the mujoco.h header under root.
func FindLibrary(root, goos string) (libraryDir, includeDir string, err error) {
	dirs, err := FindDirs(root, LibraryPattern(goos), HeaderFile)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", "", fmt.Errorf("cannot find MuJoCo library and/or include paths: %w", err)
		}
		return "", "", err
	}
	return dirs[0], dirs[1], nil
}

// CollectFiles returns every file under root whose base name matches any of
// the patterns. Paths are cleaned, de-duplicated and sorted.
func CollectFiles(root string, patterns ...string) ([]string, error) {
	seen := make(map[string]struct{})

	err := walkFiles(root, func(path string) error {
		if MatchesGlob(filepath.Base(path), patterns...) {
			seen[filepath.Clean(path)] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, &Error{Op: "scan", Path: root, Err: err}
	}

	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}

// FindDataFiles returns the files under packageDir matching any pattern, as
// slash-separated paths relative to packageDir.
func FindDataFiles(packageDir string, patterns ...string) ([]string, error) {
	files, err := CollectFiles(packageDir, patterns...)
	if err != nil {
		return nil, err
	}

	rel := make([]string, 0, len(files))
	for _, f := range files {
		r, err := filepath.Rel(packageDir, f)
		if err != nil {
			return nil, err
		}
		rel = append(rel, filepath.ToSlash(r))
	}
	sort.Strings(rel)
	return rel, nil
}

// walkFiles calls fn for every regular file, or symlink to one, under root.
// fs.SkipAll from fn ends the walk without error.
func walkFiles(root string, fn func(path string) error) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		// Shared libraries are commonly versioned symlinks; follow them.
		if d.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}
		return fn(path)
	})
	if errors.Is(err, fs.SkipAll) {
		return nil
	}
	return err
}
