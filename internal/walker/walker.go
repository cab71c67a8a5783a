// Package walker lists the files under a directory, honouring ignore rules
// and optionally following symbolic links.
package walker

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when the scan root does not exist.
	ErrNotFound = errors.New("directory not found")
	// ErrNotDirectory is returned when the scan root is not a directory.
	ErrNotDirectory = errors.New("path is not a directory")
)

// Options controls a scan.
type Options struct {
	// FollowSymlinks descends into symlinked directories and includes
	// symlinked files.
	FollowSymlinks bool
	// Matcher excludes matching files and prunes matching directories.
	Matcher gitignore.Matcher
	Logger  *zap.Logger
}

type scanner struct {
	root string
	opts Options
	// ancestors holds the resolved paths of the directories currently being
	// walked, from the root down.
	ancestors map[string]bool
	files     []string
}

// Scan returns the files under root as slash separated paths relative to it,
// sorted.
func Scan(root string, opts Options) ([]string, error) {
	root = filepath.Clean(root)
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, root)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	s := &scanner{root: root, opts: opts, ancestors: make(map[string]bool)}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		s.ancestors[resolved] = true
	}
	if err := s.walkDir(root, ""); err != nil {
		return nil, err
	}

	sort.Strings(s.files)
	return s.files, nil
}

// walkDir lists dir, whose path relative to the root is rel ("" for the root).
func (s *scanner) walkDir(dir, rel string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if rel == "" {
			return fmt.Errorf("failed to read directory %s: %w", dir, err)
		}
		s.opts.Logger.Warn("Skipping unreadable directory", zap.String("path", rel), zap.Error(err))
		return nil
	}

	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		relPath := path.Join(rel, entry.Name())

		isDir := entry.IsDir()
		isFile := entry.Type().IsRegular()

		if entry.Type()&os.ModeSymlink != 0 {
			if !s.opts.FollowSymlinks {
				continue
			}
			target, err := os.Stat(full)
			if err != nil {
				s.opts.Logger.Warn("Skipping broken symlink", zap.String("path", relPath), zap.Error(err))
				continue
			}
			isDir = target.IsDir()
			isFile = target.Mode().IsRegular()
		}

		if s.ignored(relPath, isDir) {
			continue
		}

		switch {
		case isDir:
			resolved, ok := s.enter(full, relPath)
			if !ok {
				continue
			}
			err := s.walkDir(full, relPath)
			delete(s.ancestors, resolved)
			if err != nil {
				return err
			}
		case isFile:
			s.files = append(s.files, relPath)
		}
	}
	return nil
}

// enter pushes dir onto the ancestor chain, keyed by its resolved path. It
// reports false when dir resolves to one of its own ancestors, which only
// happens through a symlink loop. The same directory reached through
// separate branches is walked once per branch.
func (s *scanner) enter(dir, rel string) (string, bool) {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		s.opts.Logger.Warn("Skipping unresolvable directory", zap.String("path", rel), zap.Error(err))
		return "", false
	}
	if s.ancestors[resolved] {
		s.opts.Logger.Debug("Skipping symlink loop", zap.String("path", rel))
		return "", false
	}
	s.ancestors[resolved] = true
	return resolved, true
}

func (s *scanner) ignored(relPath string, isDir bool) bool {
	if s.opts.Matcher == nil {
		return false
	}
	return s.opts.Matcher.Match(strings.Split(relPath, "/"), isDir)
}
