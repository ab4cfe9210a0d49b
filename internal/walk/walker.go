package walk

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Options configures a single walk of a directory tree.
type Options struct {
	// Root is the directory to walk.
	Root string

	// PathIgnorer, when set, is consulted for every path (file or
	// directory) in addition to the hard-coded infra prune list. This is
	// typically the configured ignore engine's path-glob matcher; pruning
	// a directory here avoids descending into trees the scan will discard
	// anyway.
	PathIgnorer Ignorer
}

// Walker streams regular files under a root directory, applying the
// hard-coded infra prune list, symlink-loop detection, and an optional
// caller-supplied Ignorer. It never reads file content or performs binary
// detection — those are FileFilter/FileScanner concerns layered on top of
// the CandidateFile stream.
type Walker struct {
	logger *slog.Logger
}

// NewWalker creates a Walker.
func NewWalker() *Walker {
	return &Walker{logger: slog.Default().With("component", "walker")}
}

// Walk traverses opts.Root and streams CandidateFile values on the returned
// channel in discovery order (not sorted — ordering is the FindingCollector's
// responsibility downstream). The channel is closed when the walk completes
// or the context is cancelled. Any fatal error (root unreadable, not a
// directory) is returned synchronously before the channel is created.
func (w *Walker) Walk(ctx context.Context, opts Options) (<-chan CandidateFile, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving root path %s: %w", opts.Root, err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}

	out := make(chan CandidateFile, 64)
	symResolver := NewSymlinkResolver()
	ignorer := NewCompositeIgnorer(infraPruneIgnorer{}, opts.PathIgnorer)

	go func() {
		defer close(out)

		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if walkErr != nil {
				w.logger.Debug("walk error", "path", path, "error", walkErr)
				return nil
			}

			relPath, err := filepath.Rel(root, path)
			if err != nil {
				return nil
			}
			relPath = filepath.ToSlash(relPath)
			if relPath == "." {
				return nil
			}

			isDir := d.IsDir()

			if ignorer.IsIgnored(relPath, isDir) {
				if isDir {
					return fs.SkipDir
				}
				return nil
			}
			if isDir {
				return nil
			}

			isSymlink := d.Type()&os.ModeSymlink != 0
			absPath := path
			if isSymlink {
				realPath, isLoop, err := symResolver.Resolve(path)
				if err != nil {
					w.logger.Debug("symlink error", "path", relPath, "error", err)
					return nil
				}
				if isLoop {
					w.logger.Debug("symlink loop", "path", relPath)
					return nil
				}
				symResolver.MarkVisited(realPath)
				absPath = realPath
			}

			fileInfo, err := os.Stat(absPath)
			if err != nil {
				w.logger.Debug("stat error", "path", relPath, "error", err)
				return nil
			}

			select {
			case out <- CandidateFile{Path: relPath, AbsPath: absPath, Size: fileInfo.Size(), IsSymlink: isSymlink}:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
	}()

	return out, nil
}
