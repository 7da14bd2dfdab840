package navigation

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"
)

// Find is the recursive form of ListChildren: it walks the visible subtree
// under root, at most maxDepth levels deep (0 means unlimited), and returns
// files only, most recently modified first. With an active filter the files
// are narrowed by date range and content exactly as ListChildren does.
//
// Hidden directories are not descended into. Unreadable subdirectories are
// skipped; only a failure on root itself fails the call.
func (n *Navigator) Find(ctx context.Context, root string, filter *Filter, maxDepth int) (entries []FsEntry, err error) {
	start := time.Now()
	defer func() {
		n.metrics.ObserveList("find", filter.Active(), outcomeOf(err), time.Since(start))
	}()

	if err := n.checkDirectory(root); err != nil {
		return nil, err
	}
	if err := checkReadable(root); err != nil {
		return nil, listError(root, err)
	}

	var (
		mu         sync.Mutex
		candidates []candidate
	)

	base := filepath.Clean(root)
	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, base, func(p string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if p == base {
			return nil
		}
		if err != nil {
			// Reported after the directory callback; the subtree is already dropped.
			n.logger.Debug("Skipping unreadable path", zap.String("path", p), zap.Error(err))
			return nil
		}

		depth := pathDepth(base, p)
		if d.IsDir() {
			if !n.gate.IsVisible(p, true) || (maxDepth > 0 && depth >= maxDepth) {
				return filepath.SkipDir
			}
			return nil
		}
		if maxDepth > 0 && depth > maxDepth {
			return nil
		}

		mu.Lock()
		candidates = append(candidates, candidate{path: p, isDir: false})
		mu.Unlock()
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &IOError{Op: "walk", Path: root, Err: err}
	}

	// Walk order depends on scheduling; sort by path so that ties in
	// modification time come out the same on every call.
	sortCandidates(candidates)

	entries = n.snapshot(candidates)
	files := entries[:0]
	for _, e := range entries {
		if !e.isDir {
			files = append(files, e)
		}
	}
	sortByRecency(files)

	if !filter.Active() {
		return files, nil
	}
	return n.filterByContent(ctx, files, filter)
}

// checkReadable opens dir and reads at most one name, so that a root the
// walk cannot list fails the call instead of yielding an empty result.
func checkReadable(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func pathDepth(root, p string) int {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

func sortCandidates(candidates []candidate) {
	slices.SortFunc(candidates, func(a, b candidate) int {
		return strings.Compare(a.path, b.path)
	})
}
