package navigation

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options configures a Navigator. All values are fixed at construction.
type Options struct {
	// DefaultDirectory, when set, is returned by DefaultDirectory as is.
	DefaultDirectory string
	// Workers bounds concurrent content scans. Zero means GOMAXPROCS.
	Workers int
	// BufferSize is the scanner read size. Zero means DefaultBufferSize.
	BufferSize int
	// Source provides file snapshots. Nil means LocalSource with decompression.
	Source ContentSource
	// HomeDir resolves the current user's home directory. Nil means os.UserHomeDir.
	HomeDir func() (string, error)
	Logger  *zap.Logger
	Metrics Recorder
}

// Navigator lists directories inside the access boundary and optionally
// narrows file listings by content.
type Navigator struct {
	gate       *Gate
	scanner    *Scanner
	defaultDir string
	workers    int
	homeDir    func() (string, error)
	logger     *zap.Logger
	metrics    Recorder
}

type candidate struct {
	path  string
	isDir bool
	// Roots come curated by the policy and skip the visibility filter.
	root  bool
}

// New creates a Navigator over policy.
func New(policy AccessPolicy, opts Options) *Navigator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var metrics Recorder = nopRecorder{}
	if opts.Metrics != nil {
		metrics = opts.Metrics
	}
	source := opts.Source
	if source == nil {
		source = LocalSource{Decompress: true}
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	homeDir := opts.HomeDir
	if homeDir == nil {
		homeDir = os.UserHomeDir
	}

	return &Navigator{
		gate:       NewGate(policy),
		scanner:    NewScanner(source, logger.Named("scanner"), opts.BufferSize).WithMetrics(metrics),
		defaultDir: opts.DefaultDirectory,
		workers:    workers,
		homeDir:    homeDir,
		logger:     logger,
		metrics:    metrics,
	}
}

// DefaultDirectory picks the directory a client should open first. The
// configured default wins. Otherwise, when every root is a top-level volume
// and the home directory is visible, home is used; a single root is used as
// is. The second result is false when the client should show the root list.
func (n *Navigator) DefaultDirectory() (string, bool) {
	if n.defaultDir != "" {
		return n.defaultDir, true
	}

	roots := n.gate.Roots()

	if allTopLevel(roots) {
		if home, err := n.homeDir(); err == nil && home != "" && n.gate.IsVisible(home, true) {
			return home, true
		}
	}

	if len(roots) == 1 {
		return roots[0], true
	}

	return "", false
}

// ListChildren lists the direct children of path, or the policy roots when
// path is empty, most recently modified first. With an active filter only
// files whose content matches are kept, in the same relative order.
//
// It fails with an *AccessDeniedError when path is relative, hidden by the
// policy, or unreadable for lack of OS permissions, and with an *IOError for
// any other listing failure. Per-entry failures never fail the call.
func (n *Navigator) ListChildren(ctx context.Context, path string, filter *Filter) (entries []FsEntry, err error) {
	start := time.Now()
	defer func() {
		n.metrics.ObserveList("list", filter.Active(), outcomeOf(err), time.Since(start))
	}()

	candidates, err := n.candidates(path)
	if err != nil {
		return nil, err
	}

	entries = n.snapshot(candidates)
	sortByRecency(entries)

	if !filter.Active() {
		return entries, nil
	}
	return n.filterByContent(ctx, entries, filter)
}

func (n *Navigator) checkDirectory(path string) error {
	if !filepath.IsAbs(path) {
		return denied(path, reasonNotAbsolute)
	}
	if !n.gate.IsVisible(path, true) {
		return denied(path, n.gate.DenialReason(path))
	}
	return nil
}

func (n *Navigator) candidates(path string) ([]candidate, error) {
	if path == "" {
		roots := n.gate.Roots()
		result := make([]candidate, 0, len(roots))
		for _, root := range roots {
			result = append(result, candidate{path: root, isDir: isDirectory(root), root: true})
		}
		return result, nil
	}

	if err := n.checkDirectory(path); err != nil {
		return nil, err
	}

	dirents, err := os.ReadDir(path)
	if err != nil {
		return nil, listError(path, err)
	}

	result := make([]candidate, 0, len(dirents))
	for _, d := range dirents {
		child := filepath.Join(path, d.Name())
		isDir := d.IsDir()
		if d.Type()&fs.ModeSymlink != 0 {
			isDir = isDirectory(child)
		}
		result = append(result, candidate{path: child, isDir: isDir})
	}
	return result, nil
}

func listError(path string, err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return denied(path, reasonNotEnoughRights)
	}
	return &IOError{Op: "list", Path: path, Err: err}
}

// snapshot applies the visibility filter to non-root candidates, then stats
// the survivors. Entries whose stat fails are dropped.
func (n *Navigator) snapshot(candidates []candidate) []FsEntry {
	entries := make([]FsEntry, 0, len(candidates))
	for _, c := range candidates {
		if !c.root && !n.gate.IsVisible(c.path, c.isDir) {
			continue
		}
		entry, ok := NewEntry(c.path)
		if !ok {
			n.logger.Debug("Dropping entry that vanished during listing", zap.String("path", c.path))
			n.metrics.EntryDropped()
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

func sortByRecency(entries []FsEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].modTime.After(entries[j].modTime)
	})
}

// filterByContent drops directories and files outside the date range, then
// scans the rest concurrently. Each worker writes only its own slot of
// matched, and the result is compacted in input order, so the output is the
// input minus non-matches regardless of completion order.
func (n *Navigator) filterByContent(ctx context.Context, entries []FsEntry, filter *Filter) ([]FsEntry, error) {
	files := make([]FsEntry, 0, len(entries))
	for _, e := range entries {
		if e.isDir {
			continue
		}
		if !filter.IncludesDate(e.modTime) {
			continue
		}
		files = append(files, e)
	}

	matched := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.workers)
	for i, e := range files {
		if gctx.Err() != nil {
			break
		}
		i, e := i, e
		g.Go(func() error {
			matched[i] = n.scanner.FileContains(gctx, e.path, filter.Text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([]FsEntry, 0, len(files))
	for i, e := range files {
		if matched[i] {
			result = append(result, e)
		}
	}
	return result, nil
}

func allTopLevel(roots []string) bool {
	for _, root := range roots {
		if filepath.Dir(root) != root {
			return false
		}
	}
	return true
}
