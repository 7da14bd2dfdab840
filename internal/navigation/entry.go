package navigation

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// FileType classifies an entry for the presentation layer.
type FileType string

const (
	TypeDirectory FileType = "directory"
	TypeLog       FileType = "log"
	TypeArchive   FileType = "archive"
	TypeText      FileType = "text"
	TypeUnknown   FileType = "unknown"
)

// Checked in order; the first matching pattern wins, so compressed rotations
// like app.log.1.gz classify as archives.
var typePatterns = []struct {
	pattern string
	kind    FileType
}{
	{"*.{gz,zst,zip,bz2,xz,tar,tgz,7z}", TypeArchive},
	{"*.log", TypeLog},
	{"*.log.[0-9]*", TypeLog},
	{"*.{out,err,trace}", TypeLog},
	{"*.{txt,md,csv,json,xml,yaml,yml,properties,conf,cfg,ini,toml}", TypeText},
}

// FsEntry is an immutable snapshot of one filesystem entry taken at listing
// time. The zero value is not a valid entry; use Snapshot.
type FsEntry struct {
	path     string
	isDir    bool
	fileType FileType
	size     int64
	modTime  time.Time
}

// Path returns the absolute path identifying the entry.
func (e FsEntry) Path() string { return e.path }

// Name returns the last path element.
func (e FsEntry) Name() string {
	name := filepath.Base(e.path)
	if name == string(filepath.Separator) || name == "." {
		return e.path
	}
	return name
}

func (e FsEntry) IsDirectory() bool { return e.isDir }

func (e FsEntry) Type() FileType { return e.fileType }

// Size is the byte length at snapshot time, 0 for directories.
func (e FsEntry) Size() int64 { return e.size }

// ModTime is the modification time observed by the snapshot.
func (e FsEntry) ModTime() time.Time { return e.modTime }

// ModificationTime returns the modification time in epoch milliseconds.
func (e FsEntry) ModificationTime() int64 { return e.modTime.UnixMilli() }

// NewEntry stats path and returns its entry. It returns false when the stat
// fails for any reason (deleted, permission changed, symlink loop); callers
// drop such entries.
func NewEntry(path string) (FsEntry, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return FsEntry{}, false
	}
	return snapshotOf(path, info), true
}

func snapshotOf(path string, info os.FileInfo) FsEntry {
	entry := FsEntry{
		path:    path,
		isDir:   info.IsDir(),
		modTime: info.ModTime(),
	}
	if entry.isDir {
		entry.fileType = TypeDirectory
		return entry
	}
	entry.size = info.Size()
	entry.fileType = classify(filepath.Base(path))
	return entry
}

func classify(name string) FileType {
	name = strings.ToLower(name)
	for _, p := range typePatterns {
		if ok, _ := doublestar.Match(p.pattern, name); ok {
			return p.kind
		}
	}
	return TypeUnknown
}

// isDirectory follows symlinks; a failed stat counts as "not a directory".
func isDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
