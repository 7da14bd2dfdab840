// Package policy provides the access boundary used by the server binary: a
// fixed set of absolute roots narrowed by include and exclude globs.
package policy

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-yaml"
)

// Config is the policy file format.
type Config struct {
	Roots []string `yaml:"roots"`
	// Include, when non-empty, restricts visible files to names or
	// root-relative paths matching at least one glob.
	Include []string `yaml:"include"`
	// Exclude hides matching files and directories, and everything below
	// an excluded directory.
	Exclude []string `yaml:"exclude"`
	// Hidden exposes dot-prefixed names.
	Hidden bool `yaml:"hidden"`
}

// Policy implements navigation.AccessPolicy. It is immutable after New and
// safe for concurrent use.
//
// Paths that exist are checked twice: as written against the roots, and with
// symlinks resolved against the resolved roots. A link inside a root that
// points outside of every root is therefore not visible.
type Policy struct {
	roots      []string
	resolved   []string
	include    []string
	exclude    []string
	showHidden bool
}

// New validates cfg and builds a Policy. Roots must be absolute; duplicates
// are removed and order is kept.
func New(cfg Config) (*Policy, error) {
	if len(cfg.Roots) == 0 {
		return nil, fmt.Errorf("policy: at least one root is required")
	}

	roots := make([]string, 0, len(cfg.Roots))
	for _, root := range cfg.Roots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		if !filepath.IsAbs(root) {
			return nil, fmt.Errorf("policy: root %q must be absolute", root)
		}
		root = filepath.Clean(root)
		if !slices.Contains(roots, root) {
			roots = append(roots, root)
		}
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("policy: at least one root is required")
	}

	for _, pattern := range append(slices.Clone(cfg.Include), cfg.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("policy: invalid glob %q", pattern)
		}
	}

	resolved := make([]string, len(roots))
	for i, root := range roots {
		resolved[i] = root
		if target, err := filepath.EvalSymlinks(root); err == nil {
			resolved[i] = target
		}
	}

	return &Policy{
		roots:      roots,
		resolved:   resolved,
		include:    slices.Clone(cfg.Include),
		exclude:    slices.Clone(cfg.Exclude),
		showHidden: cfg.Hidden,
	}, nil
}

// Load reads a YAML policy file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read policy file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse policy file %s: %w", path, err)
	}
	return cfg, nil
}

// Roots returns a copy of the configured roots.
func (p *Policy) Roots() []string {
	return slices.Clone(p.roots)
}

// IsDirectoryVisible reports whether path is inside a root and not hidden or
// excluded. Ancestors of a root are visible too, so a client can walk down
// to it.
func (p *Policy) IsDirectoryVisible(path string) bool {
	return p.check(path, true) == verdictVisible
}

// IsFileVisible reports whether path is inside a root, not hidden or
// excluded, and matches the include globs when any are configured.
func (p *Policy) IsFileVisible(path string) bool {
	return p.check(path, false) == verdictVisible
}

// DenialReason explains why path is not visible.
func (p *Policy) DenialReason(path string) string {
	switch p.check(path, true) {
	case verdictRelative:
		return "path must be absolute"
	case verdictOutside:
		return fmt.Sprintf("%s is outside of the allowed directories", path)
	case verdictHidden:
		return fmt.Sprintf("%s is hidden", path)
	case verdictExcluded:
		return fmt.Sprintf("%s is excluded by the access policy", path)
	case verdictNotIncluded:
		return fmt.Sprintf("%s does not match any allowed file pattern", path)
	case verdictUnresolved:
		return fmt.Sprintf("%s cannot be resolved", path)
	default:
		return ""
	}
}

type verdict int

const (
	verdictVisible verdict = iota
	verdictRelative
	verdictOutside
	verdictHidden
	verdictExcluded
	verdictNotIncluded
	verdictUnresolved
)

func (p *Policy) check(path string, isDir bool) verdict {
	if !filepath.IsAbs(path) {
		return verdictRelative
	}
	path = filepath.Clean(path)

	v, ancestor := p.checkAgainst(p.roots, path, isDir)
	if v != verdictVisible {
		return v
	}

	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		// Nothing on disk to follow yet; opening it will fail the same way.
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return v
		}
		return verdictUnresolved
	}

	rv, realAncestor := p.checkAgainst(p.resolved, target, isDir)
	if rv == verdictVisible && realAncestor && !ancestor {
		// A link inside a root must not lead up to a root's parent.
		return verdictOutside
	}
	return rv
}

// checkAgainst checks a clean absolute path against roots. The second result
// is true when the path is visible only as an ancestor of a root.
func (p *Policy) checkAgainst(roots []string, path string, isDir bool) (verdict, bool) {
	for _, root := range roots {
		rel, ok := within(root, path)
		if !ok {
			continue
		}
		return p.checkRelative(rel, isDir), false
	}

	if isDir {
		for _, root := range roots {
			if _, ok := within(path, root); ok {
				return verdictVisible, true
			}
		}
	}
	return verdictOutside, false
}

func (p *Policy) checkRelative(rel string, isDir bool) verdict {
	if rel == "." {
		return verdictVisible
	}

	slashed := filepath.ToSlash(rel)
	parts := strings.Split(slashed, "/")

	if !p.showHidden {
		for _, part := range parts {
			if strings.HasPrefix(part, ".") {
				return verdictHidden
			}
		}
	}

	for i := range parts {
		prefix := strings.Join(parts[:i+1], "/")
		for _, pattern := range p.exclude {
			if matches(pattern, parts[i], prefix) {
				return verdictExcluded
			}
		}
	}

	name := parts[len(parts)-1]

	if isDir || len(p.include) == 0 {
		return verdictVisible
	}
	for _, pattern := range p.include {
		if matches(pattern, name, slashed) {
			return verdictVisible
		}
	}
	return verdictNotIncluded
}

// matches tests a glob against the base name, or against the root-relative
// path when the glob contains a separator.
func matches(pattern, name, rel string) bool {
	if strings.Contains(pattern, "/") {
		return doublestar.MatchUnvalidated(pattern, rel)
	}
	return doublestar.MatchUnvalidated(pattern, name)
}

// within returns path relative to base when path is base or below it.
func within(base, path string) (string, bool) {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}
