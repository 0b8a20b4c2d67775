// Package walker enumerates eligible files under a root directory, honoring
// hidden-entry and deny-list rules, an optional gitignore-style ignore file,
// a byte-size ceiling, and symlink-cycle detection — spec §4.1.
//
// Grounded on synapse's internal/walker/walker.go (deny-list, size ceiling,
// ignore file, filepath.WalkDir-based traversal); a missing ignore file is
// not created, the walk just runs without one. Extension
// filtering from synapse is dropped: internal/lang.Registry.RegisterFallback
// means every extension resolves to at least the plaintext capability, so
// the walker's only job is deciding which paths to visit, not which
// extensions are worth visiting.
package walker

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sloangwaltney/rlm/internal/rlmerr"
)

// FileInfo describes one file the walk yielded.
type FileInfo struct {
	Path    string // absolute
	RelPath string // forward-slash, relative to root
	Size    int64
	ModTime int64 // unix seconds
}

// defaultMaxFileSize is the byte ceiling used when Options.MaxFileSize is 0.
const defaultMaxFileSize = 8 << 20 // 8 MiB

// defaultDenylist are directory names skipped regardless of the ignore file.
var defaultDenylist = map[string]bool{
	".git":         true,
	".svn":         true,
	".hg":          true,
	"node_modules": true,
	"target":       true,
	"dist":         true,
	"build":        true,
	"vendor":       true,
	".idea":        true,
	".vscode":      true,
	".rlm":         true,
}

// Options configures a Walk.
type Options struct {
	// MaxFileSize is the largest file, in bytes, the walk will yield. 0
	// means defaultMaxFileSize.
	MaxFileSize int64
	// IgnoreFileName is the project-provided ignore file's basename,
	// relative to root. Empty means ".rlmignore".
	IgnoreFileName string
}

func (o Options) maxFileSize() int64 {
	if o.MaxFileSize > 0 {
		return o.MaxFileSize
	}
	return defaultMaxFileSize
}

func (o Options) ignoreFileName() string {
	if o.IgnoreFileName != "" {
		return o.IgnoreFileName
	}
	return ".rlmignore"
}

// Walk recursively enumerates files under root, returning them sorted by
// RelPath so callers get a deterministic order without needing their own
// sort — spec §4.1 leaves walk order unspecified but asks for determinism
// "downstream when required," which this satisfies once and for all.
func Walk(root string, opts Options) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, rlmerr.Walk("resolve root", err)
	}
	canonicalRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, rlmerr.Walk("resolve root", err)
	}

	matcher, err := loadIgnoreMatcher(absRoot, opts.ignoreFileName())
	if err != nil {
		return nil, err
	}

	maxSize := opts.maxFileSize()
	visited := map[string]bool{canonicalRoot: true}
	var out []FileInfo

	var visit func(dir string) error
	visit = func(dir string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil // unreadable directory: skip, keep walking siblings
		}
		for _, entry := range entries {
			name := entry.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}
			path := filepath.Join(dir, name)
			rel, relErr := filepath.Rel(absRoot, path)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			info, infoErr := entry.Info()
			if infoErr != nil {
				continue
			}

			isDir := entry.IsDir()
			isSymlink := entry.Type()&fs.ModeSymlink != 0

			if isSymlink {
				target, resolved := resolveSymlink(path, canonicalRoot, visited)
				if !resolved {
					continue // cycle or escapes root: skip with a warning-worthy but non-fatal outcome
				}
				targetInfo, statErr := os.Stat(target)
				if statErr != nil {
					continue
				}
				isDir = targetInfo.IsDir()
				info = targetInfo
				path = target
			}

			if isDir {
				if defaultDenylist[name] || matcher.matchDir(rel) {
					continue
				}
				if err := visit(path); err != nil {
					return err
				}
				continue
			}

			if matcher.matchFile(rel) {
				continue
			}
			if info.Size() > maxSize || info.Size() == 0 {
				continue
			}

			out = append(out, FileInfo{
				Path:    path,
				RelPath: rel,
				Size:    info.Size(),
				ModTime: info.ModTime().Unix(),
			})
		}
		return nil
	}

	if err := visit(absRoot); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out, nil
}

// resolveSymlink follows a symlink to its canonical target, returning
// (target, true) if it should be visited: the target must resolve (not a
// dangling link), stay within root's canonical tree, and not have been
// visited already. Cycles and escapes are treated as a skip rather than an
// error, per spec §4.1 ("produce a warning but not a failure").
func resolveSymlink(path, canonicalRoot string, visited map[string]bool) (string, bool) {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(canonicalRoot, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	if visited[target] {
		return "", false
	}
	visited[target] = true
	return target, true
}
