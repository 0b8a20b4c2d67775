package walker

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/sloangwaltney/rlm/internal/rlmerr"
)

// ignoreMatcher holds the patterns parsed from a project's ignore file.
// Grounded on hypnagonia-rag's internal/adapter/fs/walker.go, which matches
// relative paths against doublestar patterns rather than synapse's
// filepath.Match/prefix heuristic — spec §4.1 asks for gitignore-style
// semantics, which needs real "**" support.
type ignoreMatcher struct {
	// dirPatterns match directory-only entries (trailing "/" in the source line).
	dirPatterns []string
	// patterns match both files and directories.
	patterns []string
}

func (m ignoreMatcher) matchDir(rel string) bool {
	for _, p := range m.dirPatterns {
		if matches(p, rel) {
			return true
		}
	}
	return m.matchFile(rel)
}

func (m ignoreMatcher) matchFile(rel string) bool {
	for _, p := range m.patterns {
		if matches(p, rel) {
			return true
		}
	}
	return false
}

// matches reports whether rel (or any of its path segments, for a bare
// basename pattern with no slash) matches pattern.
func matches(pattern, rel string) bool {
	if ok, _ := doublestar.Match(pattern, rel); ok {
		return true
	}
	if !strings.Contains(pattern, "/") {
		base := rel
		if idx := strings.LastIndex(rel, "/"); idx >= 0 {
			base = rel[idx+1:]
		}
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
		// A bare name also matches as a path-prefix directory component,
		// e.g. "build" ignores "cmd/build/output.go".
		if ok, _ := doublestar.Match("**/"+pattern+"/**", rel); ok {
			return true
		}
	}
	return false
}

// loadIgnoreMatcher reads name from root, if present. A missing ignore file
// is not an error: it just yields an empty matcher, leaving defaultDenylist
// as the only exclusion. A present-but-unreadable file (permission error,
// not "does not exist") is reported via rlmerr.KindWalk, since that likely
// means the project intended rules this walk silently failed to honor.
func loadIgnoreMatcher(root, name string) (ignoreMatcher, error) {
	path := filepath.Join(root, name)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ignoreMatcher{}, nil
		}
		return ignoreMatcher{}, rlmerr.Walk("read ignore file", err)
	}
	defer f.Close()

	var m ignoreMatcher
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "/")
		if strings.HasSuffix(line, "/") {
			m.dirPatterns = append(m.dirPatterns, strings.TrimSuffix(line, "/"))
			continue
		}
		m.patterns = append(m.patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return ignoreMatcher{}, rlmerr.Walk("scan ignore file", err)
	}
	return m, nil
}
