package surgery

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// unifiedDiff renders a unified diff between old and new file contents,
// used for preview mode instead of the bare old_code/new_code pair
// _examples/original_source/src/edit/replacer.rs::ReplaceDiff returns,
// since pmezard/go-difflib is already in the pack (dshills) and a
// byte-range splice is exactly what a line-oriented diff communicates best.
func unifiedDiff(path, oldContent, newContent string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldContent),
		B:        difflib.SplitLines(newContent),
		FromFile: path,
		ToFile:   path,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(text, "\n"), nil
}
