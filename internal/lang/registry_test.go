package lang_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sloangwaltney/rlm/internal/lang"
	"github.com/sloangwaltney/rlm/internal/lang/text"
)

func newTestRegistry() *lang.Registry {
	r := lang.NewRegistry()
	text.RegisterAll(r)
	return r
}

func TestLookup_ReportsDistinctTagForExtensionsServedByPlaintext(t *testing.T) {
	r := newTestRegistry()

	cases := []struct {
		path string
		want lang.Tag
	}{
		{"deploy.sh", lang.Bash},
		{"build.bash", lang.Bash},
		{"schema.sql", lang.SQL},
		{"pom.xml", lang.XML},
		{"main.c", lang.C},
		{"util.h", lang.C},
		{"app.cpp", lang.CPP},
		{"app.cc", lang.CPP},
		{"app.cxx", lang.CPP},
		{"app.hpp", lang.CPP},
		{"notes.txt", lang.Plaintext},
		{"data.unknownext", lang.Unknown},
	}
	for _, tc := range cases {
		cap, tag := r.Lookup(tc.path)
		assert.Equal(t, tc.want, tag, "path %q", tc.path)
		require.NotNil(t, cap, "path %q should still resolve to the plaintext fallback", tc.path)
	}
}

func TestLookup_CapabilityServingTheseExtensionsIsThePlaintextFallback(t *testing.T) {
	r := newTestRegistry()

	shCap, _ := r.Lookup("deploy.sh")
	txtCap, _ := r.Lookup("notes.txt")
	assert.Equal(t, text.Plaintext{}, shCap, "bash extensions dispatch through the plaintext capability")
	assert.Equal(t, text.Plaintext{}, txtCap, "plaintext extensions dispatch through the plaintext capability")
}

func TestLookup_ASTAwareExtensionStillReportsItsOwnTag(t *testing.T) {
	r := lang.NewRegistry()
	text.RegisterAll(r)

	_, tag := r.Lookup("sample.md")
	assert.Equal(t, lang.Markdown, tag)
}
