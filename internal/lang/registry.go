package lang

import (
	"path/filepath"
	"strings"
	"sync"
)

// Registry maps file extensions to a Capability. Grounded on synapse's
// internal/chunker/registry.go (extension→spec map guarded by a RWMutex),
// generalized from tree-sitter-only LanguageSpec values to the broader
// Capability interface so plaintext/markdown/pdf/structured capabilities
// register the same way AST-aware ones do.
type Registry struct {
	mu       sync.RWMutex
	byExt    map[string]Capability
	byTag    map[Tag]Capability
	fallback Capability
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byExt: make(map[string]Capability),
		byTag: make(map[Tag]Capability),
	}
}

// Register associates every extension TagForExtension maps to cap.Language()
// with cap, plus records it by tag for LookupTag.
func (r *Registry) Register(cap Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTag[cap.Language()] = cap
	for ext, tag := range extByLang {
		if tag == cap.Language() {
			r.byExt[ext] = cap
		}
	}
}

// RegisterExt additionally associates ext with cap even if extByLang does
// not already map that extension to cap.Language(). No registration in
// this module calls it; the plaintext fallback goes through
// RegisterFallback.
func (r *Registry) RegisterExt(ext string, cap Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byExt[ext] = cap
}

// RegisterFallback sets the capability Lookup returns for extensions
// nothing else claims — spec §4.2 requires every file to produce at least
// a whole-file chunk even without a dedicated parser.
func (r *Registry) RegisterFallback(cap Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = cap
}

// Lookup returns the capability to extract a file path with, and the
// language tag to report for it. The tag comes from TagForExtension, not
// from the capability's own Language() — several tags (bash, sql, xml, c,
// cpp) have no dedicated capability and are served by the shared plaintext
// fallback, the way original_source's Dispatcher.parse takes the language
// tag as an argument independent of which TextParser answers the call.
// Falls back to the registered fallback capability if the extension isn't
// wired to a specific one, or (nil, Unknown) if neither applies.
func (r *Registry) Lookup(path string) (Capability, Tag) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	tag := TagForExtension(ext)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.byExt[ext]; ok {
		return c, tag
	}
	if r.fallback != nil {
		return r.fallback, tag
	}
	return nil, Unknown
}

// LookupTag returns the capability registered for tag, or nil.
func (r *Registry) LookupTag(tag Tag) Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byTag[tag]
}

// Extensions returns every extension with a registered capability.
func (r *Registry) Extensions() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make(map[string]bool, len(r.byExt))
	for ext := range r.byExt {
		exts[ext] = true
	}
	return exts
}
