package text

import "github.com/sloangwaltney/rlm/internal/lang"

// RegisterAll wires the markdown/structured/pdf capabilities for their
// native extensions, then registers Plaintext as the catch-all for every
// extension lang.TagForExtension maps to lang.Plaintext or lang.Unknown —
// spec §4.2 requires every file to produce at least a whole-file chunk even
// without a dedicated parser.
func RegisterAll(r *lang.Registry) {
	r.Register(NewMarkdown())
	r.Register(NewYAML())
	r.Register(NewTOML())
	r.Register(NewJSON())
	r.Register(PDF{})

	plain := Plaintext{}
	r.Register(plain)
	r.RegisterFallback(plain)
}
