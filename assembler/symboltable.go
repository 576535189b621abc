package assembler

import (
	"sort"

	"github.com/oconnor-ryan/ryvm-go/asmerr"
)

// Label is spec.md §3's label record: interned by name, with a defined
// bit so forward references can be told apart from a genuine redefinition.
type Label struct {
	Name            string
	HasAddress      bool
	RelativeAddress uint64

	// DefinedAt is the position of the definition (zero until HasAddress).
	DefinedAt asmerr.Position
	// referencedAt records where the label was first referenced before
	// being defined, used to report undefined-label errors usefully.
	referencedAt asmerr.Position
	referenced   bool
}

// SymbolTable interns labels by name, grounded on the teacher's
// map[string]*Symbol shape (parser/symbols.go), reduced to what spec.md
// §3-§4 actually need: a defined/undefined bit and a relative address,
// no relocation bookkeeping (that lives in the resolver's placeholders).
type SymbolTable struct {
	labels map[string]*Label
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{labels: make(map[string]*Label)}
}

// intern returns the Label for name, creating an undefined placeholder
// entry if this is the first time name has been seen.
func (t *SymbolTable) intern(name string) *Label {
	if l, ok := t.labels[name]; ok {
		return l
	}
	l := &Label{Name: name}
	t.labels[name] = l
	return l
}

// Define binds name to addr. Redefining a label that already has an
// address is an error (spec.md §3 invariant); defining a label that was
// only referenced so far fills in its address.
func (t *SymbolTable) Define(name string, addr uint64, pos asmerr.Position) error {
	l := t.intern(name)
	if l.HasAddress {
		return &asmerr.Error{
			Pos:     pos,
			Kind:    asmerr.ParseError,
			Message: "duplicate label definition \"" + name + "\" (first defined at " + l.DefinedAt.String() + ")",
		}
	}
	l.HasAddress = true
	l.RelativeAddress = addr
	l.DefinedAt = pos
	return nil
}

// Reference records a placeholder's use of name, returning its Label
// (defined or not — Pass 2 resolves it once Pass 1 confirms it was
// eventually defined).
func (t *SymbolTable) Reference(name string, pos asmerr.Position) *Label {
	l := t.intern(name)
	if !l.referenced {
		l.referenced = true
		l.referencedAt = pos
	}
	return l
}

// Lookup returns the interned label, if any.
func (t *SymbolTable) Lookup(name string) (*Label, bool) {
	l, ok := t.labels[name]
	return l, ok
}

// Undefined returns every label referenced but never defined, the input
// to Pass 1's end-of-pass sweep (spec.md §4.C).
func (t *SymbolTable) Undefined() []*Label {
	var out []*Label
	for _, l := range t.labels {
		if !l.HasAddress {
			out = append(out, l)
		}
	}
	return out
}

// All returns every interned label, sorted by name. Used by tools.SymbolReport.
func (t *SymbolTable) All() []*Label {
	out := make([]*Label, 0, len(t.labels))
	for _, l := range t.labels {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Referenced reports whether the label was ever used by a placeholder.
func (l *Label) Referenced() bool {
	return l.referenced
}
