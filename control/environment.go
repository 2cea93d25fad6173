package control

// Environment is an E(k) frame (spec §3.4): a unique index, an optional
// parent, an ordered binding table from identifier lexeme to value, and a
// removed flag set when the frame's Gamma call returns. Frames are never
// freed once created — Lambda and Eta values capture an environment index
// and may re-enter it arbitrarily later via recursion (spec §5).
type Environment struct {
	Index    int
	Parent   *Environment
	Bindings map[string]*Symbol
	Removed  bool
}

// NewPrimitiveEnvironment builds E(0), the root frame with no parent and no
// bindings; primitive names are resolved by lexeme at Gamma-dispatch time
// rather than by populating this frame with concrete function values (spec
// §9 design notes).
func NewPrimitiveEnvironment() *Environment {
	return &Environment{Index: 0, Bindings: map[string]*Symbol{}}
}

// NewChild builds a fresh frame with the given index and parent, with no
// bindings yet (populated by the caller immediately after construction).
func NewChild(index int, parent *Environment) *Environment {
	return &Environment{Index: index, Parent: parent, Bindings: map[string]*Symbol{}}
}

// Bind adds or overwrites a binding in this frame. Panics if the frame has
// already been marked Removed (spec §3.4 invariant: once removed, no new
// bindings may be added).
func (e *Environment) Bind(name string, val *Symbol) {
	if e.Removed {
		panic("control: attempted to bind into a removed environment frame")
	}
	e.Bindings[name] = val
}

// Lookup searches this frame's bindings by identifier lexeme, then its
// parent chain. If no frame in the chain binds the name, it returns an
// opaque Id symbol wrapping the same lexeme (spec §3.4: "return the name
// itself wrapped as an opaque symbol"), which is how free primitive names
// like Print or Stem reach Gamma dispatch unresolved.
func (e *Environment) Lookup(name string) *Symbol {
	for env := e; env != nil; env = env.Parent {
		if v, ok := env.Bindings[name]; ok {
			return v
		}
	}
	return Id(name)
}
