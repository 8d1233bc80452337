package scope

// Globals is the site-wide key to value map. It is built once and never
// mutated afterwards.
type Globals struct {
	values map[string]string
}

// NewGlobals copies values into an immutable Globals.
func NewGlobals(values map[string]string) Globals {
	cp := make(map[string]string, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return Globals{values: cp}
}

// Lookup returns the global bound to name.
func (g Globals) Lookup(name string) (string, bool) {
	v, ok := g.values[name]
	return v, ok
}
