// Package extract locates CSS custom-property declarations in plain
// stylesheet text and records them into a per-scan registry.
package extract

import (
	"liquidvars/model"
)

// Registry collects the variables of one scan in insertion order. It is
// append-only and first-write-wins per name; a rescan builds a fresh
// Registry rather than mutating this one.
type Registry struct {
	vars  map[string]*model.CSSVariable
	names []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{vars: make(map[string]*model.CSSVariable)}
}

// Add records a base declaration. The first declaration of a name wins;
// duplicates are ignored and reported false.
func (r *Registry) Add(name, value, sourceFile string) bool {
	if _, exists := r.vars[name]; exists {
		return false
	}
	r.vars[name] = &model.CSSVariable{
		Name:       name,
		Value:      value,
		SourceFile: sourceFile,
	}
	r.names = append(r.names, name)
	return true
}

// AddMediaVariant appends a media-query variant to an already-known
// variable. Unknown names are ignored: media occurrences never establish a
// base value.
func (r *Registry) AddMediaVariant(name, query, value string) bool {
	v, exists := r.vars[name]
	if !exists {
		return false
	}
	v.Media = append(v.Media, model.MediaVariant{Query: query, Value: value})
	return true
}

// Lookup returns a copy of the entry for name.
func (r *Registry) Lookup(name string) (model.CSSVariable, bool) {
	v, ok := r.vars[name]
	if !ok {
		return model.CSSVariable{}, false
	}
	return *v, true
}

// Variables returns copies of all entries in insertion order.
func (r *Registry) Variables() []model.CSSVariable {
	out := make([]model.CSSVariable, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, *r.vars[name])
	}
	return out
}

// Len reports the number of distinct variables.
func (r *Registry) Len() int {
	return len(r.names)
}
