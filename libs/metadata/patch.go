package metadata

import (
	"reflect"
	"sort"
	"time"
)

// Patch is a partial document update.
//
// A field is in one of three states: unset (never mentioned, so the stored value
// is left alone or back-filled when preserved), set, or cleared. A cleared
// field is written as null and is never back-filled from the stored document.
type Patch struct {
	values  map[string]interface{}
	cleared map[string]struct{}
}

// NewPatch returns an empty patch.
func NewPatch() *Patch {
	return &Patch{
		values:  make(map[string]interface{}),
		cleared: make(map[string]struct{}),
	}
}

// Set assigns v to field.
func (p *Patch) Set(field string, v interface{}) *Patch {
	delete(p.cleared, field)
	p.values[field] = v
	return p
}

// Clear marks field as intentionally emptied.
func (p *Patch) Clear(field string) *Patch {
	delete(p.values, field)
	p.cleared[field] = struct{}{}
	return p
}

// Get returns the value set for field.
func (p *Patch) Get(field string) (interface{}, bool) {
	v, ok := p.values[field]
	return v, ok
}

// IsCleared reports whether field was cleared.
func (p *Patch) IsCleared(field string) bool {
	_, ok := p.cleared[field]
	return ok
}

// Fields returns the names of the set and cleared fields, sorted.
func (p *Patch) Fields() []string {
	names := make([]string, 0, len(p.values)+len(p.cleared))
	for k := range p.values {
		names = append(names, k)
	}
	for k := range p.cleared {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Data returns the payload to merge-write. Cleared fields map to nil.
func (p *Patch) Data() map[string]interface{} {
	data := make(map[string]interface{}, len(p.values)+len(p.cleared))
	for k, v := range p.values {
		data[k] = v
	}
	for k := range p.cleared {
		data[k] = nil
	}
	return data
}

// isEmpty reports whether v carries no information: nil, a zero value, or an
// empty string, map or slice.
func isEmpty(v interface{}) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case time.Time:
		return t.IsZero()
	case *time.Time:
		return t == nil || t.IsZero()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return rv.IsZero()
}
