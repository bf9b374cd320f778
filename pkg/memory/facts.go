package memory

import (
	"errors"

	"github.com/tidwall/gjson"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var errNotObject = errors.New("document is not a JSON object")

// Facts is an ordered key/value mapping. Iteration follows document order for
// loaded keys and insertion order for new ones; overwriting a key keeps its
// position.
type Facts struct {
	m *orderedmap.OrderedMap[string, string]
}

// NewFacts returns an empty mapping.
func NewFacts() *Facts {
	return &Facts{m: orderedmap.New[string, string]()}
}

// ParseFacts decodes a JSON object, keeping key order. Non-string values are
// stringified the same way biography sequence elements are.
func ParseFacts(data []byte) (*Facts, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, errNotObject
	}

	f := NewFacts()
	doc.ForEach(func(key, value gjson.Result) bool {
		f.m.Set(key.String(), stringifyResult(value))
		return true
	})
	return f, nil
}

// Set stores value under key.
func (f *Facts) Set(key, value string) {
	f.m.Set(key, value)
}

// Get returns the value for key.
func (f *Facts) Get(key string) (string, bool) {
	return f.m.Get(key)
}

// Len returns the number of facts.
func (f *Facts) Len() int {
	return f.m.Len()
}

// Each calls fn for every fact in order until fn returns false.
func (f *Facts) Each(fn func(key, value string) bool) {
	for pair := f.m.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Keys returns the keys in order.
func (f *Facts) Keys() []string {
	keys := make([]string, 0, f.m.Len())
	f.Each(func(k, _ string) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Clone returns an independent copy.
func (f *Facts) Clone() *Facts {
	out := NewFacts()
	f.Each(func(k, v string) bool {
		out.m.Set(k, v)
		return true
	})
	return out
}

// MarshalJSON encodes the facts as an object in iteration order.
func (f *Facts) MarshalJSON() ([]byte, error) {
	return f.m.MarshalJSON()
}
