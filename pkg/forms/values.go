package forms

import (
	"sort"
	"strings"
)

// Values is an insertion-ordered set of column values. The dynamic records
// that arrive as JSON objects are held here so filtering keeps a stable,
// predictable key order.
type Values struct {
	keys    []string
	entries map[string]interface{}
}

func NewValues() *Values {
	return &Values{entries: make(map[string]interface{})}
}

// FromMap builds Values from a plain map. Go maps carry no order, so keys are
// sorted for determinism; callers needing a specific order should Set keys
// one by one.
func FromMap(m map[string]interface{}) *Values {
	v := NewValues()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v.Set(k, m[k])
	}
	return v
}

func (v *Values) Set(key string, value interface{}) {
	if _, exists := v.entries[key]; !exists {
		v.keys = append(v.keys, key)
	}
	v.entries[key] = value
}

func (v *Values) Get(key string) (interface{}, bool) {
	if v == nil {
		return nil, false
	}
	value, ok := v.entries[key]
	return value, ok
}

func (v *Values) Keys() []string {
	if v == nil {
		return nil
	}
	keys := make([]string, len(v.keys))
	copy(keys, v.keys)
	return keys
}

func (v *Values) Len() int {
	if v == nil {
		return 0
	}
	return len(v.keys)
}

// RemoveNull returns a copy of v without nil-valued entries. Surviving
// entries keep their insertion order. Zero values (0, false, "") survive.
func RemoveNull(v *Values) *Values {
	return filter(v, func(value interface{}) bool {
		return value != nil
	})
}

// RemoveNullAndEmptyString returns a copy of v without nil-valued entries and
// without string entries that are empty after trimming whitespace.
func RemoveNullAndEmptyString(v *Values) *Values {
	return filter(v, func(value interface{}) bool {
		if value == nil {
			return false
		}
		if s, ok := value.(string); ok {
			return strings.TrimSpace(s) != ""
		}
		return true
	})
}

func filter(v *Values, keep func(interface{}) bool) *Values {
	out := NewValues()
	if v == nil {
		return out
	}
	for _, key := range v.keys {
		if value := v.entries[key]; keep(value) {
			out.Set(key, value)
		}
	}
	return out
}
