package reactive

import (
	"fmt"
	"sort"
)

// Target is a raw keyed structure that views intercept.
// *Object and *Array are the only implementations.
type Target interface {
	// checkKey reports whether key addresses a property of this target.
	checkKey(key any) bool
	rawGet(key any) (any, bool)
	// rawHad reports whether a write to key is an update rather than a
	// structural add.
	rawHad(key any) bool
	rawHas(key any) bool
	rawSet(key, value any) bool
	rawDelete(key any) bool
	rawKeys() []any
	views() *viewCache
}

// Object is an insertion-ordered string-keyed record.
// Its own methods read and write without tracking or notification.
type Object struct {
	keys   []string
	values map[string]any
	cache  viewCache
}

var _ Target = (*Object)(nil)

// NewObject creates an empty Object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// FromMap creates an Object from m with keys in sorted order.
// Nested maps and slices are converted with FromValue.
func FromMap(m map[string]any) *Object {
	o := NewObject()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		o.Set(k, FromValue(m[k]))
	}
	return o
}

// FromValue converts plain Go literals into raw targets: map[string]any
// becomes *Object and []any becomes *Array, recursively. Other values are
// returned unchanged.
func FromValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return FromMap(x)
	case []any:
		items := make([]any, len(x))
		for i, item := range x {
			items[i] = FromValue(item)
		}
		return NewArray(items...)
	default:
		return v
	}
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Set stores value under key, appending key to the key order if new.
func (o *Object) Set(key string, value any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	if _, ok := o.values[key]; !ok {
		return false
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

func (o *Object) checkKey(key any) bool {
	_, ok := key.(string)
	return ok
}

func (o *Object) rawGet(key any) (any, bool) {
	k, ok := key.(string)
	if !ok {
		return nil, false
	}
	return o.Get(k)
}

func (o *Object) rawHad(key any) bool {
	return o.rawHas(key)
}

func (o *Object) rawHas(key any) bool {
	k, ok := key.(string)
	return ok && o.Has(k)
}

func (o *Object) rawSet(key, value any) bool {
	k, ok := key.(string)
	if !ok {
		return false
	}
	o.Set(k, value)
	return true
}

func (o *Object) rawDelete(key any) bool {
	k, ok := key.(string)
	return ok && o.Delete(k)
}

func (o *Object) rawKeys() []any {
	keys := make([]any, len(o.keys))
	for i, k := range o.keys {
		keys[i] = k
	}
	return keys
}

func (o *Object) views() *viewCache {
	return &o.cache
}

// hole marks an array slot that holds no element.
type hole struct{}

// Array is an int-indexed sequence with a settable length.
// Slots created by growing the length, or by writing past the end, are
// holes: they read as nil and are not reported by Has or Keys until
// written.
type Array struct {
	items []any
	cache viewCache
}

var _ Target = (*Array)(nil)

// NewArray creates an Array holding items. The slice is used directly.
func NewArray(items ...any) *Array {
	return &Array{items: items}
}

// Len returns the array length.
func (a *Array) Len() int {
	return len(a.items)
}

// At returns the element at i, or nil if i is out of range or a hole.
func (a *Array) At(i int) any {
	if i < 0 || i >= len(a.items) {
		return nil
	}
	if _, ok := a.items[i].(hole); ok {
		return nil
	}
	return a.items[i]
}

// Set stores value at i, growing the array with holes when i is past
// the end. Negative indexes are ignored.
func (a *Array) Set(i int, value any) {
	if i < 0 {
		return
	}
	if i >= len(a.items) {
		a.SetLen(i + 1)
	}
	a.items[i] = value
}

// SetLen truncates or grows the array to n elements.
func (a *Array) SetLen(n int) {
	if n < 0 {
		return
	}
	if n <= len(a.items) {
		for i := n; i < len(a.items); i++ {
			a.items[i] = nil
		}
		a.items = a.items[:n]
		return
	}
	for len(a.items) < n {
		a.items = append(a.items, hole{})
	}
}

// Items returns a copy of the elements, with holes as nil.
func (a *Array) Items() []any {
	out := make([]any, len(a.items))
	for i := range a.items {
		out[i] = a.At(i)
	}
	return out
}

func (a *Array) index(key any) (int, bool) {
	i, ok := key.(int)
	return i, ok && i >= 0
}

func (a *Array) checkKey(key any) bool {
	if key == any(LengthKey) {
		return true
	}
	_, ok := a.index(key)
	return ok
}

func (a *Array) rawGet(key any) (any, bool) {
	if key == any(LengthKey) {
		return len(a.items), true
	}
	i, ok := a.index(key)
	if !ok || !a.rawHas(i) {
		return nil, false
	}
	return a.items[i], true
}

func (a *Array) rawHad(key any) bool {
	if key == any(LengthKey) {
		return true
	}
	i, ok := a.index(key)
	return ok && i < len(a.items)
}

func (a *Array) rawHas(key any) bool {
	if key == any(LengthKey) {
		return true
	}
	i, ok := a.index(key)
	if !ok || i >= len(a.items) {
		return false
	}
	_, isHole := a.items[i].(hole)
	return !isHole
}

func (a *Array) rawSet(key, value any) bool {
	if key == any(LengthKey) {
		n, ok := value.(int)
		if !ok || n < 0 {
			return false
		}
		a.SetLen(n)
		return true
	}
	i, ok := a.index(key)
	if !ok {
		return false
	}
	a.Set(i, value)
	return true
}

func (a *Array) rawDelete(key any) bool {
	i, ok := a.index(key)
	if !ok || !a.rawHas(i) {
		return false
	}
	a.items[i] = hole{}
	return true
}

func (a *Array) rawKeys() []any {
	keys := make([]any, 0, len(a.items))
	for i := range a.items {
		if a.rawHas(i) {
			keys = append(keys, i)
		}
	}
	return keys
}

func (a *Array) views() *viewCache {
	return &a.cache
}

// describeKey renders a key for diagnostics.
func describeKey(key any) string {
	switch k := key.(type) {
	case string:
		return fmt.Sprintf("%q", k)
	case *Sentinel:
		return "<" + k.String() + ">"
	default:
		return fmt.Sprintf("%v (%T)", k, k)
	}
}
