package reactive

import (
	"fmt"

	rerrors "github.com/vango-dev/reactive/internal/errors"
)

// Mode selects how a view behaves.
type Mode uint8

const (
	// ModeShallow stops nested Objects and Arrays from being wrapped.
	ModeShallow Mode = 1 << iota

	// ModeReadonly rejects mutations and never records dependencies.
	ModeReadonly
)

const (
	// ModeReactive is the deep, mutable mode.
	ModeReactive Mode = 0

	// ModeShallowReadonly combines ModeShallow and ModeReadonly.
	ModeShallowReadonly = ModeShallow | ModeReadonly
)

// Shallow reports whether nested values are returned unwrapped.
func (m Mode) Shallow() bool { return m&ModeShallow != 0 }

// Readonly reports whether mutations are rejected.
func (m Mode) Readonly() bool { return m&ModeReadonly != 0 }

// String returns a human-readable name for the mode.
func (m Mode) String() string {
	switch m {
	case ModeReactive:
		return "reactive"
	case ModeShallow:
		return "shallowReactive"
	case ModeReadonly:
		return "readonly"
	case ModeShallowReadonly:
		return "shallowReadonly"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// View is the intercepting facade over one raw target.
type View interface {
	// Get reads key, recording a dependency on mutable views. Nested
	// Objects and Arrays come back as views unless the view is shallow.
	// Get(RawKey) returns the raw target.
	Get(key any) any

	// Set writes key and notifies subscribers. It reports false only for
	// keys or values the target cannot hold; readonly views drop the write
	// with a warning and still report true.
	Set(key, value any) bool

	// Has reports whether key is present, recording a dependency.
	Has(key any) bool

	// Keys enumerates the target's keys, recording a dependency on its
	// shape.
	Keys() []any

	// Delete removes key. Deleting an absent key is a no-op reporting true.
	Delete(key any) bool

	// Raw returns the underlying target.
	Raw() Target

	// Mode returns the view's mode.
	Mode() Mode
}

// base carries what every view mode shares. Mode-specific behaviour lives
// in the handler.
type base struct {
	rt     *Runtime
	target Target
	mode   Mode
	h      handler
}

func (b *base) Get(key any) any         { return b.h.get(b, key) }
func (b *base) Set(key, value any) bool { return b.h.set(b, key, value) }
func (b *base) Has(key any) bool        { return b.h.has(b, key) }
func (b *base) Keys() []any             { return b.h.ownKeys(b) }
func (b *base) Delete(key any) bool     { return b.h.deleteProperty(b, key) }
func (b *base) Raw() Target             { return b.target }
func (b *base) Mode() Mode              { return b.mode }

// Runtime returns the runtime the view belongs to.
func (b *base) Runtime() *Runtime { return b.rt }

func (b *base) describe() string {
	switch b.target.(type) {
	case *Array:
		return b.mode.String() + " array"
	default:
		return b.mode.String() + " object"
	}
}

// ObjectView is a view over an *Object.
type ObjectView struct {
	base
	object *Object
}

// Object returns the underlying raw Object.
func (v *ObjectView) Object() *Object {
	return v.object
}

// ArrayView is a view over an *Array.
type ArrayView struct {
	base
	array *Array
}

// Array returns the underlying raw Array.
func (v *ArrayView) Array() *Array {
	return v.array
}

// Len returns the length, recording a dependency on it.
func (v *ArrayView) Len() int {
	n, _ := v.Get(LengthKey).(int)
	return n
}

// At returns the element at i, recording a dependency on it.
func (v *ArrayView) At(i int) any {
	return v.Get(i)
}

// SetLen sets the length. Shrinking notifies readers of every index at or
// beyond n.
func (v *ArrayView) SetLen(n int) bool {
	return v.Set(LengthKey, n)
}

// Push appends values and returns the new length. The current length is
// read from the raw array, so pushing from inside an effect does not make
// the effect depend on length.
func (v *ArrayView) Push(values ...any) int {
	for _, value := range values {
		v.Set(v.array.Len(), value)
	}
	return v.array.Len()
}

// Pop removes and returns the last element, or nil if the array is empty.
// Like Push, it does not record a dependency on length.
func (v *ArrayView) Pop() any {
	n := v.array.Len()
	if n == 0 {
		return nil
	}
	last := v.array.At(n - 1)
	v.SetLen(n - 1)
	if v.mode.Shallow() {
		return last
	}
	return v.rt.toView(last, v.mode&ModeReadonly)
}

var (
	_ View = (*ObjectView)(nil)
	_ View = (*ArrayView)(nil)
)

// viewCache stores the views created over a target so repeated wraps, and
// repeated nested reads, return the same view.
type viewCache struct {
	entries []cachedView
}

type cachedView struct {
	rt   *Runtime
	mode Mode
	view View
}

func (c *viewCache) lookup(rt *Runtime, mode Mode) View {
	for _, entry := range c.entries {
		if entry.rt == rt && entry.mode == mode {
			return entry.view
		}
	}
	return nil
}

func (c *viewCache) store(rt *Runtime, mode Mode, v View) {
	c.entries = append(c.entries, cachedView{rt: rt, mode: mode, view: v})
}

// View returns the view over t in the given mode, creating it on first use.
// It returns nil for a nil target.
func (rt *Runtime) View(t Target, mode Mode) View {
	if isNilTarget(t) {
		return nil
	}
	cache := t.views()
	if v := cache.lookup(rt, mode); v != nil {
		return v
	}

	b := base{rt: rt, target: t, mode: mode, h: handlerFor(mode)}
	var v View
	switch x := t.(type) {
	case *Object:
		v = &ObjectView{base: b, object: x}
	case *Array:
		v = &ArrayView{base: b, array: x}
	}
	cache.store(rt, mode, v)
	return v
}

// Reactive returns the deep, mutable view over t.
func (rt *Runtime) Reactive(t Target) View {
	return rt.View(t, ModeReactive)
}

// ShallowReactive returns a mutable view whose nested values are returned
// as stored.
func (rt *Runtime) ShallowReactive(t Target) View {
	return rt.View(t, ModeShallow)
}

// Readonly returns the deep, immutable view over t.
func (rt *Runtime) Readonly(t Target) View {
	return rt.View(t, ModeReadonly)
}

// ShallowReadonly returns an immutable view whose nested values are
// returned as stored.
func (rt *Runtime) ShallowReadonly(t Target) View {
	return rt.View(t, ModeShallowReadonly)
}

// toView wraps raw Objects and Arrays in the given mode and passes every
// other value through.
func (rt *Runtime) toView(value any, mode Mode) any {
	t, ok := value.(Target)
	if !ok || isNilTarget(t) {
		return value
	}
	return rt.View(t, mode)
}

func isNilTarget(t Target) bool {
	switch x := t.(type) {
	case nil:
		return true
	case *Object:
		return x == nil
	case *Array:
		return x == nil
	default:
		return false
	}
}

// Reactive returns the deep, mutable view over t on the Default runtime.
func Reactive(t Target) View { return Default().Reactive(t) }

// ShallowReactive returns the shallow, mutable view over t on the Default runtime.
func ShallowReactive(t Target) View { return Default().ShallowReactive(t) }

// Readonly returns the deep, immutable view over t on the Default runtime.
func Readonly(t Target) View { return Default().Readonly(t) }

// ShallowReadonly returns the shallow, immutable view over t on the Default runtime.
func ShallowReadonly(t Target) View { return Default().ShallowReadonly(t) }

// IsReactive reports whether v is a mutable view.
func IsReactive(v any) bool {
	view, ok := v.(View)
	return ok && !view.Mode().Readonly()
}

// IsReadonly reports whether v is a readonly view.
func IsReadonly(v any) bool {
	view, ok := v.(View)
	return ok && view.Mode().Readonly()
}

// IsShallow reports whether v is a shallow view.
func IsShallow(v any) bool {
	view, ok := v.(View)
	return ok && view.Mode().Shallow()
}

// ToRaw returns the raw target behind a view, or v itself otherwise.
func ToRaw(v any) any {
	if view, ok := v.(View); ok && view != nil {
		return view.Raw()
	}
	return v
}

// Of returns the view in mode over value. Views are re-wrapped over their
// raw target, and plain map[string]any and []any literals are converted
// with FromValue first. Any other value is returned unchanged with a
// warning.
func (rt *Runtime) Of(value any, mode Mode) any {
	switch x := FromValue(ToRaw(value)).(type) {
	case *Object:
		if x != nil {
			return rt.View(x, mode)
		}
	case *Array:
		if x != nil {
			return rt.View(x, mode)
		}
	}
	rt.warn(rerrors.New("R004").
		WithDetailf("%s(%v) of type %T", mode, value, value).
		Wrap(ErrNotWrappable))
	return value
}
