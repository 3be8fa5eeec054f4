package reactive

import (
	"runtime"
	"sort"
	"sync"
	"weak"
)

// Dep is the set of effects subscribed to one (target, key) pair.
type Dep struct {
	key  any
	subs map[*Effect]struct{}
}

func newDep(key any) *Dep {
	return &Dep{key: key, subs: make(map[*Effect]struct{})}
}

// Key returns the property key this dep tracks.
func (d *Dep) Key() any {
	return d.key
}

// Len returns the number of subscribed effects.
func (d *Dep) Len() int {
	return len(d.subs)
}

// Has reports whether e is subscribed.
func (d *Dep) Has(e *Effect) bool {
	_, ok := d.subs[e]
	return ok
}

// keyMap maps property keys of one target to their deps.
type keyMap map[any]*Dep

// targetMap is the dependency store. Entries are keyed by weak pointers so
// the store never keeps a target alive; a cleanup registered on first use
// drops the entry once the target is collected.
type targetMap struct {
	mu      sync.Mutex
	entries map[any]keyMap
}

func newTargetMap() *targetMap {
	return &targetMap{entries: make(map[any]keyMap)}
}

// identity returns the weak identity of t.
func identity(t Target) any {
	switch x := t.(type) {
	case *Object:
		return weak.Make(x)
	case *Array:
		return weak.Make(x)
	default:
		return nil
	}
}

// lookup returns the key map for t, or nil if nothing was ever tracked.
func (m *targetMap) lookup(t Target) keyMap {
	id := identity(t)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[id]
}

// dep returns the dep for (t, key), creating the path if needed.
func (m *targetMap) dep(t Target, key any) *Dep {
	id := identity(t)

	m.mu.Lock()
	km, ok := m.entries[id]
	if !ok {
		km = make(keyMap)
		m.entries[id] = km
	}
	m.mu.Unlock()

	if !ok {
		m.watch(t, id)
	}

	d, ok := km[key]
	if !ok {
		d = newDep(key)
		km[key] = d
	}
	return d
}

// watch arranges for id's entry to be pruned when t is collected.
func (m *targetMap) watch(t Target, id any) {
	switch x := t.(type) {
	case *Object:
		runtime.AddCleanup(x, m.prune, id)
	case *Array:
		runtime.AddCleanup(x, m.prune, id)
	}
}

// prune runs on the runtime's cleanup goroutine.
func (m *targetMap) prune(id any) {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
}

// size returns the number of targets with an entry.
func (m *targetMap) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// sortEffects orders effects by creation so notification is deterministic.
func sortEffects(effects []*Effect) {
	sort.Slice(effects, func(i, j int) bool {
		return effects[i].id < effects[j].id
	})
}
