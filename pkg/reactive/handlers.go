package reactive

import (
	rerrors "github.com/vango-dev/reactive/internal/errors"
)

// handler is the capability set a view delegates to. There is one
// implementation per view mode.
type handler interface {
	get(b *base, key any) any
	set(b *base, key, value any) bool
	has(b *base, key any) bool
	ownKeys(b *base) []any
	deleteProperty(b *base, key any) bool
}

var (
	mutableHandlers         handler = &mutableHandler{}
	shallowHandlers         handler = &mutableHandler{shallow: true}
	readonlyHandlers        handler = &readonlyHandler{}
	shallowReadonlyHandlers handler = &readonlyHandler{shallow: true}
)

// handlerFor returns the handler implementing mode.
func handlerFor(mode Mode) handler {
	switch mode {
	case ModeShallow:
		return shallowHandlers
	case ModeReadonly:
		return readonlyHandlers
	case ModeShallowReadonly:
		return shallowReadonlyHandlers
	default:
		return mutableHandlers
	}
}

// mutableHandler tracks reads and notifies on writes.
type mutableHandler struct {
	shallow bool
}

func (h *mutableHandler) get(b *base, key any) any {
	if key == any(RawKey) {
		return b.target
	}
	if !b.target.checkKey(key) {
		return nil
	}
	b.rt.track(b.target, key, TrackGet)
	value, _ := b.target.rawGet(key)
	if h.shallow {
		return value
	}
	return b.rt.toView(value, ModeReactive)
}

func (h *mutableHandler) set(b *base, key, value any) bool {
	if !b.target.checkKey(key) {
		b.rt.warn(rerrors.New("R003").
			WithDetailf("Set(%s) on %s", describeKey(key), b.describe()).
			Wrap(ErrInvalidKey))
		return false
	}
	if !h.shallow {
		value = ToRaw(value)
	}

	oldValue, _ := b.target.rawGet(key)
	hadKey := b.target.rawHad(key)
	inHole := hadKey && !b.target.rawHas(key)
	if !b.target.rawSet(key, value) {
		b.rt.warn(rerrors.New("R003").
			WithDetailf("Set(%s) with value %v on %s", describeKey(key), value, b.describe()).
			Wrap(ErrInvalidKey))
		return false
	}

	switch {
	case !hadKey:
		b.rt.trigger(b.target, TriggerAdd, key, value, nil)
	case inHole:
		b.rt.trigger(b.target, TriggerAdd, key, value, hole{})
	case !sameValue(oldValue, value):
		b.rt.trigger(b.target, TriggerSet, key, value, oldValue)
	}
	return true
}

func (h *mutableHandler) has(b *base, key any) bool {
	if !b.target.checkKey(key) {
		return false
	}
	b.rt.track(b.target, key, TrackHas)
	return b.target.rawHas(key)
}

func (h *mutableHandler) ownKeys(b *base) []any {
	b.rt.track(b.target, IterateKey, TrackIterate)
	return b.target.rawKeys()
}

func (h *mutableHandler) deleteProperty(b *base, key any) bool {
	if !b.target.checkKey(key) {
		b.rt.warn(rerrors.New("R003").
			WithDetailf("Delete(%s) on %s", describeKey(key), b.describe()).
			Wrap(ErrInvalidKey))
		return false
	}
	hadKey := b.target.rawHas(key)
	oldValue, _ := b.target.rawGet(key)
	deleted := b.target.rawDelete(key)
	if hadKey && deleted {
		b.rt.trigger(b.target, TriggerDelete, key, nil, oldValue)
	}
	return true
}

// readonlyHandler never tracks and drops every mutation with a warning.
type readonlyHandler struct {
	shallow bool
}

func (h *readonlyHandler) get(b *base, key any) any {
	if key == any(RawKey) {
		return b.target
	}
	value, _ := b.target.rawGet(key)
	if h.shallow {
		return value
	}
	return b.rt.toView(value, ModeReadonly)
}

func (h *readonlyHandler) set(b *base, key, value any) bool {
	b.rt.metrics.readonlyViolation("set")
	b.rt.warn(rerrors.New("R001").
		WithDetailf("Set(%s) on %s", describeKey(key), b.describe()).
		Wrap(ErrReadonly))
	return true
}

func (h *readonlyHandler) has(b *base, key any) bool {
	return b.target.rawHas(key)
}

func (h *readonlyHandler) ownKeys(b *base) []any {
	return b.target.rawKeys()
}

func (h *readonlyHandler) deleteProperty(b *base, key any) bool {
	b.rt.metrics.readonlyViolation("delete")
	b.rt.warn(rerrors.New("R002").
		WithDetailf("Delete(%s) on %s", describeKey(key), b.describe()).
		Wrap(ErrReadonly))
	return true
}
