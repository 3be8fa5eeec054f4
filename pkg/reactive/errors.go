package reactive

import "errors"

// ErrReadonly is wrapped by warnings raised for writes and deletes through
// a readonly view. The operation is dropped and reported as successful.
var ErrReadonly = errors.New("reactive: target is readonly")

// ErrInvalidKey is wrapped by warnings for keys a target cannot hold, such
// as a non-string key on an Object or a negative index on an Array.
var ErrInvalidKey = errors.New("reactive: invalid key for target")

// ErrNotWrappable is wrapped by warnings for values that are neither a
// target nor a literal convertible into one.
var ErrNotWrappable = errors.New("reactive: value cannot be made reactive")
