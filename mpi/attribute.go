package mpi

import (
	"reflect"
	"sync"

	"github.com/rivergrid/mpi-go/internal/cmpi"
)

// Duplicable opts an attribute value into propagation across Comm.Dup.
// When a communicator carrying the value is duplicated, DupAttr is called
// and its result is attached to the duplicate. Values that do not
// implement Duplicable are silently dropped from the duplicate, so a
// handle or connection cached on one communicator can never leak into
// another one by accident.
type Duplicable interface {
	DupAttr() any
}

// Attribute keys are derived from Go types: each distinct T used with
// SetAttr gets its own engine keyval, created lazily and reused for the
// life of the process. Two packages can therefore never collide on a key
// unless they share the exact attribute type, which is the collision they
// would want.
var attrKeys struct {
	mu     sync.Mutex
	byType map[reflect.Type]int
}

var attrHookOnce sync.Once

func installAttrHook() {
	cmpi.SetAttrCopyHook(func(v any) (any, bool) {
		if d, ok := v.(Duplicable); ok {
			return d.DupAttr(), true
		}
		return nil, false
	})
}

func keyvalFor(t reflect.Type) (int, error) {
	attrHookOnce.Do(installAttrHook)
	attrKeys.mu.Lock()
	defer attrKeys.mu.Unlock()
	if kv, ok := attrKeys.byType[t]; ok {
		return kv, nil
	}
	kv, err := cmpi.KeyvalCreate()
	if err != nil {
		return 0, err
	}
	if attrKeys.byType == nil {
		attrKeys.byType = make(map[reflect.Type]int)
	}
	attrKeys.byType[t] = kv
	return kv, nil
}

// freeCachedKeyvals releases every lazily created keyval. Called during
// finalization, after which no attribute operation is legal anyway.
func freeCachedKeyvals() {
	attrKeys.mu.Lock()
	defer attrKeys.mu.Unlock()
	for t, kv := range attrKeys.byType {
		_ = cmpi.KeyvalFree(kv)
		delete(attrKeys.byType, t)
	}
}

func attrType[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// SetAttr attaches v to the communicator under the key derived from T,
// replacing any previous value of that type.
func SetAttr[T any](c *Comm, v T) error {
	kv, err := keyvalFor(attrType[T]())
	if err != nil {
		return err
	}
	return c.handle.SetAttrValue(kv, v)
}

// Attr retrieves the value of type T attached to the communicator. The
// boolean reports whether one was present. A value that propagated
// through Dup must still assert to T; DupAttr implementations returning a
// different type surface here as ErrTypeMismatch.
func Attr[T any](c *Comm) (T, bool, error) {
	var zero T
	kv, err := keyvalFor(attrType[T]())
	if err != nil {
		return zero, false, err
	}
	v, ok, err := c.handle.AttrValue(kv)
	if err != nil || !ok {
		return zero, false, err
	}
	tv, ok := v.(T)
	if !ok {
		return zero, false, ErrTypeMismatch
	}
	return tv, true, nil
}

// DeleteAttr removes the value of type T from the communicator. Deleting
// an absent attribute is not an error.
func DeleteAttr[T any](c *Comm) error {
	kv, err := keyvalFor(attrType[T]())
	if err != nil {
		return err
	}
	_, ok, err := c.handle.AttrValue(kv)
	if err != nil || !ok {
		return err
	}
	return c.handle.DeleteAttrValue(kv)
}
