package archetype

import "unsafe"

// RegisterComponent is generic sugar over World.RegisterType: it derives
// size and alignment from T via reflection-free unsafe introspection and
// returns an AccessibleComponent bound to the resulting TypeID.
func RegisterComponent[T any](w *World, identifier string) (AccessibleComponent[T], error) {
	var zero T
	id, err := w.RegisterType(identifier, unsafe.Sizeof(zero), unsafe.Alignof(zero))
	if err != nil {
		return AccessibleComponent[T]{}, err
	}
	return AccessibleComponent[T]{id: id, identifier: identifier}, nil
}

// AccessibleComponent binds a Go type to the TypeID it was registered
// under, and offers typed pointer access without the caller juggling
// identifiers or unsafe.Pointer at call sites.
type AccessibleComponent[T any] struct {
	id         TypeID
	identifier string
}

// ID returns the TypeID this component was registered under.
func (c AccessibleComponent[T]) ID() TypeID {
	return c.id
}

// Identifier returns the string identifier this component was registered
// under.
func (c AccessibleComponent[T]) Identifier() string {
	return c.identifier
}

// GetFromEntity returns a typed pointer to this component on e, or nil if
// e doesn't carry it.
func (c AccessibleComponent[T]) GetFromEntity(w *World, e Entity) *T {
	ptr := w.GetComponent(e, c.identifier)
	if ptr == nil {
		return nil
	}
	return (*T)(ptr)
}

// GetFromContext returns a typed pointer to the index-th component
// requested by the current system invocation.
func GetFromContext[T any](ctx *Context, index int) *T {
	ptr := ctx.Component(index)
	if ptr == nil {
		return nil
	}
	return (*T)(ptr)
}
