package archetype

import "unsafe"

// Context is the per-invocation bundle handed to a SystemFunc: the current
// row's base address, the offsets of the system's requested types within
// that row's family, and the user data supplied at registration.
type Context struct {
	rowBase  unsafe.Pointer
	offsets  []uintptr
	userData any
}

// Component returns a pointer to the index-th requested component (in the
// order its identifier appeared in the system's requirement string) for
// the current row. For a virtual-chunk row (a zero-sized family) this is
// always nil; callers never dereference it.
func (c *Context) Component(index int) unsafe.Pointer {
	if c.rowBase == nil {
		return nil
	}
	return unsafe.Add(c.rowBase, c.offsets[index])
}

// UserData returns the value supplied to RegisterSystem.
func (c *Context) UserData() any {
	return c.userData
}
