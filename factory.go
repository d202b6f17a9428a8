package archetype

// factory groups the package-level constructors that don't need their own
// state, so callers have one place to find them.
type factory struct{}

// Factory is the global factory instance for constructing queries, cursors
// and caches. World construction goes through New, not Factory, because a
// World owns its own state and is never a package-level singleton.
var Factory factory

// NewQuery returns a new, empty Query.
func (f factory) NewQuery() Query {
	return newQuery()
}

// NewCursor returns a new Cursor over world for the given query node.
func (f factory) NewCursor(world *World, node QueryNode) *Cursor {
	return newCursor(world, node)
}

// FactoryNewCache returns a new Cache with the given capacity.
func FactoryNewCache[T any](capacity int) Cache[T] {
	return &SimpleCache[T]{
		itemIndices: make(map[string]int),
		maxCapacity: capacity,
	}
}
