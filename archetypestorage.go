package archetype

// rowRef addresses a single row within a specific chunk of a specific
// archetype's storage.
type rowRef struct {
	chunk *chunk
	row   int
}

// regionDescriptor describes a contiguous run of rows reserved within one
// chunk, plus whether those rows came from the recycled-row stack (and
// therefore may need re-zeroing, and must not double-count into the
// chunk's high-water mark).
type regionDescriptor struct {
	chunk       *chunk
	rowOffset   int
	rowCount    int
	fromRecycle bool
}

// regionRequest is the in-flight result of a reserve call: a set of
// regions plus enough bookkeeping to commit or abort them.
type regionRequest struct {
	storage          *archetypeStorage
	regions          []regionDescriptor
	newRecycledCount int
	resolved         bool
}

// archetypeStorage holds every row for entities sharing one exact
// component mask: the packed layout, the chunk list (newest chunk
// prepended to the front), and the LIFO stack of rows freed by despawn,
// migration-out, or an aborted reservation.
type archetypeStorage struct {
	mask     Mask
	layout   Layout
	chunks   []*chunk
	recycled []rowRef
	systems  []*System // systems currently matching this archetype
}

func newArchetypeStorage(mask Mask, layout Layout) *archetypeStorage {
	return &archetypeStorage{mask: mask, layout: layout}
}

// reserve allocates n rows without mutating committed state: it drains the
// recycled-row stack first (LIFO), then the current head chunk's spare
// capacity, then allocates new chunks (prepended, so the newest and, in a
// multi-chunk spawn, the overflow chunk ends up at the front) as needed.
func (s *archetypeStorage) reserve(n int) *regionRequest {
	req := &regionRequest{storage: s}
	remaining := n

	consumed := 0
	for remaining > 0 && consumed < len(s.recycled) {
		ref := s.recycled[len(s.recycled)-1-consumed]
		req.regions = append(req.regions, regionDescriptor{chunk: ref.chunk, rowOffset: ref.row, rowCount: 1, fromRecycle: true})
		consumed++
		remaining--
	}
	req.newRecycledCount = len(s.recycled) - consumed

	if remaining == 0 {
		return req
	}

	if s.layout.FamilySize == 0 {
		vc := newVirtualChunk(remaining)
		s.chunks = append([]*chunk{vc}, s.chunks...)
		req.regions = append(req.regions, regionDescriptor{chunk: vc, rowOffset: 0, rowCount: remaining})
		return req
	}

	if len(s.chunks) > 0 {
		head := s.chunks[0]
		if avail := head.capacity - head.count; avail > 0 {
			take := avail
			if take > remaining {
				take = remaining
			}
			req.regions = append(req.regions, regionDescriptor{chunk: head, rowOffset: head.count, rowCount: take})
			remaining -= take
		}
	}

	for remaining > 0 {
		nc := newRealChunk(s.layout)
		take := nc.capacity
		if take > remaining {
			take = remaining
		}
		s.chunks = append([]*chunk{nc}, s.chunks...)
		req.regions = append(req.regions, regionDescriptor{chunk: nc, rowOffset: 0, rowCount: take})
		remaining -= take
	}

	return req
}

// commit finalizes a reservation: truncates the recycled stack, extends
// each chunk's high-water mark as needed, marks every row live, and
// re-zeroes rows drawn from the recycled stack.
func (req *regionRequest) commit() {
	s := req.storage
	for _, rd := range req.regions {
		end := rd.rowOffset + rd.rowCount
		if end > rd.chunk.count {
			rd.chunk.count = end
		}
		for r := rd.rowOffset; r < end; r++ {
			if rd.fromRecycle {
				rd.chunk.zeroRow(s.layout, r)
			}
			rd.chunk.live[r] = true
		}
	}
	s.recycled = s.recycled[:req.newRecycledCount]
	req.resolved = true
}

// abort returns every reserved row to the recycled-row stack, untouched.
// Rows drawn from the recycled stack in the same reserve call are simply
// left where they are (reserve never popped them); rows drawn from chunk
// capacity are pushed fresh (they were never marked live, so no
// live-state needs clearing).
func (req *regionRequest) abort() {
	s := req.storage
	for _, rd := range req.regions {
		if rd.fromRecycle {
			continue
		}
		for r := rd.rowOffset; r < rd.rowOffset+rd.rowCount; r++ {
			s.recycled = append(s.recycled, rowRef{chunk: rd.chunk, row: r})
		}
	}
	req.resolved = true
}

// release pushes a single in-use row back onto the recycled stack and
// clears its live bit, for despawn and archetype migration.
func (s *archetypeStorage) release(c *chunk, row int) {
	c.live[row] = false
	s.recycled = append(s.recycled, rowRef{chunk: c, row: row})
}

// forEachRow walks every live row, newest chunk first, ascending row
// index within a chunk, per the documented iteration order.
func (s *archetypeStorage) forEachRow(fn func(c *chunk, row int)) {
	for _, c := range s.chunks {
		for r := 0; r < c.count; r++ {
			if c.live[r] {
				fn(c, r)
			}
		}
	}
}
