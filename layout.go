package archetype

import "fmt"

// layoutEntry describes one component type's placement within a family.
type layoutEntry struct {
	id     TypeID
	size   uintptr // recorded size, including any absorbed trailing pad
	offset uintptr
}

// Layout is the packed byte layout shared by every row of an archetype.
type Layout struct {
	entries    []layoutEntry
	FamilySize uintptr
	Alignment  uintptr
}

// offsetOf returns the byte offset of id within the family, or ok=false if
// id is not part of this layout.
func (l Layout) offsetOf(id TypeID) (uintptr, bool) {
	for _, e := range l.entries {
		if e.id == id {
			return e.offset, true
		}
	}
	return 0, false
}

// computeLayout implements the widest-type-first, greedy pad-filling
// placement algorithm: the widest type anchors slot 0; each following slot
// is filled by the largest remaining type that fits the pad left by the
// previous slot and whose alignment divides the current offset (ties
// broken by lowest id); if nothing fits, the pad is
// absorbed into the previous slot and the next slot is filled by ascending
// id instead. The family size is finally rounded up to a multiple of the
// family alignment by absorbing any trailing pad into the last slot.
func computeLayout(reg *typeRegistry, m Mask) (Layout, error) {
	type candidate struct {
		id    TypeID
		size  uintptr
		align uintptr
	}

	var remaining []candidate
	var alignment uintptr = 1
	for id, ok := m.First(); ok; id, ok = m.Next(id + 1) {
		info, found := reg.info(id)
		if !found {
			return Layout{}, NotFoundError{Kind: "type id", Identifier: fmt.Sprintf("%d", id)}
		}
		remaining = append(remaining, candidate{id: id, size: info.size, align: info.align})
		if info.align > alignment {
			alignment = info.align
		}
	}

	if len(remaining) == 0 {
		return Layout{Alignment: alignment}, nil
	}

	// slot 0: widest type, ties broken by lowest id.
	widestIdx := 0
	for i := 1; i < len(remaining); i++ {
		c := remaining[i]
		w := remaining[widestIdx]
		if c.size > w.size || (c.size == w.size && c.id < w.id) {
			widestIdx = i
		}
	}
	first := remaining[widestIdx]
	remaining = append(remaining[:widestIdx], remaining[widestIdx+1:]...)

	entries := make([]layoutEntry, 0, len(remaining)+1)
	entries = append(entries, layoutEntry{id: first.id, size: first.size, offset: 0})
	var total uintptr = first.size
	pad := alignment - (total % alignment)

	for len(remaining) > 0 {
		bestIdx := -1
		for i, c := range remaining {
			if c.size > pad || (c.align != 0 && total%c.align != 0) {
				continue
			}
			if bestIdx == -1 {
				bestIdx = i
				continue
			}
			b := remaining[bestIdx]
			if c.size > b.size || (c.size == b.size && c.id < b.id) {
				bestIdx = i
			}
		}

		if bestIdx == -1 {
			// nothing fits: absorb the pad into the previous slot, then
			// place the lowest-id remaining type fresh.
			entries[len(entries)-1].size += pad
			total += pad
			pad = alignment

			minIdx := 0
			for i := 1; i < len(remaining); i++ {
				if remaining[i].id < remaining[minIdx].id {
					minIdx = i
				}
			}
			bestIdx = minIdx
		}

		chosen := remaining[bestIdx]
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
		entries = append(entries, layoutEntry{id: chosen.id, size: chosen.size, offset: total})
		total += chosen.size
		pad = alignment - (total % alignment)
	}

	// round the family size up to a multiple of alignment by absorbing any
	// trailing pad into the last placed slot. Unlike the intermediate pad
	// above, this one must collapse to zero when already aligned.
	if rem := total % alignment; rem != 0 {
		finalPad := alignment - rem
		entries[len(entries)-1].size += finalPad
		total += finalPad
	}

	return Layout{entries: entries, FamilySize: total, Alignment: alignment}, nil
}
