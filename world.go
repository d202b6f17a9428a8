package archetype

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/TheBitDrifter/bark"
)

// Option configures a World at construction time.
type Option func(*World)

// WithDebug enables verbose lifecycle logging on the shared
// Config singleton.
func WithDebug(on bool) Option {
	return func(w *World) {
		Config.SetDebug(on)
	}
}

// World is the sole entry point for the ECS core: the type registry, the
// entity table, the archetype list and the matching index all live here,
// never in package-level state, so multiple worlds never interfere.
type World struct {
	registry       typeRegistry
	entities       entityTable
	archetypes     []*archetypeStorage
	archetypeIndex map[Mask]*archetypeStorage
	systems        []*System
	systemIndex    map[string]int
	compositions   Cache[compiledRequirement]
	closed         bool
}

// compositionCacheCapacity bounds how many distinct composition strings
// Spawn will memoize before falling back to parsing on every call.
const compositionCacheCapacity = 4096

// New constructs an empty World.
func New(opts ...Option) (*World, error) {
	w := &World{
		archetypeIndex: make(map[Mask]*archetypeStorage),
		systemIndex:    make(map[string]int),
		compositions:   FactoryNewCache[compiledRequirement](compositionCacheCapacity),
	}
	for _, opt := range opts {
		opt(w)
	}
	Config.logf("archetype: world initialized")
	return w, nil
}

func (w *World) checkOpen() error {
	if w.closed {
		return ClosedWorldError{}
	}
	return nil
}

// RegisterType registers a component type by identifier, size and
// alignment, returning a dense, stable TypeID equal to its registration
// order. Re-registering an identifier is rejected without mutating any
// state.
func (w *World) RegisterType(identifier string, size, align uintptr) (TypeID, error) {
	if err := w.checkOpen(); err != nil {
		return 0, err
	}
	id, err := w.registry.register(identifier, size, align)
	if err != nil {
		return 0, err
	}
	Config.logf("archetype: registered type %q as id %d (size=%d align=%d)", identifier, id, size, align)
	return id, nil
}

// RegisterSystem compiles requirements into must_have/must_not_have masks
// and an ordered positive-only type vector, then links the new system
// against every existing matching archetype. On failure (duplicate
// identifier, bad requirement syntax, or a matching-index error), no
// state is mutated.
func (w *World) RegisterSystem(identifier, requirements string, cb SystemFunc, userData any) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if _, exists := w.systemIndex[identifier]; exists {
		return AlreadyExistsError{Kind: "system", Identifier: identifier}
	}

	req, err := compileRequirement(&w.registry, requirements, true)
	if err != nil {
		return err
	}

	sys := &System{identifier: identifier, requirement: req, callback: cb, userData: userData}
	if err := onNewSystem(w, sys); err != nil {
		return err
	}

	w.systemIndex[identifier] = len(w.systems)
	w.systems = append(w.systems, sys)
	Config.logf("archetype: registered system %q (%d initial matches)", identifier, len(sys.matches))
	return nil
}

// resolveComposition compiles composition, memoizing the result so a
// repeated Spawn with the same literal string skips re-tokenizing it.
func (w *World) resolveComposition(composition string) (compiledRequirement, error) {
	if idx, ok := w.compositions.GetIndex(composition); ok {
		return *w.compositions.GetItem(idx), nil
	}
	req, err := compileRequirement(&w.registry, composition, false)
	if err != nil {
		return compiledRequirement{}, err
	}
	if _, cerr := w.compositions.Register(composition, req); cerr != nil {
		Config.logf("archetype: composition cache full, not memoizing %q", composition)
	}
	return req, nil
}

// archetypeFor resolves the archetype storing mask, creating it (and
// running the matching index's new-archetype scan) if it doesn't exist
// yet. On matching-index failure, the new archetype is discarded and the
// error is returned; no partial state survives.
func (w *World) archetypeFor(mask Mask) (*archetypeStorage, error) {
	if arch, ok := w.archetypeIndex[mask]; ok {
		return arch, nil
	}

	layout, err := computeLayout(&w.registry, mask)
	if err != nil {
		return nil, err
	}
	arch := newArchetypeStorage(mask, layout)
	if err := onNewArchetype(w, arch); err != nil {
		return nil, err
	}

	w.archetypeIndex[mask] = arch
	w.archetypes = append(w.archetypes, arch)
	Config.logf("archetype: new archetype family_size=%d alignment=%d", layout.FamilySize, layout.Alignment)
	return arch, nil
}

// Spawn creates count entities with the given composition (a
// comma-separated, non-negated list of registered type identifiers). The
// whole call is transactional: if composition parsing, archetype
// resolution, or row reservation fails, no entity ids, rows or matching
// links are left behind.
func (w *World) Spawn(count int, composition string) ([]Entity, error) {
	if err := w.checkOpen(); err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, BadRequirementError{Reason: "spawn count must be positive"}
	}

	req, err := w.resolveComposition(composition)
	if err != nil {
		return nil, err
	}
	if len(req.types) == 0 {
		return nil, BadRequirementError{Reason: "entity composition must have at least one component"}
	}

	var mask Mask
	for _, id := range req.types {
		mask.Insert(id)
	}

	arch, err := w.archetypeFor(mask)
	if err != nil {
		return nil, err
	}

	region := arch.reserve(count)

	ids := make([]EntityID, 0, count)
	entities := make([]Entity, 0, count)
	for i := 0; i < count; i++ {
		id := w.entities.alloc()
		ids = append(ids, id)
		entities = append(entities, Entity{id: id})
	}

	region.commit()

	idx := 0
	for _, rd := range region.regions {
		for r := rd.rowOffset; r < rd.rowOffset+rd.rowCount; r++ {
			w.entities.set(ids[idx], entityRecord{archetype: arch, chunk: rd.chunk, row: r, alive: true})
			idx++
		}
	}

	Config.logf("archetype: spawned %d entities into composition %q", count, composition)
	return entities, nil
}

// GetComponent returns a pointer to the named component on e, or nil if e
// is invalid, dead, or its archetype does not carry that component. This
// is the NoComponent case: absence is reported by a nil pointer,
// never by an error.
func (w *World) GetComponent(e Entity, identifier string) unsafe.Pointer {
	rec, alive := w.entities.get(e.id)
	if !alive {
		return nil
	}
	id, ok := w.registry.lookup(identifier)
	if !ok {
		return nil
	}
	return componentPointer(rec, id)
}

func componentPointer(rec entityRecord, id TypeID) unsafe.Pointer {
	off, ok := rec.archetype.layout.offsetOf(id)
	if !ok {
		return nil
	}
	base := rec.chunk.rowPointer(rec.archetype.layout, rec.row)
	if base == nil {
		return nil
	}
	return unsafe.Add(base, off)
}

// Run invokes the named system once against every currently matching
// archetype, newest chunk first within each archetype, ascending row
// index within each chunk.
func (w *World) Run(identifier string, dt float64) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	idx, ok := w.systemIndex[identifier]
	if !ok {
		return UnknownSystemError{Identifier: identifier}
	}
	w.runSystem(w.systems[idx], dt)
	return nil
}

// Step invokes every registered system once, in registration order.
func (w *World) Step(dt float64) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	for _, sys := range w.systems {
		w.runSystem(sys, dt)
	}
	return nil
}

func (w *World) runSystem(sys *System, dt float64) {
	for _, arch := range sys.matches {
		offsets := sys.buildOffsets(arch)
		arch.forEachRow(func(c *chunk, row int) {
			ctx := &Context{rowBase: c.rowPointer(arch.layout, row), offsets: offsets, userData: sys.userData}
			sys.callback(ctx, dt)
		})
	}
}

// AddComponent migrates e into the archetype for its current composition
// plus t. Every component the old and new archetypes share is copied from
// old_row_base+old_offset(id) to new_row_base+new_offset(id); t's slot in
// the new row starts zeroed, since it was never written. The vacated row
// is pushed onto the old archetype's recycled-row stack.
func (w *World) AddComponent(e Entity, t TypeID) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	rec, alive := w.entities.get(e.id)
	if !alive {
		return NotFoundError{Kind: "entity", Identifier: fmt.Sprintf("%d", e.id)}
	}
	if rec.archetype.mask.Has(t) {
		info, _ := w.registry.info(t)
		return AlreadyExistsError{Kind: "component on entity", Identifier: info.identifier}
	}

	newMask := rec.archetype.mask.Clone()
	newMask.Insert(t)
	return w.migrate(e, rec, newMask)
}

// RemoveComponent migrates e into the archetype for its current
// composition minus t, using the same corrected copy semantics as
// AddComponent.
func (w *World) RemoveComponent(e Entity, t TypeID) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	rec, alive := w.entities.get(e.id)
	if !alive {
		return NotFoundError{Kind: "entity", Identifier: fmt.Sprintf("%d", e.id)}
	}
	if !rec.archetype.mask.Has(t) {
		info, _ := w.registry.info(t)
		return NotFoundError{Kind: "component on entity", Identifier: info.identifier}
	}

	newMask := rec.archetype.mask.Clone()
	newMask.Remove(t)
	return w.migrate(e, rec, newMask)
}

func (w *World) migrate(e Entity, rec entityRecord, newMask Mask) error {
	newArch, err := w.archetypeFor(newMask)
	if err != nil {
		return err
	}

	region := newArch.reserve(1)
	region.commit()
	rd := region.regions[0]
	newRow := rd.rowOffset

	for id, ok := rec.archetype.mask.First(); ok; id, ok = rec.archetype.mask.Next(id + 1) {
		if !newMask.Has(id) {
			continue
		}
		srcOff, _ := rec.archetype.layout.offsetOf(id)
		dstOff, _ := newArch.layout.offsetOf(id)
		info, _ := w.registry.info(id)
		copyBytes(rd.chunk, newRow, newArch.layout, dstOff, rec.chunk, rec.row, rec.archetype.layout, srcOff, info.size)
	}

	rec.archetype.release(rec.chunk, rec.row)
	w.entities.set(e.id, entityRecord{archetype: newArch, chunk: rd.chunk, row: newRow, alive: true})
	return nil
}

func copyBytes(dstChunk *chunk, dstRow int, dstLayout Layout, dstOff uintptr, srcChunk *chunk, srcRow int, srcLayout Layout, srcOff uintptr, size uintptr) {
	if size == 0 {
		return
	}
	dstBase := dstChunk.rowPointer(dstLayout, dstRow)
	srcBase := srcChunk.rowPointer(srcLayout, srcRow)
	if dstBase == nil || srcBase == nil {
		return
	}
	dst := unsafe.Add(dstBase, dstOff)
	src := unsafe.Add(srcBase, srcOff)
	dstSlice := (*[math.MaxInt32]byte)(dst)[:size:size]
	srcSlice := (*[math.MaxInt32]byte)(src)[:size:size]
	copy(dstSlice, srcSlice)
}

// Despawn removes e from the entity table and returns its row to the
// owning archetype's recycled-row stack for reuse by a future Spawn. A
// despawned id is itself recycled and will be reissued before any new id
// is minted, per the entity lifecycle rule.
func (w *World) Despawn(e Entity) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	rec, alive := w.entities.get(e.id)
	if !alive {
		return NotFoundError{Kind: "entity", Identifier: fmt.Sprintf("%d", e.id)}
	}
	rec.archetype.release(rec.chunk, rec.row)
	w.entities.release(e.id)
	return nil
}

// Close tears the world down in the documented order: systems, then
// archetypes, then the type registry, then the entity tables, then the
// world struct itself. Every error-returning method on a closed World
// returns ClosedWorldError rather than operating on half-torn-down state;
// GetComponent on a closed World returns nil.
func (w *World) Close() {
	if w.closed {
		return
	}
	Config.logf("archetype: closing world: tearing down systems")
	w.systems = nil
	w.systemIndex = nil

	Config.logf("archetype: closing world: tearing down archetypes")
	w.archetypes = nil
	w.archetypeIndex = nil

	Config.logf("archetype: closing world: tearing down type registry")
	w.registry = typeRegistry{}
	w.compositions = nil

	Config.logf("archetype: closing world: tearing down entity tables")
	w.entities = entityTable{}

	w.closed = true
	Config.logf("archetype: world closed")
}

// mustNotPanic wraps programmer-misuse conditions (not user data errors)
// in a stack-traced panic, reserved for unreachable-by-correct-callers
// states rather than ordinary user data errors.
func mustNotPanic(err error) {
	if err != nil {
		panic(bark.AddTrace(err))
	}
}
