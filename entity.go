package ecs

import "sync/atomic"

// Entity is a stable handle to a logical object: an index into the
// allocator's meta table plus a generation counter that invalidates
// stale handles once a slot is recycled.
type Entity struct {
	index      uint32
	generation uint32
}

// Index returns the entity's slot index. Only meaningful paired with
// Generation; a bare index may refer to a slot that has since been
// recycled for a different entity.
func (e Entity) Index() uint32 { return e.index }

// Generation returns the entity's generation, incremented each time
// its slot is recycled.
func (e Entity) Generation() uint32 { return e.generation }

// EntityPlaceholder is a sentinel Entity with the maximum representable
// index, never returned by Spawn and never alive. It is useful as a
// default value in component fields that reference another entity
// optionally — unlike the zero Entity, it can never collide with a
// genuinely spawned entity at index 0.
var EntityPlaceholder = Entity{index: ^uint32(0), generation: ^uint32(0)}

// Valid reports whether e is not the placeholder entity. It does not,
// by itself, mean e is currently live — use World.Contains for that.
func (e Entity) Valid() bool { return e != EntityPlaceholder }

// EntityLocation records where an entity's component data currently
// lives. ArchetypeRow and TableRow are tracked independently: several
// archetypes can share one Table when they differ only in sparse-
// class components, so an entity's row within its archetype's own
// entity list and its row within the shared table's columns are, in
// general, different numbers.
type EntityLocation struct {
	Archetype    ArchetypeID
	ArchetypeRow int
	TableRow     int
}

// invalidLocation marks a meta slot whose entity is not currently spawned.
var invalidLocation = EntityLocation{Archetype: invalidArchetypeID, ArchetypeRow: -1, TableRow: -1}

type entityMeta struct {
	generation uint32
	location   EntityLocation
}

// entities is the generational id allocator. Reservation of brand new
// ids is lock-free (a single atomic count of indices reserved past the
// end of meta); everything that touches existing slots — recycling a
// freed index, writing a location — requires the exclusive access a
// *World method call implies.
type entities struct {
	meta []entityMeta

	// freeList holds indices released by despawn, eligible for reuse.
	freeList []uint32

	// pendingCursor counts reservations made via reserve beyond the
	// committed length of meta; flush folds them in under exclusive
	// access.
	pendingCursor int64

	length int // number of currently-live entities
}

func newEntities() *entities {
	return &entities{}
}

// reserve allocates a brand new index lock-free, appropriate for
// calling from a goroutine that does not hold exclusive world access.
// The returned entity's location is not valid until flush runs. A
// slot's generation starts at 1, never 0: reserve only ever hands out
// brand new indices (slot reuse goes through free/alloc instead), so
// the generation flush later commits for it is always the initial 1.
func (e *entities) reserve() Entity {
	n := atomic.AddInt64(&e.pendingCursor, 1)
	index := len(e.meta) + int(n) - 1
	return Entity{index: uint32(index), generation: 1}
}

// flush folds any pending lock-free reservations into the committed
// meta table. Must be called with exclusive world access before the
// reserved entities are used structurally.
func (e *entities) flush() {
	n := atomic.SwapInt64(&e.pendingCursor, 0)
	for i := int64(0); i < n; i++ {
		e.meta = append(e.meta, entityMeta{generation: 1, location: invalidLocation})
	}
}

// alloc returns a fresh live entity, reusing a freed slot's index
// (with its generation bumped) when one is available.
func (e *entities) alloc(loc EntityLocation) Entity {
	e.flush()
	e.length++
	if n := len(e.freeList); n > 0 {
		index := e.freeList[n-1]
		e.freeList = e.freeList[:n-1]
		m := &e.meta[index]
		m.location = loc
		return Entity{index: index, generation: m.generation}
	}
	index := uint32(len(e.meta))
	e.meta = append(e.meta, entityMeta{generation: 1, location: loc})
	return Entity{index: index, generation: 1}
}

// free releases id's slot for reuse, bumping its generation so any
// stale copies of id become invalid. Generation 0 is skipped on wrap:
// it is reserved as "never a live generation" so a zero-valued Entity
// can never alias a genuinely spawned one.
func (e *entities) free(id Entity) {
	m := &e.meta[id.index]
	m.generation++
	if m.generation == 0 {
		m.generation++
	}
	m.location = invalidLocation
	e.freeList = append(e.freeList, id.index)
	e.length--
}

// contains reports whether id refers to a currently live entity.
func (e *entities) contains(id Entity) bool {
	if int(id.index) >= len(e.meta) {
		return false
	}
	m := e.meta[id.index]
	return m.generation == id.generation && m.location != invalidLocation
}

// get returns id's current location. ok is false if id is not live.
func (e *entities) get(id Entity) (EntityLocation, bool) {
	if !e.contains(id) {
		return EntityLocation{}, false
	}
	return e.meta[id.index].location, true
}

// set overwrites id's location, used after a structural move places
// its row somewhere new (within the same archetype, or another).
func (e *entities) set(id Entity, loc EntityLocation) {
	e.meta[id.index].location = loc
}

// Len returns the number of currently live entities.
func (e *entities) Len() int { return e.length }
