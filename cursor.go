package ecs

import "github.com/TheBitDrifter/bark"

// Query1 requests every entity carrying component A, optionally
// excluding entities that also carry one of a Without list. A Query
// binds to the first World it is run against (worldID) and panics if
// later run against a different one, the same cross-world misuse
// guard the query state carries in spec.
type Query1[A any] struct {
	ca      Component[A]
	without []ComponentID
	lastRun Tick
	worldID uint64
}

// NewQuery1 compiles a one-component query.
func NewQuery1[A any](ca Component[A]) *Query1[A] {
	return &Query1[A]{ca: ca}
}

// checkWorldBinding binds *worldID to w's id on a query's first Iter
// call, and panics with CrossWorldError if a later call names a
// different world than the one the query already bound to.
func checkWorldBinding(worldID *uint64, w *World) {
	if *worldID == 0 {
		*worldID = w.ID()
		return
	}
	if *worldID != w.ID() {
		panic(bark.AddTrace(CrossWorldError{}))
	}
}

// Without excludes entities carrying any of ids from the query.
func (q *Query1[A]) Without(ids ...ComponentID) *Query1[A] {
	q.without = append(q.without, ids...)
	return q
}

func (q *Query1[A]) descriptor() queryDescriptor {
	return queryDescriptor{with: []ComponentID{q.ca.id}, without: q.without}
}

// Iter begins iteration against w. The returned cursor locks w against
// structural mutation until exhausted.
func (q *Query1[A]) Iter(w *World) *Iter1[A] {
	checkWorldBinding(&q.worldID, w)
	thisRun := w.tick
	lastRun := q.lastRun
	q.lastRun = thisRun
	w.lockForIteration()
	return &Iter1[A]{
		w: w, ca: q.ca,
		archetypes: w.matchArchetypes(q.descriptor()),
		archIdx:    -1, row: -1,
		lastRun: lastRun, thisRun: thisRun,
	}
}

// Iter1 walks the entities matched by a Query1.
type Iter1[A any] struct {
	w          *World
	ca         Component[A]
	archetypes []*Archetype
	archIdx    int
	row        int
	curArch    *Archetype
	lastRun    Tick
	thisRun    Tick
	done       bool
}

// Next advances the cursor, returning false once iteration is
// exhausted (at which point the world is unlocked automatically).
func (it *Iter1[A]) Next() bool {
	if it.done {
		return false
	}
	for {
		if it.curArch != nil && it.row+1 < it.curArch.Len() {
			it.row++
			return true
		}
		it.archIdx++
		if it.archIdx >= len(it.archetypes) {
			it.w.unlockForIteration()
			it.done = true
			return false
		}
		it.curArch = it.archetypes[it.archIdx]
		it.row = -1
	}
}

// Entity returns the entity at the cursor's current position.
func (it *Iter1[A]) Entity() Entity { return it.curArch.entities[it.row] }

// Get returns a mutable pointer to A on the current entity, stamping
// it as changed as of the world's current tick.
func (it *Iter1[A]) Get() *A {
	v, _ := GetMut(it.w, it.Entity(), it.ca)
	return v
}

// Added reports whether A was added to the current entity after the
// last call to Iter on this query.
func (it *Iter1[A]) Added() bool {
	t, _ := Ticks(it.w, it.Entity(), it.ca)
	return t.IsAdded(it.lastRun, it.thisRun)
}

// Changed reports whether A was added or mutated on the current
// entity after the last call to Iter on this query.
func (it *Iter1[A]) Changed() bool {
	t, _ := Ticks(it.w, it.Entity(), it.ca)
	return t.IsChanged(it.lastRun, it.thisRun)
}

// Query2 requests every entity carrying components A and B.
type Query2[A, B any] struct {
	ca      Component[A]
	cb      Component[B]
	without []ComponentID
	lastRun Tick
	worldID uint64
}

// NewQuery2 compiles a two-component query.
func NewQuery2[A, B any](ca Component[A], cb Component[B]) *Query2[A, B] {
	return &Query2[A, B]{ca: ca, cb: cb}
}

// Without excludes entities carrying any of ids from the query.
func (q *Query2[A, B]) Without(ids ...ComponentID) *Query2[A, B] {
	q.without = append(q.without, ids...)
	return q
}

func (q *Query2[A, B]) descriptor() queryDescriptor {
	return queryDescriptor{with: []ComponentID{q.ca.id, q.cb.id}, without: q.without}
}

// Iter begins iteration against w.
func (q *Query2[A, B]) Iter(w *World) *Iter2[A, B] {
	checkWorldBinding(&q.worldID, w)
	thisRun := w.tick
	lastRun := q.lastRun
	q.lastRun = thisRun
	w.lockForIteration()
	return &Iter2[A, B]{
		w: w, ca: q.ca, cb: q.cb,
		archetypes: w.matchArchetypes(q.descriptor()),
		archIdx:    -1, row: -1,
		lastRun: lastRun, thisRun: thisRun,
	}
}

// Iter2 walks the entities matched by a Query2.
type Iter2[A, B any] struct {
	w          *World
	ca         Component[A]
	cb         Component[B]
	archetypes []*Archetype
	archIdx    int
	row        int
	curArch    *Archetype
	lastRun    Tick
	thisRun    Tick
	done       bool
}

// Next advances the cursor.
func (it *Iter2[A, B]) Next() bool {
	if it.done {
		return false
	}
	for {
		if it.curArch != nil && it.row+1 < it.curArch.Len() {
			it.row++
			return true
		}
		it.archIdx++
		if it.archIdx >= len(it.archetypes) {
			it.w.unlockForIteration()
			it.done = true
			return false
		}
		it.curArch = it.archetypes[it.archIdx]
		it.row = -1
	}
}

// Entity returns the entity at the cursor's current position.
func (it *Iter2[A, B]) Entity() Entity { return it.curArch.entities[it.row] }

// Get returns mutable pointers to A and B on the current entity.
func (it *Iter2[A, B]) Get() (*A, *B) {
	e := it.Entity()
	a, _ := GetMut(it.w, e, it.ca)
	b, _ := GetMut(it.w, e, it.cb)
	return a, b
}

// Query3 requests every entity carrying components A, B and C.
type Query3[A, B, C any] struct {
	ca      Component[A]
	cb      Component[B]
	cc      Component[C]
	without []ComponentID
	lastRun Tick
	worldID uint64
}

// NewQuery3 compiles a three-component query.
func NewQuery3[A, B, C any](ca Component[A], cb Component[B], cc Component[C]) *Query3[A, B, C] {
	return &Query3[A, B, C]{ca: ca, cb: cb, cc: cc}
}

// Without excludes entities carrying any of ids from the query.
func (q *Query3[A, B, C]) Without(ids ...ComponentID) *Query3[A, B, C] {
	q.without = append(q.without, ids...)
	return q
}

func (q *Query3[A, B, C]) descriptor() queryDescriptor {
	return queryDescriptor{with: []ComponentID{q.ca.id, q.cb.id, q.cc.id}, without: q.without}
}

// Iter begins iteration against w.
func (q *Query3[A, B, C]) Iter(w *World) *Iter3[A, B, C] {
	checkWorldBinding(&q.worldID, w)
	thisRun := w.tick
	lastRun := q.lastRun
	q.lastRun = thisRun
	w.lockForIteration()
	return &Iter3[A, B, C]{
		w: w, ca: q.ca, cb: q.cb, cc: q.cc,
		archetypes: w.matchArchetypes(q.descriptor()),
		archIdx:    -1, row: -1,
		lastRun: lastRun, thisRun: thisRun,
	}
}

// Iter3 walks the entities matched by a Query3.
type Iter3[A, B, C any] struct {
	w          *World
	ca         Component[A]
	cb         Component[B]
	cc         Component[C]
	archetypes []*Archetype
	archIdx    int
	row        int
	curArch    *Archetype
	lastRun    Tick
	thisRun    Tick
	done       bool
}

// Next advances the cursor.
func (it *Iter3[A, B, C]) Next() bool {
	if it.done {
		return false
	}
	for {
		if it.curArch != nil && it.row+1 < it.curArch.Len() {
			it.row++
			return true
		}
		it.archIdx++
		if it.archIdx >= len(it.archetypes) {
			it.w.unlockForIteration()
			it.done = true
			return false
		}
		it.curArch = it.archetypes[it.archIdx]
		it.row = -1
	}
}

// Entity returns the entity at the cursor's current position.
func (it *Iter3[A, B, C]) Entity() Entity { return it.curArch.entities[it.row] }

// Get returns mutable pointers to A, B and C on the current entity.
func (it *Iter3[A, B, C]) Get() (*A, *B, *C) {
	e := it.Entity()
	a, _ := GetMut(it.w, e, it.ca)
	b, _ := GetMut(it.w, e, it.cb)
	c, _ := GetMut(it.w, e, it.cc)
	return a, b, c
}
