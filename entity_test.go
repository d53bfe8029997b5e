package ecs

import "testing"

func TestEntitiesAllocAndFree(t *testing.T) {
	e := newEntities()

	a := e.alloc(EntityLocation{Archetype: 0, ArchetypeRow: 0, TableRow: 0})
	b := e.alloc(EntityLocation{Archetype: 0, ArchetypeRow: 1, TableRow: 1})

	if a.Index() == b.Index() {
		t.Fatalf("expected distinct indices, got %d and %d", a.Index(), b.Index())
	}
	if e.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", e.Len())
	}
	if !e.contains(a) || !e.contains(b) {
		t.Fatalf("expected both entities live")
	}
}

func TestEntitiesGenerationBumpsOnReuse(t *testing.T) {
	e := newEntities()
	a := e.alloc(invalidLocation)
	gen0 := a.Generation()

	e.free(a)
	if e.contains(a) {
		t.Fatalf("expected %v to be dead after free", a)
	}

	b := e.alloc(invalidLocation)
	if b.Index() != a.Index() {
		t.Fatalf("expected slot reuse, got index %d want %d", b.Index(), a.Index())
	}
	if b.Generation() != gen0+1 {
		t.Fatalf("Generation() = %d, want %d", b.Generation(), gen0+1)
	}
	if e.contains(a) {
		t.Fatalf("stale handle %v must not be considered live after its slot was recycled", a)
	}
	if !e.contains(b) {
		t.Fatalf("expected recycled entity %v to be live", b)
	}
}

func TestEntitiesReserveThenFlush(t *testing.T) {
	e := newEntities()
	r1 := e.reserve()
	r2 := e.reserve()
	if r1.Index() == r2.Index() {
		t.Fatalf("concurrent reservations must not collide: got %d twice", r1.Index())
	}

	e.flush()
	if e.Len() != 0 {
		t.Fatalf("flush alone must not make reserved slots live, Len() = %d", e.Len())
	}
}

func TestEntitiesGenerationStartsAtOne(t *testing.T) {
	e := newEntities()
	first := e.alloc(invalidLocation)
	if first.Generation() != 1 {
		t.Fatalf("Generation() = %d, want 1 for a freshly allocated slot", first.Generation())
	}

	r := e.reserve()
	e.flush()
	if got := e.meta[r.Index()].generation; got != 1 {
		t.Fatalf("reserved-then-flushed slot %d has generation %d, want 1", r.Index(), got)
	}
	second := e.alloc(invalidLocation)
	if second.Index() == r.Index() || second.Generation() != 1 {
		t.Fatalf("alloc after flush = %v, want a fresh slot (not reserved index %d) with generation 1", second, r.Index())
	}
}

func TestZeroValueEntityNeverAliasesALiveEntity(t *testing.T) {
	e := newEntities()
	first := e.alloc(invalidLocation)
	if first.Index() != 0 {
		t.Fatalf("expected first allocated entity to take index 0, got %d", first.Index())
	}
	if (Entity{}) == first {
		t.Fatalf("the zero-value Entity must never equal a genuinely spawned entity")
	}
	if e.contains(Entity{}) {
		t.Fatalf("the zero-value Entity must never be reported live")
	}
}

func TestEntitiesFreeSkipsGenerationZeroOnWrap(t *testing.T) {
	e := newEntities()
	a := e.alloc(invalidLocation)
	e.meta[a.index].generation = ^uint32(0) // force the next bump to wrap to 0
	e.free(a)
	if e.meta[a.index].generation == 0 {
		t.Fatalf("generation wrapped to 0, which must be skipped so it never aliases the zero-value Entity")
	}
}

func TestEntityPlaceholderNeverCollidesWithIndexZero(t *testing.T) {
	e := newEntities()
	first := e.alloc(invalidLocation)
	if first.Index() != 0 {
		t.Fatalf("expected first allocated entity to take index 0, got %d", first.Index())
	}
	if first == EntityPlaceholder {
		t.Fatalf("a genuinely spawned entity must never equal EntityPlaceholder")
	}
	if EntityPlaceholder.Valid() {
		t.Fatalf("EntityPlaceholder.Valid() = true, want false")
	}
	if !first.Valid() {
		t.Fatalf("spawned entity.Valid() = false, want true")
	}
}
