package ecs

import "testing"

func TestWorldEmptySpawnGoesToEmptyArchetype(t *testing.T) {
	w := NewWorld()
	e, err := w.Spawn(EmptyBundle())
	if err != nil {
		t.Fatalf("Spawn(EmptyBundle()) error = %v", err)
	}
	loc, ok := w.entities.get(e)
	if !ok {
		t.Fatalf("expected spawned entity to be live")
	}
	if loc.Archetype != 0 {
		t.Fatalf("Archetype = %d, want 0 (the empty archetype)", loc.Archetype)
	}
	if w.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", w.Len())
	}
}

func TestWorldSpawnAndGetSingleComponent(t *testing.T) {
	w := NewWorld()
	position := ComponentFor[testPosition](w, StorageTable)

	e, err := w.Spawn(Bundle1(position, testPosition{X: 1, Y: 2}))
	if err != nil {
		t.Fatalf("Spawn error = %v", err)
	}

	got, ok := Get(w, e, position)
	if !ok {
		t.Fatalf("Get() ok = false, want true")
	}
	if got.X != 1 || got.Y != 2 {
		t.Fatalf("Get() = %+v, want {1 2}", got)
	}
}

func TestWorldMixedTableAndSparseBundle(t *testing.T) {
	w := NewWorld()
	position := ComponentFor[testPosition](w, StorageTable)
	health := ComponentFor[testHealth](w, StorageSparse)

	e, err := w.Spawn(Bundle2(position, testPosition{X: 5}, health, testHealth{Current: 3, Max: 10}))
	if err != nil {
		t.Fatalf("Spawn error = %v", err)
	}

	pos, ok := Get(w, e, position)
	if !ok || pos.X != 5 {
		t.Fatalf("Get(position) = %+v, ok=%v", pos, ok)
	}
	hp, ok := Get(w, e, health)
	if !ok || hp.Current != 3 {
		t.Fatalf("Get(health) = %+v, ok=%v", hp, ok)
	}
}

func TestWorldSpawnDuplicateComponentErrors(t *testing.T) {
	w := NewWorld()
	position := ComponentFor[testPosition](w, StorageTable)

	_, err := w.Spawn(Join(Bundle1(position, testPosition{X: 1}), Bundle1(position, testPosition{X: 2})))
	if err == nil {
		t.Fatalf("expected an error spawning a bundle with a duplicate component")
	}
	dup, ok := err.(DuplicateComponentError)
	if !ok {
		t.Fatalf("error type = %T, want DuplicateComponentError", err)
	}
	if dup.Component == "" {
		t.Fatalf("expected the duplicate error to name the offending component")
	}
}

func TestWorldDespawnThenRespawnBumpsGeneration(t *testing.T) {
	w := NewWorld()
	position := ComponentFor[testPosition](w, StorageTable)

	e, _ := w.Spawn(Bundle1(position, testPosition{X: 1}))
	gen0 := e.Generation()

	if err := w.Despawn(e); err != nil {
		t.Fatalf("Despawn error = %v", err)
	}
	if w.Contains(e) {
		t.Fatalf("entity must not be live after Despawn")
	}

	e2, _ := w.Spawn(Bundle1(position, testPosition{X: 2}))
	if e2.Index() != e.Index() {
		t.Fatalf("expected slot reuse: got index %d, want %d", e2.Index(), e.Index())
	}
	if e2.Generation() != gen0+1 {
		t.Fatalf("Generation() = %d, want %d", e2.Generation(), gen0+1)
	}
	if _, ok := Get(w, e, position); ok {
		t.Fatalf("stale handle must not read the recycled slot's new value")
	}
}

func TestWorldDespawnMiddleEntityPatchesMovedNeighbor(t *testing.T) {
	w := NewWorld()
	position := ComponentFor[testPosition](w, StorageTable)

	a, _ := w.Spawn(Bundle1(position, testPosition{X: 1}))
	b, _ := w.Spawn(Bundle1(position, testPosition{X: 2}))
	c, _ := w.Spawn(Bundle1(position, testPosition{X: 3}))

	if err := w.Despawn(a); err != nil {
		t.Fatalf("Despawn error = %v", err)
	}

	// b and c must still read correctly after a's removal displaced
	// whichever of them occupied the table/archetype's last row.
	pb, ok := Get(w, b, position)
	if !ok || pb.X != 2 {
		t.Fatalf("Get(b) after despawning a = %+v ok=%v, want {2 0} true", pb, ok)
	}
	pc, ok := Get(w, c, position)
	if !ok || pc.X != 3 {
		t.Fatalf("Get(c) after despawning a = %+v ok=%v, want {3 0} true", pc, ok)
	}
	if w.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", w.Len())
	}
}

func TestWorldInsertMovesToNewArchetype(t *testing.T) {
	w := NewWorld()
	position := ComponentFor[testPosition](w, StorageTable)
	velocity := ComponentFor[testVelocity](w, StorageTable)

	e, _ := w.Spawn(Bundle1(position, testPosition{X: 1, Y: 1}))
	locBefore, _ := w.entities.get(e)

	if err := w.Insert(e, Bundle1(velocity, testVelocity{X: 9})); err != nil {
		t.Fatalf("Insert error = %v", err)
	}
	locAfter, _ := w.entities.get(e)
	if locAfter.Archetype == locBefore.Archetype {
		t.Fatalf("expected Insert to move the entity to a new archetype")
	}

	pos, ok := Get(w, e, position)
	if !ok || pos.X != 1 {
		t.Fatalf("position lost across Insert: %+v ok=%v", pos, ok)
	}
	vel, ok := Get(w, e, velocity)
	if !ok || vel.X != 9 {
		t.Fatalf("Get(velocity) = %+v ok=%v, want {9 0} true", vel, ok)
	}
}

func TestWorldInsertPreservesSparseComponentAcrossArchetypeMove(t *testing.T) {
	w := NewWorld()
	position := ComponentFor[testPosition](w, StorageTable)
	health := ComponentFor[testHealth](w, StorageSparse)
	velocity := ComponentFor[testVelocity](w, StorageTable)

	e, err := w.Spawn(Bundle2(position, testPosition{X: 1, Y: 2}, health, testHealth{Current: 7, Max: 10}))
	if err != nil {
		t.Fatalf("Spawn error = %v", err)
	}

	if err := w.Insert(e, Bundle1(velocity, testVelocity{X: 5})); err != nil {
		t.Fatalf("Insert error = %v", err)
	}

	hp, ok := Get(w, e, health)
	if !ok {
		t.Fatalf("Get(health) ok = false after an archetype-moving Insert, sparse value was stranded")
	}
	if hp.Current != 7 {
		t.Fatalf("Get(health) = %+v, want Current 7", hp)
	}
}

func TestWorldRemoveOfOneComponentPreservesOtherSparseComponent(t *testing.T) {
	w := NewWorld()
	position := ComponentFor[testPosition](w, StorageTable)
	health := ComponentFor[testHealth](w, StorageSparse)

	e, err := w.Spawn(Bundle2(position, testPosition{X: 1, Y: 1}, health, testHealth{Current: 3, Max: 3}))
	if err != nil {
		t.Fatalf("Spawn error = %v", err)
	}

	if err := w.Remove(e, position.ID()); err != nil {
		t.Fatalf("Remove error = %v", err)
	}

	hp, ok := Get(w, e, health)
	if !ok || hp.Current != 3 {
		t.Fatalf("Get(health) = %+v ok=%v after removing an unrelated component, want Current 3, true", hp, ok)
	}
}

func TestWorldInsertOverwritesExistingComponentInPlace(t *testing.T) {
	w := NewWorld()
	position := ComponentFor[testPosition](w, StorageTable)

	e, _ := w.Spawn(Bundle1(position, testPosition{X: 1}))
	locBefore, _ := w.entities.get(e)

	if err := w.Insert(e, Bundle1(position, testPosition{X: 42})); err != nil {
		t.Fatalf("Insert error = %v", err)
	}
	locAfter, _ := w.entities.get(e)
	if locAfter.Archetype != locBefore.Archetype {
		t.Fatalf("overwriting an already-present component must not change archetype")
	}
	pos, _ := Get(w, e, position)
	if pos.X != 42 {
		t.Fatalf("Get(position).X = %v, want 42", pos.X)
	}
}

func TestWorldRemoveMovesToParentArchetype(t *testing.T) {
	w := NewWorld()
	position := ComponentFor[testPosition](w, StorageTable)
	velocity := ComponentFor[testVelocity](w, StorageTable)

	e, _ := w.Spawn(Bundle2(position, testPosition{X: 1}, velocity, testVelocity{X: 2}))
	if err := w.Remove(e, velocity.ID()); err != nil {
		t.Fatalf("Remove error = %v", err)
	}

	if _, ok := Get(w, e, velocity); ok {
		t.Fatalf("expected velocity to be gone after Remove")
	}
	pos, ok := Get(w, e, position)
	if !ok || pos.X != 1 {
		t.Fatalf("position lost across Remove: %+v ok=%v", pos, ok)
	}
}

func TestWorldSpawnWhileLockedPanics(t *testing.T) {
	w := NewWorld()
	position := ComponentFor[testPosition](w, StorageTable)
	w.Spawn(Bundle1(position, testPosition{X: 1}))

	q := NewQuery1(position)
	it := q.Iter(w)
	it.Next()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected Spawn to panic while a query iteration is live")
		}
	}()
	w.Spawn(Bundle1(position, testPosition{X: 2}))
}

func TestQuery1IteratesMatchingEntitiesOnly(t *testing.T) {
	w := NewWorld()
	position := ComponentFor[testPosition](w, StorageTable)
	velocity := ComponentFor[testVelocity](w, StorageTable)

	matching, _ := w.Spawn(Bundle2(position, testPosition{X: 1}, velocity, testVelocity{X: 1}))
	w.Spawn(Bundle1(velocity, testVelocity{X: 2})) // no position: must be excluded

	q := NewQuery1(position)
	seen := 0
	for it := q.Iter(w); it.Next(); {
		seen++
		if it.Entity() != matching {
			t.Fatalf("iterated an entity lacking the queried component: %v", it.Entity())
		}
	}
	if seen != 1 {
		t.Fatalf("iterated %d entities, want 1", seen)
	}
}

func TestQuery2MutatesBothComponents(t *testing.T) {
	w := NewWorld()
	position := ComponentFor[testPosition](w, StorageTable)
	velocity := ComponentFor[testVelocity](w, StorageTable)

	e, _ := w.Spawn(Bundle2(position, testPosition{X: 0, Y: 0}, velocity, testVelocity{X: 1, Y: 2}))

	q := NewQuery2(position, velocity)
	for it := q.Iter(w); it.Next(); {
		pos, vel := it.Get()
		pos.X += vel.X
		pos.Y += vel.Y
	}

	pos, _ := Get(w, e, position)
	if pos.X != 1 || pos.Y != 2 {
		t.Fatalf("position after system = %+v, want {1 2}", pos)
	}
}

func TestQueryWithoutExcludesEntities(t *testing.T) {
	w := NewWorld()
	position := ComponentFor[testPosition](w, StorageTable)
	dead := ComponentFor[testHealth](w, StorageSparse)

	alive, _ := w.Spawn(Bundle1(position, testPosition{X: 1}))
	w.Spawn(Bundle2(position, testPosition{X: 2}, dead, testHealth{}))

	q := NewQuery1(position).Without(dead.ID())
	seen := []Entity{}
	for it := q.Iter(w); it.Next(); {
		seen = append(seen, it.Entity())
	}
	if len(seen) != 1 || seen[0] != alive {
		t.Fatalf("Without filter let through %v, want only %v", seen, alive)
	}
}

func TestQueryChangeDetectionTracksAddedAndChanged(t *testing.T) {
	w := NewWorld()
	position := ComponentFor[testPosition](w, StorageTable)

	e, _ := w.Spawn(Bundle1(position, testPosition{X: 1}))

	q := NewQuery1(position)
	for it := q.Iter(w); it.Next(); {
		if !it.Added() {
			t.Fatalf("freshly spawned component must report Added on the first Iter")
		}
	}

	// Second pass with no mutation in between: nothing should look newly
	// changed relative to the previous Iter's lastRun.
	for it := q.Iter(w); it.Next(); {
		if it.Added() {
			t.Fatalf("component must not still report Added on a later, unrelated Iter")
		}
	}

	GetMut(w, e, position)
	for it := q.Iter(w); it.Next(); {
		if !it.Changed() {
			t.Fatalf("expected Changed after a GetMut access")
		}
	}
}

func TestCheckTicksDoesNotDisturbUnchangedEntities(t *testing.T) {
	w := NewWorld()
	position := ComponentFor[testPosition](w, StorageTable)
	e, _ := w.Spawn(Bundle1(position, testPosition{X: 1}))

	// A query's first Iter reports everything spawned before it as
	// changed, so run it once to set its lastRun before the scan.
	q := NewQuery1(position)
	for it := q.Iter(w); it.Next(); {
	}

	ticksBefore, _ := Ticks(w, e, position)
	w.CheckTicks()
	ticksAfter, _ := Ticks(w, e, position)

	if ticksBefore.Added.Get() != ticksAfter.Added.Get() {
		t.Fatalf("CheckTicks must not alter a recent tick's value: before=%d after=%d",
			ticksBefore.Added.Get(), ticksAfter.Added.Get())
	}

	for it := q.Iter(w); it.Next(); {
		if it.Changed() {
			t.Fatalf("CheckTicks alone must not make an untouched component look changed")
		}
	}
}

func TestDespawnTwiceReturnsNoSuchEntityError(t *testing.T) {
	w := NewWorld()
	position := ComponentFor[testPosition](w, StorageTable)
	e, _ := w.Spawn(Bundle1(position, testPosition{X: 1}))

	if err := w.Despawn(e); err != nil {
		t.Fatalf("Despawn error = %v", err)
	}
	if err := w.Despawn(e); err == nil {
		t.Fatalf("expected NoSuchEntityError despawning an already-dead entity")
	} else if _, ok := err.(NoSuchEntityError); !ok {
		t.Fatalf("error type = %T, want NoSuchEntityError", err)
	}
}

func TestQueryPanicsWhenRunAgainstADifferentWorld(t *testing.T) {
	w1 := NewWorld()
	position := ComponentFor[testPosition](w1, StorageTable)
	w1.Spawn(Bundle1(position, testPosition{X: 1}))

	w2 := NewWorld()
	ComponentFor[testPosition](w2, StorageTable)

	q := NewQuery1(position)
	for it := q.Iter(w1); it.Next(); {
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic running a query already bound to w1 against w2")
		}
	}()
	q.Iter(w2)
}
