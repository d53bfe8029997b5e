package ecs

import (
	"sync/atomic"

	"github.com/TheBitDrifter/bark"
)

// nextWorldID is the only process-wide state a World's own construction
// touches: a monotonically increasing counter whose single invariant is
// uniqueness, assigned to id so queries and other world-scoped handles
// can detect accidental cross-world use.
var nextWorldID uint64

// World owns every entity, component value and archetype for one ECS
// instance. Structural mutation (Spawn, Despawn, Insert, Remove)
// requires exclusive access to the World value itself; reserving new
// entity ids from Handle does not.
type World struct {
	id         uint64
	components *Registry
	archetypes *archetypeRegistry
	entities   *entities

	tick      Tick
	lockDepth int
}

// NewWorld constructs an empty world, seeded with the empty archetype.
func NewWorld() *World {
	reg := newRegistry()
	return &World{
		id:         atomic.AddUint64(&nextWorldID, 1),
		components: reg,
		archetypes: newArchetypeRegistry(reg),
		entities:   newEntities(),
		tick:       NewTick(1),
	}
}

// ID returns the world's process-local identity, assigned once at
// construction and never reused — the value a compiled Query checks
// its own binding against to catch cross-world misuse.
func (w *World) ID() uint64 { return w.id }

// ComponentFor registers T against w's component registry (or returns
// its existing registration) under the given storage class, handing
// back the typed handle used to build bundles and queries over T.
func ComponentFor[T any](w *World, storage StorageClass) Component[T] {
	return registerComponent[T](w.components, storage)
}

// Tick returns the world's current logical tick.
func (w *World) Tick() Tick { return w.tick }

// advanceTick moves the world's tick forward by one, run after every
// structural mutation and every mutable component access so change
// detection can observe it.
func (w *World) advanceTick() Tick {
	w.tick = NewTick(w.tick.Get() + 1)
	return w.tick
}

// Locked reports whether a live query iteration currently holds the
// world locked against structural mutation.
func (w *World) Locked() bool { return w.lockDepth > 0 }

func (w *World) lockForIteration()   { w.lockDepth++ }
func (w *World) unlockForIteration() { w.lockDepth-- }

func (w *World) requireUnlocked() {
	if w.Locked() {
		panic(bark.AddTrace(LockedWorldError{}))
	}
}

// Len returns the number of currently live entities.
func (w *World) Len() int { return w.entities.Len() }

// Contains reports whether e refers to a currently live entity.
func (w *World) Contains(e Entity) bool { return w.entities.contains(e) }

// Handle reserves a fresh entity id without requiring exclusive world
// access, suitable for calling concurrently from worker goroutines.
// The reservation promises only the identity: the returned entity has
// no location and is not live (Contains reports false).
func (w *World) Handle() Entity { return w.entities.reserve() }

// Flush commits every lock-free reservation made via Handle since the
// last Flush to the allocator's slot table, so later allocations never
// reuse a reserved index. Must be called with exclusive world access.
// It does not place reserved entities in any archetype: they stay
// not live, and no World method gives them components.
func (w *World) Flush() { w.entities.flush() }

func validateBundle(b Bundle) ([]bundlePart, error) {
	parts := b.parts()
	seen := make(map[ComponentID]struct{}, len(parts))
	for _, p := range parts {
		if _, ok := seen[p.id]; ok {
			return nil, DuplicateComponentError{Component: p.value.Type().String()}
		}
		seen[p.id] = struct{}{}
	}
	return parts, nil
}

// Spawn creates a new entity carrying every component in bundle.
func (w *World) Spawn(bundle Bundle) (Entity, error) {
	w.requireUnlocked()
	parts, err := validateBundle(bundle)
	if err != nil {
		return Entity{}, err
	}

	ids := make([]ComponentID, len(parts))
	for i, p := range parts {
		ids[i] = p.id
	}
	arch := w.archetypes.getOrInsert(ids)
	tbl := w.archetypes.tableOf(arch.table)

	e := w.entities.alloc(invalidLocation)
	tableRow := tbl.allocate(e, w.tick)
	archRow := arch.archetypeRow(e)

	for _, p := range parts {
		switch p.storage {
		case StorageSparse:
			ss := arch.sparse[p.id]
			ss.insert(e.Index(), p.value.Interface(), w.tick)
		default:
			// The row was just zero-filled by allocate: write without
			// dropping, there is no prior value to release.
			col := tbl.columns[p.id]
			col.at(tableRow).Set(p.value)
		}
	}

	w.entities.set(e, EntityLocation{Archetype: arch.id, ArchetypeRow: archRow, TableRow: tableRow})
	w.advanceTick()
	return e, nil
}

// Despawn removes e and every component value it carries.
func (w *World) Despawn(e Entity) error {
	w.requireUnlocked()
	loc, ok := w.entities.get(e)
	if !ok {
		return NoSuchEntityError{Entity: e}
	}
	arch := w.archetypes.archetype(loc.Archetype)
	tbl := w.archetypes.tableOf(arch.table)

	for _, cid := range arch.sparseComponents {
		arch.sparse[cid].remove(e.Index())
	}

	if moved, didMove := tbl.swapRemove(loc.TableRow); didMove {
		w.patchTableRow(moved, loc.TableRow)
	}
	if moved, didMove := arch.removeRow(loc.ArchetypeRow); didMove {
		w.patchArchetypeRow(moved, loc.ArchetypeRow)
	}

	w.entities.free(e)
	w.advanceTick()
	return nil
}

// patchTableRow updates moved's stored location after a table
// swap-remove placed it at newRow.
func (w *World) patchTableRow(moved Entity, newRow int) {
	loc, _ := w.entities.get(moved)
	loc.TableRow = newRow
	w.entities.set(moved, loc)
}

// patchArchetypeRow updates moved's stored location after an
// archetype swap-remove placed it at newRow.
func (w *World) patchArchetypeRow(moved Entity, newRow int) {
	loc, _ := w.entities.get(moved)
	loc.ArchetypeRow = newRow
	w.entities.set(moved, loc)
}

// transfer moves e from its current archetype to dst, carrying over
// every table-class column dst shares with the source table and
// every sparse value dst still retains, then applies extra (added
// components) and strips any component named in removed.
func (w *World) transfer(e Entity, dst *Archetype, extra []bundlePart, removed map[ComponentID]struct{}) error {
	loc, ok := w.entities.get(e)
	if !ok {
		return NoSuchEntityError{Entity: e}
	}
	src := w.archetypes.archetype(loc.Archetype)
	srcTbl := w.archetypes.tableOf(src.table)
	dstTbl := w.archetypes.tableOf(dst.table)

	var dstTableRow int
	if srcTbl.id == dstTbl.id {
		dstTableRow = loc.TableRow
	} else {
		var movedCols map[ComponentID]struct{}
		dstTableRow, movedCols = dstTbl.moveRow(srcTbl, loc.TableRow, e, w.tick)
		if moved, didMove := srcTbl.swapRemoveForgetting(loc.TableRow, movedCols); didMove {
			w.patchTableRow(moved, loc.TableRow)
		}
	}

	// Sparse values are keyed by entity index in a sparseSet shared by
	// every archetype carrying that component (cache.go), so a value
	// dst still retains needs no copy at all — only explicit removal
	// needs to touch it here.
	for cid, ss := range src.sparse {
		if _, gone := removed[cid]; gone {
			ss.remove(e.Index())
		}
	}

	if moved, didMove := src.removeRow(loc.ArchetypeRow); didMove {
		w.patchArchetypeRow(moved, loc.ArchetypeRow)
	}
	dstArchRow := dst.archetypeRow(e)

	for _, p := range extra {
		switch p.storage {
		case StorageSparse:
			dst.sparse[p.id].insert(e.Index(), p.value.Interface(), w.tick)
		default:
			dstTbl.columns[p.id].at(dstTableRow).Set(p.value) // zero-filled by moveRow, nothing to drop
		}
	}

	w.entities.set(e, EntityLocation{Archetype: dst.id, ArchetypeRow: dstArchRow, TableRow: dstTableRow})
	return nil
}

// Insert adds every component in bundle to e, moving it to the
// archetype that is e's current archetype plus bundle's components.
// Any component bundle shares with e's existing set is overwritten.
func (w *World) Insert(e Entity, bundle Bundle) error {
	w.requireUnlocked()
	parts, err := validateBundle(bundle)
	if err != nil {
		return err
	}
	loc, ok := w.entities.get(e)
	if !ok {
		return NoSuchEntityError{Entity: e}
	}
	src := w.archetypes.archetype(loc.Archetype)

	dst := src
	var newParts []bundlePart
	for _, p := range parts {
		if src.Has(p.id) {
			continue // overwritten in place below, no archetype change needed for it
		}
		dst = w.archetypes.withAdded(dst.id, p.id)
		newParts = append(newParts, p)
	}

	// Overwrite components e already carries directly, no move needed.
	for _, p := range parts {
		if !src.Has(p.id) {
			continue
		}
		if p.storage == StorageSparse {
			src.sparse[p.id].insert(e.Index(), p.value.Interface(), w.tick)
			continue
		}
		tbl := w.archetypes.tableOf(src.table)
		tbl.columns[p.id].set(loc.TableRow, p.value)
	}

	if dst.id != src.id {
		if err := w.transfer(e, dst, newParts, nil); err != nil {
			return err
		}
	}
	w.advanceTick()
	return nil
}

// Remove strips every component named by ids from e, moving it to
// the archetype that is e's current archetype minus those ids.
// Removing a component e does not carry is a no-op for that id.
func (w *World) Remove(e Entity, ids ...ComponentID) error {
	w.requireUnlocked()
	loc, ok := w.entities.get(e)
	if !ok {
		return NoSuchEntityError{Entity: e}
	}
	src := w.archetypes.archetype(loc.Archetype)

	dst := src
	removed := make(map[ComponentID]struct{}, len(ids))
	for _, cid := range ids {
		if !src.Has(cid) {
			continue
		}
		dst = w.archetypes.withRemoved(dst.id, cid)
		removed[cid] = struct{}{}
	}
	if dst.id == src.id {
		return nil
	}
	if err := w.transfer(e, dst, nil, removed); err != nil {
		return err
	}
	w.advanceTick()
	return nil
}

// RemoveBundle strips every component bundle names from e, the same
// operation as Remove with its ids already packaged as a Bundle.
func (w *World) RemoveBundle(e Entity, bundle Bundle) error {
	if _, err := validateBundle(bundle); err != nil {
		return err
	}
	return w.Remove(e, componentIDs(bundle)...)
}

// ChangeTick returns the world's current logical tick, advanced after
// every structural mutation and mutable component access.
func (w *World) ChangeTick() Tick { return w.tick }

// CheckTicks clamps every stored component tick's age below
// MaxChangeAge. Must not be called while a query iteration is live.
func (w *World) CheckTicks() { w.checkTicks() }

// Get reads c's value on e. ok is false if e is not live or does not
// carry c.
func Get[T any](w *World, e Entity, c Component[T]) (value T, ok bool) {
	loc, live := w.entities.get(e)
	if !live {
		return value, false
	}
	arch := w.archetypes.archetype(loc.Archetype)
	if !arch.Has(c.id) {
		return value, false
	}
	if c.storage == StorageSparse {
		ss := arch.sparse[c.id]
		row, has := ss.rowOf(e.Index())
		if !has {
			return value, false
		}
		return ss.column.at(row).Interface().(T), true
	}
	tbl := w.archetypes.tableOf(arch.table)
	return tbl.columns[c.id].at(loc.TableRow).Interface().(T), true
}

// GetMut reads and marks c's value on e as changed as of the world's
// current tick, returning a pointer usable to mutate it in place.
// ok is false if e is not live or does not carry c.
func GetMut[T any](w *World, e Entity, c Component[T]) (value *T, ok bool) {
	loc, live := w.entities.get(e)
	if !live {
		return nil, false
	}
	arch := w.archetypes.archetype(loc.Archetype)
	if !arch.Has(c.id) {
		return nil, false
	}
	w.advanceTick()
	if c.storage == StorageSparse {
		ss := arch.sparse[c.id]
		row, has := ss.rowOf(e.Index())
		if !has {
			return nil, false
		}
		ss.ticks[row].SetChanged(w.tick)
		return ss.column.at(row).Addr().Interface().(*T), true
	}
	tbl := w.archetypes.tableOf(arch.table)
	tbl.ticks[c.id][loc.TableRow].SetChanged(w.tick)
	return tbl.columns[c.id].at(loc.TableRow).Addr().Interface().(*T), true
}

// Ticks returns the ComponentTicks recorded for c on e, without
// touching them. ok is false if e is not live or does not carry c.
func Ticks[T any](w *World, e Entity, c Component[T]) (ticks ComponentTicks, ok bool) {
	loc, live := w.entities.get(e)
	if !live {
		return ticks, false
	}
	arch := w.archetypes.archetype(loc.Archetype)
	if !arch.Has(c.id) {
		return ticks, false
	}
	if c.storage == StorageSparse {
		ss := arch.sparse[c.id]
		row, has := ss.rowOf(e.Index())
		if !has {
			return ticks, false
		}
		return ss.ticks[row], true
	}
	tbl := w.archetypes.tableOf(arch.table)
	return tbl.ticks[c.id][loc.TableRow], true
}

// checkTicks clamps the age of every stored tick in the world below
// MaxChangeAge, run periodically (never while a query iteration is
// live) so the wrapping uint32 counter never aliases into a false
// "changed" signal for long-lived entities.
func (w *World) checkTicks() {
	current := w.tick
	for _, tbl := range w.archetypes.tables {
		for cid := range tbl.columns {
			ticks := tbl.ticks[cid]
			for i := range ticks {
				ticks[i].Added.CheckTick(current)
				ticks[i].Changed.CheckTick(current)
			}
		}
	}
	for _, ss := range w.archetypes.sparseSets {
		for i := range ss.ticks {
			ss.ticks[i].Added.CheckTick(current)
			ss.ticks[i].Changed.CheckTick(current)
		}
	}
}
