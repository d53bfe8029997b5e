package ecs

import "github.com/TheBitDrifter/mask"

// ArchetypeID identifies a unique set of component types. Entities
// sharing an archetype are always iterated together by a query whose
// filter the archetype satisfies.
type ArchetypeID uint32

const invalidArchetypeID ArchetypeID = ^ArchetypeID(0)

// Archetype is one node of the archetype graph: a fixed component
// set, the table that stores its table-class components, and the
// sparse sets that store its sparse-class components.
//
// Archetype row and table row are tracked independently. Several
// archetypes can share one Table when they differ only in which
// sparse-class components they carry, so removing an entity from an
// archetype's own entity list can displace a different entity than
// removing it from the shared table.
type Archetype struct {
	id    ArchetypeID
	mask  mask.Mask256
	table TableID

	tableComponents  []ComponentID
	sparseComponents []ComponentID
	sparse           map[ComponentID]*sparseSet

	// archetypeComponentIDs assigns a monotonically increasing id to
	// each (archetype, component) pair the first time this archetype is
	// built, for a future scheduler's disjoint-access analysis. Nothing
	// in this package consumes it; it is exposed read-only via
	// ArchetypeComponentID.
	archetypeComponentIDs map[ComponentID]uint32

	entities []Entity // archetype row -> entity
}

// ArchetypeComponentID returns the id assigned to the (archetype, cid)
// pair, if cid belongs to this archetype.
func (a *Archetype) ArchetypeComponentID(cid ComponentID) (id uint32, ok bool) {
	id, ok = a.archetypeComponentIDs[cid]
	return id, ok
}

// Len returns the number of entities currently in this archetype.
func (a *Archetype) Len() int { return len(a.entities) }

// Has reports whether the archetype carries cid, table-class or sparse-class.
func (a *Archetype) Has(cid ComponentID) bool {
	return a.mask.ContainsAll(maskOf(cid))
}

func (a *Archetype) isSparse(cid ComponentID) bool {
	_, ok := a.sparse[cid]
	return ok
}

func maskOf(ids ...ComponentID) mask.Mask256 {
	var m mask.Mask256
	for _, id := range ids {
		m.Mark(uint32(id))
	}
	return m
}

// archetypeRow appends e to the archetype's own entity list, returning
// its row. The corresponding table row is allocated by the caller
// (world.go) since it depends on which table this archetype shares.
func (a *Archetype) archetypeRow(e Entity) int {
	row := len(a.entities)
	a.entities = append(a.entities, e)
	return row
}

// removeRow swap-removes row from the archetype's own entity list.
// Returns the entity moved into row, if any.
func (a *Archetype) removeRow(row int) (moved Entity, didMove bool) {
	last := len(a.entities) - 1
	if row != last {
		moved = a.entities[last]
		didMove = true
		a.entities[row] = moved
	}
	a.entities = a.entities[:last]
	return moved, didMove
}

// archetypeEdges caches the destination archetype reached by adding or
// removing a single component from this archetype, so repeated
// identical structural operations skip archetype-graph search after
// their first occurrence. This mirrors the teacher's own cached-edge
// approach to amortizing add/remove-bundle transitions to O(1).
type archetypeEdges struct {
	add    map[ComponentID]ArchetypeID
	remove map[ComponentID]ArchetypeID
}

func newArchetypeEdges() *archetypeEdges {
	return &archetypeEdges{
		add:    make(map[ComponentID]ArchetypeID),
		remove: make(map[ComponentID]ArchetypeID),
	}
}
