package ecs

import (
	"sort"

	"github.com/TheBitDrifter/mask"
)

// archetypeRegistry owns every archetype and table a world has ever
// needed, plus the cached graph edges between archetypes. Unlike the
// component Registry, archetypes and tables are discovered lazily:
// a new component-set combination mints a new archetype (and, if no
// existing table matches its table-class subset, a new table) the
// first time a structural operation needs it.
type archetypeRegistry struct {
	components *Registry

	archetypes []*Archetype
	edges      []*archetypeEdges
	byMask     map[mask.Mask256]ArchetypeID

	tables     []*Table
	tableByKey map[mask.Mask256]TableID

	// sparseSets holds exactly one sparseSet per sparse-class component
	// id, shared by every archetype that carries that component. A
	// component's sparse value is keyed by entity index and lives here
	// regardless of which archetype the entity currently belongs to, so
	// moving an entity between archetypes that both retain the
	// component never needs to copy or re-home its value.
	sparseSets map[ComponentID]*sparseSet

	nextArchetypeComponentID uint32
}

func newArchetypeRegistry(components *Registry) *archetypeRegistry {
	r := &archetypeRegistry{
		components: components,
		byMask:     make(map[mask.Mask256]ArchetypeID),
		tableByKey: make(map[mask.Mask256]TableID),
		sparseSets: make(map[ComponentID]*sparseSet),
	}
	// Archetype 0 is the empty archetype, the home of every entity
	// spawned with no components and the root of the archetype graph
	// every add-component edge eventually traces back to. Seeded
	// eagerly rather than lazily on first use, so ArchetypeID(0) is
	// always a valid reference from the moment a world is constructed.
	r.getOrInsert(nil)
	return r
}

// getOrInsert returns the archetype for exactly this component set,
// creating it (and, if needed, its backing table) on first use.
// components need not be sorted or deduplicated by the caller.
func (r *archetypeRegistry) getOrInsert(components []ComponentID) *Archetype {
	dedup := dedupComponents(components)
	m := maskOf(dedup...)
	if id, ok := r.byMask[m]; ok {
		return r.archetypes[id]
	}

	var tableComponents, sparseComponents []ComponentID
	for _, cid := range dedup {
		if r.components.Info(cid).Storage == StorageSparse {
			sparseComponents = append(sparseComponents, cid)
		} else {
			tableComponents = append(tableComponents, cid)
		}
	}
	sort.Slice(tableComponents, func(i, j int) bool { return tableComponents[i] < tableComponents[j] })
	sort.Slice(sparseComponents, func(i, j int) bool { return sparseComponents[i] < sparseComponents[j] })

	tableID := r.getOrInsertTable(tableComponents)

	sparse := make(map[ComponentID]*sparseSet, len(sparseComponents))
	for _, cid := range sparseComponents {
		sparse[cid] = r.sparseSetFor(cid)
	}

	archComponentIDs := make(map[ComponentID]uint32, len(dedup))
	for _, cid := range dedup {
		archComponentIDs[cid] = r.nextArchetypeComponentID
		r.nextArchetypeComponentID++
	}

	id := ArchetypeID(len(r.archetypes))
	a := &Archetype{
		id:                    id,
		mask:                  m,
		table:                 tableID,
		tableComponents:       tableComponents,
		sparseComponents:      sparseComponents,
		sparse:                sparse,
		archetypeComponentIDs: archComponentIDs,
	}
	r.archetypes = append(r.archetypes, a)
	r.edges = append(r.edges, newArchetypeEdges())
	r.byMask[m] = id
	return a
}

// sparseSetFor returns the single sparseSet shared by every archetype
// that carries cid, creating it lazily the first time any archetype
// needs it.
func (r *archetypeRegistry) sparseSetFor(cid ComponentID) *sparseSet {
	if ss, ok := r.sparseSets[cid]; ok {
		return ss
	}
	info := r.components.Info(cid)
	ss := newSparseSet(newBlobVec(info.Type, info.drop))
	r.sparseSets[cid] = ss
	return ss
}

func (r *archetypeRegistry) getOrInsertTable(tableComponents []ComponentID) TableID {
	key := maskOf(tableComponents...)
	if id, ok := r.tableByKey[key]; ok {
		return id
	}
	id := TableID(len(r.tables))
	r.tables = append(r.tables, newTable(id, r.components, tableComponents))
	r.tableByKey[key] = id
	return id
}

func dedupComponents(components []ComponentID) []ComponentID {
	if len(components) < 2 {
		return components
	}
	seen := make(map[ComponentID]struct{}, len(components))
	out := make([]ComponentID, 0, len(components))
	for _, c := range components {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func (r *archetypeRegistry) archetype(id ArchetypeID) *Archetype { return r.archetypes[id] }
func (r *archetypeRegistry) tableOf(id TableID) *Table            { return r.tables[id] }

// withAdded returns the archetype reached by adding cid to from's
// component set, using (and populating) the cached edge.
func (r *archetypeRegistry) withAdded(from ArchetypeID, cid ComponentID) *Archetype {
	if to, ok := r.edges[from].add[cid]; ok {
		return r.archetypes[to]
	}
	base := r.archetypes[from]
	set := append(append([]ComponentID{}, base.tableComponents...), base.sparseComponents...)
	set = append(set, cid)
	to := r.getOrInsert(set)
	r.edges[from].add[cid] = to.id
	r.edges[to.id].remove[cid] = from
	return to
}

// withRemoved returns the archetype reached by removing cid from
// from's component set, using (and populating) the cached edge.
func (r *archetypeRegistry) withRemoved(from ArchetypeID, cid ComponentID) *Archetype {
	if to, ok := r.edges[from].remove[cid]; ok {
		return r.archetypes[to]
	}
	base := r.archetypes[from]
	set := make([]ComponentID, 0, len(base.tableComponents)+len(base.sparseComponents))
	for _, c := range base.tableComponents {
		if c != cid {
			set = append(set, c)
		}
	}
	for _, c := range base.sparseComponents {
		if c != cid {
			set = append(set, c)
		}
	}
	to := r.getOrInsert(set)
	r.edges[from].remove[cid] = to.id
	r.edges[to.id].add[cid] = from
	return to
}
