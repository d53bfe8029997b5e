package ecs

// TableID identifies a shared columnar store. Distinct archetypes
// that differ only in which sparse-class components they carry can
// point at the same table, since a table only cares about the
// table-class component set.
type TableID uint32

const invalidTableID TableID = ^TableID(0)

// Table is the columnar storage backing every table-class component
// of the archetypes that share it. A row in a table is independent of
// a row in any one archetype that uses it: an entity's table row
// moves only when a table-class component is added or removed, while
// its archetype row moves whenever any component (table or sparse
// class) is added or removed. The two indices are tracked separately
// in EntityLocation's consumers (world.go), never conflated.
type Table struct {
	id       TableID
	columns  map[ComponentID]*blobVec
	ticks    map[ComponentID][]ComponentTicks
	entities []Entity // table row -> entity, parallel across all columns
}

func newTable(id TableID, reg *Registry, components []ComponentID) *Table {
	t := &Table{
		id:      id,
		columns: make(map[ComponentID]*blobVec, len(components)),
		ticks:   make(map[ComponentID][]ComponentTicks, len(components)),
	}
	for _, cid := range components {
		info := reg.Info(cid)
		t.columns[cid] = newBlobVec(info.Type, info.drop)
		t.ticks[cid] = nil
	}
	return t
}

// Len returns the number of rows currently stored.
func (t *Table) Len() int { return len(t.entities) }

// Has reports whether the table carries a column for cid.
func (t *Table) Has(cid ComponentID) bool {
	_, ok := t.columns[cid]
	return ok
}

// allocate reserves a new row for entity e, zero-initializing every
// column, and stamping tick into every column's tick slot. Callers
// write actual component values into the returned row afterward.
func (t *Table) allocate(e Entity, tick Tick) int {
	row := -1
	for cid, col := range t.columns {
		r := col.pushZero()
		row = r
		t.ticks[cid] = append(t.ticks[cid], NewComponentTicks(tick))
	}
	if row == -1 {
		// zero-column table (the empty archetype's table): row tracking
		// still advances via the entities slice alone.
		row = len(t.entities)
	}
	t.entities = append(t.entities, e)
	return row
}

// swapRemove removes row, swap-filling it from the table's last row.
// Returns the entity that was moved into row (if any) and whether a
// move happened.
func (t *Table) swapRemove(row int) (moved Entity, didMove bool) {
	last := len(t.entities) - 1
	for cid, col := range t.columns {
		col.swapRemove(row)
		ticks := t.ticks[cid]
		if row != last {
			ticks[row] = ticks[last]
		}
		t.ticks[cid] = ticks[:last]
	}
	if row != last {
		moved = t.entities[last]
		didMove = true
		t.entities[row] = moved
	}
	t.entities = t.entities[:last]
	return moved, didMove
}

// moveRow moves the component values at srcRow from every column src
// shares with t into a freshly allocated row of t, zero-filling any
// column t has that src lacks (the caller fills those immediately
// after, as part of an add-bundle). Ticks for shared columns carry
// over unchanged; new columns are stamped with tick. moved names every
// column id whose value was moved out of src (and zeroed there, not
// dropped) so the caller's removal of srcRow can forget rather than
// drop those slots.
func (t *Table) moveRow(src *Table, srcRow int, e Entity, tick Tick) (row int, moved map[ComponentID]struct{}) {
	row = -1
	moved = make(map[ComponentID]struct{}, len(t.columns))
	for cid, col := range t.columns {
		if srcCol, ok := src.columns[cid]; ok {
			r := col.moveFrom(srcCol, srcRow)
			row = r
			t.ticks[cid] = append(t.ticks[cid], src.ticks[cid][srcRow])
			moved[cid] = struct{}{}
		} else {
			r := col.pushZero()
			row = r
			t.ticks[cid] = append(t.ticks[cid], NewComponentTicks(tick))
		}
	}
	if row == -1 {
		row = len(t.entities)
	}
	t.entities = append(t.entities, e)
	return row, moved
}

// swapRemoveForgetting removes row the same way swapRemove does,
// except every column id named in forget is released without invoking
// drop — used when that column's value has already been moved into
// another table (moveRow) and the slot already holds a zero value, so
// dropping it again would hand a Destroyer a value it never owned.
func (t *Table) swapRemoveForgetting(row int, forget map[ComponentID]struct{}) (moved Entity, didMove bool) {
	last := len(t.entities) - 1
	for cid, col := range t.columns {
		if _, skip := forget[cid]; skip {
			col.swapRemoveForget(row)
		} else {
			col.swapRemove(row)
		}
		ticks := t.ticks[cid]
		if row != last {
			ticks[row] = ticks[last]
		}
		t.ticks[cid] = ticks[:last]
	}
	if row != last {
		moved = t.entities[last]
		didMove = true
		t.entities[row] = moved
	}
	t.entities = t.entities[:last]
	return moved, didMove
}
