package ecs

import "reflect"

// sparseSet stores at most one component value per entity, keyed
// directly by entity index rather than by archetype/table row. Unlike
// a table-class component, a sparse-class component never needs to
// move when its owning entity transitions between archetypes — only
// the archetype's component bitset changes, the value itself stays
// put. This is the storage chosen for components that are added and
// removed far more often than they are iterated in bulk.
type sparseSet struct {
	column *blobVec
	ticks  []ComponentTicks

	// sparse maps entity index -> dense row + 1 (0 means absent).
	sparse []uint32
	// dense maps dense row -> entity index, kept parallel with column.
	dense []uint32
}

func newSparseSet(b *blobVec) *sparseSet {
	return &sparseSet{column: b}
}

func (s *sparseSet) has(index uint32) bool {
	return int(index) < len(s.sparse) && s.sparse[index] != 0
}

func (s *sparseSet) rowOf(index uint32) (int, bool) {
	if !s.has(index) {
		return 0, false
	}
	return int(s.sparse[index] - 1), true
}

func (s *sparseSet) growSparse(index uint32) {
	if int(index) < len(s.sparse) {
		return
	}
	grown := make([]uint32, index+1)
	copy(grown, s.sparse)
	s.sparse = grown
}

// insert sets the value for index, overwriting any existing value in
// place (preserving its dense row) or allocating a new dense row.
func (s *sparseSet) insert(index uint32, value interface{}, tick Tick) {
	s.growSparse(index)
	rv := reflect.ValueOf(value)
	if row, ok := s.rowOf(index); ok {
		s.column.set(row, rv)
		s.ticks[row] = NewComponentTicks(tick)
		return
	}
	row := s.column.push(rv)
	s.sparse[index] = uint32(row + 1)
	s.dense = append(s.dense, index)
	s.ticks = append(s.ticks, NewComponentTicks(tick))
}

// remove drops index's value, swap-removing its dense row. Returns
// false if index had no value.
func (s *sparseSet) remove(index uint32) bool {
	row, ok := s.rowOf(index)
	if !ok {
		return false
	}
	last := s.column.Len() - 1
	s.column.swapRemove(row)
	if row != last {
		movedIndex := s.dense[last]
		s.dense[row] = movedIndex
		s.sparse[movedIndex] = uint32(row + 1)
		s.ticks[row] = s.ticks[last]
	}
	s.dense = s.dense[:last]
	s.ticks = s.ticks[:last]
	s.sparse[index] = 0
	return true
}
