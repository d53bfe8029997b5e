package ecs

import "testing"

func TestWorldCellReadOnlyAndExclusiveShareWorld(t *testing.T) {
	w := NewWorld()
	position := ComponentFor[testPosition](w, StorageTable)
	e, err := w.Spawn(Bundle1(position, testPosition{X: 1, Y: 2}))
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}

	cell := NewWorldCell(w)
	ro := cell.ReadOnly()
	if !ro.Contains(e) {
		t.Fatalf("ReadOnlyWorld.Contains() = false for a live entity")
	}

	xw := cell.Exclusive()
	if err := xw.World().Despawn(e); err != nil {
		t.Fatalf("Despawn through ExclusiveWorld failed: %v", err)
	}
	if ro.Contains(e) {
		t.Fatalf("entity must no longer be contained after despawn via the exclusive view")
	}
}
