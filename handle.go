package ecs

// WorldCell is a shared handle over a *World, the Go counterpart of an
// interior-mutability cell: it hands out either any number of
// ReadOnly views or a single Exclusive view at a time. Go has no
// borrow checker, so WorldCell does not runtime-enforce this contract
// (mirroring the teacher's own Locked()-is-advisory pattern) — holding
// an Exclusive view live alongside a ReadOnly view, or two Exclusive
// views at once, is a documented contract violation the caller must
// not commit, not an error WorldCell detects.
type WorldCell struct {
	world *World
}

// NewWorldCell wraps w for handing out scoped views.
func NewWorldCell(w *World) WorldCell { return WorldCell{world: w} }

// ReadOnlyWorld is a view permitting queries and component reads but
// no structural mutation.
type ReadOnlyWorld struct {
	world *World
}

// World exposes the underlying *World for queries and component
// reads. The storage layer does not distinguish shared from exclusive
// component access, so a caller holding only a ReadOnlyWorld is
// trusted not to call its structural mutation methods.
func (r ReadOnlyWorld) World() *World { return r.world }

// Contains reports whether e refers to a currently live entity.
func (r ReadOnlyWorld) Contains(e Entity) bool { return r.world.Contains(e) }

// ExclusiveWorld is a view permitting structural mutation in addition
// to everything ReadOnlyWorld permits.
type ExclusiveWorld struct {
	world *World
}

// World exposes the underlying *World for structural mutation.
func (x ExclusiveWorld) World() *World { return x.world }

// ReadOnly hands out a read-only view of the cell's world.
func (c WorldCell) ReadOnly() ReadOnlyWorld { return ReadOnlyWorld{world: c.world} }

// Exclusive hands out an exclusive view of the cell's world.
func (c WorldCell) Exclusive() ExclusiveWorld { return ExclusiveWorld{world: c.world} }
