/*
Package ecs provides the storage core of an Entity-Component-System: the
subsystem that attaches heterogeneous component values to entities and
supports structural mutation (spawn, insert, remove) and filtered
iteration (queries).

Core Concepts:

  - Entity: a stable identity, (index, generation), that survives slot reuse.
  - Component: a typed value attached to an entity, at most one per type.
  - Archetype: the unique set of component types an entity carries.
  - Table: the columnar storage backing an archetype's table-class components.
  - Query: a (data, filter) request compiled against the archetype graph.

Basic Usage:

	world := Factory.NewWorld()

	position := ComponentFor[Position](world, StorageTable)
	velocity := ComponentFor[Velocity](world, StorageTable)

	e, _ := world.Spawn(Bundle2(position, Position{X: 1, Y: 2}, velocity, Velocity{X: 1, Y: 0}))

	q := NewQuery2(position, velocity)
	for it := q.Iter(world); it.Next(); {
		pos, vel := it.Get()
		pos.X += vel.X
		pos.Y += vel.Y
	}
	_ = e

The world is exclusively owned by one goroutine for structural
mutation; entity identity may be reserved lock-free from other
goroutines and must be flushed under exclusive access before use.
*/
package ecs
