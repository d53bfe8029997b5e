package ecs

// factory implements the factory pattern for ecs construction,
// mirroring the teacher library's own package-level Factory value.
// Go methods cannot carry their own type parameters, so the
// generic constructors (ComponentFor, NewQuery1..3, Bundle1..4) are
// package-level functions instead; Factory only holds the ones that
// need no type parameter of their own.
type factory struct{}

// Factory is the global factory instance for creating worlds.
var Factory factory

// NewWorld creates a fresh, empty world.
func (f factory) NewWorld() *World {
	return NewWorld()
}
