package ecs

import "fmt"

// NoSuchEntityError reports that an entity id has no live counterpart,
// either because it was never allocated or because its generation has
// since moved on.
type NoSuchEntityError struct {
	Entity Entity
}

func (e NoSuchEntityError) Error() string {
	return fmt.Sprintf("no such entity: %v", e.Entity)
}

// DuplicateComponentError reports that a bundle mentions the same
// component id more than once.
type DuplicateComponentError struct {
	Component string
}

func (e DuplicateComponentError) Error() string {
	return fmt.Sprintf("duplicate component in bundle: %s", e.Component)
}

// CapacityOverflowError reports that a growth request would overflow
// the maximum representable capacity.
type CapacityOverflowError struct {
	Requested int
}

func (e CapacityOverflowError) Error() string {
	return fmt.Sprintf("capacity overflow: requested %d", e.Requested)
}

// LockedWorldError reports an attempt to structurally mutate a world
// while an iteration holds it locked.
type LockedWorldError struct{}

func (e LockedWorldError) Error() string {
	return "world is locked by an active iteration"
}

// ComponentNotRegisteredError reports a component id that does not
// belong to the registry it was looked up against.
type ComponentNotRegisteredError struct {
	ID ComponentID
}

func (e ComponentNotRegisteredError) Error() string {
	return fmt.Sprintf("component id %d is not registered in this world", e.ID)
}

// CrossWorldError reports a query run against a world other than the
// one it was first run against. Component and archetype ids are not
// checked for cross-world use.
type CrossWorldError struct{}

func (e CrossWorldError) Error() string {
	return "id used across worlds"
}
