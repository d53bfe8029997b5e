package ecs

import "reflect"

// bundlePart is one component slot contributed by a Bundle: its id,
// the value to write, and the storage class it was registered under.
type bundlePart struct {
	id      ComponentID
	value   reflect.Value
	storage StorageClass
}

// Bundle is a set of component values to attach to an entity in one
// structural operation — Spawn, Insert, or RemoveBundle. A bundle
// naming the same component twice is a contract violation, reported as
// a DuplicateComponentError at the point the bundle is applied.
//
// Rust's bevy_ecs expresses a Bundle as a tuple type, with tuples of
// bundles themselves implementing Bundle so bundles nest arbitrarily.
// Go has no variadic tuple types, so the same shape is built instead
// from single-component Bundle1 values combined with Join — nesting
// bundles is exactly concatenating their parts.
type Bundle interface {
	parts() []bundlePart
}

type bundleImpl struct {
	ps []bundlePart
}

func (b bundleImpl) parts() []bundlePart { return b.ps }

// EmptyBundle is the bundle contributing no components, used to spawn
// an entity directly into the empty archetype.
func EmptyBundle() Bundle { return bundleImpl{} }

// Bundle1 wraps a single component value as a Bundle.
func Bundle1[A any](ca Component[A], a A) Bundle {
	return bundleImpl{ps: []bundlePart{
		{id: ca.id, value: reflect.ValueOf(a), storage: ca.storage},
	}}
}

// Join concatenates any number of bundles into one, the Go stand-in
// for nesting bundle tuples. Duplicate components across the joined
// parts are only detected when the result is applied to a world.
func Join(bundles ...Bundle) Bundle {
	var ps []bundlePart
	for _, b := range bundles {
		ps = append(ps, b.parts()...)
	}
	return bundleImpl{ps: ps}
}

// Bundle2 is sugar for Join(Bundle1(ca, a), Bundle1(cb, b)).
func Bundle2[A, B any](ca Component[A], a A, cb Component[B], b B) Bundle {
	return Join(Bundle1(ca, a), Bundle1(cb, b))
}

// Bundle3 is sugar for joining three single-component bundles.
func Bundle3[A, B, C any](ca Component[A], a A, cb Component[B], b B, cc Component[C], c C) Bundle {
	return Join(Bundle1(ca, a), Bundle1(cb, b), Bundle1(cc, c))
}

// Bundle4 is sugar for joining four single-component bundles.
func Bundle4[A, B, C, D any](
	ca Component[A], a A,
	cb Component[B], b B,
	cc Component[C], c C,
	cd Component[D], d D,
) Bundle {
	return Join(Bundle1(ca, a), Bundle1(cb, b), Bundle1(cc, c), Bundle1(cd, d))
}

// componentIDs returns the component ids contributed by a bundle, in
// part order, without deduplicating. Duplicate detection is done
// separately, by validateBundle in world.go.
func componentIDs(b Bundle) []ComponentID {
	parts := b.parts()
	ids := make([]ComponentID, len(parts))
	for i, p := range parts {
		ids[i] = p.id
	}
	return ids
}
