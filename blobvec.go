package ecs

import (
	"math"
	"reflect"

	"github.com/TheBitDrifter/bark"
)

// maxBlobVecCapacity bounds how far a single column can grow. Go slice
// lengths are int-sized, but a capacity request anywhere near that
// range signals a runaway caller rather than a legitimate column, so
// reserve treats it as the "over-capacity grow" fatal condition spec
// draws out explicitly rather than letting reflect.MakeSlice panic
// with a less specific message.
const maxBlobVecCapacity = math.MaxInt32

// blobVec is a type-erased, growable column of component values. It
// is the Go analogue of a raw-pointer/Layout-backed blob vector: Go's
// reflect.Value-backed slice plays the role the teacher's storage
// layer fills with reflection over a concrete column type, except
// here the element type is only known at construction time.
//
// Length is tracked independently of the underlying slice's own len:
// the backing slice is grown via reflect.MakeSlice to exactly the size
// a push needs and is never shrunk (swapRemove and clear only lower
// length), so index i is addressable for every i < length.
type blobVec struct {
	typ    reflect.Type
	drop   dropFunc
	data   reflect.Value // slice of typ, len==cap>=length
	length int
}

func newBlobVec(typ reflect.Type, drop dropFunc) *blobVec {
	return &blobVec{
		typ:  typ,
		drop: drop,
		data: reflect.MakeSlice(reflect.SliceOf(typ), 0, 0),
	}
}

// Len returns the number of live elements.
func (b *blobVec) Len() int { return b.length }

// reserve grows the backing slice so index length is addressable,
// leaving newly revealed slots zero-valued.
func (b *blobVec) reserve(n int) {
	if n <= b.data.Len() {
		return
	}
	if n < 0 || n > maxBlobVecCapacity {
		panic(bark.AddTrace(CapacityOverflowError{Requested: n}))
	}
	grown := reflect.MakeSlice(reflect.SliceOf(b.typ), n, n)
	reflect.Copy(grown, b.data)
	b.data = grown
}

// push appends v, which must be assignable to the column's type,
// returning its row index.
func (b *blobVec) push(v reflect.Value) int {
	row := b.length
	b.reserve(row + 1)
	b.data.Index(row).Set(v)
	b.length = row + 1
	return row
}

// pushZero appends a zero value, returning its row index. Used when a
// row is claimed before its component value is known (bundle
// assembly writes it immediately after).
func (b *blobVec) pushZero() int {
	row := b.length
	b.reserve(row + 1)
	b.length = row + 1
	return row
}

// at returns the addressable reflect.Value at row.
func (b *blobVec) at(row int) reflect.Value {
	return b.data.Index(row)
}

// set overwrites row with v, dropping the prior value first.
func (b *blobVec) set(row int, v reflect.Value) {
	if b.drop != nil {
		b.drop(b.at(row))
	}
	b.at(row).Set(v)
}

// swapRemove removes row, moving the last element into its place (if
// it wasn't already last) and shrinking length by one. Returns true
// if an element was moved, i.e. row was not the last row.
func (b *blobVec) swapRemove(row int) (moved bool) {
	if b.drop != nil {
		b.drop(b.at(row))
	}
	last := b.length - 1
	if row != last {
		b.at(row).Set(b.at(last))
		moved = true
	}
	// zero the vacated last slot so it doesn't keep a stale reference alive.
	b.at(last).Set(reflect.Zero(b.typ))
	b.length = last
	return moved
}

// swapRemoveForget removes row the same way swapRemove does, but does
// not invoke drop on the departing value — used when its ownership
// has already been transferred elsewhere (moveFrom) and the slot
// already holds a zero value, not a live one.
func (b *blobVec) swapRemoveForget(row int) (moved bool) {
	last := b.length - 1
	if row != last {
		b.at(row).Set(b.at(last))
		moved = true
	}
	b.at(last).Set(reflect.Zero(b.typ))
	b.length = last
	return moved
}

// moveFrom moves the value at row in src into a freshly pushed row of
// b, zeroing the source slot without invoking drop (ownership
// transfers, it is not released). Returns the destination row.
func (b *blobVec) moveFrom(src *blobVec, row int) int {
	dst := b.pushZero()
	b.at(dst).Set(src.at(row))
	src.at(row).Set(reflect.Zero(src.typ))
	return dst
}

// clear drops every live element and resets length to zero, leaving
// capacity untouched.
func (b *blobVec) clear() {
	if b.drop != nil {
		for i := 0; i < b.length; i++ {
			b.drop(b.at(i))
		}
	}
	zeroSlice := reflect.MakeSlice(reflect.SliceOf(b.typ), b.data.Len(), b.data.Len())
	b.data = zeroSlice
	b.length = 0
}
