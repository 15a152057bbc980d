package walk

import "tracegen/internal/types"

// Once is a set of visited type ids. The zero value is ready to use.
type Once struct {
	bits []uint64
}

// Seen reports whether id was marked.
func (o *Once) Seen(id types.TypeID) bool {
	word, bit := int(id/64), id%64
	return word < len(o.bits) && o.bits[word]&(1<<bit) != 0
}

// Mark records id and reports whether this was its first visit.
func (o *Once) Mark(id types.TypeID) bool {
	if o.Seen(id) {
		return false
	}
	word, bit := int(id/64), id%64
	for len(o.bits) <= word {
		o.bits = append(o.bits, 0)
	}
	o.bits[word] |= 1 << bit
	return true
}

// VisitOnce dispatches id unless it was already visited through o. A repeated
// visit returns the zero R and false.
func VisitOnce[A, R any](in *types.Interner, o *Once, v Visitor[A, R], id types.TypeID, arg A) (R, bool) {
	if !o.Mark(id) {
		var zero R
		return zero, false
	}
	return Dispatch(in, v, id, arg), true
}
