// Package walk implements traversals over the types arena: a generic
// double-dispatch visitor, a visit-once set, the reachable-type collector and
// a structural rebuilder.
package walk

import (
	"fmt"

	"tracegen/internal/types"
)

// Visitor has one handler per type kind. A traversal that forgets a kind
// does not compile.
type Visitor[A, R any] interface {
	VisitVoid(id types.TypeID, arg A) R
	VisitLiteral(id types.TypeID, arg A) R
	VisitString(id types.TypeID, arg A) R
	VisitConst(id types.TypeID, arg A) R
	VisitPointer(id types.TypeID, arg A) R
	VisitAlias(id types.TypeID, arg A) R
	VisitEnum(id types.TypeID, arg A) R
	VisitBitmask(id types.TypeID, arg A) R
	VisitArray(id types.TypeID, arg A) R
	VisitBlob(id types.TypeID, arg A) R
	VisitStruct(id types.TypeID, arg A) R
	VisitOpaque(id types.TypeID, arg A) R
	VisitHandle(id types.TypeID, arg A) R
	VisitPolymorphic(id types.TypeID, arg A) R
	VisitInterface(id types.TypeID, arg A) R
}

// None is the argument or result of traversals that carry nothing.
type None struct{}

// KindError reports a descriptor whose kind has no handler.
type KindError struct {
	ID   types.TypeID
	Kind types.Kind
}

func (e *KindError) Error() string {
	return fmt.Sprintf("walk: no handler for type %d of kind %s", e.ID, e.Kind)
}

// Dispatch runs the handler matching the kind of id. An id outside the arena
// or of an unknown kind panics with *KindError.
func Dispatch[A, R any](in *types.Interner, v Visitor[A, R], id types.TypeID, arg A) R {
	switch k := in.KindOf(id); k {
	case types.KindVoid:
		return v.VisitVoid(id, arg)
	case types.KindLiteral:
		return v.VisitLiteral(id, arg)
	case types.KindString:
		return v.VisitString(id, arg)
	case types.KindConst:
		return v.VisitConst(id, arg)
	case types.KindPointer:
		return v.VisitPointer(id, arg)
	case types.KindAlias:
		return v.VisitAlias(id, arg)
	case types.KindEnum:
		return v.VisitEnum(id, arg)
	case types.KindBitmask:
		return v.VisitBitmask(id, arg)
	case types.KindArray:
		return v.VisitArray(id, arg)
	case types.KindBlob:
		return v.VisitBlob(id, arg)
	case types.KindStruct:
		return v.VisitStruct(id, arg)
	case types.KindOpaque:
		return v.VisitOpaque(id, arg)
	case types.KindHandle:
		return v.VisitHandle(id, arg)
	case types.KindPolymorphic:
		return v.VisitPolymorphic(id, arg)
	case types.KindInterface:
		return v.VisitInterface(id, arg)
	default:
		panic(&KindError{ID: id, Kind: k})
	}
}

// Kinds lists every kind Dispatch handles.
func Kinds() []types.Kind {
	return []types.Kind{
		types.KindVoid,
		types.KindLiteral,
		types.KindString,
		types.KindConst,
		types.KindPointer,
		types.KindAlias,
		types.KindEnum,
		types.KindBitmask,
		types.KindArray,
		types.KindBlob,
		types.KindStruct,
		types.KindOpaque,
		types.KindHandle,
		types.KindPolymorphic,
		types.KindInterface,
	}
}
