package planning

import (
	"fmt"

	"github.com/google/uuid"
)

// RefKind tags what a LineRef points at.
type RefKind string

const (
	RefNone    RefKind = ""
	RefArea    RefKind = "AREA"
	RefRequest RefKind = "REQUEST"
)

// IsValid checks if the kind is known
func (k RefKind) IsValid() bool {
	return k == RefNone || k == RefArea || k == RefRequest
}

// LineRef is the source or destination of a plan line: nothing, a storage
// area (on-hand stock), or a transfer request.
type LineRef struct {
	Kind RefKind   `json:"kind,omitempty"`
	ID   uuid.UUID `json:"id,omitempty"`
}

// NoRef is the absent reference.
func NoRef() LineRef { return LineRef{} }

// AreaRef references on-hand stock of a storage area.
func AreaRef(id uuid.UUID) LineRef { return LineRef{Kind: RefArea, ID: id} }

// RequestRef references a transfer request.
func RequestRef(id uuid.UUID) LineRef { return LineRef{Kind: RefRequest, ID: id} }

// ParseLineRef rebuilds a reference from its stored parts.
func ParseLineRef(kind string, id *uuid.UUID) (LineRef, error) {
	k := RefKind(kind)
	if !k.IsValid() {
		return LineRef{}, fmt.Errorf("unknown line reference kind %q", kind)
	}
	if k == RefNone {
		return NoRef(), nil
	}
	if id == nil || *id == uuid.Nil {
		return LineRef{}, fmt.Errorf("line reference of kind %s has no id", kind)
	}
	return LineRef{Kind: k, ID: *id}, nil
}

func (r LineRef) IsNone() bool    { return r.Kind == RefNone }
func (r LineRef) IsPresent() bool { return r.Kind != RefNone }
func (r LineRef) IsArea() bool    { return r.Kind == RefArea }
func (r LineRef) IsRequest() bool { return r.Kind == RefRequest }

// IDPtr returns the referenced id, or nil for NoRef.
func (r LineRef) IDPtr() *uuid.UUID {
	if r.IsNone() {
		return nil
	}
	id := r.ID
	return &id
}

// String formats the reference as kind:id, or "-" when absent.
func (r LineRef) String() string {
	if r.IsNone() {
		return "-"
	}
	return string(r.Kind) + ":" + r.ID.String()
}
