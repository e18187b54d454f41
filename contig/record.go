package contig

import (
	"fmt"

	"github.com/grailbio/hts/sam"
)

// Record is the view of an alignment record that a Remapper needs.
// Reference indices are 0-based; -1 means no reference.
type Record interface {
	RefID() int
	SetRefID(id int)
	MateRefID() int
	SetMateRefID(id int)
	Name() string
	SetName(name string)
	// Aux returns the value of the auxiliary field with the given tag.
	Aux(tag sam.Tag) (AuxValue, bool)
}

// AuxKind is the type of an AuxValue.
type AuxKind int

const (
	// AuxString is a 'Z' field.
	AuxString AuxKind = iota
	// AuxChar is an 'A' field.
	AuxChar
	// AuxInteger is any of the 'c', 'C', 's', 'S', 'i', 'I' fields.
	AuxInteger
	// AuxFloat is an 'f' field.
	AuxFloat
	// AuxHex is an 'H' field.
	AuxHex
	// AuxArray is a 'B' field.
	AuxArray
)

var auxKindNames = map[AuxKind]string{
	AuxString:  "string",
	AuxChar:    "char",
	AuxInteger: "integer",
	AuxFloat:   "float",
	AuxHex:     "hex",
	AuxArray:   "array",
}

func (k AuxKind) String() string {
	if s, ok := auxKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("AuxKind(%d)", int(k))
}

// AuxValue is a typed auxiliary field value. Only the field selected by Kind
// is meaningful: Str for AuxString and AuxHex, Int for AuxChar and
// AuxInteger, Float for AuxFloat, Array for AuxArray.
type AuxValue struct {
	Kind  AuxKind
	Str   string
	Int   int64
	Float float64
	Array interface{}
}

// StringValue returns the value of a string field. It returns false for
// every other kind.
func (v AuxValue) StringValue() (string, bool) {
	if v.Kind != AuxString {
		return "", false
	}
	return v.Str, true
}

// NewAuxValue converts a sam.Aux to an AuxValue.
func NewAuxValue(aux sam.Aux) AuxValue {
	switch aux.Type() {
	case 'Z':
		return AuxValue{Kind: AuxString, Str: aux.Value().(string)}
	case 'H':
		return AuxValue{Kind: AuxHex, Str: string(aux[3:])}
	case 'A':
		return AuxValue{Kind: AuxChar, Int: auxInt(aux.Value())}
	case 'f':
		return AuxValue{Kind: AuxFloat, Float: float64(aux.Value().(float32))}
	case 'B':
		return AuxValue{Kind: AuxArray, Array: aux.Value()}
	default:
		return AuxValue{Kind: AuxInteger, Int: auxInt(aux.Value())}
	}
}

func auxInt(v interface{}) int64 {
	switch n := v.(type) {
	case byte:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case uint16:
		return int64(n)
	case int32:
		return int64(n)
	case uint32:
		return int64(n)
	case int:
		return int64(n)
	}
	return 0
}

// SAMRecord adapts a sam.Record to the Record interface. Reads return the
// indices stored in the record; SetRefID and SetMateRefID resolve the new
// index against refs, the references of the header the record will be
// written with.
type SAMRecord struct {
	rec  *sam.Record
	refs []*sam.Reference
}

// NewSAMRecord creates a Record for rec. refs is usually Refs() of the
// translated header.
func NewSAMRecord(rec *sam.Record, refs []*sam.Reference) *SAMRecord {
	return &SAMRecord{rec: rec, refs: refs}
}

// Reset makes r refer to rec. It allows one SAMRecord to be reused across
// records.
func (r *SAMRecord) Reset(rec *sam.Record) { r.rec = rec }

// Unwrap returns the underlying sam.Record.
func (r *SAMRecord) Unwrap() *sam.Record { return r.rec }

// RefID implements Record.
func (r *SAMRecord) RefID() int { return r.rec.Ref.ID() }

// MateRefID implements Record.
func (r *SAMRecord) MateRefID() int { return r.rec.MateRef.ID() }

// SetRefID implements Record.
func (r *SAMRecord) SetRefID(id int) { r.rec.Ref = r.ref(id) }

// SetMateRefID implements Record.
func (r *SAMRecord) SetMateRefID(id int) { r.rec.MateRef = r.ref(id) }

func (r *SAMRecord) ref(id int) *sam.Reference {
	if id < 0 {
		return nil
	}
	return r.refs[id]
}

// Name implements Record.
func (r *SAMRecord) Name() string { return r.rec.Name }

// SetName implements Record.
func (r *SAMRecord) SetName(name string) { r.rec.Name = name }

// Aux implements Record.
func (r *SAMRecord) Aux(tag sam.Tag) (AuxValue, bool) {
	aux := r.rec.AuxFields.Get(tag)
	if aux == nil {
		return AuxValue{}, false
	}
	return NewAuxValue(aux), true
}
