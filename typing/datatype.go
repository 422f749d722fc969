package typing

// DataType enumerates the scalar kinds of the Dusk language.  Each standard
// kind has a VAR_ variant (a named local passed by value) and a REF_ variant
// (a by-reference parameter).  UNKNOWN and REF_UNKNOWN are placeholders the
// parser emits for call arguments that are bare identifiers; the analyzer
// resolves them before the IR is handed off.
type DataType int

const (
	Undefined DataType = iota

	Unknown
	RefUnknown

	StandardInteger
	StandardDouble
	StandardChar
	StandardString

	VarStandardInteger
	VarStandardDouble
	VarStandardChar
	VarStandardString

	RefStandardInteger
	RefStandardDouble
	RefStandardChar
	RefStandardString
)

// Repr returns a string representing the data type
func (dt DataType) Repr() string {
	switch dt {
	case Unknown:
		return "unknown"
	case RefUnknown:
		return "ref unknown"
	case StandardInteger:
		return "int"
	case StandardDouble:
		return "double"
	case StandardChar:
		return "char"
	case StandardString:
		return "string"
	case VarStandardInteger:
		return "var int"
	case VarStandardDouble:
		return "var double"
	case VarStandardChar:
		return "var char"
	case VarStandardString:
		return "var string"
	case RefStandardInteger:
		return "ref int"
	case RefStandardDouble:
		return "ref double"
	case RefStandardChar:
		return "ref char"
	case RefStandardString:
		return "ref string"
	default:
		return "undefined"
	}
}

// BaseOf collapses a VAR_ or REF_ variant to its standard kind.  Standard
// kinds map to themselves; UNKNOWN, REF_UNKNOWN, and UNDEFINED have no base
// and return Undefined.
func BaseOf(dt DataType) DataType {
	switch dt {
	case StandardInteger, VarStandardInteger, RefStandardInteger:
		return StandardInteger
	case StandardDouble, VarStandardDouble, RefStandardDouble:
		return StandardDouble
	case StandardChar, VarStandardChar, RefStandardChar:
		return StandardChar
	case StandardString, VarStandardString, RefStandardString:
		return StandardString
	default:
		return Undefined
	}
}

// BaseEqual computes whether two data types denote the same base scalar
// regardless of VAR_/REF_/plain prefix.  It is the sole compatibility test
// for call arguments.
func BaseEqual(a, b DataType) bool {
	ab := BaseOf(a)
	return ab != Undefined && ab == BaseOf(b)
}

// VarVariantOf returns the VAR_ variant for a standard kind.  The boolean is
// false if the argument has no such variant.
func VarVariantOf(dt DataType) (DataType, bool) {
	switch BaseOf(dt) {
	case StandardInteger:
		return VarStandardInteger, true
	case StandardDouble:
		return VarStandardDouble, true
	case StandardChar:
		return VarStandardChar, true
	case StandardString:
		return VarStandardString, true
	default:
		return Undefined, false
	}
}

// RefVariantOf returns the REF_ variant for a standard kind.  The boolean is
// false if the argument has no such variant.
func RefVariantOf(dt DataType) (DataType, bool) {
	switch BaseOf(dt) {
	case StandardInteger:
		return RefStandardInteger, true
	case StandardDouble:
		return RefStandardDouble, true
	case StandardChar:
		return RefStandardChar, true
	case StandardString:
		return RefStandardString, true
	default:
		return Undefined, false
	}
}
