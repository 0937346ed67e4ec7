package ir

// XSDNamespace is the canonical namespace URI for the XML Schema
// vocabulary. References into this namespace are resolved against
// Builtins rather than a parsed schema document.
const XSDNamespace = "http://www.w3.org/2001/XMLSchema"

var builtinPrimitive = map[string]Primitive{
	"string":       PrimString,
	"normalizedString": PrimString,
	"token":        PrimString,
	"int":          PrimInt,
	"integer":      PrimInt,
	"short":        PrimInt,
	"byte":         PrimInt,
	"unsignedInt":  PrimInt,
	"nonNegativeInteger": PrimInt,
	"long":         PrimLong,
	"decimal":      PrimDecimal,
	"float":        PrimDecimal,
	"double":       PrimDecimal,
	"boolean":      PrimBool,
	"date":         PrimDate,
	"time":         PrimTime,
	"dateTime":     PrimDateTime,
	"duration":     PrimDuration,
	"anyURI":       PrimAnyURI,
	"anyType":      PrimAnyType,
	"QName":        PrimString,
	"base64Binary": PrimBase64Binary,
	"hexBinary":    PrimHexBinary,
}

// Builtin returns the canonical *Type for an XSD built-in primitive
// local name, or nil if local is not a recognized built-in. The returned
// Type is freshly allocated per call; callers that need pointer identity
// across the whole symbol table should go through a symtab.Table instead.
func Builtin(local string) *Type {
	p, ok := builtinPrimitive[local]
	if !ok {
		return nil
	}
	return NewSimple(QName{Space: XSDNamespace, Local: local}, &SimpleType{Primitive: p})
}

// IsBuiltinNamespace reports whether space is the XSD namespace.
func IsBuiltinNamespace(space string) bool {
	return space == XSDNamespace
}
