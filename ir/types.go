package ir

// Unbounded represents an unconstrained maxOccurs ("unbounded" in XSD).
const Unbounded = -1

// Kind discriminates the three states a Type record can be in. Using an
// explicit discriminator (rather than a nil check) keeps the resolver's
// upgrade pass a pure transformation: Unknown -> Simple|Complex.
type Kind int

const (
	// KindUnknown marks a placeholder allocated for a forward or
	// cross-document reference that has not yet been resolved to a
	// real declaration.
	KindUnknown Kind = iota
	KindSimple
	KindComplex
)

func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindComplex:
		return "complex"
	default:
		return "unknown"
	}
}

// Type is the abstract entity described in §3 of the specification: every
// Element, Attribute, extension base, and request/response wrapper target
// points at a *Type. Two resolved Types with the same QName are always the
// same object, because the symbol table is their sole owner.
type Type struct {
	QName   QName
	Kind    Kind
	Simple  *SimpleType // non-nil iff Kind == KindSimple
	Complex *ComplexType // non-nil iff Kind == KindComplex
}

// NewUnknown allocates a placeholder Type holding only its qname.
func NewUnknown(q QName) *Type {
	return &Type{QName: q, Kind: KindUnknown}
}

// NewSimple allocates a resolved simple Type.
func NewSimple(q QName, s *SimpleType) *Type {
	return &Type{QName: q, Kind: KindSimple, Simple: s}
}

// NewComplex allocates a resolved complex Type.
func NewComplex(q QName, c *ComplexType) *Type {
	return &Type{QName: q, Kind: KindComplex, Complex: c}
}

// Resolve upgrades t in place from KindUnknown to whatever real kind src
// carries, so that every existing holder of the t pointer observes the
// resolved type without needing to be revisited.
func (t *Type) Resolve(src *Type) {
	t.Kind = src.Kind
	t.Simple = src.Simple
	t.Complex = src.Complex
}

// Primitive enumerates the built-in XSD primitives the compiler
// understands. Anything else declared via a named simpleType restriction
// base that isn't itself a Primitive falls back to PrimCustom.
type Primitive int

const (
	PrimNone Primitive = iota
	PrimString
	PrimInt
	PrimLong
	PrimDecimal
	PrimBool
	PrimDate
	PrimTime
	PrimDateTime
	PrimDuration
	PrimAnyURI
	PrimAnyType
	PrimBase64Binary
	PrimHexBinary
	PrimCustom
)

// SimpleType describes a simple type, such as an XSD restriction of
// xs:string or a whitespace-delimited list.
type SimpleType struct {
	Primitive   Primitive
	Base        *Type // optional: the type being restricted, if any
	Restricted  bool
	Enumeration []string // ordered, unique by value
	MinLength   *int
	MaxLength   *int
	List        bool // if true, values are whitespace-separated Primitive items
}

// ComplexType describes a complex type: an ordered set of child elements,
// an unordered set of attributes, and an optional extension base.
type ComplexType struct {
	Elements            []*Element
	Attributes          []*Attribute
	ExtensionBase       *Type
	ExtensionIsList      bool
	IsSOAPEnvelopeFault bool
}

// Element describes an element of a given type. Either Ref (or RefQName,
// before the referent is known) is set, or Name is set -- never both.
type Element struct {
	Name       string
	QName      QName
	Type       *Type
	MinOccurs  int
	MaxOccurs  int // Unbounded for "unbounded"
	IsNested   bool
	RefQName   *QName // resolved qname of a pending ref=, cleared once Ref is set
	Ref        *Element
	IsIndirect bool
}

// ResolvedName returns the element's own name, or, once a ref has been
// resolved, the referent's name.
func (e *Element) ResolvedName() string {
	if e.Ref != nil {
		return e.Ref.Name
	}
	return e.Name
}

// ResolvedType returns the element's own type, or, once a ref has been
// resolved, the referent's type.
func (e *Element) ResolvedType() *Type {
	if e.Ref != nil {
		return e.Ref.Type
	}
	return e.Type
}

// Attribute describes an attribute of a given type. Either Ref (or
// RefQName) is set, or Name is set.
type Attribute struct {
	Name     string
	QName    QName
	Type     *Type
	Required bool
	IsList   bool
	RefQName *QName
	Ref      *Attribute
}

// Message describes the data communicated by an operation. Only the part
// named "parameters" is retained, as the wrapper for the document/literal
// body.
type Message struct {
	QName     QName
	Parameter *RequestResponseElement
}

// RequestResponseElement is the wrapper element representing the
// document/literal body of a SOAP message.
type RequestResponseElement struct {
	QName QName
	Type  *Type
}

// Operation describes one WSDL operation: its request and response
// messages, SOAP action, and optional fault type.
type Operation struct {
	Name       string
	SOAPAction string
	Input      *Message
	Output     *Message
	Fault      *ComplexType
}

// Service is the root of the IR: a named, namespaced collection of
// operations in document order, plus the full resolved symbol tables
// (§6.2) a downstream code generator needs to render every type
// reachable from those operations, not just the operations themselves.
type Service struct {
	Name            string
	TargetNamespace string
	Operations      []*Operation

	Types                   []*Type
	Elements                []*Element
	Attributes              []*Attribute
	RequestResponseElements []*RequestResponseElement
}
