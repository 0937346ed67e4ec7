// Package symtab implements the per-document-set symbol tables described
// in §3 ("Ownership") and §4.4 ("Symbol Table Merge"): the tables
// exclusively own every entity, and everything else -- element-to-type,
// extension bases, message parameters, operation messages, element refs
// -- is a non-owning lookup by qname into these tables.
package symtab

import "github.com/outofcoffee/wsdlc/ir"

// Table holds the symbols of one parse. A nested parse spawned for an
// import/include fills a Table of its own, which is then folded into
// its parent's with Merge.
//
// Types may legitimately contain more than one entry for the same
// QName: a forward reference allocates an Unknown placeholder that is
// only reconciled with the real declaration during the resolver's Type
// upgrade pass (§4.5). LookupType takes the ignore set that the
// resolver's convergence loop grows on each retry.
type Table struct {
	Types           []*ir.Type
	Elements        []*ir.Element // top-level (global) elements only; ref= targets live here
	Attributes      []*ir.Attribute
	Messages        []*ir.Message
	Operations      []*ir.Operation
	RequestResponse []*ir.RequestResponseElement
}

// New returns an empty Table.
func New() *Table {
	return &Table{}
}

// AddType registers t. Duplicate qnames are tolerated; see the package
// doc comment.
func (t *Table) AddType(ty *ir.Type) {
	t.Types = append(t.Types, ty)
}

// Builtin returns the canonical *ir.Type for the XSD builtin primitive
// named local, registering and reusing a single instance per table so
// that every reference to, say, xsd:string anywhere in the document
// set shares one object (§3: "two resolved types with identical qname
// are the same object") -- a guarantee ir.Builtin's own doc comment
// defers to its caller for. ok is false for an unrecognized name.
func (t *Table) Builtin(local string) (*ir.Type, bool) {
	q := ir.QName{Space: ir.XSDNamespace, Local: local}
	if found, ok := t.LookupType(q, nil); ok {
		return found, true
	}
	bt := ir.Builtin(local)
	if bt == nil {
		return nil, false
	}
	t.AddType(bt)
	return bt, true
}

// LookupType searches for a non-ignored Type with the given qname,
// preferring a resolved (non-Unknown) match over an Unknown placeholder.
// ok is false if no non-ignored entry exists at all.
func (t *Table) LookupType(q ir.QName, ignore map[*ir.Type]bool) (*ir.Type, bool) {
	var fallback *ir.Type
	for _, ty := range t.Types {
		if ty.QName != q || ignore[ty] {
			continue
		}
		if ty.Kind != ir.KindUnknown {
			return ty, true
		}
		if fallback == nil {
			fallback = ty
		}
	}
	if fallback != nil {
		return fallback, true
	}
	return nil, false
}

// AddElement registers a top-level element.
func (t *Table) AddElement(e *ir.Element) {
	t.Elements = append(t.Elements, e)
}

// LookupElement finds the first top-level element with the given qname.
func (t *Table) LookupElement(q ir.QName) (*ir.Element, bool) {
	for _, e := range t.Elements {
		if e.QName == q {
			return e, true
		}
	}
	return nil, false
}

// AddAttribute registers a top-level attribute.
func (t *Table) AddAttribute(a *ir.Attribute) {
	t.Attributes = append(t.Attributes, a)
}

// LookupAttribute finds the first top-level attribute with the given
// qname.
func (t *Table) LookupAttribute(q ir.QName) (*ir.Attribute, bool) {
	for _, a := range t.Attributes {
		if a.QName == q {
			return a, true
		}
	}
	return nil, false
}

// AddMessage registers a message.
func (t *Table) AddMessage(m *ir.Message) {
	t.Messages = append(t.Messages, m)
}

// LookupMessage finds the first message with the given qname.
func (t *Table) LookupMessage(q ir.QName) (*ir.Message, bool) {
	for _, m := range t.Messages {
		if m.QName == q {
			return m, true
		}
	}
	return nil, false
}

// AddOperation registers an operation. Operations are looked up by name
// only (portType and binding operations share the unqualified name
// space within a single service).
func (t *Table) AddOperation(op *ir.Operation) {
	t.Operations = append(t.Operations, op)
}

// LookupOperation finds the first operation with the given name.
func (t *Table) LookupOperation(name string) (*ir.Operation, bool) {
	for _, op := range t.Operations {
		if op.Name == name {
			return op, true
		}
	}
	return nil, false
}

// AddRequestResponse registers a request/response wrapper element.
func (t *Table) AddRequestResponse(r *ir.RequestResponseElement) {
	t.RequestResponse = append(t.RequestResponse, r)
}

// LookupRequestResponse finds the first request/response wrapper with
// the given qname.
func (t *Table) LookupRequestResponse(q ir.QName) (*ir.RequestResponseElement, bool) {
	for _, r := range t.RequestResponse {
		if r.QName == q {
			return r, true
		}
	}
	return nil, false
}

// Merge folds a nested parser's tables into t, per §4.4:
//
//  1. for each type in child: if t has no type under that qname yet, add
//     it; if t already has a resolved type under that qname, prefer the
//     existing one and drop the child's; otherwise (t only has
//     placeholders under that qname) add the child's entry too, leaving
//     the resolver's ignore-set convergence to sort out duplicates.
//  2. elements, attributes, messages, operations, and request/response
//     elements are concatenated; duplicates are tolerated, resolution
//     uses first-found by qname.
func (t *Table) Merge(child *Table) {
	for _, ct := range child.Types {
		if existing, ok := t.LookupType(ct.QName, nil); ok && existing.Kind != ir.KindUnknown {
			continue
		}
		t.AddType(ct)
	}
	t.Elements = append(t.Elements, child.Elements...)
	t.Attributes = append(t.Attributes, child.Attributes...)
	t.Messages = append(t.Messages, child.Messages...)
	t.Operations = append(t.Operations, child.Operations...)
	t.RequestResponse = append(t.RequestResponse, child.RequestResponse...)
}
