// Package resolve implements the Resolver (§4.5): the end-of-document
// pass that runs once after the outermost parse completes, replacing
// placeholder (Unknown) type and element-ref references with real
// ones and marking cyclic element edges as indirect.
//
// Grounded line-for-line on QWSDLParser::endDocument() in
// original_source: element ref fix-up, type upgrade with the
// Unknown-ignore-set convergence loop, request/response upgrade, fault
// wiring, and cycle marking via the isPointer/is_indirect flag pair,
// in that exact order.
package resolve

import (
	"fmt"
	"strings"

	"github.com/outofcoffee/wsdlc/config"
	"github.com/outofcoffee/wsdlc/diag"
	"github.com/outofcoffee/wsdlc/ir"
	"github.com/outofcoffee/wsdlc/symtab"
)

// UnresolvedReferenceError is the UnresolvedReference error kind from
// §7: a live entity still points at an Unknown type once the Resolver
// has finished.
type UnresolvedReferenceError struct {
	Kind  string // "element type", "attribute type", "extension base", "request/response type"
	QName ir.QName
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("resolve: unresolved %s %s", e.Kind, e.QName.String())
}

// Errors aggregates every UnresolvedReferenceError the final check
// found, collected and reported together per §7.
type Errors []error

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, err := range e {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("resolve: %d unresolved reference(s): %s", len(e), strings.Join(parts, "; "))
}

// Resolve runs the six sub-passes over table in place. cfg.Strict
// governs sub-pass 6: in strict mode any surviving Unknown reference
// is returned as Errors; in lax mode it is only logged via log.Warn.
func Resolve(table *symtab.Table, cfg config.Config, log *diag.Logger) error {
	fixupElementRefs(table, log)
	removed := upgradeComplexTypes(table)
	upgradeRequestResponseElements(table)
	wireSOAPFaults(table)
	detectCycles(table)
	deleteIgnored(table, removed, log)

	return finalCheck(table, cfg, log)
}

// fixupElementRefs is sub-pass 1: every Element with a pending ref
// qname is looked up by qname (already namespace-resolved at parse
// time, §4.5 point 1) and attached; an unresolved ref is left pending
// and warned about.
func fixupElementRefs(table *symtab.Table, log *diag.Logger) {
	for _, el := range allElements(table) {
		if el.RefQName == nil || el.Ref != nil {
			continue
		}
		if target, ok := table.LookupElement(*el.RefQName); ok {
			el.Ref = target
			el.RefQName = nil
			continue
		}
		log.Warn("unresolved element ref", "ref", el.RefQName.String())
	}
}

// allElements walks every Element reachable from the table: top-level
// declarations plus every ComplexType's child elements.
func allElements(table *symtab.Table) []*ir.Element {
	var out []*ir.Element
	out = append(out, table.Elements...)
	for _, ty := range table.Types {
		if ty.Kind == ir.KindComplex && ty.Complex != nil {
			out = append(out, ty.Complex.Elements...)
		}
	}
	return out
}

func allAttributes(table *symtab.Table) []*ir.Attribute {
	var out []*ir.Attribute
	out = append(out, table.Attributes...)
	for _, ty := range table.Types {
		if ty.Kind == ir.KindComplex && ty.Complex != nil {
			out = append(out, ty.Complex.Attributes...)
		}
	}
	return out
}

// resolveElement returns the element's actual declaration: itself, or
// the referent once a ref has been fixed up (§4.5 consults hasRef/
// getRef throughout; ir.Element.ResolvedType mirrors that).
func resolveElement(el *ir.Element) *ir.Element {
	if el.Ref != nil {
		return el.Ref
	}
	return el
}

func resolveAttribute(a *ir.Attribute) *ir.Attribute {
	if a.Ref != nil {
		return a.Ref
	}
	return a
}

// upgradeComplexTypes is sub-pass 2: for every ComplexType's extension
// base and for each child element's and attribute's type, an Unknown
// target is re-queried by qname with a growing ignore set of
// candidates that also turned out Unknown -- this converges because
// each iteration removes one candidate from the search space. It
// returns the set of placeholder Types that were exhausted this way,
// to be deleted from the table afterward (§4.5 point 2).
func upgradeComplexTypes(table *symtab.Table) map[*ir.Type]bool {
	ignore := make(map[*ir.Type]bool)

	for _, ty := range table.Types {
		if ty.Kind != ir.KindComplex || ty.Complex == nil {
			continue
		}
		ct := ty.Complex

		if ct.ExtensionBase != nil && ct.ExtensionBase.Kind == ir.KindUnknown {
			ct.ExtensionBase = upgradeOne(table, ct.ExtensionBase.QName, ignore)
		}

		for _, tmp := range ct.Elements {
			el := resolveElement(tmp)
			if el.Type == nil || el.Type.Kind != ir.KindUnknown {
				continue
			}
			el.Type = upgradeOne(table, el.Type.QName, ignore)
		}

		for _, tmp := range ct.Attributes {
			a := resolveAttribute(tmp)
			if a.Type == nil || a.Type.Kind != ir.KindUnknown {
				continue
			}
			a.Type = upgradeOne(table, a.Type.QName, ignore)
		}
	}

	return ignore
}

// upgradeOne implements the convergence loop described in §4.5 point
// 2: keep re-querying, excluding every Unknown candidate already
// tried, until a non-Unknown match is found or the table is
// exhausted.
func upgradeOne(table *symtab.Table, q ir.QName, ignore map[*ir.Type]bool) *ir.Type {
	found, ok := table.LookupType(q, ignore)
	for ok && found.Kind == ir.KindUnknown {
		ignore[found] = true
		found, ok = table.LookupType(q, ignore)
	}
	if !ok {
		return ir.NewUnknown(q)
	}
	return found
}

// upgradeRequestResponseElements is sub-pass 3: the same upgrade
// applied to each RequestResponseElement's target type, its extension
// base, and that complex type's own elements/attributes (the wrapper
// type is reached only through the RequestResponseElement, not
// through table.Types, when it was never separately registered).
func upgradeRequestResponseElements(table *symtab.Table) {
	for _, rre := range table.RequestResponse {
		if rre.Type == nil {
			continue
		}
		if rre.Type.Kind == ir.KindUnknown {
			if found, ok := table.LookupType(rre.Type.QName, nil); ok {
				rre.Type = found
			}
		}
		if rre.Type.Kind != ir.KindComplex || rre.Type.Complex == nil {
			continue
		}
		ct := rre.Type.Complex

		if ct.ExtensionBase != nil && ct.ExtensionBase.Kind == ir.KindUnknown {
			if found, ok := table.LookupType(ct.ExtensionBase.QName, nil); ok {
				ct.ExtensionBase = found
			}
		}
		for _, tmp := range ct.Elements {
			el := resolveElement(tmp)
			if el.Type != nil && el.Type.Kind == ir.KindUnknown {
				if found, ok := table.LookupType(el.Type.QName, nil); ok {
					el.Type = found
				}
			}
		}
		for _, tmp := range ct.Attributes {
			a := resolveAttribute(tmp)
			if a.Type != nil && a.Type.Kind == ir.KindUnknown {
				if found, ok := table.LookupType(a.Type.QName, nil); ok {
					a.Type = found
				}
			}
		}
	}
}

// wireSOAPFaults is sub-pass 4: every ComplexType flagged as the SOAP
// envelope fault type is set as the default fault type on every
// Operation.
func wireSOAPFaults(table *symtab.Table) {
	var fault *ir.ComplexType
	for _, ty := range table.Types {
		if ty.Kind == ir.KindComplex && ty.Complex != nil && ty.Complex.IsSOAPEnvelopeFault {
			fault = ty.Complex
			break
		}
	}
	if fault == nil {
		return
	}
	for _, op := range table.Operations {
		op.Fault = fault
	}
}

// detectCycles is sub-pass 5: for every ComplexType A and each child
// element E of A whose type is a ComplexType B, if B contains a child
// element whose type qname equals A's qname, and that element has
// maxOccurs == 1 and is not is_nested, mark both elements indirect.
func detectCycles(table *symtab.Table) {
	for _, tyA := range table.Types {
		if tyA.Kind != ir.KindComplex || tyA.Complex == nil {
			continue
		}
		a := tyA.Complex
		for _, tmpE := range a.Elements {
			e := resolveElement(tmpE)
			if e.Type == nil || e.Type.Kind != ir.KindComplex || e.Type.Complex == nil {
				continue
			}
			b := e.Type.Complex
			for _, tmpBack := range b.Elements {
				back := resolveElement(tmpBack)
				if back.Type == nil || back.Type.QName != tyA.QName {
					continue
				}
				if back.MaxOccurs == 1 && !back.IsNested {
					back.IsIndirect = true
					e.IsIndirect = true
				}
			}
		}
	}
}

// deleteIgnored removes from table.Types every placeholder that sub-
// pass 2's convergence loop collected into the ignore set: stand-ins
// that never got defined (§4.5 point 2). Each deleted qname is logged
// via log.Warn.
func deleteIgnored(table *symtab.Table, ignore map[*ir.Type]bool, log *diag.Logger) {
	if len(ignore) == 0 {
		return
	}
	kept := table.Types[:0]
	for _, ty := range table.Types {
		if ignore[ty] {
			log.Warn("deleted never-defined placeholder type", "qname", ty.QName.String())
			continue
		}
		kept = append(kept, ty)
	}
	table.Types = kept
}

// finalCheck is sub-pass 6: any remaining Unknown type referenced by a
// live entity is an error in strict mode, a warning otherwise.
func finalCheck(table *symtab.Table, cfg config.Config, log *diag.Logger) error {
	var errs Errors

	report := func(kind string, q ir.QName) {
		if cfg.Strict {
			errs = append(errs, &UnresolvedReferenceError{Kind: kind, QName: q})
		} else {
			log.Warn("unresolved reference left in place", "kind", kind, "qname", q.String())
		}
	}

	for _, el := range allElements(table) {
		if t := el.ResolvedType(); t != nil && t.Kind == ir.KindUnknown {
			report("element type", t.QName)
		}
	}
	for _, a := range allAttributes(table) {
		if a.Type != nil && a.Type.Kind == ir.KindUnknown {
			report("attribute type", a.Type.QName)
		}
	}
	for _, ty := range table.Types {
		if ty.Kind == ir.KindComplex && ty.Complex != nil && ty.Complex.ExtensionBase != nil && ty.Complex.ExtensionBase.Kind == ir.KindUnknown {
			report("extension base", ty.Complex.ExtensionBase.QName)
		}
	}
	for _, rre := range table.RequestResponse {
		if rre.Type != nil && rre.Type.Kind == ir.KindUnknown {
			report("request/response type", rre.Type.QName)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
