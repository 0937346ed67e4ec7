package schema

import (
	"strconv"
	"strings"

	"github.com/outofcoffee/wsdlc/ir"
)

// parseSchema handles xsd:schema (§4.3, §4.6): it pushes the declared
// targetNamespace for the duration of its children, arms the SOAP
// envelope fault flag when that namespace is the SOAP 1.2 envelope
// namespace (soapEnvNS), and dispatches every recognized top-level declaration.
func (p *Parser) parseSchema() error {
	if tns, ok := p.cur.Attr("targetNamespace"); ok {
		p.pushNS(tns)
		defer p.popNS()
		if tns == soapEnvNS {
			p.soapFaultArmed = true
		}
	}

	for {
		ok, err := p.cur.NextStartIn()
		if err != nil {
			return p.syntaxErr(err)
		}
		if !ok {
			return nil
		}
		var herr error
		switch p.cur.LocalName() {
		case "import":
			herr = p.parseImport()
		case "include":
			herr = p.parseInclude()
		case "simpleType":
			name, _ := p.cur.Attr("name")
			_, herr = p.parseSimpleType(ir.QName{Space: p.currentNS(), Local: name})
		case "complexType":
			name, _ := p.cur.Attr("name")
			_, herr = p.parseComplexType(ir.QName{Space: p.currentNS(), Local: name})
		case "element":
			herr = p.parseTopLevelElement()
		case "attribute":
			herr = p.parseTopLevelAttribute()
		case "attributeGroup":
			herr = p.parseTopLevelAttributeGroup()
		default:
			herr = p.cur.SkipElement()
		}
		if herr != nil {
			return herr
		}
	}
}

// parseImport handles xsd:import: an empty or missing schemaLocation is
// a declaration-only import (no document to fetch) and is a no-op, per
// §6.3. The import's own namespace, falling back to the enclosing
// schema's, is the hint the Loader uses to resolve a relative location.
func (p *Parser) parseImport() error {
	namespace, _ := p.cur.Attr("namespace")
	loc, hasLoc := p.cur.Attr("schemaLocation")
	if err := p.cur.SkipElement(); err != nil {
		return p.syntaxErr(err)
	}
	if !hasLoc || loc == "" {
		return nil
	}
	hint := namespace
	if hint == "" {
		hint = p.currentNS()
	}
	return p.loadAndMerge(loc, hint)
}

// parseInclude handles xsd:include, which (unlike import) has no
// namespace of its own: the included document shares the including
// schema's targetNamespace, used here only as the Loader's resolution
// hint.
func (p *Parser) parseInclude() error {
	loc, hasLoc := p.cur.Attr("schemaLocation")
	if err := p.cur.SkipElement(); err != nil {
		return p.syntaxErr(err)
	}
	if !hasLoc || loc == "" {
		return nil
	}
	return p.loadAndMerge(loc, p.currentNS())
}

// loadAndMerge fetches loc through the shared Loader and, unless it was
// already loaded in this compilation (the cycle-terminating no-op,
// §4.1/§4.4), recursively parses it with its own Table and merges that
// Table back into the caller's.
func (p *Parser) loadAndMerge(loc, hint string) error {
	res, err := p.ld.Load(loc, hint)
	if err != nil {
		return err
	}
	if len(res.Body) == 0 {
		return nil
	}
	child, err := parseNestedSchema(res.CanonicalURI, res.Body, p.ld, p.log, p.cfg)
	if err != nil {
		return err
	}
	p.table.Merge(child)
	return nil
}

// parseSimpleType handles xsd:simpleType under qname, which is the
// declared @name for a top-level type and the enclosing element's own
// qname when the simpleType is anonymous and nested inside an element.
func (p *Parser) parseSimpleType(qname ir.QName) (*ir.Type, error) {
	st := &ir.SimpleType{}
	ty := ir.NewSimple(qname, st)
	p.table.AddType(ty)

	for {
		ok, err := p.cur.NextStartIn()
		if err != nil {
			return nil, p.syntaxErr(err)
		}
		if !ok {
			return ty, nil
		}
		var herr error
		switch p.cur.LocalName() {
		case "restriction":
			herr = p.parseSimpleRestriction(st)
		case "list":
			herr = p.parseSimpleList(ty)
		case "union":
			herr = p.parseSimpleUnion(st)
		default:
			herr = p.cur.SkipElement()
		}
		if herr != nil {
			return nil, herr
		}
	}
}

func (p *Parser) parseSimpleRestriction(st *ir.SimpleType) error {
	if base, ok := p.cur.Attr("base"); ok {
		st.Base = p.resolveTypeRef(base)
		st.Primitive = ir.PrimCustom
		if st.Base.Kind == ir.KindSimple && ir.IsBuiltinNamespace(st.Base.QName.Space) {
			st.Primitive = st.Base.Simple.Primitive
		}
	}
	st.Restricted = true
	seen := make(map[string]bool)

	for {
		ok, err := p.cur.NextStartIn()
		if err != nil {
			return p.syntaxErr(err)
		}
		if !ok {
			return nil
		}
		switch p.cur.LocalName() {
		case "enumeration":
			v, _ := p.cur.Attr("value")
			if !seen[v] {
				seen[v] = true
				st.Enumeration = append(st.Enumeration, v)
			}
		case "maxLength":
			if v, ok := p.cur.Attr("value"); ok {
				if n, err := strconv.Atoi(v); err == nil {
					st.MaxLength = &n
				}
			}
		case "minLength":
			if v, ok := p.cur.Attr("value"); ok {
				if n, err := strconv.Atoi(v); err == nil {
					st.MinLength = &n
				}
			}
		}
		if err := p.cur.SkipElement(); err != nil {
			return p.syntaxErr(err)
		}
	}
}

// parseSimpleList elevates the enclosing simple type to a ComplexType
// whose extension base is the list item type and whose
// extension_is_list is true, mutating ty in place so every existing
// holder of this *Type observes the upgrade (same pointer-identity
// discipline as Type.Resolve).
func (p *Parser) parseSimpleList(ty *ir.Type) error {
	var item *ir.Type
	if itemAttr, ok := p.cur.Attr("itemType"); ok {
		item = p.resolveTypeRef(itemAttr)
	}
	ty.Resolve(ir.NewComplex(ty.QName, &ir.ComplexType{ExtensionBase: item, ExtensionIsList: true}))
	return p.cur.SkipElement()
}

// parseSimpleUnion keeps only the first member listed that names an
// XSD-builtin primitive (§9's Open Question resolution: unions of
// named types are not supported and drop all but that member).
func (p *Parser) parseSimpleUnion(st *ir.SimpleType) error {
	members, _ := p.cur.Attr("memberTypes")
	for _, tok := range strings.Fields(members) {
		q := p.resolveQNameAttr(tok)
		if q.Space != ir.XSDNamespace {
			continue
		}
		if bt, ok := p.table.Builtin(q.Local); ok {
			st.Base = bt
			break
		}
	}
	return p.cur.SkipElement()
}

// parseComplexType handles xsd:complexType under qname (top-level
// @name, or the enclosing element's qname when anonymous and nested).
func (p *Parser) parseComplexType(qname ir.QName) (*ir.Type, error) {
	ct := &ir.ComplexType{}
	ty := ir.NewComplex(qname, ct)
	p.table.AddType(ty)

	if p.soapFaultArmed && qname.Local == "Fault" {
		ct.IsSOAPEnvelopeFault = true
		p.soapFaultArmed = false
	}

	p.pushType(typeFrame{qname: qname, complex: ct})
	defer p.popType()

	for {
		ok, err := p.cur.NextStartIn()
		if err != nil {
			return nil, p.syntaxErr(err)
		}
		if !ok {
			return ty, nil
		}
		var herr error
		switch p.cur.LocalName() {
		case "complexContent", "simpleContent":
			herr = p.parseContentWrapper(ct)
		case "sequence", "all":
			herr = p.parseParticle(ct)
		case "choice":
			p.log.Warn("choice particle skipped", "type", qname.String())
			herr = p.cur.SkipElement()
		case "attribute":
			var a *ir.Attribute
			a, herr = p.parseAttribute(false)
			if herr == nil {
				ct.Attributes = append(ct.Attributes, a)
			}
		case "attributeGroup":
			herr = p.applyAttributeGroupRef(ct)
		default:
			herr = p.cur.SkipElement()
		}
		if herr != nil {
			return nil, herr
		}
	}
}

// parseContentWrapper handles xsd:complexContent / xsd:simpleContent,
// both of which just wrap a single restriction or extension child.
func (p *Parser) parseContentWrapper(ct *ir.ComplexType) error {
	for {
		ok, err := p.cur.NextStartIn()
		if err != nil {
			return p.syntaxErr(err)
		}
		if !ok {
			return nil
		}
		switch p.cur.LocalName() {
		case "restriction", "extension":
			if err := p.parseExtensionOrRestriction(ct); err != nil {
				return err
			}
		default:
			if err := p.cur.SkipElement(); err != nil {
				return p.syntaxErr(err)
			}
		}
	}
}

// parseExtensionOrRestriction handles the xsd:restriction/xsd:extension
// child of complexContent/simpleContent. The IR does not distinguish
// derivation by restriction from derivation by extension (§3's
// ComplexType carries a single extension-base field), matching
// spec.md's data model.
func (p *Parser) parseExtensionOrRestriction(ct *ir.ComplexType) error {
	if base, ok := p.cur.Attr("base"); ok {
		ct.ExtensionBase = p.resolveTypeRef(base)
	}

	for {
		ok, err := p.cur.NextStartIn()
		if err != nil {
			return p.syntaxErr(err)
		}
		if !ok {
			return nil
		}
		var herr error
		switch p.cur.LocalName() {
		case "sequence", "all":
			herr = p.parseParticle(ct)
		case "choice":
			p.log.Warn("choice particle skipped", "type", p.currentParticleOwner())
			herr = p.cur.SkipElement()
		case "attribute":
			var a *ir.Attribute
			a, herr = p.parseAttribute(false)
			if herr == nil {
				ct.Attributes = append(ct.Attributes, a)
			}
		case "attributeGroup":
			herr = p.applyAttributeGroupRef(ct)
		default:
			herr = p.cur.SkipElement()
		}
		if herr != nil {
			return herr
		}
	}
}

// parseParticle handles xsd:sequence and xsd:all (§9's Open Question
// resolution: both are materialized into ComplexType.Elements in
// document order; only xsd:choice is skipped). A nested sequence/all
// is flattened into the same element list.
func (p *Parser) parseParticle(ct *ir.ComplexType) error {
	for {
		ok, err := p.cur.NextStartIn()
		if err != nil {
			return p.syntaxErr(err)
		}
		if !ok {
			return nil
		}
		var herr error
		switch p.cur.LocalName() {
		case "element":
			var el *ir.Element
			el, herr = p.parseComplexElement()
			if herr == nil {
				ct.Elements = append(ct.Elements, el)
			}
		case "sequence", "all":
			herr = p.parseParticle(ct)
		case "choice":
			p.log.Warn("choice particle skipped", "type", p.currentParticleOwner())
			herr = p.cur.SkipElement()
		default:
			herr = p.cur.SkipElement()
		}
		if herr != nil {
			return herr
		}
	}
}

// applyAttributeGroupRef flattens a previously-declared named
// attributeGroup's attributes into ct at the point of reference (§4.3's
// supplemented attributeGroup production).
func (p *Parser) applyAttributeGroupRef(ct *ir.ComplexType) error {
	ref, hasRef := p.cur.Attr("ref")
	if !hasRef {
		return p.cur.SkipElement()
	}
	q := p.resolveQNameAttr(ref)
	if attrs, ok := p.attrGroups[q]; ok {
		ct.Attributes = append(ct.Attributes, attrs...)
	} else {
		p.log.Warn("attributeGroup ref to unknown group", "ref", q.String())
	}
	return p.cur.SkipElement()
}

// parseTopLevelAttributeGroup handles a named top-level
// xsd:attributeGroup declaration, recording its flattened attribute
// list for later xsd:attributeGroup/@ref references.
func (p *Parser) parseTopLevelAttributeGroup() error {
	name, _ := p.cur.Attr("name")
	q := ir.QName{Space: p.currentNS(), Local: name}
	var attrs []*ir.Attribute

	for {
		ok, err := p.cur.NextStartIn()
		if err != nil {
			return p.syntaxErr(err)
		}
		if !ok {
			break
		}
		switch p.cur.LocalName() {
		case "attribute":
			a, err := p.parseAttribute(false)
			if err != nil {
				return err
			}
			attrs = append(attrs, a)
		case "attributeGroup":
			if ref, ok := p.cur.Attr("ref"); ok {
				rq := p.resolveQNameAttr(ref)
				attrs = append(attrs, p.attrGroups[rq]...)
			}
			if err := p.cur.SkipElement(); err != nil {
				return p.syntaxErr(err)
			}
		default:
			if err := p.cur.SkipElement(); err != nil {
				return p.syntaxErr(err)
			}
		}
	}
	p.attrGroups[q] = attrs
	return nil
}

// parseTopLevelElement handles a global xsd:element declaration: it
// registers both the Element itself and the RequestResponseElement
// wrapper that wsdl:message/part[@element] references resolve to
// (§3, §6.3).
func (p *Parser) parseTopLevelElement() error {
	name, _ := p.cur.Attr("name")
	q := ir.QName{Space: p.currentNS(), Local: name}
	el := &ir.Element{Name: name, QName: q, MinOccurs: 1, MaxOccurs: 1}

	if typeAttr, ok := p.cur.Attr("type"); ok {
		el.Type = p.resolveTypeRef(typeAttr)
	}
	p.table.AddElement(el)
	rre := &ir.RequestResponseElement{QName: q}
	p.table.AddRequestResponse(rre)

	for {
		ok, err := p.cur.NextStartIn()
		if err != nil {
			return p.syntaxErr(err)
		}
		if !ok {
			break
		}
		var ty *ir.Type
		var herr error
		switch p.cur.LocalName() {
		case "complexType":
			ty, herr = p.parseComplexType(q)
		case "simpleType":
			ty, herr = p.parseSimpleType(q)
		default:
			herr = p.cur.SkipElement()
		}
		if herr != nil {
			return herr
		}
		if ty != nil {
			el.Type = ty
		}
	}
	if el.Type == nil {
		el.Type, _ = p.table.Builtin("anyType")
	}
	rre.Type = el.Type
	return nil
}

// parseComplexElement handles xsd:element nested inside a sequence or
// all particle: either a @ref to a global element, or a locally-named
// element with its own @type or anonymous inline type.
func (p *Parser) parseComplexElement() (*ir.Element, error) {
	el := &ir.Element{}
	min, hasMin := p.cur.Attr("minOccurs")
	max, hasMax := p.cur.Attr("maxOccurs")
	el.MinOccurs, el.MaxOccurs = parseOccurs(min, max, hasMin, hasMax)

	if refAttr, hasRef := p.cur.Attr("ref"); hasRef {
		q := p.resolveQNameAttr(refAttr)
		if target, ok := p.table.LookupElement(q); ok {
			el.Ref = target
		} else {
			rq := q
			el.RefQName = &rq
		}
		return el, p.cur.SkipElement()
	}

	name, _ := p.cur.Attr("name")
	q := ir.QName{Space: p.currentNS(), Local: name}
	el.Name = name
	el.QName = q

	if typeAttr, ok := p.cur.Attr("type"); ok {
		el.Type = p.resolveTypeRef(typeAttr)
		if frame := p.currentType(); frame != nil && frame.complex != nil && el.Type.QName == frame.qname {
			el.IsNested = true
		}
	}

	for {
		ok, err := p.cur.NextStartIn()
		if err != nil {
			return nil, p.syntaxErr(err)
		}
		if !ok {
			break
		}
		var ty *ir.Type
		var herr error
		switch p.cur.LocalName() {
		case "complexType":
			ty, herr = p.parseComplexType(q)
		case "simpleType":
			ty, herr = p.parseSimpleType(q)
		default:
			herr = p.cur.SkipElement()
		}
		if herr != nil {
			return nil, herr
		}
		if ty != nil {
			el.Type = ty
			if frame := p.currentType(); frame != nil && frame.complex != nil && ty.QName == frame.qname {
				el.IsNested = true
			}
		}
	}
	if el.Type == nil {
		el.Type, _ = p.table.Builtin("anyType")
	}
	return el, nil
}

// parseTopLevelAttribute handles a global xsd:attribute declaration.
func (p *Parser) parseTopLevelAttribute() error {
	_, err := p.parseAttribute(true)
	return err
}

// parseAttribute handles xsd:attribute, either top-level (registered
// into the shared Table) or nested inside a complexType/extension
// (returned to the caller to append).
func (p *Parser) parseAttribute(topLevel bool) (*ir.Attribute, error) {
	a := &ir.Attribute{}

	if refAttr, hasRef := p.cur.Attr("ref"); hasRef && !topLevel {
		q := p.resolveQNameAttr(refAttr)
		if target, ok := p.table.LookupAttribute(q); ok {
			a.Ref = target
		} else {
			rq := q
			a.RefQName = &rq
		}
	} else {
		name, _ := p.cur.Attr("name")
		a.Name = name
		a.QName = ir.QName{Space: p.currentNS(), Local: name}
		if typeAttr, ok := p.cur.Attr("type"); ok {
			a.Type = p.resolveTypeRef(typeAttr)
		}
	}

	if use, ok := p.cur.Attr("use"); ok {
		a.Required = use == "required"
	}
	if a.Type == nil && a.Ref == nil && a.RefQName == nil {
		a.Type, _ = p.table.Builtin("string")
	}
	if topLevel {
		p.table.AddAttribute(a)
	}
	return a, p.cur.SkipElement()
}
