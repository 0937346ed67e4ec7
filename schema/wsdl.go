package schema

import "github.com/outofcoffee/wsdlc/ir"

// parseDefinitions handles wsdl:definitions, the WSDL 1.1 root element
// (§6.3's "wsdl:definitions/@name, @targetNamespace" row). It dispatches
// children in document order: types, message, portType, binding.
func (p *Parser) parseDefinitions() (*ir.Service, error) {
	name, _ := p.cur.Attr("name")
	p.svc = &ir.Service{Name: name}

	if tns, ok := p.cur.Attr("targetNamespace"); ok {
		p.pushNS(tns)
		defer p.popNS()
		p.svc.TargetNamespace = tns
	}

	for {
		ok, err := p.cur.NextStartIn()
		if err != nil {
			return nil, p.syntaxErr(err)
		}
		if !ok {
			break
		}
		var herr error
		switch p.cur.LocalName() {
		case "types":
			herr = p.parseTypes()
		case "message":
			herr = p.parseMessage()
		case "portType":
			herr = p.parsePortType()
		case "binding":
			herr = p.parseBinding()
		default:
			herr = p.cur.SkipElement()
		}
		if herr != nil {
			return nil, herr
		}
	}
	return p.svc, nil
}

// parseTypes handles wsdl:types, a container whose only meaningful
// children are embedded xsd:schema documents (§6.3).
func (p *Parser) parseTypes() error {
	for {
		ok, err := p.cur.NextStartIn()
		if err != nil {
			return p.syntaxErr(err)
		}
		if !ok {
			return nil
		}
		if p.cur.LocalName() == "schema" {
			if err := p.parseSchema(); err != nil {
				return err
			}
			continue
		}
		if err := p.cur.SkipElement(); err != nil {
			return p.syntaxErr(err)
		}
	}
}

// parseMessage handles wsdl:message: only the part named "parameters"
// is wired, to the RequestResponseElement its @element attribute
// names; every other part is ignored (§6.3, and §9's Open Question
// resolution carried unchanged into SPEC_FULL.md).
func (p *Parser) parseMessage() error {
	name, _ := p.cur.Attr("name")
	msg := &ir.Message{QName: ir.QName{Space: p.currentNS(), Local: name}}

	for {
		ok, err := p.cur.NextStartIn()
		if err != nil {
			return p.syntaxErr(err)
		}
		if !ok {
			break
		}
		if p.cur.LocalName() != "part" {
			if err := p.cur.SkipElement(); err != nil {
				return p.syntaxErr(err)
			}
			continue
		}
		partName, _ := p.cur.Attr("name")
		elementAttr, hasElement := p.cur.Attr("element")
		if partName == "parameters" && hasElement {
			q := p.resolveQNameAttr(elementAttr)
			if rre, ok := p.table.LookupRequestResponse(q); ok {
				msg.Parameter = rre
			} else {
				p.log.Warn("message part references unknown element", "message", name, "element", q.String())
			}
		}
		if err := p.cur.SkipElement(); err != nil {
			return p.syntaxErr(err)
		}
	}
	p.table.AddMessage(msg)
	return nil
}

// parsePortType handles wsdl:portType: one Operation per child
// operation element, its input/output wired to previously-declared
// messages by the message="tns:Foo" reference.
func (p *Parser) parsePortType() error {
	for {
		ok, err := p.cur.NextStartIn()
		if err != nil {
			return p.syntaxErr(err)
		}
		if !ok {
			return nil
		}
		if p.cur.LocalName() != "operation" {
			if err := p.cur.SkipElement(); err != nil {
				return p.syntaxErr(err)
			}
			continue
		}
		if err := p.parseOperation(); err != nil {
			return err
		}
	}
}

func (p *Parser) parseOperation() error {
	name, _ := p.cur.Attr("name")
	op := &ir.Operation{Name: name}

	for {
		ok, err := p.cur.NextStartIn()
		if err != nil {
			return p.syntaxErr(err)
		}
		if !ok {
			break
		}
		local := p.cur.LocalName()
		if local != "input" && local != "output" {
			if err := p.cur.SkipElement(); err != nil {
				return p.syntaxErr(err)
			}
			continue
		}
		msgAttr, hasMsg := p.cur.Attr("message")
		if hasMsg {
			q := p.resolveQNameAttr(msgAttr)
			msg, found := p.table.LookupMessage(q)
			if !found {
				p.log.Warn("operation references unknown message", "operation", name, "message", q.String())
			}
			if local == "input" {
				op.Input = msg
			} else {
				op.Output = msg
			}
		}
		if err := p.cur.SkipElement(); err != nil {
			return p.syntaxErr(err)
		}
	}
	p.table.AddOperation(op)
	p.svc.Operations = append(p.svc.Operations, op)
	return nil
}

// parseBinding handles wsdl:binding: it contributes only the
// soapAction captured from soap:operation/soap12:operation (§6.3),
// looking up the target Operation by name; a binding for an unknown
// operation name is silently skipped, matching the original parser's
// tolerance of partial/out-of-order documents.
func (p *Parser) parseBinding() error {
	for {
		ok, err := p.cur.NextStartIn()
		if err != nil {
			return p.syntaxErr(err)
		}
		if !ok {
			return nil
		}
		if p.cur.LocalName() != "operation" {
			if err := p.cur.SkipElement(); err != nil {
				return p.syntaxErr(err)
			}
			continue
		}
		if err := p.parseBindingOperation(); err != nil {
			return err
		}
	}
}

func (p *Parser) parseBindingOperation() error {
	name, _ := p.cur.Attr("name")
	op, found := p.table.LookupOperation(name)

	for {
		ok, err := p.cur.NextStartIn()
		if err != nil {
			return p.syntaxErr(err)
		}
		if !ok {
			return nil
		}
		space := p.cur.QName().Space
		if p.cur.LocalName() == "operation" && (space == soap11NS || space == soap12NS) {
			if action, ok := p.cur.Attr("soapAction"); ok && found {
				op.SOAPAction = action
			}
		}
		if err := p.cur.SkipElement(); err != nil {
			return p.syntaxErr(err)
		}
	}
}
