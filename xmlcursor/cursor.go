// Package xmlcursor provides a forward-only token cursor over an XML
// document, the minimal contract the schema parser needs: the current
// start/end element, its qualified name, its attributes, the namespace
// prefixes in scope, and the ability to skip an entire subtree.
//
// A Cursor is not safe for concurrent use; each parsed document gets its
// own, matching the single-threaded, strictly sequential parse model
// described for the schema parser.
package xmlcursor

import (
	"encoding/xml"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
)

// Scope is the set of XML namespace prefix declarations visible at a
// point in the document. Scope values are immutable; Push returns a new
// Scope holding a copy of the old declarations plus the new ones, so a
// cursor frame
// that has been popped can never observe declarations pushed after it.
type Scope struct {
	decls []xml.Name // Name.Space holds the URI, Name.Local holds the prefix
}

// Push returns a new Scope with attr's xmlns declarations appended.
func (s Scope) Push(attr []xml.Attr) Scope {
	var added []xml.Name
	for _, a := range attr {
		switch {
		case a.Name.Space == "xmlns":
			added = append(added, xml.Name{Space: a.Value, Local: a.Name.Local})
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			added = append(added, xml.Name{Space: a.Value, Local: ""})
		}
	}
	if len(added) == 0 {
		return s
	}
	decls := make([]xml.Name, len(s.decls)+len(added))
	copy(decls, s.decls)
	copy(decls[len(s.decls):], added)
	return Scope{decls: decls}
}

// Resolve translates a possibly-prefixed QName string ("tns:Foo", "Foo")
// into an xml.Name with a canonical namespace URI. ok is false if a
// non-empty prefix could not be resolved.
func (s Scope) Resolve(qname string) (name xml.Name, ok bool) {
	prefix, local := splitQName(qname)
	for i := len(s.decls) - 1; i >= 0; i-- {
		if s.decls[i].Local == prefix {
			return xml.Name{Space: s.decls[i].Space, Local: local}, true
		}
	}
	if prefix == "" {
		return xml.Name{Local: local}, true
	}
	return xml.Name{Space: prefix, Local: local}, false
}

// Prefix returns the prefix in scope for the given namespace URI, the
// empty string if uri is the default namespace or unknown.
func (s Scope) Prefix(uri string) string {
	for i := len(s.decls) - 1; i >= 0; i-- {
		if s.decls[i].Space == uri {
			return s.decls[i].Local
		}
	}
	return ""
}

func splitQName(qname string) (prefix, local string) {
	for i := 0; i < len(qname); i++ {
		if qname[i] == ':' {
			return qname[:i], qname[i+1:]
		}
	}
	return "", qname
}

// Cursor is a forward-only pull parser over an XML document.
//
// scopes is the stack of namespace scopes for every element currently
// open on the decoder's path from the document root to c.start:
// scopes[len(scopes)-1] is always the scope of c.start. Every method
// that consumes a StartElement pushes a scope for it, and every method
// that consumes the matching EndElement pops it back off, so a prefix
// declared only inside a subtree cannot resolve once that subtree's end
// tag has been read (see Scope's doc comment).
type Cursor struct {
	dec    *xml.Decoder
	start  xml.StartElement
	scopes []Scope
	atEOF  bool
}

// New wraps r in a Cursor. Non-UTF-8 documents are transcoded based on
// their declared or sniffed charset.
func New(r io.Reader) *Cursor {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	return &Cursor{dec: dec, scopes: []Scope{{}}}
}

func (c *Cursor) currentScope() Scope {
	return c.scopes[len(c.scopes)-1]
}

func (c *Cursor) pushScope(attr []xml.Attr) {
	c.scopes = append(c.scopes, c.currentScope().Push(attr))
}

func (c *Cursor) popScope() {
	if len(c.scopes) > 1 {
		c.scopes = c.scopes[:len(c.scopes)-1]
	}
}

// NextStart advances the cursor to the next start element at any depth,
// returning io.EOF once the document is exhausted.
func (c *Cursor) NextStart() error {
	for {
		tok, err := c.dec.Token()
		if err != nil {
			if err == io.EOF {
				c.atEOF = true
			}
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			c.start = t.Copy()
			c.pushScope(c.start.Attr)
			return nil
		case xml.EndElement:
			c.popScope()
		}
	}
}

// QName returns the canonical qualified name of the current element.
func (c *Cursor) QName() xml.Name {
	return c.start.Name
}

// LocalName returns the local part of the current element's name.
func (c *Cursor) LocalName() string {
	return c.start.Name.Local
}

// Attrs returns the attributes of the current element.
func (c *Cursor) Attrs() []xml.Attr {
	return c.start.Attr
}

// Attr returns the value of the named attribute (unprefixed match), and
// whether it was present.
func (c *Cursor) Attr(local string) (string, bool) {
	for _, a := range c.start.Attr {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// Scope returns the namespace scope visible at the current element.
func (c *Cursor) Scope() Scope {
	return c.currentScope()
}

// CharData reads and concatenates character data until the current
// element's end tag, without descending into children. Used for simple
// text content such as <xs:enumeration> annotations.
func (c *Cursor) CharData() (string, error) {
	depth := 0
	var text []byte
	for {
		tok, err := c.dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			if depth == 0 {
				text = append(text, t...)
			}
		case xml.StartElement:
			c.pushScope(t.Attr)
			depth++
		case xml.EndElement:
			c.popScope()
			if depth == 0 {
				return string(text), nil
			}
			depth--
		}
	}
}

// SkipElement consumes and discards the remainder of the current
// element's subtree, leaving the cursor positioned after its end tag.
func (c *Cursor) SkipElement() error {
	depth := 0
	for {
		tok, err := c.dec.Token()
		if err != nil {
			return fmt.Errorf("xmlcursor: skip: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			c.pushScope(t.Attr)
			depth++
		case xml.EndElement:
			c.popScope()
			if depth == 0 {
				return nil
			}
			depth--
		}
	}
}

// NextStartIn advances to the next start element that is a direct child
// of the currently-open element and reports true, or reports false (with
// a nil error) once the enclosing end tag is reached. Unrecognized
// children are the caller's responsibility to skip with SkipElement.
func (c *Cursor) NextStartIn() (bool, error) {
	for {
		tok, err := c.dec.Token()
		if err != nil {
			return false, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			c.start = t.Copy()
			c.pushScope(c.start.Attr)
			return true, nil
		case xml.EndElement:
			c.popScope()
			return false, nil
		}
	}
}

// InputOffset returns the current byte offset in the underlying stream,
// useful for error messages.
func (c *Cursor) InputOffset() int64 {
	return c.dec.InputOffset()
}
