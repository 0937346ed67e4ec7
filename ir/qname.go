// Package ir defines the service intermediate representation produced by
// the wsdlc front end: a fully resolved graph of types, elements,
// attributes, messages, operations, and request/response wrappers.
package ir

import "fmt"

// QName is a namespace-qualified name. Two entities match iff their
// Space and Local agree; any source prefix is cosmetic and is not part
// of the QName.
type QName struct {
	Space string
	Local string
}

// String renders the QName as "{space}local", or just local when Space
// is empty.
func (q QName) String() string {
	if q.Space == "" {
		return q.Local
	}
	return fmt.Sprintf("{%s}%s", q.Space, q.Local)
}

// IsZero reports whether q is the zero QName.
func (q QName) IsZero() bool {
	return q.Space == "" && q.Local == ""
}
