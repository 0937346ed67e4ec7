package schema

import "fmt"

// SyntaxError is the XMLSyntax error kind from §7: the underlying XML
// tokenizer rejected the document at the given byte offset.
type SyntaxError struct {
	URI    string
	Offset int64
	Cause  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("schema: %s: xml syntax error at offset %d: %v", e.URI, e.Offset, e.Cause)
}

func (e *SyntaxError) Unwrap() error { return e.Cause }

// InvalidSchemaError is the InvalidSchema error kind from §7: the
// document was well-formed XML but violated a WSDL/XSD structural rule
// the parser enforces (wrong root element, missing required attribute).
type InvalidSchemaError struct {
	URI    string
	Detail string
}

func (e *InvalidSchemaError) Error() string {
	return fmt.Sprintf("schema: %s: invalid schema: %s", e.URI, e.Detail)
}
