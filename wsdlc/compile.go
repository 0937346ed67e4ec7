// Package wsdlc is the top-level entry point of the compiler front end
// (§6): Compile fetches a root WSDL document, parses it and its
// transitive imports/includes, runs the Resolver, and returns the
// assembled Service IR.
package wsdlc

import (
	"net/http"

	"github.com/outofcoffee/wsdlc/config"
	"github.com/outofcoffee/wsdlc/diag"
	"github.com/outofcoffee/wsdlc/ir"
	"github.com/outofcoffee/wsdlc/loader"
	"github.com/outofcoffee/wsdlc/resolve"
	"github.com/outofcoffee/wsdlc/schema"
	"github.com/outofcoffee/wsdlc/symtab"
)

// The four error kinds from §7, aliased here so callers only ever need
// to import wsdlc to use errors.As against any of them.
type (
	// LoadError is returned when fetching a document (root or
	// imported/included) fails.
	LoadError = loader.Error
	// XMLSyntaxError is returned when a document is not well-formed XML.
	XMLSyntaxError = schema.SyntaxError
	// InvalidSchemaError is returned when a document is well-formed XML
	// but violates a WSDL/XSD structural rule the parser enforces.
	InvalidSchemaError = schema.InvalidSchemaError
	// UnresolvedReferenceError describes one reference that was still
	// Unknown after the Resolver's final check, in strict mode.
	UnresolvedReferenceError = resolve.UnresolvedReferenceError
	// ResolveErrors aggregates every UnresolvedReferenceError the final
	// check found (§7's "collected and reported together").
	ResolveErrors = resolve.Errors
)

// options collects the functional options below.
type options struct {
	cfg        config.Config
	loaderOpts []loader.Option
}

// Option configures a Compile invocation.
type Option func(*options)

// WithConfig overrides the default configuration (strict mode on, no
// local schema directory, no initial namespace).
func WithConfig(cfg config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithHTTPClient overrides the HTTP client the Loader uses for
// http(s):// document fetches.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.loaderOpts = append(o.loaderOpts, loader.WithHTTPClient(c)) }
}

// WithLocalSchemaDir sets the Loader's filesystem-fallback directory.
func WithLocalSchemaDir(dir string) Option {
	return func(o *options) {
		o.cfg.LocalSchemaDir = dir
		o.loaderOpts = append(o.loaderOpts, loader.WithLocalSchemaDir(dir))
	}
}

// Compile fetches uri (a WSDL document, filesystem path or http(s)://
// URL), parses it and every document it transitively imports or
// includes, resolves every forward reference, and returns the
// resulting Service IR.
func Compile(uri string, opts ...Option) (*ir.Service, error) {
	o := &options{cfg: config.Default()}
	for _, opt := range opts {
		opt(o)
	}

	ld := loader.New(append(o.loaderOpts, loader.WithLocalSchemaDir(o.cfg.LocalSchemaDir))...)
	log := diag.New("wsdlc")
	table := symtab.New()

	res, err := ld.Load(uri, o.cfg.InitialNamespace)
	if err != nil {
		return nil, err
	}
	if len(res.Body) == 0 {
		return nil, &InvalidSchemaError{URI: uri, Detail: "root document produced no content"}
	}

	svc, err := schema.Parse(res.CanonicalURI, res.Body, table, ld, log, o.cfg)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, &InvalidSchemaError{URI: uri, Detail: "root document must be wsdl:definitions, not a bare xsd:schema"}
	}

	if err := resolve.Resolve(table, o.cfg, log); err != nil {
		return nil, err
	}

	svc.Types = table.Types
	svc.Elements = table.Elements
	svc.Attributes = table.Attributes
	svc.RequestResponseElements = table.RequestResponse
	return svc, nil
}
