// Package loader implements the Document Loader described in §4.1: it
// fetches WSDL/XSD source documents by URI (filesystem path or
// http(s):// URL), caching by canonical URI so that cyclic import/include
// graphs terminate instead of re-fetching (or infinitely recursing).
package loader

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Error is the LoadFailed error kind from §7: a fetch of uri failed for
// the given underlying cause.
type Error struct {
	URI   string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("loader: load %q: %v", e.URI, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Result is one successfully loaded document.
type Result struct {
	// CanonicalURI is the URI actually used to load the document, after
	// the filesystem-fallback and single-redirect-hop rules have been
	// applied.
	CanonicalURI string
	// Body is the raw byte stream. Empty and non-nil when the URI had
	// already been loaded in this session (an include-cycle no-op).
	Body []byte
}

// Loader fetches and caches documents by canonical URI. The zero value
// is not usable; use New.
type Loader struct {
	http          *http.Client
	localSchemaDir string

	mu     sync.Mutex
	loaded map[string][]byte // canonical URI -> body of its first successful load

	group singleflight.Group
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient overrides the HTTP client used for http(s):// URIs.
// Defaults to http.DefaultClient.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.http = c }
}

// WithLocalSchemaDir sets the directory used as a fallback when a
// relative schemaLocation cannot be resolved against its parent
// namespace (§4.1's filesystem-fallback rule).
func WithLocalSchemaDir(dir string) Option {
	return func(l *Loader) { l.localSchemaDir = dir }
}

// New creates a Loader with an empty already-loaded set.
func New(opts ...Option) *Loader {
	l := &Loader{
		http:   http.DefaultClient,
		loaded: make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches uri, which may be a filesystem path or an http(s):// URL.
// If namespaceHint is an http(s):// URL and uri is a relative
// schemaLocation, namespaceHint is tried first as a base (§4.1); if that
// fails and a local schema directory is configured, uri is resolved
// against that directory instead.
//
// A second Load of the same canonical URI returns immediately with an
// empty body and no error -- this is what breaks include cycles.
func (l *Loader) Load(uri, namespaceHint string) (Result, error) {
	canonical := l.canonicalize(uri, namespaceHint)

	l.mu.Lock()
	if body, ok := l.loaded[canonical]; ok {
		l.mu.Unlock()
		_ = body // already loaded; caller gets nothing to re-parse
		return Result{CanonicalURI: canonical}, nil
	}
	l.mu.Unlock()

	v, err, _ := l.group.Do(canonical, func() (interface{}, error) {
		body, err := l.fetch(canonical)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.loaded[canonical] = body
		l.mu.Unlock()
		return body, nil
	})
	if err != nil {
		if !isAbsoluteURI(uri) && isHTTPURL(canonical) && l.localSchemaDir != "" {
			return l.Load(uri, "")
		}
		return Result{}, err
	}
	return Result{CanonicalURI: canonical, Body: v.([]byte)}, nil
}

// canonicalize applies the filesystem-fallback rule: a relative
// schemaLocation is first tried against namespaceHint + "/" + uri when
// namespaceHint looks like an http(s):// URL, and otherwise against the
// configured local schema directory (Load applies that directory on
// failure of the first attempt).
func (l *Loader) canonicalize(uri, namespaceHint string) string {
	if isAbsoluteURI(uri) {
		return uri
	}
	if isHTTPURL(namespaceHint) {
		return strings.TrimSuffix(namespaceHint, "/") + "/" + uri
	}
	if l.localSchemaDir != "" {
		return filepath.Join(l.localSchemaDir, uri)
	}
	return uri
}

func (l *Loader) fetch(canonical string) ([]byte, error) {
	if isHTTPURL(canonical) {
		return l.fetchHTTP(canonical)
	}
	body, err := os.ReadFile(canonical)
	if err != nil {
		if l.localSchemaDir != "" && !filepath.IsAbs(canonical) {
			fallback := filepath.Join(l.localSchemaDir, filepath.Base(canonical))
			if body2, err2 := os.ReadFile(fallback); err2 == nil {
				return body2, nil
			}
		}
		return nil, &Error{URI: canonical, Cause: err}
	}
	return body, nil
}

// fetchHTTP performs the request, following at most one redirect hop, as
// specified in §4.1.
func (l *Loader) fetchHTTP(uri string) ([]byte, error) {
	cli := *l.http
	hops := 0
	cli.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		hops++
		if hops > 1 {
			return http.ErrUseLastResponse
		}
		return nil
	}
	resp, err := cli.Get(uri)
	if err != nil {
		return nil, &Error{URI: uri, Cause: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{URI: uri, Cause: fmt.Errorf("HTTP %s", resp.Status)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{URI: uri, Cause: err}
	}
	return body, nil
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

func isAbsoluteURI(s string) bool {
	if isHTTPURL(s) {
		return true
	}
	return filepath.IsAbs(s)
}
