// Package soap provides a SOAP HTTP client that consumes operations
// compiled by wsdlc: the SOAPAction it sends comes straight from an
// *ir.Operation rather than being typed in by the caller by hand. Any
// SOAP Fault in a response body is returned as a *FaultError; the
// Operation's Fault type is not consulted.
package soap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"

	"github.com/outofcoffee/wsdlc/ir"
)

// A RoundTripper executes a request passing the given req as the SOAP
// envelope body. The HTTP response is then de-serialized onto the resp
// object. Returns error in case an error occurs serializing req, making
// the HTTP request, or de-serializing the response.
type RoundTripper interface {
	RoundTrip(req, resp Message) error
}

// Message is an opaque type used by the RoundTripper to carry XML
// documents for SOAP.
type Message interface{}

// Header is an opaque type used as the SOAP Header element in requests.
type Header interface{}

// AuthHeader is a Header to be encoded as the SOAP Header element in
// requests, to convey credentials for authentication.
type AuthHeader struct {
	Namespace string `xml:"xmlns:ns,attr"`
	Username  string `xml:"ns:username"`
	Password  string `xml:"ns:password"`
}

// Client is a SOAP client bound to one compiled Operation.
type Client struct {
	URL       string // URL of the server
	Operation *ir.Operation
	Namespace string              // SOAP Namespace
	Envelope  string              // Optional SOAP Envelope namespace URI
	Header    Header              // Optional SOAP Header
	Config    *http.Client        // Optional HTTP client
	Pre       func(*http.Request) // Optional hook to modify outbound requests
	Debug     bool                // Optional: print the request and response messages
}

// NewClient builds a Client that will send op's SOAPAction on every
// request.
func NewClient(url string, op *ir.Operation, namespace string) *Client {
	return &Client{URL: url, Operation: op, Namespace: namespace}
}

// FaultError is returned by RoundTrip when the server responded with a
// SOAP Fault instead of the expected message body.
type FaultError struct {
	Code   string
	String string
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("soap: fault %s: %s", e.Code, e.String)
}

// RoundTrip implements the RoundTripper interface.
func (c *Client) RoundTrip(in, out Message) error {
	action := ""
	if c.Operation != nil {
		action = c.Operation.SOAPAction
	}

	req := &Envelope{
		EnvelopeAttr: c.Envelope,
		NSAttr:       c.Namespace,
		Header:       EnvelopeHeader{SOAPAction: action},
		Body:         Body{Message: in},
	}
	if req.EnvelopeAttr == "" {
		req.EnvelopeAttr = "http://schemas.xmlsoap.org/soap/envelope/"
	}

	var b bytes.Buffer
	if err := xml.NewEncoder(&b).Encode(req); err != nil {
		return err
	}

	cli := c.Config
	if cli == nil {
		cli = http.DefaultClient
	}

	r, err := http.NewRequest("POST", c.URL, &b)
	if err != nil {
		return err
	}
	r.Header.Set("Content-Type", "text/xml")
	if action != "" {
		r.Header.Set("SOAPAction", action)
	}
	if c.Pre != nil {
		c.Pre(r)
	}

	if c.Debug {
		if dump, err := httputil.DumpRequest(r, true); err == nil {
			fmt.Println("Request start ----")
			fmt.Println(string(dump))
			fmt.Println("Request end ------")
		}
	}

	resp, err := cli.Do(r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if c.Debug {
		if dump, err := httputil.DumpResponse(resp, true); err == nil {
			fmt.Println("Response start ----")
			fmt.Println(string(dump))
			fmt.Println("Response end ------")
		}
	}

	// A fault still arrives with a 200 or 500 depending on the server;
	// either way the envelope itself, not the status code, says whether
	// it carries one, so both are handed to decodeEnvelope.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusInternalServerError {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
		return fmt.Errorf("soap: %q: %q", resp.Status, body)
	}

	return decodeEnvelope(resp.Body, out)
}

// decodeEnvelope reads the response's SOAP envelope directly. Unlike
// fiorix-wsdl2go's original regexp-based envelope extraction, it
// decodes the document once with encoding/xml and captures the body's
// raw inner XML via the ",innerxml" tag, re-unmarshaling it into out
// only when the body isn't a Fault. The body is sanitized with
// RemoveNonUTF8Bytes first, since some servers emit invalid UTF-8 that
// would otherwise abort the decoder partway through the envelope.
func decodeEnvelope(r io.Reader, out Message) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("soap: reading response body: %w", err)
	}
	body = RemoveNonUTF8Bytes(body)

	var env responseEnvelope
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(&env); err != nil {
		return fmt.Errorf("soap: decoding response envelope: %w", err)
	}
	if env.Body.Fault != nil {
		return &FaultError{Code: env.Body.Fault.Code, String: env.Body.Fault.String}
	}
	if len(env.Body.Content) == 0 {
		return nil
	}
	return xml.Unmarshal(env.Body.Content, out)
}

// responseEnvelope and responseBody match a SOAP envelope's shape by
// local name only, so they decode correctly regardless of which
// namespace prefix the server used (s:, SOAP-ENV:, soapenv:, ...).
type responseEnvelope struct {
	XMLName xml.Name     `xml:"Envelope"`
	Body    responseBody `xml:"Body"`
}

type responseBody struct {
	Fault   *responseFault `xml:"Fault"`
	Content []byte         `xml:",innerxml"`
}

type responseFault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}

// Envelope is a SOAP request envelope.
type Envelope struct {
	XMLName      xml.Name `xml:"SOAP-ENV:Envelope"`
	EnvelopeAttr string   `xml:"xmlns:SOAP-ENV,attr"`
	NSAttr       string   `xml:"xmlns:ns,attr,omitempty"`
	Header       EnvelopeHeader
	Body         Body
}

// Body is the body of a SOAP request envelope.
type Body struct {
	XMLName xml.Name `xml:"SOAP-ENV:Body"`
	Message Message
}

// EnvelopeHeader is the header of a SOAP request envelope.
type EnvelopeHeader struct {
	XMLName    xml.Name `xml:"SOAP-ENV:Header"`
	SOAPAction string   `xml:"http://www.w3.org/2005/08/addressing Action"`
}
