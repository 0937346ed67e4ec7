package soap

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outofcoffee/wsdlc/ir"
)

type msgT struct {
	A, B string
}

func TestRoundTripSendsOperationSOAPAction(t *testing.T) {
	var gotAction string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAction = r.Header.Get("SOAPAction")
		fmt.Fprint(w, `<Envelope><Body><msgT><A>hi</A><B>there</B></msgT></Body></Envelope>`)
	}))
	defer srv.Close()

	op := &ir.Operation{Name: "Echo", SOAPAction: "urn:echo"}
	c := NewClient(srv.URL, op, "urn:test")

	var out msgT
	err := c.RoundTrip(&msgT{A: "hi", B: "there"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "urn:echo", gotAction)
	assert.Equal(t, msgT{A: "hi", B: "there"}, out)
}

func TestRoundTripReportsFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
			<soapenv:Body><soapenv:Fault><faultcode>Server</faultcode><faultstring>boom</faultstring></soapenv:Fault></soapenv:Body>
		</soapenv:Envelope>`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &ir.Operation{Name: "Echo"}, "urn:test")
	var out msgT
	err := c.RoundTrip(&msgT{A: "x"}, &out)
	require.Error(t, err)

	var faultErr *FaultError
	require.ErrorAs(t, err, &faultErr)
	assert.Equal(t, "Server", faultErr.Code)
	assert.Equal(t, "boom", faultErr.String)
}

func TestRoundTripTransportError(t *testing.T) {
	c := NewClient("", &ir.Operation{Name: "Echo"}, "urn:test")
	err := c.RoundTrip(&msgT{}, &msgT{})
	assert.Error(t, err)
}

func TestDecodeEnvelopeNamespaceAgnostic(t *testing.T) {
	body := `<s:Envelope xmlns:s="http://www.w3.org/2003/05/soap-envelope"><s:Body><msgT><A>p</A><B>q</B></msgT></s:Body></s:Envelope>`
	var out msgT
	err := decodeEnvelope(strings.NewReader(body), &out)
	require.NoError(t, err)
	assert.Equal(t, msgT{A: "p", B: "q"}, out)
}

func TestDecodeEnvelopeSanitizesInvalidUTF8(t *testing.T) {
	body := "<s:Envelope xmlns:s=\"http://www.w3.org/2003/05/soap-envelope\"><s:Body><msgT><A>p\xffq</A><B>r</B></msgT></s:Body></s:Envelope>"
	var out msgT
	err := decodeEnvelope(strings.NewReader(body), &out)
	require.NoError(t, err)
	assert.Equal(t, msgT{A: "pq", B: "r"}, out)
}
