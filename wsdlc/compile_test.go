package wsdlc

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/outofcoffee/wsdlc/config"
)

const pingWSDL = `<?xml version="1.0"?>
<wsdl:definitions name="PingService" targetNamespace="urn:ping"
  xmlns:wsdl="http://schemas.xmlsoap.org/wsdl/"
  xmlns:soap="http://schemas.xmlsoap.org/wsdl/soap/"
  xmlns:xsd="http://www.w3.org/2001/XMLSchema"
  xmlns:tns="urn:ping">
  <wsdl:types>
    <xsd:schema targetNamespace="urn:ping">
      <xsd:element name="PingRequest">
        <xsd:complexType>
          <xsd:sequence>
            <xsd:element name="Token" type="xsd:string"/>
          </xsd:sequence>
        </xsd:complexType>
      </xsd:element>
      <xsd:element name="PingResponse">
        <xsd:complexType>
          <xsd:sequence>
            <xsd:element name="Token" type="xsd:string"/>
          </xsd:sequence>
        </xsd:complexType>
      </xsd:element>
    </xsd:schema>
  </wsdl:types>
  <wsdl:message name="PingRequestMsg">
    <wsdl:part name="parameters" element="tns:PingRequest"/>
  </wsdl:message>
  <wsdl:message name="PingResponseMsg">
    <wsdl:part name="parameters" element="tns:PingResponse"/>
  </wsdl:message>
  <wsdl:portType name="PingPortType">
    <wsdl:operation name="Ping">
      <wsdl:input message="tns:PingRequestMsg"/>
      <wsdl:output message="tns:PingResponseMsg"/>
    </wsdl:operation>
  </wsdl:portType>
  <wsdl:binding name="PingBinding" type="tns:PingPortType">
    <soap:binding style="document" transport="http://schemas.xmlsoap.org/soap/http"/>
    <wsdl:operation name="Ping">
      <soap:operation soapAction="urn:ping/Ping"/>
    </wsdl:operation>
  </wsdl:binding>
</wsdl:definitions>`

func TestCompileFromFilesystem(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ping.wsdl")
	if err := os.WriteFile(path, []byte(pingWSDL), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	svc, err := Compile(path)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if svc.Name != "PingService" {
		t.Errorf("svc.Name = %q, want PingService", svc.Name)
	}
	if len(svc.Operations) != 1 || svc.Operations[0].SOAPAction != "urn:ping/Ping" {
		t.Fatalf("unexpected operations: %+v", svc.Operations)
	}
	if len(svc.Types) == 0 {
		t.Error("svc.Types should expose the full resolved type table for downstream consumers")
	}
}

func TestCompileFromHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pingWSDL))
	}))
	defer srv.Close()

	svc, err := Compile(srv.URL)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if svc.Name != "PingService" {
		t.Errorf("svc.Name = %q, want PingService", svc.Name)
	}
}

func TestCompileMissingDocumentReturnsLoadError(t *testing.T) {
	_, err := Compile(filepath.Join(t.TempDir(), "missing.wsdl"))
	if err == nil {
		t.Fatal("Compile on a missing document should fail")
	}
	if _, ok := err.(*LoadError); !ok {
		t.Fatalf("expected *LoadError, got %T: %v", err, err)
	}
}

func TestCompileWithImportCycleTerminates(t *testing.T) {
	dir := t.TempDir()
	// a.xsd imports b.xsd and declares A; b.xsd imports a.xsd back and
	// declares B with a field of type A, exercising the loader's
	// already-loaded-returns-empty-body cycle break.
	const aXSD = `<?xml version="1.0"?>
<xsd:schema xmlns:xsd="http://www.w3.org/2001/XMLSchema"
  xmlns:tns="urn:a" targetNamespace="urn:a">
  <xsd:import namespace="urn:b" schemaLocation="b.xsd"/>
  <xsd:complexType name="A">
    <xsd:sequence>
      <xsd:element name="Name" type="xsd:string"/>
    </xsd:sequence>
  </xsd:complexType>
</xsd:schema>`
	const bXSD = `<?xml version="1.0"?>
<xsd:schema xmlns:xsd="http://www.w3.org/2001/XMLSchema"
  xmlns:tns="urn:a" targetNamespace="urn:b">
  <xsd:import namespace="urn:a" schemaLocation="a.xsd"/>
  <xsd:complexType name="B">
    <xsd:sequence>
      <xsd:element name="Ref" type="tns:A"/>
    </xsd:sequence>
  </xsd:complexType>
</xsd:schema>`
	wsdl := `<?xml version="1.0"?>
<wsdl:definitions name="CycleService" targetNamespace="urn:b"
  xmlns:wsdl="http://schemas.xmlsoap.org/wsdl/"
  xmlns:xsd="http://www.w3.org/2001/XMLSchema">
  <wsdl:types>
    <xsd:schema targetNamespace="urn:b">
      <xsd:import namespace="urn:a" schemaLocation="a.xsd"/>
    </xsd:schema>
  </wsdl:types>
</wsdl:definitions>`

	if err := os.WriteFile(filepath.Join(dir, "a.xsd"), []byte(aXSD), 0o644); err != nil {
		t.Fatalf("WriteFile a.xsd: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.xsd"), []byte(bXSD), 0o644); err != nil {
		t.Fatalf("WriteFile b.xsd: %v", err)
	}
	path := filepath.Join(dir, "cycle.wsdl")
	if err := os.WriteFile(path, []byte(wsdl), 0o644); err != nil {
		t.Fatalf("WriteFile cycle.wsdl: %v", err)
	}

	svc, err := Compile(path, WithLocalSchemaDir(dir))
	if err != nil {
		t.Fatalf("Compile should terminate and succeed on a mutual import cycle: %v", err)
	}
	if svc == nil {
		t.Fatal("expected a non-nil Service")
	}
}

func TestCompileWithConfigLaxMode(t *testing.T) {
	const wsdl = `<?xml version="1.0"?>
<wsdl:definitions name="S" targetNamespace="urn:s"
  xmlns:wsdl="http://schemas.xmlsoap.org/wsdl/"
  xmlns:xsd="http://www.w3.org/2001/XMLSchema"
  xmlns:tns="urn:s">
  <wsdl:types>
    <xsd:schema targetNamespace="urn:s">
      <xsd:element name="Req">
        <xsd:complexType>
          <xsd:sequence>
            <xsd:element name="X" type="tns:NeverDeclared"/>
          </xsd:sequence>
        </xsd:complexType>
      </xsd:element>
    </xsd:schema>
  </wsdl:types>
</wsdl:definitions>`
	dir := t.TempDir()
	path := filepath.Join(dir, "s.wsdl")
	if err := os.WriteFile(path, []byte(wsdl), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Compile(path); err == nil {
		t.Fatal("strict (default) mode should fail on the unresolved reference")
	}

	cfg := config.Default()
	cfg.Strict = false
	if _, err := Compile(path, WithConfig(cfg)); err != nil {
		t.Fatalf("lax mode should succeed despite the unresolved reference: %v", err)
	}
}
