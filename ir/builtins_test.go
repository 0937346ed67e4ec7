package ir

import (
	"reflect"
	"testing"
)

func TestBuiltinKnownAndUnknown(t *testing.T) {
	ty := Builtin("string")
	if ty == nil {
		t.Fatal("Builtin(\"string\") returned nil")
	}
	if ty.Kind != KindSimple {
		t.Errorf("Builtin(\"string\").Kind = %v, want KindSimple", ty.Kind)
	}
	if ty.Simple.Primitive != PrimString {
		t.Errorf("Builtin(\"string\").Simple.Primitive = %v, want PrimString", ty.Simple.Primitive)
	}
	if ty.QName != (QName{Space: XSDNamespace, Local: "string"}) {
		t.Errorf("Builtin(\"string\").QName = %v, want {%s}string", ty.QName, XSDNamespace)
	}

	if Builtin("notARealPrimitive") != nil {
		t.Error("Builtin on an unrecognized name should return nil")
	}
}

func TestBuiltinReturnsFreshInstances(t *testing.T) {
	a := Builtin("int")
	b := Builtin("int")
	if a == b {
		t.Error("Builtin should allocate a fresh *Type per call")
	}
	if !reflect.DeepEqual(*a.Simple, *b.Simple) {
		t.Error("two Builtin(\"int\") calls should carry equal SimpleType values")
	}
}

func TestIsBuiltinNamespace(t *testing.T) {
	if !IsBuiltinNamespace(XSDNamespace) {
		t.Error("IsBuiltinNamespace(XSDNamespace) should be true")
	}
	if IsBuiltinNamespace("urn:something-else") {
		t.Error("IsBuiltinNamespace on a non-XSD namespace should be false")
	}
}
