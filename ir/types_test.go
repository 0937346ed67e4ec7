package ir

import "testing"

func TestTypeResolvePreservesPointerIdentity(t *testing.T) {
	q := QName{Local: "Foo"}
	placeholder := NewUnknown(q)

	// Something holds on to the placeholder pointer before resolution,
	// the way an Element.Type or ComplexType.ExtensionBase would.
	holder := &Element{Type: placeholder}

	real := NewComplex(q, &ComplexType{})
	placeholder.Resolve(real)

	if holder.Type != placeholder {
		t.Fatal("Resolve must not replace the pointer the holder already has")
	}
	if holder.Type.Kind != KindComplex {
		t.Errorf("holder.Type.Kind = %v, want KindComplex after Resolve", holder.Type.Kind)
	}
	if holder.Type.Complex != real.Complex {
		t.Error("Resolve should carry over the resolved Complex value")
	}
}

func TestElementResolvedNameAndType(t *testing.T) {
	target := &Element{Name: "Bar", Type: Builtin("string")}
	ref := &Element{Ref: target}

	if got := ref.ResolvedName(); got != "Bar" {
		t.Errorf("ResolvedName() = %q, want %q", got, "Bar")
	}
	if got := ref.ResolvedType(); got != target.Type {
		t.Error("ResolvedType() should return the referent's type")
	}

	plain := &Element{Name: "Baz", Type: Builtin("int")}
	if got := plain.ResolvedName(); got != "Baz" {
		t.Errorf("ResolvedName() on an unreferenced element = %q, want %q", got, "Baz")
	}
	if got := plain.ResolvedType(); got != plain.Type {
		t.Error("ResolvedType() on an unreferenced element should return its own type")
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindUnknown: "unknown",
		KindSimple:  "simple",
		KindComplex: "complex",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
