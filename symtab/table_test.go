package symtab

import (
	"testing"

	"github.com/outofcoffee/wsdlc/ir"
)

var fooQ = ir.QName{Space: "urn:test", Local: "Foo"}

func TestLookupTypePrefersResolvedOverUnknown(t *testing.T) {
	tab := New()
	placeholder := ir.NewUnknown(fooQ)
	real := ir.NewComplex(fooQ, &ir.ComplexType{})
	tab.AddType(placeholder)
	tab.AddType(real)

	got, ok := tab.LookupType(fooQ, nil)
	if !ok {
		t.Fatal("LookupType should find an entry")
	}
	if got != real {
		t.Error("LookupType should prefer the resolved entry over the Unknown placeholder")
	}
}

func TestLookupTypeIgnoreSetConvergence(t *testing.T) {
	tab := New()
	p1 := ir.NewUnknown(fooQ)
	p2 := ir.NewUnknown(fooQ)
	real := ir.NewComplex(fooQ, &ir.ComplexType{})
	tab.AddType(p1)
	tab.AddType(p2)
	tab.AddType(real)

	ignore := map[*ir.Type]bool{}

	got, ok := tab.LookupType(fooQ, ignore)
	if !ok || got.Kind != ir.KindComplex {
		t.Fatalf("expected the resolved entry first regardless of ignore set, got %v kind=%v", got, got.Kind)
	}

	// Now force the search past the resolved entry by ignoring it too,
	// simulating the resolver discovering it was actually a dead end
	// for a *different* qname's convergence loop.
	ignore[real] = true
	got, ok = tab.LookupType(fooQ, ignore)
	if !ok {
		t.Fatal("LookupType should still find an Unknown placeholder once the resolved entry is ignored")
	}
	if got.Kind != ir.KindUnknown {
		t.Errorf("got.Kind = %v, want KindUnknown", got.Kind)
	}

	ignore[got] = true
	got2, ok := tab.LookupType(fooQ, ignore)
	if !ok || got2.Kind != ir.KindUnknown || got2 == got {
		t.Fatal("LookupType should fall through to the remaining placeholder once the first is ignored")
	}

	ignore[got2] = true
	if _, ok := tab.LookupType(fooQ, ignore); ok {
		t.Error("LookupType should report no match once every candidate is ignored")
	}
}

func TestLookupTypeUnknownQNameMisses(t *testing.T) {
	tab := New()
	tab.AddType(ir.NewComplex(fooQ, &ir.ComplexType{}))
	if _, ok := tab.LookupType(ir.QName{Space: "urn:test", Local: "Bar"}, nil); ok {
		t.Error("LookupType should not match a different qname")
	}
}

func TestMergePrefersExistingResolvedType(t *testing.T) {
	parent := New()
	parent.AddType(ir.NewComplex(fooQ, &ir.ComplexType{}))

	child := New()
	childPlaceholder := ir.NewUnknown(fooQ)
	child.AddType(childPlaceholder)

	parent.Merge(child)

	if len(parent.Types) != 1 {
		t.Fatalf("Merge should drop the child's placeholder once the parent already has a resolved type, got %d types", len(parent.Types))
	}
}

func TestMergeAddsWhenParentHasNoResolvedType(t *testing.T) {
	parent := New()
	parent.AddType(ir.NewUnknown(fooQ))

	child := New()
	childPlaceholder := ir.NewUnknown(fooQ)
	child.AddType(childPlaceholder)

	parent.Merge(child)

	if len(parent.Types) != 2 {
		t.Fatalf("Merge should keep both placeholders when the parent has no resolved type yet, got %d", len(parent.Types))
	}
}

func TestBuiltinInternsOnePerTable(t *testing.T) {
	tab := New()
	a, ok := tab.Builtin("string")
	if !ok {
		t.Fatal("Builtin(\"string\") should succeed")
	}
	b, ok := tab.Builtin("string")
	if !ok {
		t.Fatal("Builtin(\"string\") should succeed on the second call")
	}
	if a != b {
		t.Error("two Builtin(\"string\") calls on the same table should return the same *ir.Type")
	}
	if len(tab.Types) != 1 {
		t.Errorf("Builtin should register exactly one Types entry, got %d", len(tab.Types))
	}

	i, ok := tab.Builtin("int")
	if !ok || i == a {
		t.Error("Builtin(\"int\") should return a distinct instance from Builtin(\"string\")")
	}
}

func TestBuiltinUnknownName(t *testing.T) {
	tab := New()
	if _, ok := tab.Builtin("notARealPrimitive"); ok {
		t.Error("Builtin on an unrecognized name should report false")
	}
	if len(tab.Types) != 0 {
		t.Error("Builtin should not register anything for an unrecognized name")
	}
}

func TestMergeConcatenatesOtherTables(t *testing.T) {
	parent := New()
	child := New()
	child.AddElement(&ir.Element{Name: "E", QName: fooQ})
	child.AddAttribute(&ir.Attribute{Name: "A", QName: fooQ})
	child.AddMessage(&ir.Message{QName: fooQ})
	child.AddOperation(&ir.Operation{Name: "Op"})
	child.AddRequestResponse(&ir.RequestResponseElement{QName: fooQ})

	parent.Merge(child)

	if len(parent.Elements) != 1 || len(parent.Attributes) != 1 || len(parent.Messages) != 1 ||
		len(parent.Operations) != 1 || len(parent.RequestResponse) != 1 {
		t.Error("Merge should concatenate elements/attributes/messages/operations/request-response entries")
	}
}

func TestLookupHelpers(t *testing.T) {
	tab := New()
	el := &ir.Element{Name: "E", QName: fooQ}
	attr := &ir.Attribute{Name: "A", QName: fooQ}
	msg := &ir.Message{QName: fooQ}
	op := &ir.Operation{Name: "Op"}
	rre := &ir.RequestResponseElement{QName: fooQ}
	tab.AddElement(el)
	tab.AddAttribute(attr)
	tab.AddMessage(msg)
	tab.AddOperation(op)
	tab.AddRequestResponse(rre)

	if got, ok := tab.LookupElement(fooQ); !ok || got != el {
		t.Error("LookupElement failed to find the registered element")
	}
	if got, ok := tab.LookupAttribute(fooQ); !ok || got != attr {
		t.Error("LookupAttribute failed to find the registered attribute")
	}
	if got, ok := tab.LookupMessage(fooQ); !ok || got != msg {
		t.Error("LookupMessage failed to find the registered message")
	}
	if got, ok := tab.LookupOperation("Op"); !ok || got != op {
		t.Error("LookupOperation failed to find the registered operation")
	}
	if got, ok := tab.LookupRequestResponse(fooQ); !ok || got != rre {
		t.Error("LookupRequestResponse failed to find the registered wrapper")
	}
}
