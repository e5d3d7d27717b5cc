package markup

import (
	"strings"
	"testing"
)

func TestExtractSimpleForm(t *testing.T) {
	src := `<view><form bind:submit="sub"><input name="u" type="text"/><input name="p" type="number"/></form></view>`
	bindings, err := Extract(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bindings) != 1 {
		t.Fatalf("expected 1 binding, got %d", len(bindings))
	}
	b := bindings[0]
	if b.Handler != "sub" {
		t.Fatalf("expected handler=sub, got %q", b.Handler)
	}
	if b.Inputs["u"] != "text" {
		t.Fatalf("expected u=text, got %q", b.Inputs["u"])
	}
	if b.Inputs["p"] != "number" {
		t.Fatalf("expected p=number, got %q", b.Inputs["p"])
	}
}

func TestExtractPasswordInputForcesTypeRegardlessOfAttribute(t *testing.T) {
	src := `<form bind:submit="login"><input name="pw" type="text" password="true"/></form>`
	bindings, err := Extract(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// a "password" attribute tags the input as password whatever its type
	// says; type=password is also matched case-insensitively.
	if bindings[0].Inputs["pw"] != "password" {
		t.Fatalf("expected password attribute to force password type, got %q", bindings[0].Inputs["pw"])
	}
	src2 := `<form bind:submit="login"><input name="pw" type="PASSWORD"/></form>`
	bindings2, err := Extract(strings.NewReader(src2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bindings2[0].Inputs["pw"] != "password" {
		t.Fatalf("expected password type normalized, got %q", bindings2[0].Inputs["pw"])
	}
	_ = bindings
}

func TestExtractNoFormsReturnsEmpty(t *testing.T) {
	bindings, err := Extract(strings.NewReader(`<view><text>hello</text></view>`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bindings) != 0 {
		t.Fatalf("expected no bindings, got %d", len(bindings))
	}
}
