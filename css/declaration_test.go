package css_test

import (
	"errors"
	"testing"

	"github.com/ByLCY/htmltext/css"
)

func TestParseDeclarationList(t *testing.T) {
	list, err := css.Parse("transform: scale(2); color: #ff0000; font-family: Arial, sans-serif;;text-shadow: 3px 4px 2px rgba(0,0,0,0.5)")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := len(list.Declarations); got != 4 {
		t.Fatalf("expected 4 declarations, got %d", got)
	}
	m := list.Map()
	want := map[string]string{
		"transform":   "scale(2)",
		"color":       "#ff0000",
		"font-family": "Arial, sans-serif",
		"text-shadow": "3px 4px 2px rgba(0,0,0,0.5)",
	}
	for k, v := range want {
		if m[k] != v {
			t.Fatalf("%s: got %q want %q", k, m[k], v)
		}
	}
}

func TestParseEmptyAndVendorProperties(t *testing.T) {
	list, err := css.Parse("")
	if err != nil {
		t.Fatalf("empty input should parse: %v", err)
	}
	if len(list.Declarations) != 0 {
		t.Fatalf("expected no declarations, got %d", len(list.Declarations))
	}

	d, err := css.ParseOne("-webkit-text-stroke-width: 2px")
	if err != nil {
		t.Fatalf("vendor property should parse: %v", err)
	}
	if d.Property != "-webkit-text-stroke-width" || d.Value() != "2px" {
		t.Fatalf("unexpected declaration %q", d.String())
	}
}

func TestImportantWins(t *testing.T) {
	list, err := css.Parse("color: red !important; color: blue")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := list.Map()["color"]; got != "red" {
		t.Fatalf("important declaration should win, got %q", got)
	}
}

func TestParseOneRejectsGarbage(t *testing.T) {
	for _, in := range []string{"color red", "a: b; c: d", ": red"} {
		if _, err := css.ParseOne(in); !errors.Is(err, css.ErrInvalidDeclaration) {
			t.Fatalf("%q: expected ErrInvalidDeclaration, got %v", in, err)
		}
	}
}
