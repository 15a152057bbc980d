package diag

import (
	"errors"
	"strings"
	"testing"
)

func TestBagSortIsDeterministic(t *testing.T) {
	bag := NewBag(0)
	r := BagReporter{Bag: bag}
	loc := Location{File: "gl.toml"}
	ReportWarning(r, DscUnknownKey, loc.At("types.Point.bogus"), "unknown key").Emit()
	ReportError(r, DscUnknownType, Location{File: "gl.toml", Line: 3, Col: 9}, "GLsizei is not declared").Emit()
	ReportError(r, DscSyntax, Location{File: "d3d.toml", Line: 1}, "expected '='").Emit()
	bag.Sort()

	var got []string
	for _, d := range bag.Items() {
		got = append(got, d.Error())
	}
	want := []string{
		"error DSC1001 d3d.toml:1 expected '='",
		"warning DSC1002 gl.toml [types.Point.bogus] unknown key",
		"error DSC1003 gl.toml:3:9 GLsizei is not declared",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("sorted bag:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestBagLimitAndErr(t *testing.T) {
	bag := NewBag(2)
	loc := Location{File: "a.toml"}
	if !bag.Add(NewError(DscMissingField, loc, "one")) || !bag.Add(New(SevWarning, DscUnknownKey, loc, "two")) {
		t.Fatalf("bag rejected diagnostics under its limit")
	}
	if bag.Add(NewError(DscMissingField, loc, "three")) {
		t.Fatalf("bag accepted a diagnostic over its limit")
	}
	err := bag.Err()
	if err == nil || !strings.Contains(err.Error(), "one") || strings.Contains(err.Error(), "two") {
		t.Fatalf("Err = %v, want only the error diagnostic", err)
	}
	var d Diagnostic
	if !errors.As(err, &d) || d.Code != DscMissingField {
		t.Fatalf("Err does not unwrap to the diagnostic: %v", err)
	}
}

func TestDedup(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	loc := Location{File: "gl.toml", Key: "functions.glEnd"}
	for range 3 {
		ReportError(r, DscDuplicateName, loc, "glEnd declared twice").Emit()
	}
	ReportError(r, DscDuplicateName, loc.At("args"), "glEnd declared twice").Emit()
	if bag.Len() != 2 {
		t.Fatalf("bag has %d diagnostics, want 2", bag.Len())
	}
	bag.Add(bag.Items()[0])
	bag.Dedup()
	if bag.Len() != 2 {
		t.Fatalf("Dedup left %d diagnostics, want 2", bag.Len())
	}
}

func TestCodeIDs(t *testing.T) {
	cases := map[Code]string{
		DscUnknownType:     "DSC1003",
		GenNondeterminism:  "GEN2003",
		PrjManifestMissing: "PRJ3001",
		UnknownCode:        "E0000",
	}
	for c, want := range cases {
		if got := c.ID(); got != want {
			t.Errorf("%d.ID() = %s, want %s", c, got, want)
		}
	}
	if DscTypeCycle.String() != "[DSC1009]: type refers to itself by value" {
		t.Errorf("String = %q", DscTypeCycle.String())
	}
}
