package knowledge

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestMetadataScanKeepsNumbersExact(t *testing.T) {
	var m Metadata
	if err := m.Scan([]byte(`{"page": 3, "big": 9007199254740993, "ratio": 0.25, "section": "1.2", "tags": ["a"]}`)); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if m["page"] != json.Number("3") {
		t.Fatalf("page: got %#v", m["page"])
	}
	if m["big"] != json.Number("9007199254740993") {
		t.Fatalf("big: got %#v", m["big"])
	}
	if m["section"] != "1.2" {
		t.Fatalf("section: got %#v", m["section"])
	}
}

func TestMetadataValueRoundTrip(t *testing.T) {
	in, err := DecodeMetadata([]byte(`{"page": 12, "nested": {"k": true}, "label": null}`))
	if err != nil {
		t.Fatalf("DecodeMetadata: %v", err)
	}
	v, err := in.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	var out Metadata
	if err := out.Scan(v); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch: %#v vs %#v", in, out)
	}
}

func TestMetadataScanNull(t *testing.T) {
	m := Metadata{"x": 1}
	if err := m.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if m != nil {
		t.Fatalf("expected nil map, got %#v", m)
	}
	if v, err := Metadata(nil).Value(); err != nil || v != nil {
		t.Fatalf("nil Value: %v err=%v", v, err)
	}
}

func TestMetadataScanRejectsNonObject(t *testing.T) {
	var m Metadata
	if err := m.Scan(`[1,2]`); err == nil {
		t.Fatalf("expected error for array payload")
	}
	if err := m.Scan(42); err == nil {
		t.Fatalf("expected error for int source")
	}
}
