package orders

import (
	"reflect"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	in := []SnapshotLine{
		{ID: "p1", Qty: 2, Sides: []string{"s-curtido", "s-salsa"}, Notes: "no onions"},
		{ID: "d1", Qty: 1},
	}
	s, err := EncodeSnapshot(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := DecodeSnapshot(s)
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip: got %+v, want %+v", out, in)
	}
}

func TestSnapshotCompactKeys(t *testing.T) {
	s, err := EncodeSnapshot([]SnapshotLine{{ID: "p1", Qty: 1}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// sides/notes omitted when empty; the snapshot rides in provider
	// metadata so every byte counts
	if s != `[{"id":"p1","qty":1}]` {
		t.Errorf("encoded = %s", s)
	}
}

func TestDecodeSnapshotTolerant(t *testing.T) {
	for _, bad := range []string{"", "{", "not json", `{"id":"p1"}`} {
		if got := DecodeSnapshot(bad); got != nil {
			t.Errorf("DecodeSnapshot(%q) = %+v, want nil", bad, got)
		}
	}
}
