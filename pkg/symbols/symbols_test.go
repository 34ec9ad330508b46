package symbols

import (
	"testing"

	"github.com/oarkflow/lumen/pkg/value"
)

func TestMap(t *testing.T) {
	m := NewMap()
	if _, ok := m.Get("x"); ok {
		t.Fatalf("empty table returned a value")
	}
	m.Set("y", value.FromInt(2))
	m.Set("x", value.FromInt(1))
	m.Set("x", value.FromInt(5))
	if v, ok := m.Get("x"); !ok || v.Int != 5 {
		t.Fatalf("expected x=5, got %v (%v)", v, ok)
	}
	names := m.Names()
	if len(names) != 2 || names[0] != "x" || names[1] != "y" {
		t.Fatalf("unexpected names %v", names)
	}
	snap := m.Snapshot()
	m.Delete("y")
	if _, ok := snap["y"]; !ok {
		t.Fatalf("snapshot must not follow later deletes")
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 binding, got %d", m.Len())
	}
}
