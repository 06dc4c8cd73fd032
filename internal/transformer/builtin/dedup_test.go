package builtin

import (
	"reflect"
	"testing"

	"hretl/pkg/records"
)

func mk(id int, email string, fields map[string]any) records.Record {
	r := records.Record{
		"id":    id,
		"email": email,
	}
	for k, v := range fields {
		r[k] = v
	}
	return r
}

func TestDeDupKeepFirst(t *testing.T) {
	in := []records.Record{
		mk(1, "a@x.com", map[string]any{"name": "A"}),
		mk(2, "a@x.com", map[string]any{"name": "B"}),
		mk(3, "c@x.com", map[string]any{"name": "C"}),
	}
	d := DeDup{Keys: []string{"email"}, Policy: "keep-first"}
	got := d.Apply(in)
	want := []records.Record{
		mk(1, "a@x.com", map[string]any{"name": "A"}),
		mk(3, "c@x.com", map[string]any{"name": "C"}),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("keep-first: got %#v want %#v", got, want)
	}
}

func TestDeDupKeepLast(t *testing.T) {
	in := []records.Record{
		mk(1, "a@x.com", map[string]any{"name": "A"}),
		mk(2, "a@x.com", map[string]any{"name": "B"}),
		mk(3, "c@x.com", map[string]any{"name": "C"}),
	}
	d := DeDup{Keys: []string{"email"}}
	got := d.Apply(in)
	want := []records.Record{
		mk(2, "a@x.com", map[string]any{"name": "B"}),
		mk(3, "c@x.com", map[string]any{"name": "C"}),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("keep-last: got %#v want %#v", got, want)
	}
}

func TestDeDupMostComplete(t *testing.T) {
	in := []records.Record{
		mk(1, "a@x.com", map[string]any{"name": ""}),
		mk(2, "a@x.com", map[string]any{"name": "B", "salary": 1}),
		mk(3, "c@x.com", map[string]any{"name": "C"}),
	}
	d := DeDup{Keys: []string{"email"}, Policy: "most-complete"}
	got := d.Apply(in)
	want := []records.Record{
		mk(2, "a@x.com", map[string]any{"name": "B", "salary": 1}),
		mk(3, "c@x.com", map[string]any{"name": "C"}),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("most-complete: got %#v want %#v", got, want)
	}
}

// TestDeDupUnkeyedKeepPosition checks that records without the key field pass
// through in their original position.
func TestDeDupUnkeyedKeepPosition(t *testing.T) {
	in := []records.Record{
		{"id": 1},
		mk(2, "a@x.com", nil),
		{"id": 3},
		mk(4, "a@x.com", nil),
	}
	got := DeDup{Keys: []string{"email"}, Policy: "keep-first"}.Apply(in)
	var ids []int
	for _, r := range got {
		ids = append(ids, r["id"].(int))
	}
	if !reflect.DeepEqual(ids, []int{1, 2, 3}) {
		t.Fatalf("ids = %v, want [1 2 3]", ids)
	}
}

// TestDeDupExactStringEquality confirms that keys differing only in case are
// distinct and that composite keys do not collide across field boundaries.
func TestDeDupExactStringEquality(t *testing.T) {
	in := []records.Record{
		mk(1, "A@x.com", nil),
		mk(2, "a@x.com", nil),
	}
	if got := (DeDup{Keys: []string{"email"}, Policy: "keep-first"}).Apply(in); len(got) != 2 {
		t.Fatalf("case-different emails collapsed: %#v", got)
	}

	comp := []records.Record{
		{"a": "x", "b": "yz"},
		{"a": "xy", "b": "z"},
	}
	if got := (DeDup{Keys: []string{"a", "b"}, Policy: "keep-first"}).Apply(comp); len(got) != 2 {
		t.Fatalf("composite keys collided: %#v", got)
	}
}

func TestDeDupNoKeysIsNoop(t *testing.T) {
	in := []records.Record{mk(1, "a@x.com", nil), mk(2, "a@x.com", nil)}
	if got := (DeDup{}).Apply(in); len(got) != 2 {
		t.Fatalf("DeDup without keys dropped rows: %#v", got)
	}
}
