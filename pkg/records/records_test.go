package records

import (
	"reflect"
	"testing"
)

func TestCloneIsIndependent(t *testing.T) {
	r := Record{"id": 1, "name": "a"}
	c := r.Clone()
	c["name"] = "b"
	if r["name"] != "a" {
		t.Fatalf("Clone shares map with original: %#v", r)
	}
}

func TestWithout(t *testing.T) {
	r := Record{"id": 1, "__row": 3, "name": "a"}
	got := r.Without("__row")
	want := Record{"id": 1, "name": "a"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Without = %#v, want %#v", got, want)
	}
	if _, ok := r["__row"]; !ok {
		t.Fatalf("Without mutated the receiver")
	}
}

func TestColumns(t *testing.T) {
	recs := []Record{
		{"salary": 1, "id": 1},
		{"name": "x", "id": 2, "reason": "r"},
	}
	got := Columns(recs, "id", "missing")
	want := []string{"id", "name", "reason", "salary"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Columns = %v, want %v", got, want)
	}

	if got := Columns(nil); len(got) != 0 {
		t.Fatalf("Columns(nil) = %v, want empty", got)
	}
}
