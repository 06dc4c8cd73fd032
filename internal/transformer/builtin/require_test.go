package builtin

import (
	"reflect"
	"testing"

	"hretl/pkg/records"
)

func TestRequire_Name(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		rec  records.Record
		keep bool
	}{
		{"valid", records.Record{"id": 1, "name": "Test name"}, true},
		{"empty", records.Record{"id": 1, "name": ""}, false},
		{"nil", records.Record{"name": nil}, false},
		{"missing", records.Record{"id": 1}, false},
		{"empty bytes", records.Record{"id": 1, "name": []byte{}}, false},
		{"bytes", records.Record{"id": 1, "name": []byte("Ana")}, true},
		{"whitespace is not trimmed", records.Record{"id": 1, "name": " "}, true},
		{"non-string value counts as present", records.Record{"id": 1, "name": 0}, true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			out := Require{Fields: []string{"name"}}.Apply([]records.Record{tc.rec})
			if got := len(out) == 1; got != tc.keep {
				t.Fatalf("keep = %v, want %v (rec=%#v)", got, tc.keep, tc.rec)
			}
		})
	}
}

func TestRequire_Idempotent(t *testing.T) {
	in := []records.Record{
		{"id": 1, "name": "a"},
		{"id": 2, "name": ""},
		{"id": 3, "name": "c"},
		{"id": 4},
	}
	r := Require{Fields: []string{"name"}}
	once := r.Apply(in)
	twice := r.Apply(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("Require is not idempotent:\n once: %#v\ntwice: %#v", once, twice)
	}
	if len(once) != 2 {
		t.Fatalf("len(once) = %d, want 2", len(once))
	}
	if len(in) != 4 || in[1]["id"] != 2 {
		t.Fatalf("input was modified: %#v", in)
	}
}
