package storage

import (
	"reflect"
	"testing"
	"time"

	"hretl/pkg/records"
)

func TestInferColumns(t *testing.T) {
	t.Parallel()

	ts := time.Date(2022, 2, 20, 0, 0, 0, 0, time.UTC)
	recs := []records.Record{
		{"id": int64(1), "name": "Ana", "salary": int64(200), "join_date": ts, "score": int64(1), "active": true, "note": nil},
		{"id": int64(2), "name": "Bo", "salary": int64(300), "join_date": ts, "score": 1.5, "active": false, "mixed": "x"},
		{"id": int64(3), "mixed": int64(3)},
	}

	got := InferColumns(recs, "id")
	want := []Column{
		{Name: "id", Kind: KindInt},
		{Name: "active", Kind: KindBool},
		{Name: "join_date", Kind: KindTimestamp},
		{Name: "mixed", Kind: KindText},
		{Name: "name", Kind: KindText},
		{Name: "note", Kind: KindText},
		{Name: "salary", Kind: KindInt},
		{Name: "score", Kind: KindFloat},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("InferColumns =\n%v\nwant\n%v", got, want)
	}
}

func TestToRows(t *testing.T) {
	t.Parallel()

	ts := time.Date(2022, 2, 20, 0, 0, 0, 0, time.UTC)
	cols := []Column{
		{Name: "id", Kind: KindInt},
		{Name: "salary", Kind: KindText},
		{Name: "join_date", Kind: KindTimestamp},
		{Name: "extra", Kind: KindText},
	}
	recs := []records.Record{
		{"id": int64(1), "salary": "200UST", "join_date": ts, "extra": map[string]any{"a": 1}},
		{"id": int64(2), "salary": int64(300)},
	}

	rows, err := ToRows(recs, cols)
	if err != nil {
		t.Fatalf("ToRows: %v", err)
	}
	want := [][]any{
		{int64(1), "200UST", ts, `{"a":1}`},
		{int64(2), "300", nil, nil},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("ToRows =\n%#v\nwant\n%#v", rows, want)
	}
}

func TestNames(t *testing.T) {
	t.Parallel()

	got := Names([]Column{{Name: "a"}, {Name: "b"}})
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Names = %v", got)
	}
}

func TestParseDestination(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Destination
		str  string
	}{
		{"tmp.employees_processed", Destination{Namespace: "tmp", Table: "employees_processed"}, "tmp.employees_processed"},
		{"employees", Destination{Table: "employees"}, "employees"},
		{" dbo.hr ", Destination{Namespace: "dbo", Table: "hr"}, "dbo.hr"},
	}
	for _, tc := range cases {
		got := ParseDestination(tc.in)
		if got != tc.want {
			t.Fatalf("ParseDestination(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
		if got.String() != tc.str {
			t.Fatalf("String() = %q, want %q", got.String(), tc.str)
		}
	}
	if !ParseDestination("").IsZero() {
		t.Fatal("empty destination should be zero")
	}
}
