package httpds

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"ID": 1, "Name": "Alice"}, {"ID": 2, "Name": "Bob"}]`)
	}))
	defer srv.Close()

	src := JSON(NewClient(Config{}), srv.URL+"/employees")
	recs, err := src.Records(context.Background())
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(recs) != 2 || recs[1]["id"] != int64(2) || recs[1]["name"] != "Bob" {
		t.Fatalf("Records = %v", recs)
	}
	if src.String() != "http "+srv.URL+"/employees" {
		t.Fatalf("String = %q", src.String())
	}
}
