package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"google.golang.org/api/option"
)

func newTestSource(t *testing.T, handler http.HandlerFunc) *Source {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	src, err := NewSource(context.Background(),
		Config{SpreadsheetID: "sheet-1", Range: "Echo!A2:AA104"},
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("NewSource failed: %v", err)
	}
	return src
}

func TestSource_Fetch(t *testing.T) {
	t.Run("first row is the header", func(t *testing.T) {
		var gotPath string
		src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"range":"Echo!A2:AA104","majorDimension":"ROWS","values":[["#","MAC","BATCH"],["1","AA:BB"],["2","CC:DD","B2"]]}`))
		})

		snap, err := src.Fetch(context.Background())
		if err != nil {
			t.Fatalf("Fetch failed: %v", err)
		}
		if !strings.Contains(gotPath, "/v4/spreadsheets/sheet-1/values/") {
			t.Errorf("unexpected request path %q", gotPath)
		}
		if !reflect.DeepEqual(snap.Header, []string{"#", "MAC", "BATCH"}) {
			t.Errorf("Header = %v", snap.Header)
		}
		want := [][]string{{"1", "AA:BB"}, {"2", "CC:DD", "B2"}}
		if !reflect.DeepEqual(snap.Rows, want) {
			t.Errorf("Rows = %v, want %v", snap.Rows, want)
		}
		if snap.Source != "sheets:sheet-1/Echo!A2:AA104" {
			t.Errorf("Source = %q", snap.Source)
		}
	})

	t.Run("empty range", func(t *testing.T) {
		src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"range":"Echo!A2:AA104","majorDimension":"ROWS"}`))
		})

		snap, err := src.Fetch(context.Background())
		if err != nil {
			t.Fatalf("Fetch failed: %v", err)
		}
		if len(snap.Header) != 0 || len(snap.Rows) != 0 {
			t.Errorf("expected empty snapshot, got %+v", snap)
		}
	})

	t.Run("api error is returned", func(t *testing.T) {
		src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":{"code":403,"message":"The caller does not have permission","status":"PERMISSION_DENIED"}}`))
		})

		_, err := src.Fetch(context.Background())
		if err == nil || !strings.Contains(err.Error(), "Echo!A2:AA104") {
			t.Errorf("expected wrapped API error, got %v", err)
		}
	})
}

func TestNewSource_RequiresSpreadsheetID(t *testing.T) {
	if _, err := NewSource(context.Background(), Config{Range: "A1:B2"}); err == nil {
		t.Error("expected error without spreadsheet ID")
	}
}

func TestToStrings(t *testing.T) {
	got := toStrings([]interface{}{"a", nil, 3.5, true})
	want := []string{"a", "", "3.5", "true"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("toStrings() = %v, want %v", got, want)
	}
}
