package server_test

import (
	"fmt"
	"go/types"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/google/go-cmp/cmp"

	"github.com/railsense/traceview/server"
)

func TestHumanPayload(t *testing.T) {
	tests := []struct {
		hp   server.HumanPayload
		want string
	}{
		{server.HumanPayload{T: types.Bool, Bool: true}, `{"bool":true}`},
		{server.HumanPayload{T: types.Int, Int: 7}, `{"int":7}`},
		{server.HumanPayload{T: types.Float64, Float: 0.5}, `{"f64":0.5}`},
		{server.HumanPayload{T: types.String, String: "n"}, `{"str":"n"}`},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		tt.hp.EncodeAndRespond(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if got := strings.TrimSpace(rec.Body.String()); got != tt.want {
			t.Errorf("expected %s got %s", tt.want, got)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %s", ct)
		}
	}
	rec := httptest.NewRecorder()
	server.HumanPayload{T: types.Complex128}.EncodeAndRespond(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 for an unsupported kind, got %d", rec.Code)
	}
}

func TestRouteTable(t *testing.T) {
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }
	rt := server.RouteTable{
		{Method: http.MethodPost, Path: "/cursor"}:    ok,
		{Method: http.MethodGet, Path: "/cursor"}:     ok,
		{Method: http.MethodGet, Path: "/traces/{n}"}: ok,
	}
	want := []string{"GET /cursor", "POST /cursor", "GET /traces/{n}"}
	if diff := cmp.Diff(want, rt.Endpoints()); diff != "" {
		t.Error(diff)
	}

	r := chi.NewRouter()
	rt.Bind(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/traces/3", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 got %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/cursor", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 got %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/list-of-routes", nil))
	if got := strings.TrimSpace(rec.Body.String()); got != `["GET /cursor","POST /cursor","GET /traces/{n}"]` {
		t.Errorf("unexpected route list %s", got)
	}
}

func TestReplyWithFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "T1.dat"), []byte{1, 2, 3, 4}, 0o644); err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	server.ReplyWithFile(rec, httptest.NewRequest(http.MethodGet, "/", nil), "T1.dat", dir)
	if rec.Code != http.StatusOK || rec.Body.Len() != 4 {
		t.Errorf("unexpected reply %d with %d bytes", rec.Code, rec.Body.Len())
	}
	rec = httptest.NewRecorder()
	server.ReplyWithFile(rec, httptest.NewRequest(http.MethodGet, "/", nil), "T2.dat", dir)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 got %d", rec.Code)
	}
}

func ExampleSubMuxSanitize() {
	fmt.Println(server.SubMuxSanitize("sensors/062493/"))
	// Output: /sensors/062493
}
