package locker_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"

	"github.com/railsense/traceview/server"
	"github.com/railsense/traceview/server/middleware/locker"
)

type table server.RouteTable

func (t table) RT() server.RouteTable { return server.RouteTable(t) }

func newRouter(l *locker.Locker) http.Handler {
	rt := table{
		server.MethodPath{Method: http.MethodGet, Path: "/cursor"}:  func(w http.ResponseWriter, r *http.Request) {},
		server.MethodPath{Method: http.MethodPost, Path: "/cursor"}: func(w http.ResponseWriter, r *http.Request) {},
	}
	locker.Inject(rt, l)
	r := chi.NewRouter()
	r.Use(l.Check)
	rt.RT().Bind(r)
	return r
}

func do(h http.Handler, method, path, body string) int {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestLockBouncesPosts(t *testing.T) {
	l := locker.New()
	h := newRouter(l)
	if code := do(h, http.MethodPost, "/cursor", ""); code != http.StatusOK {
		t.Fatalf("unlocked post: expected 200 got %d", code)
	}
	if code := do(h, http.MethodPost, "/lock", `{"bool": true}`); code != http.StatusOK {
		t.Fatalf("locking: expected 200 got %d", code)
	}
	if !l.Locked() {
		t.Fatal("expected the locker to be locked")
	}
	if code := do(h, http.MethodPost, "/cursor", ""); code != http.StatusLocked {
		t.Errorf("locked post: expected 423 got %d", code)
	}
	if code := do(h, http.MethodGet, "/cursor", ""); code != http.StatusOK {
		t.Errorf("locked get: expected 200 got %d", code)
	}
	if code := do(h, http.MethodPost, "/lock", `{"bool": false}`); code != http.StatusOK {
		t.Fatalf("unlocking: expected 200 got %d", code)
	}
	if code := do(h, http.MethodPost, "/cursor", ""); code != http.StatusOK {
		t.Errorf("unlocked again: expected 200 got %d", code)
	}
}

func TestLockBadBody(t *testing.T) {
	h := newRouter(locker.New())
	if code := do(h, http.MethodPost, "/lock", "true"); code != http.StatusBadRequest {
		t.Errorf("expected 400 got %d", code)
	}
}

func TestLockGet(t *testing.T) {
	l := locker.New()
	l.Lock()
	req := httptest.NewRequest(http.MethodGet, "/lock", nil)
	rec := httptest.NewRecorder()
	newRouter(l).ServeHTTP(rec, req)
	if got := strings.TrimSpace(rec.Body.String()); got != `{"bool":true}` {
		t.Errorf("unexpected body %s", got)
	}
}
