// Package locker provides an HTTP middleware which allows an HTTPHandler to be locked, returning 423 (locked)
package locker

import (
	"encoding/json"
	"go/types"
	"net/http"
	"strings"
	"sync"

	"github.com/railsense/traceview/server"
)

// Inject adds a lock route to a server.HTTPer which is used to manipulate the locker
func Inject(other server.HTTPer, l *Locker) {
	rt := other.RT()
	rt[server.MethodPath{Method: http.MethodGet, Path: "/lock"}] = l.HTTPGet
	rt[server.MethodPath{Method: http.MethodPost, Path: "/lock"}] = l.HTTPSet
}

// Locker is a type which behaves like a sync.Mutex without the blocking,
// and holds a list of paths to not protect
type Locker struct {
	mu       sync.Mutex
	isLocked bool

	// DoNotProtect is a list of paths not to apply the lock to
	DoNotProtect []string

	// Methods are the HTTP methods the lock applies to; all when empty
	Methods []string
}

// New returns a new Locker with DoNotProtect prepopulated with "lock" which
// bounces requests that change state (POST) while locked
func New() *Locker {
	return &Locker{DoNotProtect: []string{"lock"}, Methods: []string{http.MethodPost}}
}

// Lock the locker
func (l *Locker) Lock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.isLocked = true
}

// Unlock the locker
func (l *Locker) Unlock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.isLocked = false
}

// Locked returns true if the locker is locked
func (l *Locker) Locked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.isLocked
}

func (l *Locker) protects(r *http.Request) bool {
	if len(l.Methods) > 0 {
		hit := false
		for _, m := range l.Methods {
			if m == r.Method {
				hit = true
			}
		}
		if !hit {
			return false
		}
	}
	for _, str := range l.DoNotProtect {
		if strings.Contains(r.URL.Path, str) {
			return false
		}
	}
	return true
}

// Check is an HTTP middleware that returns http.StatusLocked if Locked() is true, otherwise passes down the line
func (l *Locker) Check(next http.Handler) http.Handler {
	// return a handlerfunc wrapping a handler, middleware/generator pattern
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.Locked() && l.protects(r) {
			w.WriteHeader(http.StatusLocked)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HTTPSet calls Lock or Unlock based on json:bool on the request body
func (l *Locker) HTTPSet(w http.ResponseWriter, r *http.Request) {
	b := server.BoolT{}
	err := json.NewDecoder(r.Body).Decode(&b)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if b.Bool {
		l.Lock()
	} else {
		l.Unlock()
	}
	w.WriteHeader(http.StatusOK)
}

// HTTPGet returns Locked() over HTTP as JSON
func (l *Locker) HTTPGet(w http.ResponseWriter, r *http.Request) {
	hp := server.HumanPayload{T: types.Bool, Bool: l.Locked()}
	hp.EncodeAndRespond(w, r)
}
