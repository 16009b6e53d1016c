// Package serveraccess records who is driving a shared resource, such as the
// cursor of a served sensor, so that other clients can see it before moving it
package serveraccess

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/railsense/traceview/server"
)

// ServerStatus holds the current user, if the server is busy, and when the user
// took control
type ServerStatus struct {
	mu sync.Mutex

	User       string
	Busy       bool
	WhenAuthed time.Time
}

// AuthRequest is a passthrough struct allowing a User variale to be extracted
// from JSON
type AuthRequest struct {
	User string `json:"user"`
}

// Snapshot is a copy of the status
type Snapshot struct {
	User       string    `json:"user"`
	Busy       bool      `json:"busy"`
	WhenAuthed time.Time `json:"when_authed"`
}

// Snapshot returns a copy of the status
func (stat *ServerStatus) Snapshot() Snapshot {
	stat.mu.Lock()
	defer stat.mu.Unlock()
	return Snapshot{User: stat.User, Busy: stat.Busy, WhenAuthed: stat.WhenAuthed}
}

// NotifyActive takes POST requests with json like {"user": "foo"} and
// updates stat with it.  It logs errors and returns 400/BadRequest or
// returns 200/OK for a valid request
func (stat *ServerStatus) NotifyActive(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var dat AuthRequest
	err := json.NewDecoder(r.Body).Decode(&dat)
	if err != nil || dat.User == "" {
		fstr := fmt.Sprintf("cannot decode request, need JSON field \"user\": %v", err)
		log.Println(fstr)
		http.Error(w, fstr, http.StatusBadRequest)
		return
	}
	stat.mu.Lock()
	stat.User = dat.User
	stat.Busy = true
	stat.WhenAuthed = time.Now()
	stat.mu.Unlock()
	w.WriteHeader(http.StatusOK)
	log.Printf("user %s notified from %s", dat.User, r.RemoteAddr)
}

// ReleaseActive takes a request, does nothing with its contents, clears stat
// responds with 200/OK, and logs that control was released
func (stat *ServerStatus) ReleaseActive(w http.ResponseWriter, r *http.Request) {
	stat.mu.Lock()
	log.Printf("released, %s last authed at %s, released by %s",
		stat.User,
		stat.WhenAuthed.Format(time.RFC822),
		r.RemoteAddr)
	stat.User, stat.Busy, stat.WhenAuthed = "", false, time.Time{}
	stat.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

// CheckActive takes a request and returns the JSON representation of stat
func (stat *ServerStatus) CheckActive(w http.ResponseWriter, r *http.Request) {
	server.EncodeAndRespond(w, stat.Snapshot())
}

// Inject adds GET, POST and DELETE routes for /driver to the HTTPer
func (stat *ServerStatus) Inject(other server.HTTPer) {
	rt := other.RT()
	rt[server.MethodPath{Method: http.MethodGet, Path: "/driver"}] = stat.CheckActive
	rt[server.MethodPath{Method: http.MethodPost, Path: "/driver"}] = stat.NotifyActive
	rt[server.MethodPath{Method: http.MethodDelete, Path: "/driver"}] = stat.ReleaseActive
}
