// Package browse serves the traces of one or more sensors over HTTP.  Each
// sensor keeps a cursor, which clients move with the same tokens as the
// console loop.
package browse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"go/types"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi"

	"github.com/railsense/traceview/imgrec"
	"github.com/railsense/traceview/layout"
	"github.com/railsense/traceview/navigate"
	"github.com/railsense/traceview/server"
	"github.com/railsense/traceview/serveraccess"
	"github.com/railsense/traceview/session"
)

// Trace is one entry of the trace list
type Trace struct {
	Index int    `json:"index"`
	Name  string `json:"name"`

	// Matched is true when the derived file the mode navigates by exists
	Matched bool `json:"matched"`
}

// Sensor wraps the session of one sensor in an HTTP interface
type Sensor struct {
	mu   sync.Mutex
	sess *session.Session
	nav  *navigate.Navigator
	rec  *imgrec.Recorder

	// Driver is the client who claimed the cursor, if any
	Driver *serveraccess.ServerStatus

	// RouteTable maps URLs to functions
	RouteTable server.RouteTable
}

// NewSensor returns a new HTTP wrapper around a session
func NewSensor(sess *session.Session) *Sensor {
	s := &Sensor{sess: sess, nav: sess.Navigator(), Driver: &serveraccess.ServerStatus{}}
	s.RouteTable = server.RouteTable{
		server.MethodPath{Method: http.MethodGet, Path: "/traces"}:          s.list,
		server.MethodPath{Method: http.MethodGet, Path: "/cursor"}:          s.getCursor,
		server.MethodPath{Method: http.MethodPost, Path: "/cursor"}:         s.setCursor,
		server.MethodPath{Method: http.MethodGet, Path: "/traces/{n}"}:      s.summary,
		server.MethodPath{Method: http.MethodGet, Path: "/traces/{n}/fits"}: s.fits,
		server.MethodPath{Method: http.MethodGet, Path: "/traces/{n}/raw"}:  s.raw,
	}
	s.Driver.Inject(s)
	return s
}

// RT satisfies the server.HTTPer interface
func (s *Sensor) RT() server.RouteTable {
	return s.RouteTable
}

// Record saves a copy of every FITS export to rec while rec is enabled, and
// exposes rec's settings under /autowrite.  Call it before BuildMux.
func (s *Sensor) Record(rec *imgrec.Recorder) {
	s.mu.Lock()
	s.rec = rec
	s.mu.Unlock()
	imgrec.NewHTTPWrapper(rec).Inject(s)
}

// Session returns the current session
func (s *Sensor) Session() *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess
}

// Swap replaces the session, keeping the cursor on the same raw file when it
// still exists
func (s *Sensor) Swap(sess *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, curr := s.nav.Name(), s.nav.Current()
	s.sess = sess
	s.nav = sess.Navigator()
	if !s.nav.SeekName(name) {
		s.nav.MoveTo(curr)
	}
}

// Reload opens the session again and swaps it in
func (s *Sensor) Reload() error {
	sess, err := s.Session().Reopen()
	if err != nil {
		return err
	}
	s.Swap(sess)
	return nil
}

// Watch reloads the session whenever the sensor's directories change, at
// most once per interval, until ctx is done
func (s *Sensor) Watch(ctx context.Context, interval time.Duration) error {
	sess := s.Session()
	w, err := sess.Layout.NewWatcher(sess.Sensor, sess.Mode.Kinds(), interval)
	if err != nil {
		return err
	}
	return w.Run(ctx, func() {
		if err := s.Reload(); err != nil {
			log.Printf("reloading sensor %s: %v\n", sess.Sensor, err)
			return
		}
		log.Printf("reloaded sensor %s, %d traces\n", sess.Sensor, s.Session().Len())
	})
}

func (s *Sensor) list(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	slots := s.sess.Slots()
	out := make([]Trace, s.sess.Len())
	for i, f := range s.sess.Index.Files {
		out[i] = Trace{Index: i, Name: filepath.Base(f), Matched: slots != nil && slots.Has(i)}
	}
	s.mu.Unlock()
	server.EncodeAndRespond(w, out)
}

func (s *Sensor) getCursor(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	i := s.nav.Current()
	s.mu.Unlock()
	hp := server.HumanPayload{T: types.Int, Int: i}
	hp.EncodeAndRespond(w, r)
}

// setCursor moves the cursor by the token in {"str": token} and replies with
// the new index.  q leaves the cursor where it is.
func (s *Sensor) setCursor(w http.ResponseWriter, r *http.Request) {
	str := server.StrT{}
	err := json.NewDecoder(r.Body).Decode(&str)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	st := s.nav.Step(str.Str)
	i := s.nav.Current()
	s.mu.Unlock()
	if st == navigate.Invalid {
		http.Error(w, fmt.Sprintf("Value %s not recognized", str.Str), http.StatusBadRequest)
		return
	}
	hp := server.HumanPayload{T: types.Int, Int: i}
	hp.EncodeAndRespond(w, r)
}

// trace resolves the {n} URL parameter, writing an error reply if it is bad
func (s *Sensor) trace(w http.ResponseWriter, r *http.Request) (*session.Session, int, bool) {
	sess := s.Session()
	nS := chi.URLParam(r, "n")
	n, err := strconv.Atoi(nS)
	if err != nil {
		http.Error(w, fmt.Sprintf("trace %q is not an integer", nS), http.StatusBadRequest)
		return nil, 0, false
	}
	if n < 0 || n >= sess.Len() {
		http.Error(w, fmt.Sprintf("no trace %d among %d", n, sess.Len()), http.StatusNotFound)
		return nil, 0, false
	}
	return sess, n, true
}

func (s *Sensor) summary(w http.ResponseWriter, r *http.Request) {
	sess, n, ok := s.trace(w, r)
	if !ok {
		return
	}
	sum, err := sess.Summarize(n)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	server.EncodeAndRespond(w, sum)
}

func (s *Sensor) fits(w http.ResponseWriter, r *http.Request) {
	sess, n, ok := s.trace(w, r)
	if !ok {
		return
	}
	// buffer so that a failed export can still be reported
	buf := &bytes.Buffer{}
	if err := sess.Export(n, buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.mu.Lock()
	rec := s.rec
	s.mu.Unlock()
	if rec != nil && rec.IsEnabled() {
		fn, err := rec.Record(func(f io.Writer) error {
			_, err := f.Write(buf.Bytes())
			return err
		})
		if err != nil {
			log.Printf("recording fits export: %v\n", err)
		} else {
			log.Printf("recorded %s\n", fn)
		}
	}
	w.Header().Set("Content-Type", "image/fits")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fitsName(sess, n)))
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(buf.Bytes())
	if err != nil {
		log.Printf("writing fits reply: %v\n", err)
	}
}

func (s *Sensor) raw(w http.ResponseWriter, r *http.Request) {
	sess, n, ok := s.trace(w, r)
	if !ok {
		return
	}
	path := sess.Path(layout.Raw, n)
	server.ReplyWithFile(w, r, filepath.Base(path), filepath.Dir(path))
}

func fitsName(sess *session.Session, n int) string {
	base := filepath.Base(sess.Path(layout.Raw, n))
	return sess.Sensor + "-" + base[:len(base)-len(filepath.Ext(base))] + ".fits"
}
