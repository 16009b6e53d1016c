// Package imgrec contains an image recorder used to automatically save exported
// traces to disk.
package imgrec

import (
	"encoding/json"
	"fmt"
	"go/types"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/railsense/traceview/server"
)

// Recorder records image sequences with incrementing filenames in yyyy-mm-dd subfolders
type Recorder struct {
	mu sync.Mutex

	// Root is the root path
	Root string

	// Prefix is the prefix for the filenames
	Prefix string

	// Enabled is a flag unused by this struct that allows consumers to disable its use in their code
	Enabled bool

	// Now returns the time that picks the subfolder; time.Now if nil
	Now func() time.Time
}

// folder returns the dated subfolder of the root, creating it
func (r *Recorder) folder() (string, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	y, m, d := now().Date()
	fldr := filepath.Join(r.Root, fmt.Sprintf("%04d-%02d-%02d", y, m, d))
	err := os.MkdirAll(fldr, 0o755)
	return fldr, errors.Wrap(err, "creating recorder folder")
}

// next scans the folder for the highest counter in use with the current
// prefix and returns one more
func (r *Recorder) next(fldr string) (int, error) {
	files, err := os.ReadDir(fldr)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, file := range files {
		// skip directories, non-fits, and wrong prefix
		if file.IsDir() {
			continue
		}
		fn := file.Name()
		if !strings.HasSuffix(fn, ".fits") || !strings.HasPrefix(fn, r.Prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(fn, r.Prefix), ".fits"))
		if err != nil {
			continue
		}
		if count < n {
			count = n
		}
	}
	return count + 1, nil
}

// Record creates the next file of the sequence, hands it to write and
// returns its path.  A file write fails on is removed.
func (r *Recorder) Record(write func(io.Writer) error) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fldr, err := r.folder()
	if err != nil {
		return "", err
	}
	n, err := r.next(fldr)
	if err != nil {
		return "", err
	}
	fn := filepath.Join(fldr, fmt.Sprintf("%s%06d.fits", r.Prefix, n))
	fid, err := os.OpenFile(fn, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	err = write(fid)
	if cerr := fid.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(fn)
		return "", err
	}
	return fn, nil
}

// IsEnabled returns the Enabled field under the recorder's lock
func (r *Recorder) IsEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Enabled
}

// HTTPWrapper is an HTTP wrapper around an image recorder that allows the folder and prefix to be changed on the fly
//
// it does not implement server.HTTPer, offering an Inject method allowing it to be injected
// into another HTTPer
type HTTPWrapper struct {
	*Recorder
}

// NewHTTPWrapper returns an HTTP wrapper around a recorder
func NewHTTPWrapper(r *Recorder) HTTPWrapper {
	return HTTPWrapper{r}
}

func (h HTTPWrapper) setString(dst *string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		str := server.StrT{}
		err := json.NewDecoder(r.Body).Decode(&str)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.mu.Lock()
		*dst = str.Str
		h.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}
}

func (h HTTPWrapper) getString(src *string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		hp := server.HumanPayload{T: types.String, String: *src}
		h.mu.Unlock()
		hp.EncodeAndRespond(w, r)
	}
}

// GetEnabled returns the Recorder's Enabled field
func (h HTTPWrapper) GetEnabled(w http.ResponseWriter, r *http.Request) {
	hp := server.HumanPayload{T: types.Bool, Bool: h.IsEnabled()}
	hp.EncodeAndRespond(w, r)
}

// SetEnabled sets the recorder's Enabled field
func (h HTTPWrapper) SetEnabled(w http.ResponseWriter, r *http.Request) {
	bT := server.BoolT{}
	err := json.NewDecoder(r.Body).Decode(&bT)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.mu.Lock()
	h.Recorder.Enabled = bT.Bool
	h.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

// Inject adds GET and POST routes for /autowrite/root, /autowrite/prefix and
// /autowrite/enabled to the HTTPer which manipulate this wrapper's recorder
func (h HTTPWrapper) Inject(other server.HTTPer) {
	rt := other.RT()
	rt[server.MethodPath{Method: http.MethodPost, Path: "/autowrite/root"}] = h.setString(&h.Recorder.Root)
	rt[server.MethodPath{Method: http.MethodGet, Path: "/autowrite/root"}] = h.getString(&h.Recorder.Root)
	rt[server.MethodPath{Method: http.MethodPost, Path: "/autowrite/prefix"}] = h.setString(&h.Recorder.Prefix)
	rt[server.MethodPath{Method: http.MethodGet, Path: "/autowrite/prefix"}] = h.getString(&h.Recorder.Prefix)
	rt[server.MethodPath{Method: http.MethodPost, Path: "/autowrite/enabled"}] = h.SetEnabled
	rt[server.MethodPath{Method: http.MethodGet, Path: "/autowrite/enabled"}] = h.GetEnabled
}
