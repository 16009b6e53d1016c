// Package server contains misc server utilities.
package server

import (
	"encoding/json"
	"fmt"
	"go/types"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-chi/chi"
)

// BoolT is a struct with a single Bool field
type BoolT struct {
	Bool bool `json:"bool"`
}

// IntT is a struct with a single Int field
type IntT struct {
	Int int `json:"int"`
}

// FloatT is a struct with a single F64 field
type FloatT struct {
	F64 float64 `json:"f64"`
}

// StrT is a struct with a single Str field
type StrT struct {
	Str string `json:"str"`
}

// HumanPayload is a struct containing the basic types, and the kind of
// the one that is populated.  It is encoded as the matching single field
// struct, e.g. {"int": 5}.
type HumanPayload struct {
	Bool   bool
	Int    int
	Float  float64
	String string
	T      types.BasicKind
}

// EncodeAndRespond encodes the payload as JSON and writes it to w
func (hp HumanPayload) EncodeAndRespond(w http.ResponseWriter, r *http.Request) {
	var v interface{}
	switch hp.T {
	case types.Bool:
		v = BoolT{Bool: hp.Bool}
	case types.Int:
		v = IntT{Int: hp.Int}
	case types.Float64:
		v = FloatT{F64: hp.Float}
	case types.String:
		v = StrT{Str: hp.String}
	default:
		http.Error(w, fmt.Sprintf("payload of unsupported kind %d", hp.T), http.StatusInternalServerError)
		return
	}
	EncodeAndRespond(w, v)
}

// EncodeAndRespond writes v to w as JSON with status 200
func EncodeAndRespond(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		fstr := fmt.Sprintf("error encoding data to json %q", err)
		log.Println(fstr)
		http.Error(w, fstr, http.StatusInternalServerError)
	}
}

// ReplyWithFile replies to the client request by serving the given file name
func ReplyWithFile(w http.ResponseWriter, r *http.Request, fn string, fldr string) {
	filePath, err := filepath.Abs(filepath.Join(fldr, fn))
	if err != nil {
		fstr := fmt.Sprintf("unable to compute abspath of file %s %s %s", fldr, fn, err)
		log.Println(fstr)
		http.Error(w, fstr, http.StatusInternalServerError)
		return
	}

	f, err := os.Open(filePath)
	if err != nil {
		fstr := fmt.Sprintf("source file missing %s", filePath)
		log.Println(fstr)
		http.Error(w, fstr, http.StatusNotFound)
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		fstr := fmt.Sprintf("error retrieving source file stats %s", err)
		log.Println(fstr)
		http.Error(w, fstr, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeContent(w, r, fn, stat.ModTime(), f)
}

// MethodPath is a struct containing an HTTP method and a URL path
type MethodPath struct {
	Method, Path string
}

// RouteTable maps method/path pairs to handlers
type RouteTable map[MethodPath]http.HandlerFunc

// Endpoints lists the routes of the table as "METHOD /path", sorted by path
func (rt RouteTable) Endpoints() []string {
	keys := make([]MethodPath, 0, len(rt))
	for k := range rt {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Path != keys[j].Path {
			return keys[i].Path < keys[j].Path
		}
		return keys[i].Method < keys[j].Method
	})
	routes := make([]string, len(keys))
	for i, k := range keys {
		routes[i] = k.Method + " " + k.Path
	}
	return routes
}

// Bind binds every route in the table to r, plus GET /list-of-routes
func (rt RouteTable) Bind(r chi.Router) {
	for mp, fcn := range rt {
		r.MethodFunc(mp.Method, mp.Path, fcn)
	}
	r.Get("/list-of-routes", func(w http.ResponseWriter, req *http.Request) {
		EncodeAndRespond(w, rt.Endpoints())
	})
}

// HTTPer is an object which exposes a route table
type HTTPer interface {
	RT() RouteTable
}

// SubMuxSanitize converts a URL stem such as "sensors/062493" into the
// form chi mounts on, "/sensors/062493"
func SubMuxSanitize(str string) string {
	str = strings.Trim(str, "/")
	return "/" + str
}
