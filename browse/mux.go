package browse

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/railsense/traceview/server"
	"github.com/railsense/traceview/server/middleware/locker"
)

// BuildMux mounts every sensor at /sensors/{id}, each with its own cursor
// lock at /sensors/{id}/lock.  Claiming the cursor at /driver is never
// locked.  The root serves GET /sensors, the sorted ids, and GET /endpoints,
// the routes of every sensor.
func BuildMux(sensors map[string]*Sensor) chi.Router {
	root := chi.NewRouter()
	root.Use(middleware.Logger)
	supergraph := map[string][]string{}

	ids := make([]string, 0, len(sensors))
	for id := range sensors {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		httper := sensors[id]
		hndlS := server.SubMuxSanitize("sensors/" + id)

		lock := locker.New()
		lock.DoNotProtect = append(lock.DoNotProtect, "driver")
		locker.Inject(httper, lock)
		supergraph[hndlS] = httper.RT().Endpoints()

		r := chi.NewRouter()
		r.Use(lock.Check)
		httper.RT().Bind(r)
		root.Mount(hndlS, r)
	}
	root.Get("/sensors", func(w http.ResponseWriter, r *http.Request) {
		server.EncodeAndRespond(w, ids)
	})
	root.Get("/endpoints", func(w http.ResponseWriter, r *http.Request) {
		server.EncodeAndRespond(w, supergraph)
	})
	return root
}
