// Package server exposes the lookup API over HTTP: point and bulk IP
// lookups, the AS directory and aggregated subnet listings.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"iptoasn/internal/asndb"
)

// cacheTTL matches the upstream dataset refresh cadence: answers may be
// cached for a day.
const cacheTTL = 24 * time.Hour

type server struct {
	store *asndb.Store
}

// NewHandler builds the HTTP routing for a dataset store.
func NewHandler(store *asndb.Store) http.Handler {
	s := &server{store: store}

	r := chi.NewRouter()
	r.Use(enableCORS)

	r.Get("/", s.index)
	r.Route("/v1/as", func(r chi.Router) {
		r.With(cacheHeaders).Get("/ip/{ip}", s.lookupIP)
		r.With(cacheHeaders).Get("/ips", s.lookupBulk)
		r.Post("/ips", s.lookupBulk)
		r.With(cacheHeaders).Get("/n/{asn}", s.lookupASN)
		r.With(cacheHeaders).Get("/n/{asn}/subnets", s.listSubnets)
		r.With(cacheHeaders).Get("/ns", s.listASNs)
	})

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// cacheHeaders marks lookup answers as cacheable for cacheTTL. Vary keeps
// negotiated renditions apart in shared caches.
func cacheHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", fmt.Sprintf("max-age=%d", int(cacheTTL.Seconds())))
		h.Set("Expires", time.Now().UTC().Add(cacheTTL).Format(http.TimeFormat))
		h.Set("Vary", "Accept")
		next.ServeHTTP(w, r)
	})
}
