// Package history exposes stored checks over HTTP.
package history

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	corehist "github.com/kilianp07/ridecheck/core/history"
)

// NewChecksHandler returns an HTTP handler exposing stored checks via
// GET /api/history/checks. Requests must include an Authorization header with
// "Bearer <token>" when token is non-empty.
func NewChecksHandler(store corehist.Store, token string) http.Handler {
	return guard(token, func(w http.ResponseWriter, r *http.Request, q corehist.Query) {
		recs, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if recs == nil {
			recs = []corehist.Record{}
		}
		writeJSON(w, recs)
	})
}

// NewPairsHandler returns an HTTP handler exposing worker/ride pair counts via
// GET /api/history/pairs, most frequent first.
func NewPairsHandler(store corehist.Store, token string) http.Handler {
	return guard(token, func(w http.ResponseWriter, r *http.Request, q corehist.Query) {
		pairs, err := store.PairCounts(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if pairs == nil {
			pairs = []corehist.PairCount{}
		}
		writeJSON(w, pairs)
	})
}

// NewMux registers both handlers.
func NewMux(store corehist.Store, token string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/history/checks", NewChecksHandler(store, token))
	mux.Handle("/api/history/pairs", NewPairsHandler(store, token))
	return mux
}

func guard(token string, next func(http.ResponseWriter, *http.Request, corehist.Query)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		q, err := parseQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		next(w, r, q)
	})
}

func parseQuery(r *http.Request) (corehist.Query, error) {
	v := r.URL.Query()
	q := corehist.Query{
		RunID:  v.Get("run_id"),
		Worker: v.Get("worker"),
		Ride:   v.Get("ride"),
	}
	if s := v.Get("since"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, fmt.Errorf("since: %w", err)
		}
		q.Since = t
	}
	return q, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
