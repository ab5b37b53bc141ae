package memstore

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/getmockd/userdesk/pkg/record"
)

// Handler returns the HTTP handler serving the collection.
func (s *Store) Handler() http.Handler {
	mux := http.NewServeMux()
	base := "/" + s.resource

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("GET "+base, s.handleList)
	mux.HandleFunc("POST "+base, s.handleCreate)
	mux.HandleFunc("GET "+base+"/{id}", s.handleGet)
	mux.HandleFunc("PUT "+base+"/{id}", s.handleReplace)
	mux.HandleFunc("PATCH "+base+"/{id}", s.handlePatch)
	mux.HandleFunc("DELETE "+base+"/{id}", s.handleDelete)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, http.StatusNotFound, "not_found", "no route for "+r.Method+" "+r.URL.Path)
	})

	return s.logRequests(s.limitRequests(mux))
}

func (s *Store) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"resource": s.resource,
		"count":    s.Count(),
	})
}

func (s *Store) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.List())
}

func (s *Store) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Store) handleCreate(w http.ResponseWriter, r *http.Request) {
	rec, _, err := s.decodeRecord(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	created, err := s.Create(rec)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Store) handleReplace(w http.ResponseWriter, r *http.Request) {
	rec, _, err := s.decodeRecord(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	replaced, err := s.Replace(r.PathValue("id"), rec)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, replaced)
}

func (s *Store) handlePatch(w http.ResponseWriter, r *http.Request) {
	rec, present, err := s.decodeRecord(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	fields := make(map[record.Field]string)
	for _, f := range record.Fields {
		if _, ok := present[string(f)]; ok {
			v, _ := rec.Value(f)
			fields[f] = v
		}
	}
	patched, err := s.Patch(r.PathValue("id"), fields)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, patched)
}

func (s *Store) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.Delete(r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// decodeRecord reads, validates and decodes a record body. It also returns
// the set of keys present in the body.
func (s *Store) decodeRecord(w http.ResponseWriter, r *http.Request) (record.Record, map[string]interface{}, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return record.Record{}, nil, &PayloadTooLargeError{MaxSize: s.maxBodySize}
		}
		return record.Record{}, nil, &ValidationError{Message: "failed to read request body: " + err.Error()}
	}

	var raw interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return record.Record{}, nil, &ValidationError{Message: "invalid JSON: " + err.Error()}
	}
	if err := validateBody(raw); err != nil {
		return record.Record{}, nil, err
	}

	var rec record.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return record.Record{}, nil, &ValidationError{Message: err.Error()}
	}
	present, _ := raw.(map[string]interface{})
	return rec, present, nil
}

func (s *Store) writeError(w http.ResponseWriter, err error) {
	status, resp := ToErrorResponse(err)
	if status >= http.StatusInternalServerError && status != http.StatusInsufficientStorage {
		s.log.Error("request failed", "error", err)
	}
	writeJSON(w, status, resp)
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Store) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		// r.Pattern is filled in by the mux. It is empty only when the
		// limiter answered before routing.
		route := r.Pattern
		if route == "" {
			route = "limited"
		}
		elapsed := time.Since(start)
		s.requests.With(r.Method, route, strconv.Itoa(rec.status)).Inc()
		s.duration.With(r.Method, route).Observe(elapsed.Seconds())

		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"requestId", r.Header.Get("X-Request-ID"),
			"duration", elapsed,
		)
	})
}
