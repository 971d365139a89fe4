package wallet

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const requestIDHeader = "X-Request-ID"

type ctxKey struct{}

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dwallet_http_requests_total",
		Help: "Number of API requests served.",
	}, []string{"route", "method", "code"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dwallet_http_request_duration_seconds",
		Help:    "Time taken to serve API requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	ledgerSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dwallet_ledger_submissions_total",
		Help: "Number of transactions submitted to the ledger networks.",
	}, []string{"net", "kind", "outcome"})
)

// recorder keeps the status code written by a handler.
type recorder struct {
	http.ResponseWriter
	status int
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requestID tags every request with the id sent by the client in X-Request-ID or a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		rw.Header().Set(requestIDHeader, id)
		next.ServeHTTP(rw, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func reqID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKey{}).(string)

	return id
}

// logRequests logs every request once served. Bodies are never logged as they carry secret seeds.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &recorder{ResponseWriter: rw, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		slog.Info("httpreq",
			"id", reqID(r),
			"remote", r.RemoteAddr,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

// cors allows browsers on origin to call the API and answers preflight requests.
func cors(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		h := rw.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, "+requestIDHeader)
		h.Set("Access-Control-Expose-Headers", requestIDHeader)

		if origin != "*" {
			h.Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			rw.WriteHeader(http.StatusNoContent)

			return
		}

		next.ServeHTTP(rw, r)
	})
}

// instrument counts and times the requests of every route.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		route := r.URL.Path

		if cr := mux.CurrentRoute(r); cr != nil {
			if t, err := cr.GetPathTemplate(); err == nil {
				route = t
			}
		}

		start := time.Now()
		rec := &recorder{ResponseWriter: rw, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
	})
}

// submitted counts a ledger submission by its outcome.
func submitted(net, kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}

	ledgerSubmissions.WithLabelValues(net, kind, outcome).Inc()
}
