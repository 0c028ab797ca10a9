package observability

import (
	"context"
	"encoding/json"
	"net/http"
)

const (
	healthStatusOK          = "ok"
	healthStatusUnavailable = "unavailable"
)

// ReadyCheck reports whether a subsystem is ready; nil means ready.
type ReadyCheck func(ctx context.Context) error

// HealthHandler answers liveness probes with 200 {"status":"ok"}.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		writeHealth(rw, http.StatusOK, healthStatusOK, "")
	})
}

// ReadyHandler runs checks in order and answers 503 with the first failure,
// or 200 when all pass.
func ReadyHandler(checks ...ReadyCheck) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		for _, check := range checks {
			err := check(hr.Context())
			if err != nil {
				writeHealth(rw, http.StatusServiceUnavailable, healthStatusUnavailable, err.Error())

				return
			}
		}

		writeHealth(rw, http.StatusOK, healthStatusOK, "")
	})
}

type healthBody struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func writeHealth(rw http.ResponseWriter, code int, status, reason string) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)

	// The status code is already sent; a failed body write has no recovery.
	_ = json.NewEncoder(rw).Encode(healthBody{Status: status, Error: reason})
}
