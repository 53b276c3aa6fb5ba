package health

import "net/http"

func Healthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

// Readyz reports readiness. The service has no external dependencies to wait
// for, so ready == alive.
func Readyz() http.Handler { return Healthz() }
