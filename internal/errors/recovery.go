package errors

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/copyleftdev/heuristics/internal/logging"
)

// RecoveryMiddleware returns a middleware that recovers from panics and
// answers with a JSON 500.
func RecoveryMiddleware(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("Recovered from panic", map[string]interface{}{
						"error":  rec,
						"stack":  string(debug.Stack()),
						"method": r.Method,
						"path":   r.URL.Path,
						"query":  r.URL.RawQuery,
					})
					WriteJSON(w, New(KindInternal, http.StatusText(http.StatusInternalServerError)))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// WriteJSON writes err as {"error": ..., "kind": ...} with the status
// HTTPStatus(err) selects.
func WriteJSON(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(HTTPStatus(err))
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": err.Error(),
		"kind":  KindOf(err).String(),
	})
}
