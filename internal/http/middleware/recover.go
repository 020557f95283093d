package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/davidbz/chatrelay/internal/domain"
	"github.com/davidbz/chatrelay/internal/httputil"
	"github.com/davidbz/chatrelay/internal/observability"
)

// Recover turns a handler panic into a 500 error envelope.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				observability.FromContext(r.Context()).Error("panic recovered",
					observability.String("panic", fmt.Sprint(rec)),
					observability.String("stack", string(debug.Stack())),
				)
				httputil.WriteError(r.Context(), w,
					domain.NewServerError("internal server error", fmt.Errorf("panic: %v", rec)))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
