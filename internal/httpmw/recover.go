package httpmw

import (
	"net/http"

	"github.com/northpier/northpier-web/internal/log"
	"github.com/northpier/northpier-web/internal/xerrors"
)

// Recover converts panics in downstream handlers into logged 500 responses.
// If response bytes were already written the fault cannot be turned into a
// clean response; it is logged and the connection is left to the transport.
// onPanic, when non-nil, is invoked per recovered panic (metrics).
func Recover(L log.Logger, onPanic func()) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w}

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// http.ErrAbortHandler is the sanctioned way to abort a
				// response; re-panic so net/http handles it.
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				var err error
				switch v := rec.(type) {
				case error:
					err = xerrors.EnsureTrace(v)
				default:
					err = xerrors.Newf("panic: %v", v)
				}

				if onPanic != nil {
					onPanic()
				}

				lg := L
				if lg == nil {
					lg = log.FromContext(r.Context())
				}
				lg.Error(r.Context(), err, "panic recovered",
					"url.path", r.URL.Path,
					"http.request.method", r.Method,
				)

				if rw.status == 0 {
					rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
					rw.Header().Set("Cache-Control", "no-store")
					rw.WriteHeader(http.StatusInternalServerError)
					_, _ = rw.Write([]byte("500 Internal Server Error"))
				}
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
