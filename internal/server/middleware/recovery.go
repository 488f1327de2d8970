package middleware

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/vidlens/vidlens/internal/apierr"
)

// Recovery converts handler panics into 500 responses with the standard
// error envelope instead of dropping the connection.
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("handler panic",
						zap.String("path", r.URL.Path),
						zap.Any("panic", rec))
					apierr.Write(w, http.StatusInternalServerError, apierr.CodeInternal,
						fmt.Sprintf("panic: %v", rec))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
