package middleware

import (
	"context"
	"net/http"

	"github.com/MogaPreet/maccindia/internal/compress"
)

type archiveKey struct{}

// ArchiveTypeMiddleware reads ?archiveType=tar|zip into the request context,
// defaulting to zip.
func ArchiveTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		archiveType := r.URL.Query().Get("archiveType")
		if archiveType != compress.KindTar && archiveType != compress.KindZip {
			archiveType = compress.KindZip
		}

		ctx := context.WithValue(r.Context(), archiveKey{}, archiveType)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ArchiveType returns the archive kind chosen by ArchiveTypeMiddleware.
func ArchiveType(ctx context.Context) string {
	if kind, ok := ctx.Value(archiveKey{}).(string); ok {
		return kind
	}
	return compress.KindZip
}
