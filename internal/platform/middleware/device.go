package middleware

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"heirloom/pkg/requestcontext"
)

// Device parses the User-Agent header and stores a compact client description
// in the request context so downstream logging carries it.
func Device(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if device := describeClient(r.UserAgent()); device != "" {
			r = r.WithContext(requestcontext.WithDevice(r.Context(), device))
		}
		next.ServeHTTP(w, r)
	})
}

func describeClient(rawUA string) string {
	if rawUA == "" {
		return ""
	}
	ua := useragent.New(rawUA)
	name, version := ua.Browser()
	parts := make([]string, 0, 3)
	if name != "" {
		parts = append(parts, name)
	}
	if version != "" {
		parts = append(parts, version)
	}
	if os := ua.OS(); os != "" {
		parts = append(parts, "("+os+")")
	}
	return strings.Join(parts, " ")
}
