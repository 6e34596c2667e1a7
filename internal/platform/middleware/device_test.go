package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heirloom/internal/platform/middleware"
	"heirloom/pkg/requestcontext"
	"heirloom/pkg/testutil"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func TestDevice(t *testing.T) {
	capture := func() (http.Handler, *string) {
		var device string
		handler := middleware.Device(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			device = requestcontext.Device(r.Context())
		}))
		return handler, &device
	}

	testutil.Given(t, "a request from a desktop browser", func(t *testing.T) {
		handler, device := capture()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("User-Agent", chromeUA)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		require.NotEmpty(t, *device)
		assert.Contains(t, *device, "Chrome")
		assert.Contains(t, *device, "Windows")
	})

	testutil.Given(t, "a request without a user agent", func(t *testing.T) {
		handler, device := capture()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Empty(t, *device)
	})
}
