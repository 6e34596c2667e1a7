package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("direct coded error", func(t *testing.T) {
		err := New(CodeNotFound, "vault not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("coded error wrapped in plain errors", func(t *testing.T) {
		err := fmt.Errorf("handler: %w", New(CodeForbidden, "not permitted"))
		assert.True(t, HasCode(err, CodeForbidden))
	})

	t.Run("plain error carries no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.False(t, HasCode(nil, CodeInternal))
	})
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeUnavailable, "save release")

	t.Run("preserves the cause for errors.Is", func(t *testing.T) {
		assert.ErrorIs(t, err, cause)
	})

	t.Run("message includes code, message, and cause", func(t *testing.T) {
		assert.Contains(t, err.Error(), "unavailable")
		assert.Contains(t, err.Error(), "save release")
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("outermost code wins", func(t *testing.T) {
		rewrapped := Wrap(err, CodeInternal, "unexpected")
		assert.True(t, HasCode(rewrapped, CodeInternal))
	})
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:        http.StatusBadRequest,
		CodeInvalidInput:      http.StatusBadRequest,
		CodeUnauthorized:      http.StatusUnauthorized,
		CodeForbidden:         http.StatusForbidden,
		CodeNotFound:          http.StatusNotFound,
		CodeConflict:          http.StatusConflict,
		CodeInvalidTransition: http.StatusConflict,
		CodeTimeout:           http.StatusGatewayTimeout,
		CodeUnavailable:       http.StatusServiceUnavailable,
		CodeChainIntegrity:    http.StatusInternalServerError,
		CodeInternal:          http.StatusInternalServerError,
	}
	for code, want := range cases {
		t.Run(string(code), func(t *testing.T) {
			require.Equal(t, want, ToHTTPStatus(code))
		})
	}

	t.Run("unknown code maps to 500", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(Code("mystery")))
	})
}
