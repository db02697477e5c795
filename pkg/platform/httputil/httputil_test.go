package httputil

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "compliance-panel/pkg/domain-errors"
	"compliance-panel/pkg/testutil"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := testutil.DecodeJSON[map[string]string](t, w)
		assert.Equal(t, "internal_error", body["error"])
		_, ok := body["error_description"]
		assert.False(t, ok, "expected error_description to be omitted for internal errors")
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid input"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := testutil.DecodeJSON[map[string]string](t, w)
		assert.Equal(t, "bad_request", body["error"])
		assert.Equal(t, "invalid input", body["error_description"])
	})

	t.Run("plain errors become internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, fmt.Errorf("boom"))
		testutil.AssertStatusAndError(t, w, http.StatusInternalServerError, "internal_error")
	})

	t.Run("wrapped not found keeps its status", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, fmt.Errorf("handler: %w", dErrors.New(dErrors.CodeNotFound, "policy not found")))
		testutil.AssertStatusAndError(t, w, http.StatusNotFound, "not_found")
	})
}

func TestStatusFor(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeValidation:   http.StatusBadRequest,
		dErrors.CodeUnauthorized: http.StatusUnauthorized,
		dErrors.CodeForbidden:    http.StatusForbidden,
		dErrors.CodeConflict:     http.StatusConflict,
		dErrors.CodeRateLimited:  http.StatusTooManyRequests,
		dErrors.CodeUnavailable:  http.StatusServiceUnavailable,
	}
	for code, status := range cases {
		assert.Equal(t, status, StatusFor(code), string(code))
	}
}

type prepareReq struct {
	Name string `json:"name"`
}

func (r *prepareReq) Normalize() { r.Name = strings.TrimSpace(r.Name) }

func (r *prepareReq) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("normalizes before validating", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := testutil.NewRawRequest(t, http.MethodPost, "/", `{"name":"  GDPR  "}`)
		req, ok := DecodeAndPrepare[prepareReq](w, r, logger, r.Context(), "req-1")
		require.True(t, ok)
		assert.Equal(t, "GDPR", req.Name)
	})

	t.Run("whitespace name fails validation", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := testutil.NewRawRequest(t, http.MethodPost, "/", `{"name":"   "}`)
		_, ok := DecodeAndPrepare[prepareReq](w, r, logger, r.Context(), "req-1")
		require.False(t, ok)
		testutil.AssertStatusAndError(t, w, http.StatusBadRequest, "validation_error")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := testutil.NewRawRequest(t, http.MethodPost, "/", `{"name":`)
		_, ok := DecodeAndPrepare[prepareReq](w, r, logger, r.Context(), "req-1")
		require.False(t, ok)
		testutil.AssertStatusAndError(t, w, http.StatusBadRequest, "bad_request")
	})

	t.Run("empty body", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := testutil.NewRawRequest(t, http.MethodPost, "/", ``)
		_, ok := DecodeAndPrepare[prepareReq](w, r, logger, r.Context(), "req-1")
		require.False(t, ok)
		testutil.AssertStatusAndError(t, w, http.StatusBadRequest, "bad_request")
	})

	t.Run("optional body decodes empty input as zero value", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := testutil.NewRawRequest(t, http.MethodPost, "/", ``)
		_, ok := DecodeOptionalAndPrepare[prepareReq](w, r, logger, r.Context(), "req-1")
		require.False(t, ok)
		testutil.AssertStatusAndError(t, w, http.StatusBadRequest, "validation_error")
	})

	t.Run("optional body still rejects malformed JSON", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := testutil.NewRawRequest(t, http.MethodPost, "/", `{"name":`)
		_, ok := DecodeOptionalAndPrepare[prepareReq](w, r, logger, r.Context(), "req-1")
		require.False(t, ok)
		testutil.AssertStatusAndError(t, w, http.StatusBadRequest, "bad_request")
	})
}
