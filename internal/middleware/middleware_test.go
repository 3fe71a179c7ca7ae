package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tresmil/internal/testutil"
)

type MiddlewareSuite struct {
	suite.Suite
}

func TestMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareSuite))
}

func (s *MiddlewareSuite) TestLoggingRecordsStatusAndRequestID() {
	logger, logs := testutil.CaptureLogger()
	var seen string
	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	s.Equal(http.StatusTeapot, rec.Code)
	s.NotEmpty(seen)
	s.Equal(seen, rec.Header().Get(RequestIDHeader))
	s.Contains(logs.String(), `"status":418`)
	s.Contains(logs.String(), `"size":15`)
	s.Contains(logs.String(), `"path":"/api/health"`)
}

func (s *MiddlewareSuite) TestLoggingReusesCallerRequestID() {
	handler := Logging(testutil.NopLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal("abc-123", RequestID(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	s.Equal("abc-123", rec.Header().Get(RequestIDHeader))
}

func (s *MiddlewareSuite) TestHijackUnsupported() {
	rw := &ResponseWriter{ResponseWriter: httptest.NewRecorder()}
	_, _, err := rw.Hijack()
	s.Error(err)
	s.False(rw.hijacked)
}

func (s *MiddlewareSuite) TestRecoveryUsesPanicHandler() {
	logger, logs := testutil.CaptureLogger()
	called := false
	handler := Recovery(logger, func(w http.ResponseWriter, _ *http.Request, err any) {
		called = true
		s.Equal("boom", err)
		DefaultPanicHandler(w, nil, err)
	})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	s.True(called)
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.True(strings.Contains(logs.String(), "panic recovered"))
}
