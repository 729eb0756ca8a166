package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

var errStoreDown = errors.New("store down")

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestServer_Handler(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name       string
		store      Pinger
		path       string
		wantStatus int
	}{
		{name: "healthz", store: stubPinger{}, path: "/healthz", wantStatus: http.StatusOK},
		{name: "readyz ok", store: stubPinger{}, path: "/readyz", wantStatus: http.StatusOK},
		{name: "readyz store down", store: stubPinger{err: errStoreDown}, path: "/readyz", wantStatus: http.StatusServiceUnavailable},
		{name: "readyz without store", store: nil, path: "/readyz", wantStatus: http.StatusOK},
		{name: "metrics", store: stubPinger{}, path: "/metrics", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(tt.store, 0, &logger)
			rec := httptest.NewRecorder()

			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
