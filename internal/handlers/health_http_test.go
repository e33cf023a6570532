package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestHealth(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	for _, tc := range []struct {
		name string
		ping func(context.Context) error
		want int
	}{
		{"no ping", nil, http.StatusOK},
		{"up", up, http.StatusOK},
		{"down", down, http.StatusServiceUnavailable},
	} {
		rr := httptest.NewRecorder()
		Health(tc.ping, zerolog.Nop())(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rr.Code != tc.want {
			t.Fatalf("%s: status %d, want %d", tc.name, rr.Code, tc.want)
		}
	}
}
