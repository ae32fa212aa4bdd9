package telemetry_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/vfat/internal/telemetry"
)

func Test_Setup_Returns_Noop_Provider_When_Endpoint_Empty(t *testing.T) {
	t.Parallel()

	mp, shutdown, err := telemetry.Setup(t.Context(), "")
	require.NoError(t, err)

	counter, err := mp.Meter("test").Int64Counter("test.count")
	require.NoError(t, err)
	counter.Add(t.Context(), 1)

	require.NoError(t, shutdown(t.Context()))
}

func Test_Setup_Exports_To_Collector_When_Shut_Down(t *testing.T) {
	t.Parallel()

	var posts atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/v1/metrics" {
			posts.Add(1)
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	endpoint := strings.TrimPrefix(srv.URL, "http://")

	mp, shutdown, err := telemetry.Setup(t.Context(), endpoint)
	require.NoError(t, err)

	counter, err := mp.Meter("test").Int64Counter("test.count")
	require.NoError(t, err)
	counter.Add(t.Context(), 3)

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	require.NoError(t, shutdown(ctx))
	assert.Positive(t, posts.Load())
}
