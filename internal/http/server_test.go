package http_test

import (
	"context"
	nethttp "net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apihttp "github.com/templatehub/template-manager/internal/http"
	"github.com/templatehub/template-manager/internal/logging"
)

func TestServerStartAndShutdown(t *testing.T) {
	server := apihttp.NewServer(
		"127.0.0.1:0",
		nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			w.WriteHeader(nethttp.StatusOK)
		}),
		time.Second,
		time.Second,
		logging.NewLogger(true),
	)

	errs := make(chan error, 1)
	go func() {
		errs <- server.Start()
	}()

	// give the listener a moment to come up before shutting down
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))

	select {
	case err := <-errs:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("server did not stop after shutdown")
	}
}
