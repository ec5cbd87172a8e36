package relay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	chainregistryApp "github.com/fulcrumlabs/flashrelay/business/chainregistry/app"
	chainregistryDomain "github.com/fulcrumlabs/flashrelay/business/chainregistry/domain"
	executionApp "github.com/fulcrumlabs/flashrelay/business/execution/app"
	"github.com/fulcrumlabs/flashrelay/internal/apperror"
	"github.com/fulcrumlabs/flashrelay/internal/logger"
)

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func testLogger() logger.LoggerInterface {
	return logger.New(discardWriter{}, logger.LevelError, "test", nil)
}

func testRegistry(t *testing.T) *chainregistryApp.Registry {
	t.Helper()
	descriptors := []chainregistryDomain.ChainDescriptor{{
		ChainID: 1,
		Name:    "ethereum",
	}}
	registry, err := chainregistryApp.New(descriptors, nil, testLogger())
	require.NoError(t, err)
	return registry
}

func testBundle() executionApp.Bundle {
	return executionApp.Bundle{
		Transactions: []string{"0xdeadbeef"},
		MerkleRoot:   "0xabc",
		TargetBlock:  100,
		AvoidMempool: true,
	}
}

func TestSubmitSendsBlockchainNetworkParam(t *testing.T) {
	var gotParams map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req jsonRPCRequest
		require.NoError(t, json.Unmarshal(body, &req))
		require.Len(t, req.Params, 1)
		gotParams = req.Params[0].(map[string]any)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"ok"}`))
	}))
	defer server.Close()

	client, err := New(Config{Endpoint: server.URL, BreakerFailureLimit: 5, BreakerCooldown: time.Minute}, testRegistry(t), nil, testLogger())
	require.NoError(t, err)

	err = client.Submit(context.Background(), 1, testBundle(), nil)
	require.NoError(t, err)
	require.Equal(t, "ethereum", gotParams["blockchain_network"])
}

func TestSubmitUnknownChainFallsBackToNumericNetwork(t *testing.T) {
	var gotParams map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req jsonRPCRequest
		require.NoError(t, json.Unmarshal(body, &req))
		gotParams = req.Params[0].(map[string]any)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"ok"}`))
	}))
	defer server.Close()

	client, err := New(Config{Endpoint: server.URL, BreakerFailureLimit: 5, BreakerCooldown: time.Minute}, testRegistry(t), nil, testLogger())
	require.NoError(t, err)

	err = client.Submit(context.Background(), 999, testBundle(), nil)
	require.NoError(t, err)
	require.Equal(t, "999", gotParams["blockchain_network"])
}

func TestSubmitTripsBreakerAfterRepeatedFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := New(Config{Endpoint: server.URL, FallbackEnabled: false, BreakerFailureLimit: 2, BreakerCooldown: time.Minute}, testRegistry(t), nil, testLogger())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		err = client.Submit(context.Background(), 1, testBundle(), nil)
		require.Error(t, err)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		require.Equal(t, apperror.CodeRelaySubmissionError, appErr.Code)
	}

	err = client.Submit(context.Background(), 1, testBundle(), nil)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperror.CodeCircuitBreakerOpen, appErr.Code)
}
