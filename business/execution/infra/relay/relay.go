// Package relay implements Stage 7 of the execution pipeline: private
// bundle submission to a MEV relay over JSON-RPC, with bearer auth, an
// optional HMAC request signature, optional mTLS, and a public-mempool
// fallback gated by configuration (spec §4.9 Stage 7).
package relay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	chainregistryApp "github.com/fulcrumlabs/flashrelay/business/chainregistry/app"
	executionApp "github.com/fulcrumlabs/flashrelay/business/execution/app"
	executionDomain "github.com/fulcrumlabs/flashrelay/business/execution/domain"
	"github.com/fulcrumlabs/flashrelay/internal/apperror"
	"github.com/fulcrumlabs/flashrelay/internal/httpclient"
	"github.com/fulcrumlabs/flashrelay/internal/logger"
	"github.com/fulcrumlabs/flashrelay/internal/ratelimit"
)

// defaultRelayRPM caps how often the relay's blxr_submit_bundle is
// called; most private-relay providers throttle bundle submission
// well below their general RPC quota.
const defaultRelayRPM = 300

const tracerName = "github.com/fulcrumlabs/flashrelay/business/execution/infra/relay"

// Config holds the relay's connection and auth parameters (mirrors
// internal/config.RelayConfig, kept decoupled from internal/config).
type Config struct {
	Endpoint            string
	BearerAuth          string
	HMACSecret          string
	TLSCertPath         string
	TLSKeyPath          string
	FallbackEnabled     bool
	BreakerFailureLimit int
	BreakerCooldown     time.Duration
}

// Client submits bundles to a private relay over blxr_submit_bundle,
// falling back to broadcasting the raw transaction publicly when the
// relay call fails and fallback is enabled. A circuit breaker guards
// Submit itself, independent of the pipeline's own Stage-5 breaker,
// since a relay outage is a transport failure that can strike even
// while the pipeline's signing gates are healthy.
type Client struct {
	cfg      Config
	http     httpclient.Client
	clients  *chainregistryApp.ClientPool
	registry *chainregistryApp.Registry
	log      logger.LoggerInterface
	tracer   trace.Tracer
	limiter  *ratelimit.Limiter
	breaker  *executionDomain.Breaker
}

// New builds a relay Client. A TLS client certificate is loaded when
// both TLSCertPath and TLSKeyPath are set (mTLS to the relay).
func New(cfg Config, registry *chainregistryApp.Registry, clients *chainregistryApp.ClientPool, log logger.LoggerInterface) (*Client, error) {
	var opts []httpclient.ClientOption
	opts = append(opts, httpclient.WithBaseURL(cfg.Endpoint), httpclient.WithProviderName("mev-relay"))

	if cfg.TLSCertPath != "" && cfg.TLSKeyPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.TLSCertPath, cfg.TLSKeyPath)
		if err != nil {
			return nil, fmt.Errorf("relay: load client certificate: %w", err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		transport := &http.Transport{
			TLSClientConfig: &tls.Config{
				Certificates: []tls.Certificate{cert},
				RootCAs:      pool,
			},
		}
		opts = append(opts, httpclient.WithRoundTripper(transport))
	}

	hc, err := httpclient.NewInstrumentedClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("relay: build http client: %w", err)
	}

	return &Client{
		cfg:      cfg,
		http:     hc,
		clients:  clients,
		registry: registry,
		log:      log,
		tracer:   otel.Tracer(tracerName),
		limiter:  ratelimit.New(defaultRelayRPM),
		breaker:  executionDomain.NewBreaker(cfg.BreakerFailureLimit, cfg.BreakerCooldown),
	}, nil
}

type jsonRPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type jsonRPCResponse struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Submit implements Stage 7: submit the bundle privately, falling
// back to a public eth_sendRawTransaction only when FallbackEnabled.
func (c *Client) Submit(ctx context.Context, chainID uint64, bundle executionApp.Bundle, rawFallbackTx []byte) error {
	ctx, span := c.tracer.Start(ctx, "relay.submit")
	defer span.End()

	if !c.breaker.Allow() {
		return apperror.CircuitBreakerOpen("relay: breaker open after repeated submission failures")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return apperror.RelaySubmissionFailed("relay: rate limit wait cancelled", err)
	}

	err := c.submitBundle(ctx, chainID, bundle)
	if err == nil {
		c.breaker.RecordSuccess()
		return nil
	}

	if !c.cfg.FallbackEnabled {
		c.breaker.RecordFailure()
		return apperror.RelaySubmissionFailed("relay: private submission failed and fallback disabled", err)
	}

	c.log.Warn(ctx, "relay submission failed, falling back to public mempool", "error", err.Error())
	if err := c.submitPublic(ctx, chainID, rawFallbackTx); err != nil {
		c.breaker.RecordFailure()
		return err
	}
	c.breaker.RecordSuccess()
	return nil
}

func (c *Client) submitBundle(ctx context.Context, chainID uint64, bundle executionApp.Bundle) error {
	req := jsonRPCRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "blxr_submit_bundle",
		Params: []any{map[string]any{
			"transaction":        bundle.Transactions,
			"blockchain_network": c.networkName(chainID),
			"merkle_root":        bundle.MerkleRoot,
			"block_number":       bundle.TargetBlock,
			"avoid_mempool":      bundle.AvoidMempool,
		}},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("relay: marshal request: %w", err)
	}

	r := c.http.NewRequest().
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+c.cfg.BearerAuth).
		SetBody(body)

	if c.cfg.HMACSecret != "" {
		mac := hmac.New(sha256.New, []byte(c.cfg.HMACSecret))
		mac.Write(body)
		r.SetHeader("X-Request-Signature", hex.EncodeToString(mac.Sum(nil)))
	}

	resp, err := r.Post(ctx, "/")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("relay: http %d: %s", resp.StatusCode, resp.String())
	}

	var rpcResp jsonRPCResponse
	if err := json.Unmarshal(resp.Body(), &rpcResp); err != nil {
		return fmt.Errorf("relay: decode response: %w", err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("relay: rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	return nil
}

// networkName resolves the chain's registered name for the relay's
// blockchain_network param, falling back to the numeric chain ID when
// the registry has no descriptor for it.
func (c *Client) networkName(chainID uint64) string {
	descriptor, err := c.registry.Get(chainID)
	if err != nil || descriptor.Name == "" {
		return fmt.Sprintf("%d", chainID)
	}
	return descriptor.Name
}

func (c *Client) submitPublic(ctx context.Context, chainID uint64, rawTx []byte) error {
	if len(rawTx) == 0 {
		return apperror.RelaySubmissionFailed("relay: no raw transaction available for public fallback", nil)
	}
	client, err := c.clients.Client(ctx, chainID)
	if err != nil {
		return err
	}

	var tx types.Transaction
	if err := tx.UnmarshalBinary(rawTx); err != nil {
		return fmt.Errorf("relay: decode raw tx for public fallback: %w", err)
	}
	if err := client.SendTransaction(ctx, &tx); err != nil {
		return apperror.RelaySubmissionFailed("relay: public mempool fallback rejected", err)
	}
	return nil
}
