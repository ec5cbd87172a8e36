// Package client implements the discovery process's side of the
// brain/executor split (spec §4.10): a thin HTTP client that posts
// trade signals to the executor's control plane and a websocket
// listener for its push events.
package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fulcrumlabs/flashrelay/business/signal"
	"github.com/fulcrumlabs/flashrelay/internal/httpclient"
	"github.com/fulcrumlabs/flashrelay/internal/logger"
	"github.com/fulcrumlabs/flashrelay/internal/wsconn"
)

// ExecuteResult mirrors the executor's /execute response shape.
type ExecuteResult struct {
	ID             string  `json:"id,omitempty"`
	Success        bool    `json:"success"`
	Mode           string  `json:"mode"`
	TxHash         string  `json:"txHash,omitempty"`
	ExpectedProfit float64 `json:"expected_profit"`
	Timestamp      string  `json:"timestamp"`
	Error          string  `json:"error,omitempty"`
}

// Client talks to one executor process.
type Client struct {
	http httpclient.Client
	ws   *wsconn.Client
	log  logger.LoggerInterface
}

// New builds a Client targeting the executor at baseURL (e.g.
// http://executor:8090). wsURL is the websocket event feed; an empty
// wsURL disables the event listener.
func New(baseURL, wsURL string, log logger.LoggerInterface) (*Client, error) {
	hc, err := httpclient.NewInstrumentedClient(
		httpclient.WithBaseURL(baseURL),
		httpclient.WithProviderName("executor"),
	)
	if err != nil {
		return nil, fmt.Errorf("execution client: build http client: %w", err)
	}

	c := &Client{http: hc, log: log}

	if wsURL != "" {
		ws, err := wsconn.New(wsconn.DefaultConfig(wsURL, "executor-events"))
		if err != nil {
			return nil, fmt.Errorf("execution client: build ws client: %w", err)
		}
		c.ws = ws
	}

	return c, nil
}

// Connect starts the background websocket event feed, if configured.
func (c *Client) Connect(ctx context.Context) error {
	if c.ws == nil {
		return nil
	}
	return c.ws.ConnectWithRetry(ctx)
}

// OnEvent registers a handler for pushed execution events.
func (c *Client) OnEvent(handler func(ctx context.Context, raw []byte)) {
	if c.ws == nil {
		return
	}
	c.ws.OnMessage(wsconn.MessageHandler(handler))
}

// Submit posts a trade signal to the executor's /execute endpoint.
func (c *Client) Submit(ctx context.Context, sig *signal.TradeSignal) (*ExecuteResult, error) {
	resp, err := c.http.NewRequest().SetBody(sig).Post(ctx, "/execute")
	if err != nil {
		return nil, fmt.Errorf("execution client: submit: %w", err)
	}

	var result ExecuteResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("execution client: decode response: %w", err)
	}
	if resp.IsError() && result.Error == "" {
		return &result, fmt.Errorf("execution client: executor returned http %d", resp.StatusCode)
	}
	return &result, nil
}

// Close releases the websocket connection, if any.
func (c *Client) Close() error {
	if c.ws == nil {
		return nil
	}
	return c.ws.Close()
}
