package trp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/atomic"
)

const (
	defaultDialTimeout    = 4 * time.Second
	defaultRequestTimeout = 15 * time.Second

	apiKeyHeader = "dmtr-api-key"

	resolveMethod = "trp.resolve"
)

// Client executes JSON-RPC calls against a TRP endpoint. It is safe for
// concurrent use.
type Client struct {
	cli      *http.Client
	endpoint *url.URL
	apiKey   string

	latestReqID *atomic.Uint64
}

// Options defines options for the TRP client. All values are optional.
type Options struct {
	// APIKey is sent as the dmtr-api-key header when non-empty.
	APIKey         string
	DialTimeout    time.Duration
	RequestTimeout time.Duration
}

// resolveParams is the body of a trp.resolve call: the template name and its
// arguments.
type resolveParams struct {
	Tx   string      `json:"tx"`
	Args interface{} `json:"args"`
}

// New returns a new Client ready to use.
func New(endpoint string, opts Options) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}

	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}

	return &Client{
		cli: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: opts.DialTimeout,
				}).DialContext,
			},
			Timeout: opts.RequestTimeout,
		},
		endpoint:    u,
		apiKey:      opts.APIKey,
		latestReqID: atomic.NewUint64(0),
	}, nil
}

// CloseShipmentTx asks the endpoint to resolve a close_shipment transaction
// with the given parameters, returning the unsigned envelope.
func (c *Client) CloseShipmentTx(ctx context.Context, params CloseShipmentParams) (*TxEnvelope, error) {
	env := new(TxEnvelope)
	if err := c.performRequest(ctx, resolveMethod, resolveParams{
		Tx:   "close_shipment",
		Args: params,
	}, env); err != nil {
		return nil, err
	}
	return env, nil
}

func (c *Client) performRequest(ctx context.Context, method string, params, v interface{}) error {
	r := Request{
		JSONRPC: JSONRPCVersion,
		Method:  method,
		Params:  params,
		ID:      c.latestReqID.Inc(),
	}

	raw, err := c.makeHTTPRequest(ctx, &r)
	if raw != nil && raw.Error != nil {
		return raw.Error
	} else if err != nil {
		return err
	} else if raw == nil || raw.Result == nil {
		return errors.New("no result returned")
	}
	return json.Unmarshal(raw.Result, v)
}

func (c *Client) makeHTTPRequest(ctx context.Context, r *Request) (*Response, error) {
	var (
		buf = new(bytes.Buffer)
		raw = new(Response)
	)

	if err := json.NewEncoder(buf).Encode(r); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}
	resp, err := c.cli.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// The endpoint might send a proper JSON-RPC error anyway, so look there
	// first, it has more relevant data than the HTTP status code.
	err = json.NewDecoder(resp.Body).Decode(raw)
	if err != nil {
		if resp.StatusCode != http.StatusOK {
			err = fmt.Errorf("HTTP %d/%s", resp.StatusCode, http.StatusText(resp.StatusCode))
		} else {
			err = fmt.Errorf("JSON decoding: %w", err)
		}
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}
