/*
Package blockfrost is a minimal client for a Blockfrost-compatible chain
indexer: it lists unspent outputs sitting at an address and broadcasts
signed transactions.
*/
package blockfrost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultDialTimeout    = 4 * time.Second
	defaultRequestTimeout = 15 * time.Second

	projectIDHeader = "project_id"

	cborContentType = "application/cbor"
)

// UTXO is one unspent output as reported by the indexer.
type UTXO struct {
	TxHash      string  `json:"tx_hash"`
	OutputIndex uint32  `json:"output_index"`
	InlineDatum *string `json:"inline_datum"`
}

// Client talks to a Blockfrost-compatible API. It is safe for concurrent
// use, broadcast and query calls share one connection pool.
type Client struct {
	cli       *http.Client
	endpoint  *url.URL
	projectID string
}

// Options defines options for the client. All values are optional.
type Options struct {
	// ProjectID is sent as the project_id header when non-empty.
	ProjectID      string
	DialTimeout    time.Duration
	RequestTimeout time.Duration
}

// New returns a new Client for the API rooted at endpoint.
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
		endpoint:  u,
		projectID: opts.ProjectID,
	}, nil
}

// AddressUTXOs lists the unspent outputs currently sitting at addr, in the
// order the indexer reports them.
func (c *Client) AddressUTXOs(ctx context.Context, addr string) ([]UTXO, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/addresses/"+addr+"/utxos", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.cli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("UTxO query failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError("UTxO query", resp)
	}

	var utxos []UTXO
	if err := json.NewDecoder(resp.Body).Decode(&utxos); err != nil {
		return nil, fmt.Errorf("unable to parse UTxO query response: %w", err)
	}
	return utxos, nil
}

// Submit broadcasts a signed serialized transaction and returns the
// transaction id assigned by the network.
func (c *Client) Submit(ctx context.Context, rawTx []byte) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/tx/submit", bytes.NewReader(rawTx))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", cborContentType)

	resp, err := c.cli.Do(req)
	if err != nil {
		return "", fmt.Errorf("transaction submission failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", responseError("transaction submission", resp)
	}

	var txID string
	if err := json.NewDecoder(resp.Body).Decode(&txID); err != nil {
		return "", fmt.Errorf("expected tx id string in submission response: %w", err)
	}
	return txID, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint.String()+path, body)
	if err != nil {
		return nil, err
	}
	if c.projectID != "" {
		req.Header.Set(projectIDHeader, c.projectID)
	}
	return req, nil
}

// responseError surfaces a non-success response with its status and body
// verbatim so ledger-side rejections stay diagnosable.
func responseError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("%s failed (status %d): %s", op, resp.StatusCode, body)
}
