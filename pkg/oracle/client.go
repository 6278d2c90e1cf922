package oracle

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shiporacle/shiporacle/pkg/blockfrost"
	"github.com/shiporacle/shiporacle/pkg/trp"
)

type (
	// ChainReader lists the unspent outputs at an address.
	ChainReader interface {
		AddressUTXOs(ctx context.Context, addr string) ([]blockfrost.UTXO, error)
	}

	// TxBuilder resolves an unsigned closing transaction from high-level
	// parameters.
	TxBuilder interface {
		CloseShipmentTx(ctx context.Context, params trp.CloseShipmentParams) (*trp.TxEnvelope, error)
	}

	// Submitter broadcasts a signed serialized transaction and returns the
	// transaction id assigned by the network. Implementations must be safe
	// for concurrent use, several shipments may close within one poll.
	Submitter interface {
		Submit(ctx context.Context, rawTx []byte) (string, error)
	}

	// Config contains the chain-side parameters of the oracle client.
	Config struct {
		// OracleAddress is the script address holding tracking UTxOs.
		OracleAddress string
		// OraclePKH is the hex-encoded oracle verification key hash. When
		// empty it is derived from the signing key.
		OraclePKH string
		// PaymentAddress funds fees and receives change.
		PaymentAddress string
		// ValidatorScriptRef locates the validator reference script.
		ValidatorScriptRef string
	}

	// Client wires the chain reader, the external transaction builder, the
	// witness signer and the submission port together.
	Client struct {
		cfg       Config
		oraclePKH string
		chain     ChainReader
		builder   TxBuilder
		signer    *Signer
		submitter Submitter
	}
)

// NewClient returns an oracle client over the given collaborators.
func NewClient(cfg Config, signer *Signer, chain ChainReader, builder TxBuilder, submitter Submitter) (*Client, error) {
	if signer == nil {
		return nil, errors.New("signer is required")
	}
	if chain == nil || builder == nil || submitter == nil {
		return nil, errors.New("chain reader, tx builder and submitter are required")
	}

	pkh := cfg.OraclePKH
	if pkh == "" {
		pkh = signer.PublicKey().HashString()
	}

	return &Client{
		cfg:       cfg,
		oraclePKH: pkh,
		chain:     chain,
		builder:   builder,
		signer:    signer,
		submitter: submitter,
	}, nil
}

// FetchShipments lists the open tracking records at the oracle address.
// Outputs without an inline datum, or whose datum does not decode as a
// tracking record, are skipped. Chain-reported order is preserved.
func (c *Client) FetchShipments(ctx context.Context) ([]TrackingUTxO, error) {
	utxos, err := c.chain.AddressUTXOs(ctx, c.cfg.OracleAddress)
	if err != nil {
		return nil, fmt.Errorf("unable to query oracle address: %w", err)
	}

	var shipments []TrackingUTxO
	for _, u := range utxos {
		if u.InlineDatum == nil {
			continue
		}
		datum := DatumFromCBOR(*u.InlineDatum)
		if datum == nil {
			continue
		}
		shipments = append(shipments, TrackingUTxO{
			TxHash:  u.TxHash,
			TxIndex: u.OutputIndex,
			Datum:   *datum,
		})
	}
	return shipments, nil
}

// CloseShipment consumes the given tracking record with a closing
// transaction carrying status, timestamped at. It returns the transaction
// id confirmed by the network. There is one submission attempt, the
// enclosing poll cycle is the retry mechanism.
func (c *Client) CloseShipment(ctx context.Context, u TrackingUTxO, status string, at time.Time) (string, error) {
	envelope, err := c.builder.CloseShipmentTx(ctx, trp.CloseShipmentParams{
		Oracle:             c.cfg.OracleAddress,
		OraclePKH:          c.oraclePKH,
		Outbox:             u.Datum.OutboxAddress.String(),
		PStatus:            hex.EncodeToString([]byte(status)),
		PTimestamp:         strconv.FormatUint(uint64(at.Unix()), 10),
		PUTxORef:           u.Ref(),
		Payment:            c.cfg.PaymentAddress,
		ValidatorScriptRef: c.cfg.ValidatorScriptRef,
	})
	if err != nil {
		return "", fmt.Errorf("unable to resolve closing tx: %w", err)
	}

	rawTx, err := c.signer.SignTx(envelope)
	if err != nil {
		return "", fmt.Errorf("unable to sign closing tx: %w", err)
	}

	return c.submitter.Submit(ctx, rawTx)
}
