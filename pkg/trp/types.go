/*
Package trp is a client for a transaction resolve protocol (TRP) endpoint,
the external service that turns high-level closing parameters into an
unsigned Cardano transaction.

It defines basic JSON-RPC request/response types as well as the parameter
set of the one call this oracle makes.
*/
package trp

import (
	"encoding/json"
	"fmt"
)

// JSONRPCVersion is the only JSON-RPC protocol version supported.
const JSONRPCVersion = "2.0"

type (
	// Request represents a JSON-RPC request sent to the TRP endpoint.
	Request struct {
		JSONRPC string      `json:"jsonrpc"`
		Method  string      `json:"method"`
		Params  interface{} `json:"params"`
		ID      uint64      `json:"id"`
	}

	// Response represents a standard raw JSON-RPC 2.0 response.
	Response struct {
		ID      json.RawMessage `json:"id"`
		JSONRPC string          `json:"jsonrpc"`
		Error   *Error          `json:"error,omitempty"`
		Result  json.RawMessage `json:"result,omitempty"`
	}

	// Error represents a JSON-RPC 2.0 error object.
	Error struct {
		Code    int64           `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data,omitempty"`
	}

	// TxEnvelope is an unsigned transaction returned by the endpoint: the
	// serialized transaction and the hash of its body, both hex-encoded.
	TxEnvelope struct {
		Tx   string `json:"tx"`
		Hash string `json:"hash"`
	}

	// CloseShipmentParams is the parameter set of the close_shipment
	// transaction template.
	CloseShipmentParams struct {
		// Oracle is the script address holding the tracking UTxO.
		Oracle string `json:"oracle"`
		// OraclePKH is the hex-encoded oracle verification key hash.
		OraclePKH string `json:"oracle_pkh"`
		// Outbox is the address receiving the closed record.
		Outbox string `json:"outbox"`
		// PStatus is the hex-encoded final status bytes.
		PStatus string `json:"p_status"`
		// PTimestamp is the closing time as decimal unix seconds.
		PTimestamp string `json:"p_timestamp"`
		// PUTxORef is the consumed output reference, "<tx_hash>#<index>".
		PUTxORef string `json:"p_utxo_ref"`
		// Payment is the address funding fees and receiving change.
		Payment string `json:"payment"`
		// ValidatorScriptRef locates the validator reference script.
		ValidatorScriptRef string `json:"validator_script_ref"`
	}
)

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("TRP error %d: %s", e.Code, e.Message)
}
