/*
Package oracle decodes on-chain shipment tracking records and closes them
out: it reads tracking UTxOs at the oracle address, asks an external
transaction builder for an unsigned closing transaction, witnesses it with
the oracle key and broadcasts the result.
*/
package oracle

import (
	"fmt"

	"github.com/shiporacle/shiporacle/pkg/cardano/address"
)

// TrackingDatum is the decoded on-chain payload of one tracking record.
type TrackingDatum struct {
	// Carrier is the shipping carrier identifier ("shippo", "usps", ...).
	Carrier string
	// TrackingNumber identifies the shipment at the carrier.
	TrackingNumber string
	// OutboxAddress receives the closed record.
	OutboxAddress *address.Address
}

// TrackingUTxO is a located tracking record. The (TxHash, TxIndex) pair is
// the output reference a closing transaction consumes.
type TrackingUTxO struct {
	TxHash  string
	TxIndex uint32
	Datum   TrackingDatum
}

// Ref renders the output reference in "<tx_hash>#<index>" form.
func (u TrackingUTxO) Ref() string {
	return fmt.Sprintf("%s#%d", u.TxHash, u.TxIndex)
}
