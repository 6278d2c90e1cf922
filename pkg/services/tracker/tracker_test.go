package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shiporacle/shiporacle/pkg/oracle"
	"github.com/shiporacle/shiporacle/pkg/shippo"
)

type fakeSource struct {
	mtx       sync.Mutex
	shipments []oracle.TrackingUTxO
	fetchErr  error
	closeErr  error
	closed    []string
	closedAt  []time.Time
	statuses  []string
}

func (f *fakeSource) FetchShipments(_ context.Context) ([]oracle.TrackingUTxO, error) {
	return f.shipments, f.fetchErr
}

func (f *fakeSource) CloseShipment(_ context.Context, u oracle.TrackingUTxO, status string, at time.Time) (string, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	if f.closeErr != nil {
		return "", f.closeErr
	}
	f.closed = append(f.closed, u.Ref())
	f.closedAt = append(f.closedAt, at)
	f.statuses = append(f.statuses, status)
	return "tx-" + u.TxHash, nil
}

type fakeCarrier struct {
	byNumber map[string]shippo.TrackingStatus
	errFor   map[string]error
}

func (f *fakeCarrier) TrackStatus(_ context.Context, _, trackingNumber string) (shippo.TrackingStatus, error) {
	if err := f.errFor[trackingNumber]; err != nil {
		return shippo.TrackingStatus{}, err
	}
	return f.byNumber[trackingNumber], nil
}

func record(hash, number string) oracle.TrackingUTxO {
	return oracle.TrackingUTxO{
		TxHash:  hash,
		TxIndex: 0,
		Datum:   oracle.TrackingDatum{Carrier: "shippo", TrackingNumber: number},
	}
}

func TestPoll(t *testing.T) {
	fixed := time.Unix(1735689600, 0)

	t.Run("closes terminal shipments only", func(t *testing.T) {
		src := &fakeSource{shipments: []oracle.TrackingUTxO{
			record("aa", "DONE"),
			record("bb", "MOVING"),
			record("cc", "LOST"),
		}}
		carrier := &fakeCarrier{byNumber: map[string]shippo.TrackingStatus{
			"DONE":   {Status: "DELIVERED"},
			"MOVING": {Status: "TRANSIT"},
			"LOST":   {Status: "FAILURE"},
		}}
		s := New(Config{
			Shipments: src,
			Carrier:   carrier,
			TimeFunc:  func() time.Time { return fixed },
		})

		s.Poll(context.Background())

		require.ElementsMatch(t, []string{"aa#0", "cc#0"}, src.closed)
		require.ElementsMatch(t, []string{shippo.StatusDelivered, shippo.StatusNotDelivered}, src.statuses)
		for _, at := range src.closedAt {
			require.Equal(t, fixed, at)
		}
	})

	t.Run("carrier failure does not block siblings", func(t *testing.T) {
		src := &fakeSource{shipments: []oracle.TrackingUTxO{
			record("aa", "BROKEN"),
			record("bb", "DONE"),
		}}
		carrier := &fakeCarrier{
			byNumber: map[string]shippo.TrackingStatus{"DONE": {Status: "DELIVERED"}},
			errFor:   map[string]error{"BROKEN": errors.New("api down")},
		}
		s := New(Config{Shipments: src, Carrier: carrier})

		s.Poll(context.Background())

		require.Equal(t, []string{"bb#0"}, src.closed)
	})

	t.Run("close failure does not block siblings", func(t *testing.T) {
		src := &fakeSource{
			shipments: []oracle.TrackingUTxO{record("aa", "DONE"), record("bb", "DONE")},
			closeErr:  errors.New("stale utxo"),
		}
		carrier := &fakeCarrier{byNumber: map[string]shippo.TrackingStatus{"DONE": {Status: "DELIVERED"}}}
		s := New(Config{Shipments: src, Carrier: carrier})

		// Nothing closed, nothing panicking, both attempted.
		s.Poll(context.Background())
		require.Empty(t, src.closed)
	})

	t.Run("fetch failure aborts the cycle", func(t *testing.T) {
		src := &fakeSource{fetchErr: errors.New("indexer down")}
		s := New(Config{Shipments: src, Carrier: &fakeCarrier{}})
		s.Poll(context.Background())
		require.Empty(t, src.closed)
	})
}

func TestStartShutdown(t *testing.T) {
	src := &fakeSource{}
	s := New(Config{
		Shipments:    src,
		Carrier:      &fakeCarrier{},
		PollInterval: time.Hour,
	})

	s.Start()
	s.Start() // idempotent
	s.Shutdown()

	// The service is one-shot: further Start and Shutdown calls are no-ops.
	s.Shutdown()
	s.Start()
	s.Shutdown()
}
