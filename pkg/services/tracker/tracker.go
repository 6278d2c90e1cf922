// Package tracker implements the poll service that walks open tracking
// records and closes the ones whose shipment reached a terminal state.
package tracker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shiporacle/shiporacle/pkg/oracle"
	"github.com/shiporacle/shiporacle/pkg/shippo"
)

const defaultPollInterval = 5 * time.Minute

type (
	// ShipmentSource is the oracle client surface the service needs.
	ShipmentSource interface {
		FetchShipments(ctx context.Context) ([]oracle.TrackingUTxO, error)
		CloseShipment(ctx context.Context, u oracle.TrackingUTxO, status string, at time.Time) (string, error)
	}

	// CarrierClient looks up live shipment statuses.
	CarrierClient interface {
		TrackStatus(ctx context.Context, carrier, trackingNumber string) (shippo.TrackingStatus, error)
	}

	// Config contains tracker service parameters.
	Config struct {
		Log          *zap.Logger
		Shipments    ShipmentSource
		Carrier      CarrierClient
		PollInterval time.Duration
		// TimeFunc supplies the closing timestamp, defaults to time.Now.
		TimeFunc func() time.Time
	}

	// Service is the poll loop. Each cycle re-derives everything from
	// chain and carrier state, so there is nothing to persist between
	// cycles and a failed closing simply comes back on the next poll.
	Service struct {
		Config

		closeCh  chan struct{}
		done     chan struct{}
		startMtx sync.Mutex
		started  bool
		stopped  bool
	}
)

// New returns a tracker service with defaults filled in.
func New(cfg Config) *Service {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.TimeFunc == nil {
		cfg.TimeFunc = time.Now
	}
	return &Service{
		Config:  cfg,
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start runs the poll loop in a separate goroutine. The first poll runs
// immediately. The service is one-shot: once shut down it stays stopped.
func (s *Service) Start() {
	s.startMtx.Lock()
	defer s.startMtx.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true
	s.Log.Info("starting tracker service", zap.Duration("interval", s.PollInterval))
	go s.run()
}

// Shutdown stops the poll loop and waits for the current cycle to finish.
func (s *Service) Shutdown() {
	s.startMtx.Lock()
	defer s.startMtx.Unlock()
	if !s.started || s.stopped {
		return
	}
	s.stopped = true
	close(s.closeCh)
	<-s.done
	s.Log.Info("tracker service stopped")
}

func (s *Service) run() {
	defer close(s.done)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-s.closeCh
		cancel()
	}()

	s.Poll(ctx)

	t := time.NewTicker(s.PollInterval)
	defer t.Stop()
	for {
		select {
		case <-s.closeCh:
			return
		case <-t.C:
			s.Poll(ctx)
		}
	}
}

// Poll runs one full cycle: fetch the open records, look every shipment up
// at the carrier and close the terminal ones. Closings run concurrently,
// each operates on a disjoint output, and every per-shipment failure is
// reported individually without aborting its siblings.
func (s *Service) Poll(ctx context.Context) {
	pollCounter.Inc()

	shipments, err := s.Shipments.FetchShipments(ctx)
	if err != nil {
		pollFailCounter.Inc()
		s.Log.Error("unable to fetch open records", zap.Error(err))
		return
	}
	s.Log.Info("poll started", zap.Int("open_records", len(shipments)))

	var wg sync.WaitGroup
	for _, shipment := range shipments {
		shipment := shipment
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.processShipment(ctx, shipment)
		}()
	}
	wg.Wait()
}

func (s *Service) processShipment(ctx context.Context, u oracle.TrackingUTxO) {
	log := s.Log.With(
		zap.String("utxo", u.Ref()),
		zap.String("carrier", u.Datum.Carrier),
		zap.String("tracking_number", u.Datum.TrackingNumber),
	)

	ts, err := s.Carrier.TrackStatus(ctx, u.Datum.Carrier, u.Datum.TrackingNumber)
	if err != nil {
		log.Error("unable to fetch shipment status", zap.Error(err))
		return
	}
	log.Info("shipment status",
		zap.String("status", ts.Status),
		zap.String("details", ts.StatusDetails))

	status, final := shippo.FinalStatus(ts)
	if !final {
		log.Info("status is not final, skipping update")
		return
	}

	txID, err := s.Shipments.CloseShipment(ctx, u, status, s.TimeFunc())
	if err != nil {
		closeFailCounter.Inc()
		log.Error("unable to close shipment", zap.Error(err))
		return
	}
	closedCounter.Inc()
	log.Info("shipment closed", zap.String("tx_id", txID), zap.String("final_status", status))
}
