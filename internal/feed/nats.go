package feed

import (
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATS bridges the feed over a NATS cluster so invalidations reach sessions
// on every replica, not just the one that committed the write.
type NATS struct {
	nc     *nats.Conn
	logger *zap.Logger
}

func ConnectNATS(url string, logger *zap.Logger) (*NATS, error) {
	nc, err := nats.Connect(url,
		nats.Name("agency-hub"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
	}
	return &NATS{nc: nc, logger: logger}, nil
}

func (f *NATS) Publish(change Change) {
	if err := f.nc.Publish(subject(change.AgencyID, change.Table), nil); err != nil {
		f.logger.Warn("publish change signal failed",
			zap.Uint("agency_id", change.AgencyID),
			zap.String("table", change.Table),
			zap.Error(err))
	}
}

func (f *NATS) Subscribe(agencyID uint, table string, fn Handler) (func(), error) {
	sub, err := f.nc.Subscribe(subject(agencyID, table), func(*nats.Msg) { fn() })
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject(agencyID, table), err)
	}
	return func() {
		if err := sub.Unsubscribe(); err != nil {
			f.logger.Warn("unsubscribe failed", zap.String("table", table), zap.Error(err))
		}
	}, nil
}

func (f *NATS) Close() {
	f.nc.Close()
}
