package web

import (
	"time"

	"go.uber.org/zap"

	"luckydraw/internal/draw/engine"
	"luckydraw/internal/observability"
)

// MetricsRelay watches the session's event feed and turns draw lifecycle
// transitions into Prometheus observations. It implements server.Service.
type MetricsRelay struct {
	session *engine.Session
	logger  *zap.Logger
	done    chan struct{}
	stopped chan struct{}
}

// NewMetricsRelay creates a relay over the session's event feed.
//
// Precondition: session and logger are non-nil.
func NewMetricsRelay(session *engine.Session, logger *zap.Logger) *MetricsRelay {
	return &MetricsRelay{
		session: session,
		logger:  logger,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start consumes the event feed until Stop is called. It blocks, per the
// server.Service contract.
func (r *MetricsRelay) Start() error {
	defer close(r.stopped)

	ch := make(chan engine.Event, streamBuffer)
	unsubscribe := r.session.Subscribe(ch)
	defer unsubscribe()
	r.logger.Debug("metrics relay started")

	var revealStart time.Time
	for {
		select {
		case <-r.done:
			return nil
		case evt := <-ch:
			switch evt.Type {
			case engine.EventRevealStarted:
				revealStart = time.Now()
			case engine.EventDrawSettled:
				observability.CountDrawSettled()
				// A settle without a start means the relay joined
				// mid-reveal; skip the duration sample.
				if !revealStart.IsZero() {
					observability.ObserveRevealDuration(time.Since(revealStart))
					revealStart = time.Time{}
				}
			}
		}
	}
}

// Stop ends the relay and waits for Start to return.
func (r *MetricsRelay) Stop() {
	close(r.done)
	<-r.stopped
}
