package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/ncastellanos/till-service/internal/infrastructure/monitoring"
	"github.com/ncastellanos/till-service/internal/pkg/logger"
)

// Pinger is the reachability check, normally the remote API client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor tracks whether the remote API is reachable. It probes on a fixed
// interval and also accepts failure reports from components whose requests
// failed, since the probed flag can lag reality. Callbacks fire on edges
// only: exactly once per offline->online or online->offline transition.
type Monitor struct {
	pinger       Pinger
	log          *logger.Logger
	interval     time.Duration
	probeTimeout time.Duration

	mu        sync.Mutex
	offline   bool
	onOnline  func(ctx context.Context)
	onOffline func()

	stopChan chan struct{}
	stopOnce sync.Once
}

func NewMonitor(pinger Pinger, log *logger.Logger, interval time.Duration) *Monitor {
	return &Monitor{
		pinger:       pinger,
		log:          log,
		interval:     interval,
		probeTimeout: 5 * time.Second,
		stopChan:     make(chan struct{}),
	}
}

// OnOnline registers the reconnect handler. The monitor invokes it once per
// offline->online transition; wiring it to the sync drain gives the "drain
// exactly once per reconnect" behavior.
func (m *Monitor) OnOnline(fn func(ctx context.Context)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOnline = fn
}

func (m *Monitor) OnOffline(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOffline = fn
}

func (m *Monitor) Offline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offline
}

// Probe performs a direct reachability check, updating the flag and firing
// edge callbacks on a transition. Used by the offline fallback's
// double-check before queueing a sale.
func (m *Monitor) Probe(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()

	err := m.pinger.Ping(probeCtx)
	m.transition(ctx, err == nil)
	return err == nil
}

// ReportFailure marks the device offline based on a failed request elsewhere.
func (m *Monitor) ReportFailure() {
	m.transition(context.Background(), false)
}

// Start runs the probe loop until the context is canceled or Stop is called.
func (m *Monitor) Start(ctx context.Context) {
	m.log.Info("Starting connectivity monitor", "interval", m.interval.String())

	m.Probe(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info("Connectivity monitor stopped")
			return
		case <-m.stopChan:
			m.log.Info("Connectivity monitor stopped")
			return
		case <-ticker.C:
			m.Probe(ctx)
		}
	}
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
}

func (m *Monitor) transition(ctx context.Context, online bool) {
	m.mu.Lock()
	changed := m.offline == online
	m.offline = !online
	var onOnline func(ctx context.Context)
	var onOffline func()
	if changed {
		onOnline = m.onOnline
		onOffline = m.onOffline
	}
	m.mu.Unlock()

	if !changed {
		return
	}

	monitoring.SetConnectivityState(online)

	if online {
		m.log.Info("Connectivity restored")
		if onOnline != nil {
			onOnline(ctx)
		}
	} else {
		m.log.Warn("Connectivity lost")
		if onOffline != nil {
			onOffline()
		}
	}
}
