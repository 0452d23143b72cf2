package poller

import (
	"sync"
	"time"
)

// Poller runs a tick function at a fixed interval until stopped or until an
// absolute timeout elapses. Start returns immediately; Stop is idempotent and
// safe to call from the tick function itself.
type Poller struct {
	stopChan chan struct{}
	stopOnce sync.Once
}

// Start begins polling. When the timeout ceiling is reached the poller stops
// itself and calls onTimeout (which may be nil). No tick runs after Stop
// returns the loop.
func Start(interval, timeout time.Duration, tick func(), onTimeout func()) *Poller {
	p := &Poller{
		stopChan: make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		deadline := time.NewTimer(timeout)
		defer deadline.Stop()

		for {
			select {
			case <-p.stopChan:
				return
			case <-deadline.C:
				p.Stop()
				if onTimeout != nil {
					onTimeout()
				}
				return
			case <-ticker.C:
				tick()
			}
		}
	}()

	return p
}

func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopChan)
	})
}

// Stopped reports whether the poller has been stopped (or timed out).
func (p *Poller) Stopped() bool {
	select {
	case <-p.stopChan:
		return true
	default:
		return false
	}
}
