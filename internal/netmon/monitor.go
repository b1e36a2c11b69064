// Package netmon watches API reachability and notifies subscribers when the
// server becomes reachable again after an outage.
package netmon

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Prober checks whether the remote API answers. A nil error means reachable.
type Prober func(ctx context.Context) error

// Monitor polls a Prober and fires callbacks on unreachable-to-reachable
// transitions. Each callback fires at most once per transition.
type Monitor struct {
	probe    Prober
	interval time.Duration

	mu        sync.Mutex
	reachable bool
	known     bool // false until the first probe completes
	callbacks []func()

	stop chan struct{}
	done chan struct{}
}

// New creates a monitor polling probe every interval.
func New(probe Prober, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{
		probe:    probe,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// IsReachable returns the last observed reachability. Before the first probe
// completes it reports false; repositories then fall back to local data,
// which is the safe direction.
func (m *Monitor) IsReachable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.known && m.reachable
}

// OnBecameReachable registers fn to run on every unreachable-to-reachable
// transition. Registration order is invocation order.
func (m *Monitor) OnBecameReachable(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// Start runs the probe loop until Stop or ctx cancellation. One immediate
// probe establishes the initial state.
func (m *Monitor) Start(ctx context.Context) {
	go func() {
		defer close(m.done)
		m.CheckNow(ctx)

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.CheckNow(ctx)
			case <-m.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop terminates the probe loop and waits for it to exit.
func (m *Monitor) Stop() {
	close(m.stop)
	<-m.done
}

// CheckNow probes once and updates state, firing transition callbacks when
// the server came back. Exposed so a manual sync can force a probe.
func (m *Monitor) CheckNow(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err := m.probe(probeCtx)
	cancel()

	return m.setReachable(err == nil)
}

func (m *Monitor) setReachable(reachable bool) bool {
	m.mu.Lock()
	wasKnown, wasReachable := m.known, m.reachable
	m.known = true
	m.reachable = reachable
	var fire []func()
	// Fire only on an observed down-to-up edge, not on the initial probe.
	if reachable && wasKnown && !wasReachable {
		fire = append(fire, m.callbacks...)
	}
	m.mu.Unlock()

	if len(fire) > 0 {
		slog.Info("network became reachable")
		for _, fn := range fire {
			fn()
		}
	}
	return reachable
}
