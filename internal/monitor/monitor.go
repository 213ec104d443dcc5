package monitor

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/moorebrett0/roampet/internal/sensor"
)

// Poller fetches one round of sensor readings.
type Poller interface {
	Poll(ctx context.Context) sensor.Readings
}

// Monitor polls the environment sensors periodically and stores the result atomically,
// so readers on the render loop never wait on the network.
type Monitor struct {
	readings atomic.Pointer[sensor.Readings]
	poller   Poller
	interval time.Duration
	timeout  time.Duration
	onUpdate func(sensor.Readings) // callback when readings are refreshed
}

// New creates a Monitor. onUpdate may be nil.
func New(p Poller, interval, timeout time.Duration, onUpdate func(sensor.Readings)) *Monitor {
	m := &Monitor{
		poller:   p,
		interval: interval,
		timeout:  timeout,
		onUpdate: onUpdate,
	}
	m.readings.Store(&sensor.Readings{})
	return m
}

// Latest returns the most recent readings without blocking.
// Before the first poll every reading is unavailable.
func (m *Monitor) Latest() sensor.Readings {
	return *m.readings.Load()
}

// Environment returns the latest readings with defaults applied.
func (m *Monitor) Environment() sensor.Environment {
	return m.Latest().Environment()
}

// Run polls until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	// Immediate first read
	m.Refresh(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Refresh(ctx)
		}
	}
}

// Refresh performs one poll and publishes it.
func (m *Monitor) Refresh(ctx context.Context) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	r := m.poller.Poll(ctx)
	m.readings.Store(&r)
	slog.Debug("monitor: sensors refreshed", "env", sensor.FormatEnvironment(r.Environment()))

	if m.onUpdate != nil {
		m.onUpdate(r)
	}
}
