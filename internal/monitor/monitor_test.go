package monitor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/moorebrett0/roampet/internal/sensor"
)

type stubPoller struct {
	calls atomic.Int32
	r     sensor.Readings
}

func (s *stubPoller) Poll(ctx context.Context) sensor.Readings {
	s.calls.Add(1)
	return s.r
}

func TestLatestBeforeFirstPollUsesDefaults(t *testing.T) {
	m := New(&stubPoller{}, time.Hour, 0, nil)
	if env := m.Environment(); env != sensor.DefaultEnvironment() {
		t.Errorf("env = %+v, want defaults", env)
	}
}

func TestRefreshPublishesAndNotifies(t *testing.T) {
	p := &stubPoller{r: sensor.Readings{CO2: sensor.Numeric(1500)}}
	var got sensor.Readings
	m := New(p, time.Hour, time.Second, func(r sensor.Readings) { got = r })

	m.Refresh(context.Background())

	if m.Environment().CO2PPM != 1500 {
		t.Errorf("CO2PPM = %v", m.Environment().CO2PPM)
	}
	if got.CO2.Value != 1500 {
		t.Error("onUpdate not called with readings")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	p := &stubPoller{}
	m := New(p, 5*time.Millisecond, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if p.calls.Load() < 2 {
		t.Errorf("polled %d times, want at least 2", p.calls.Load())
	}
}
