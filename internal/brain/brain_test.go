package brain

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/moorebrett0/roampet/internal/sensor"
)

type fakeProvider struct {
	text  string
	err   error
	calls int
	last  []Message
}

func (f *fakeProvider) Send(ctx context.Context, systemPrompt string, history []Message) (*Response, error) {
	f.calls++
	f.last = history
	if f.err != nil {
		return nil, f.err
	}
	return &Response{Text: f.text}, nil
}

var hot = Situation{Mood: "too hot", State: "walk", Hunger: 50, Sleep: 60, Water: 10,
	Env: sensor.Environment{TempC: 31, CO2PPM: 600, Door: "Closed"}}

func TestRemarkUsesProvider(t *testing.T) {
	p := &fakeProvider{text: "\n  \"so. very. warm.\"\nsecond line"}
	b := newWithProvider(p, 5, time.Minute)

	if got := b.Remark(context.Background(), hot); got != "so. very. warm." {
		t.Errorf("Remark = %q", got)
	}
	if len(p.last) != 1 || !strings.Contains(p.last[0].Text, "31.0°C") {
		t.Errorf("prompt missing environment: %+v", p.last)
	}
}

func TestRemarkFallbacks(t *testing.T) {
	var nilBrain *Brain
	if got := nilBrain.Remark(context.Background(), hot); got != CannedRemark("too hot") {
		t.Errorf("nil brain = %q", got)
	}

	failing := newWithProvider(&fakeProvider{err: errors.New("boom")}, 5, time.Minute)
	if got := failing.Remark(context.Background(), hot); got != CannedRemark("too hot") {
		t.Errorf("failing provider = %q", got)
	}

	empty := newWithProvider(&fakeProvider{text: "   "}, 5, time.Minute)
	if got := empty.Remark(context.Background(), hot); got != CannedRemark("too hot") {
		t.Errorf("empty response = %q", got)
	}

	if CannedRemark("unknown") != CannedRemark("content") {
		t.Error("unknown mood should use the content line")
	}
}

func TestRateLimit(t *testing.T) {
	p := &fakeProvider{text: "hi"}
	b := newWithProvider(p, 2, time.Minute)
	now := time.Unix(1000, 0)
	b.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		b.Remark(context.Background(), hot)
	}
	if p.calls != 2 {
		t.Errorf("calls = %d, want 2", p.calls)
	}

	now = now.Add(2 * time.Minute)
	b.Remark(context.Background(), hot)
	if p.calls != 3 {
		t.Errorf("calls after window = %d, want 3", p.calls)
	}
}

func TestTidyCapsLength(t *testing.T) {
	got := tidy(strings.Repeat("a", 200))
	if r := []rune(got); len(r) != maxRemark {
		t.Errorf("len = %d, want %d", len(r), maxRemark)
	}
}

func TestNewWithoutKeys(t *testing.T) {
	if b := New(context.Background(), Config{}); b != nil {
		t.Error("expected nil brain without keys")
	}
	if b := New(context.Background(), Config{Provider: "claude"}); b != nil {
		t.Error("expected nil brain when forced provider has no key")
	}
}
