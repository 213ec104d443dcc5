package sensor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/host"
)

// TemperatureSource supplies a temperature without the REST API.
type TemperatureSource interface {
	Temperature(ctx context.Context) (float64, error)
}

// Gateway polls the three environment sensors.
type Gateway struct {
	client *Client
	temp   Device
	co2    Device
	door   Device
	host   TemperatureSource // used only when temp is not configured
	now    func() time.Time
}

// NewGateway wires a client to the three devices. host may be nil.
func NewGateway(client *Client, temp, co2, door Device, hostSrc TemperatureSource) *Gateway {
	return &Gateway{
		client: client,
		temp:   temp,
		co2:    co2,
		door:   door,
		host:   hostSrc,
		now:    time.Now,
	}
}

// Poll fetches all readings independently. It never fails as a whole.
func (g *Gateway) Poll(ctx context.Context) Readings {
	r := Readings{
		Temperature: g.temperature(ctx),
		CO2:         g.client.Fetch(ctx, CO2, g.co2),
		Door:        g.client.Fetch(ctx, Contact, g.door),
		At:          g.now(),
	}

	for name, rd := range map[string]Reading{"temperature": r.Temperature, "co2": r.CO2, "door": r.Door} {
		if err := rd.Err(); err != nil {
			slog.Debug("sensor: reading not ok, using default", "sensor", name, "err", err)
		}
	}
	return r
}

func (g *Gateway) temperature(ctx context.Context) Reading {
	if g.temp.Configured() || g.host == nil {
		return g.client.Fetch(ctx, Temperature, g.temp)
	}
	v, err := g.host.Temperature(ctx)
	if err != nil {
		return Failure(0, fmt.Sprintf("host temperature: %v", err))
	}
	return Numeric(v)
}

// HostSource reads temperature from the machine's own thermal sensors.
type HostSource struct {
	// Match selects sensors whose key contains it. Empty picks the hottest sensor.
	Match string
}

// Temperature returns the matching sensor's reading in °C.
func (h HostSource) Temperature(ctx context.Context) (float64, error) {
	temps, err := host.SensorsTemperaturesWithContext(ctx)
	// gopsutil returns partial results together with warnings on some platforms
	if len(temps) == 0 {
		if err != nil {
			return 0, fmt.Errorf("read host sensors: %w", err)
		}
		return 0, fmt.Errorf("no host temperature sensors")
	}

	best, found := 0.0, false
	for _, t := range temps {
		if t.Temperature <= 0 {
			continue
		}
		if h.Match != "" && !strings.Contains(t.SensorKey, h.Match) {
			continue
		}
		if !found || t.Temperature > best {
			best, found = t.Temperature, true
		}
	}
	if !found {
		return 0, fmt.Errorf("no host sensor matching %q", h.Match)
	}
	return best, nil
}
