package sensor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the Disruptive Technologies REST API root.
const DefaultBaseURL = "https://api.disruptive-technologies.com/v2"

// maxErrorBody caps how much of a failed response body ends up in a Reading.
const maxErrorBody = 512

// Type selects which field of the device document a fetch extracts.
type Type int

const (
	Temperature Type = iota
	CO2
	Contact
)

func (t Type) String() string {
	switch t {
	case Temperature:
		return "temperature"
	case CO2:
		return "co2"
	case Contact:
		return "contact"
	default:
		return fmt.Sprintf("sensor(%d)", int(t))
	}
}

// Device addresses one sensor and the service account allowed to read it.
type Device struct {
	Project string `yaml:"project"`
	Device  string `yaml:"device"`
	KeyID   string `yaml:"key_id"`
	Secret  string `yaml:"secret"`
}

// Configured reports whether the device can be fetched.
func (d Device) Configured() bool {
	return d.Project != "" && d.Device != ""
}

// deviceDoc mirrors the subset of the device resource we read.
type deviceDoc struct {
	Reported *reported `json:"reported"`
}

type reported struct {
	Temperature *struct {
		Value *float64 `json:"value"`
	} `json:"temperature"`
	CO2 *struct {
		PPM *float64 `json:"ppm"`
	} `json:"co2"`
	Contact *struct {
		State *string `json:"state"`
	} `json:"contact"`
}

// Client performs authenticated device fetches. It never retries.
type Client struct {
	http *http.Client
	base string
}

// NewClient creates a client. An empty base falls back to DefaultBaseURL.
func NewClient(base string, timeout time.Duration) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
		base: strings.TrimRight(base, "/"),
	}
}

// Fetch reads one sensor value. Failures are reported in the Reading, never as a panic or error.
func (c *Client) Fetch(ctx context.Context, typ Type, dev Device) Reading {
	if !dev.Configured() {
		return Unavailable(typ.String() + " sensor not configured")
	}

	endpoint := fmt.Sprintf("%s/projects/%s/devices/%s",
		c.base, url.PathEscape(dev.Project), url.PathEscape(dev.Device))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Failure(0, fmt.Sprintf("build request: %v", err))
	}
	req.SetBasicAuth(dev.KeyID, dev.Secret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Failure(0, fmt.Sprintf("request %s: %v", typ, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Failure(resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var doc deviceDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return Failure(0, fmt.Sprintf("decode %s: %v", typ, err))
	}
	return extract(typ, doc)
}

func extract(typ Type, doc deviceDoc) Reading {
	r := doc.Reported
	if r == nil {
		return Unavailable("no reported section")
	}

	switch typ {
	case Temperature:
		if r.Temperature == nil || r.Temperature.Value == nil {
			return Unavailable("temperature data not available")
		}
		return Numeric(*r.Temperature.Value)
	case CO2:
		if r.CO2 == nil || r.CO2.PPM == nil {
			return Unavailable("co2 data not available")
		}
		return Numeric(*r.CO2.PPM)
	case Contact:
		if r.Contact == nil || r.Contact.State == nil {
			return Unavailable("contact data not available")
		}
		return Status(*r.Contact.State)
	}
	return Unavailable("unknown sensor type")
}
