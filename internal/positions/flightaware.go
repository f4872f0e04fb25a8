package positions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ihcair/fleetdash/pkg/logger"
)

// lastKnownAgeSeconds is how old a FlightAware position may be before it is
// reported as last_known instead of live
const lastKnownAgeSeconds = 7200

// FlightAwareClient is the paid fallback source. Every call goes through the
// spend ledger: spend is recorded before the request fires, and the client
// refuses to call once the monthly safety cap is reached.
type FlightAwareClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	ledger     *SpendLedger
	limiter    *rate.Limiter
	bases      []Base
	logger     *logger.Logger
}

// NewFlightAwareClient creates a FlightAware AeroAPI client
func NewFlightAwareClient(baseURL, apiKey string, ledger *SpendLedger, rateDelay time.Duration, timeout time.Duration, bases []Base, log *logger.Logger) *FlightAwareClient {
	if rateDelay <= 0 {
		rateDelay = 1100 * time.Millisecond
	}
	return &FlightAwareClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		ledger:     ledger,
		limiter:    rate.NewLimiter(rate.Every(rateDelay), 1),
		bases:      bases,
		logger:     log.Named("flightaware"),
	}
}

// Enabled reports whether the client has an API key to use
func (c *FlightAwareClient) Enabled() bool {
	return c.apiKey != ""
}

// faFlightsResponse is the AeroAPI /flights/{ident} envelope
type faFlightsResponse struct {
	Flights []faFlight `json:"flights"`
}

type faFlight struct {
	Ident        string          `json:"ident"`
	Origin       *faAirport      `json:"origin"`
	Destination  *faAirport      `json:"destination"`
	ActualOff    *string         `json:"actual_off"`
	ActualOn     *string         `json:"actual_on"`
	LastPosition *faLastPosition `json:"last_position"`
}

type faAirport struct {
	Code     string `json:"code"`
	CodeICAO string `json:"code_icao"`
	Name     string `json:"name"`
}

// label prefers the airport code, falling back to the name
func (a *faAirport) label() *string {
	if a == nil {
		return nil
	}
	code := a.Code
	if code == "" {
		code = a.CodeICAO
	}
	if code == "" {
		code = a.Name
	}
	if code == "" {
		return nil
	}
	return &code
}

type faLastPosition struct {
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	Altitude       *int     `json:"altitude"`
	Groundspeed    *float64 `json:"groundspeed"`
	Heading        *float64 `json:"heading"`
	Timestamp      string   `json:"timestamp"`
	AltitudeChange string   `json:"altitude_change"`
}

// FetchRegistration returns the most recent FlightAware position for a tail,
// or nil when no flight with a position is found. A nil fix with a nil error
// also covers the cap-reached and no-key cases; callers check Enabled and
// the ledger to distinguish.
func (c *FlightAwareClient) FetchRegistration(ctx context.Context, registration string) (*Fix, error) {
	if !c.Enabled() {
		return nil, nil
	}
	if !c.ledger.CanAfford() {
		c.logger.Warn("FlightAware spend cap reached, skipping",
			logger.String("registration", registration),
			logger.String("spend", c.ledger.Summary()))
		return nil, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	// record spend first, so a failed request still counts against the cap
	if err := c.ledger.RecordCall(time.Now()); err != nil {
		return nil, err
	}

	ident := strings.ToUpper(strings.TrimSpace(registration))
	url := fmt.Sprintf("%s/flights/%s?max_pages=1", c.baseURL, ident)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Fetching FlightAware position",
		logger.String("registration", registration),
		logger.String("spend", c.ledger.Summary()))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var data faFlightsResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	// flights are newest first; take the first with a position
	for i := range data.Flights {
		if data.Flights[i].LastPosition != nil {
			return c.buildFix(registration, data.Flights[i]), nil
		}
	}
	return nil, nil
}

func (c *FlightAwareClient) buildFix(registration string, fl faFlight) *Fix {
	now := time.Now()
	pos := fl.LastPosition

	fix := EmptyFix(registration, SourceFlightAware, now)
	fix.Flight = FlightDetail{
		Origin:      fl.Origin.label(),
		Destination: fl.Destination.label(),
		ActualOff:   fl.ActualOff,
		ActualOn:    fl.ActualOn,
	}
	if fl.Ident != "" {
		ident := fl.Ident
		fix.Flight.Ident = &ident
	}

	if pos.Latitude == nil || pos.Longitude == nil {
		fix.Status = StatusNoData
		return fix
	}

	age := float64(lastKnownAgeSeconds)
	if ts, err := time.Parse(time.RFC3339, pos.Timestamp); err == nil {
		age = now.Sub(ts).Seconds()
		seen := ts.UTC().Format(time.RFC3339)
		fix.LastSeen = &seen
	}

	// AeroAPI altitude is in hundreds of feet
	var altFt *int
	if pos.Altitude != nil {
		ft := *pos.Altitude * 100
		altFt = &ft
	}
	gs := 0.0
	if pos.Groundspeed != nil {
		gs = *pos.Groundspeed
	}

	airborne := (altFt != nil && *altFt > airborneAltFt) || gs > airborneGSKts
	// a flight that has landed is on the ground regardless of the last fix
	if fl.ActualOn != nil && *fl.ActualOn != "" {
		airborne = false
	}

	fix.Airborne = airborne
	switch {
	case age >= lastKnownAgeSeconds:
		fix.Status = StatusLastKnown
		fix.Airborne = false
	case airborne:
		fix.Status = StatusAirborne
	default:
		fix.Status = StatusOnGround
	}

	roundedGS := float64(int(gs*10+0.5)) / 10
	fix.Position = PointDetail{
		Lat:            pos.Latitude,
		Lon:            pos.Longitude,
		AltitudeFt:     altFt,
		GroundspeedKts: &roundedGS,
		Heading:        pos.Heading,
	}
	fix.Base = ClassifyBase(*pos.Latitude, *pos.Longitude, c.bases)

	return fix
}
