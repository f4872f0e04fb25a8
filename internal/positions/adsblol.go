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

// airborne heuristics when the feed carries no on_ground flag
const (
	airborneAltFt = 200
	airborneGSKts = 40
)

// ADSBClient queries ADSB.lol v2 by registration. No API key, no cost; the
// rate limiter keeps the polling polite.
type ADSBClient struct {
	httpClient *http.Client
	baseURL    string
	maxAge     time.Duration
	limiter    *rate.Limiter
	bases      []Base
	logger     *logger.Logger
}

// NewADSBClient creates an ADSB.lol client
func NewADSBClient(baseURL string, maxAge time.Duration, callDelay time.Duration, timeout time.Duration, bases []Base, log *logger.Logger) *ADSBClient {
	if callDelay <= 0 {
		callDelay = 250 * time.Millisecond
	}
	return &ADSBClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxAge:     maxAge,
		limiter:    rate.NewLimiter(rate.Every(callDelay), 1),
		bases:      bases,
		logger:     log.Named("adsb-lol"),
	}
}

// adsbResponse is the ADSB.lol v2 response envelope
type adsbResponse struct {
	AC []adsbAircraft `json:"ac"`
}

// adsbAircraft is one aircraft record from the feed. alt_baro is either a
// number or the string "ground".
type adsbAircraft struct {
	Flight    string          `json:"flight"`
	Lat       *float64        `json:"lat"`
	Lon       *float64        `json:"lon"`
	AltBaro   json.RawMessage `json:"alt_baro"`
	GS        *float64        `json:"gs"`
	Track     *float64        `json:"track"`
	Seen      *float64        `json:"seen"`
	SeenPos   *float64        `json:"seen_pos"`
	OnGround  *bool           `json:"on_ground"`
	Emergency string          `json:"emergency"`
}

// altitudeFt resolves alt_baro to feet; "ground" means zero
func (a adsbAircraft) altitudeFt() int {
	if string(a.AltBaro) == `"ground"` {
		return 0
	}
	var ft float64
	if err := json.Unmarshal(a.AltBaro, &ft); err != nil {
		return 0
	}
	return int(ft)
}

// FetchRegistration returns the current fix for a tail, or nil when the
// aircraft is not being tracked, has no position, or the position is stale.
func (c *ADSBClient) FetchRegistration(ctx context.Context, registration string) (*Fix, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/reg/%s", c.baseURL, strings.ToUpper(strings.TrimSpace(registration)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "fleetdash/1.0")

	c.logger.Debug("Fetching ADSB.lol position", logger.String("registration", registration))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// aircraft not currently tracked, normal
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var data adsbResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if len(data.AC) == 0 {
		return nil, nil
	}

	ac := data.AC[0]
	if ac.Lat == nil || ac.Lon == nil {
		return nil, nil
	}

	// seen_pos = seconds since the last position message
	age := ac.SeenPos
	if age == nil {
		age = ac.Seen
	}
	if age != nil && *age > c.maxAge.Seconds() {
		c.logger.Debug("ADSB.lol position too stale",
			logger.String("registration", registration),
			logger.Float64("age_seconds", *age))
		return nil, nil
	}

	return c.buildFix(registration, ac), nil
}

func (c *ADSBClient) buildFix(registration string, ac adsbAircraft) *Fix {
	now := time.Now()
	altFt := ac.altitudeFt()
	gs := 0.0
	if ac.GS != nil {
		gs = *ac.GS
	}

	var airborne bool
	if ac.OnGround != nil {
		airborne = !*ac.OnGround
	} else {
		airborne = altFt > airborneAltFt || gs > airborneGSKts
	}

	fix := EmptyFix(registration, SourceADSBLol, now)
	fix.Airborne = airborne
	if airborne {
		fix.Status = StatusAirborne
	} else {
		fix.Status = StatusOnGround
	}
	seen := now.UTC().Format(time.RFC3339)
	fix.LastSeen = &seen

	roundedGS := float64(int(gs*10+0.5)) / 10
	fix.Position = PointDetail{
		Lat:            ac.Lat,
		Lon:            ac.Lon,
		AltitudeFt:     &altFt,
		GroundspeedKts: &roundedGS,
		Heading:        ac.Track,
	}
	if ident := strings.TrimSpace(ac.Flight); ident != "" {
		fix.Flight.Ident = &ident
	}
	fix.Base = ClassifyBase(*ac.Lat, *ac.Lon, c.bases)

	return fix
}
