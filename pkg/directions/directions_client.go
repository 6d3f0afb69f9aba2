// Package directions wraps a Mapbox-compatible directions and geocoding API.
// Every failure is reported as domain.ErrTransientIO so callers can degrade.
package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"foodia-handoff/domain"
	"foodia-handoff/pkg/geo"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type (
	Config struct {
		BaseURL     string        `validate:"required,url"`
		AccessToken string        `validate:"required"`
		Profile     string        `validate:"required"`
		Timeout     time.Duration `validate:"gt=0"`
		Limit       int           `validate:"gte=1,lte=10"`
	}

	Route struct {
		Geometry       [][2]float64
		DistanceMeters float64
		DurationSecs   float64
		Steps          []domain.RouteStep
	}

	Client interface {
		// Route returns nil with no error when the provider has no route.
		Route(ctx context.Context, start, end domain.Coordinate) (*Route, error)
		Forward(ctx context.Context, query string) ([]domain.Place, error)
		Reverse(ctx context.Context, at domain.Coordinate) ([]domain.Place, error)
	}

	client struct {
		cfg        Config
		httpClient *http.Client
	}
)

func NewClient(cfg Config) Client {
	if cfg.Profile == "" {
		cfg.Profile = "mapbox/driving"
	}
	if cfg.Limit == 0 {
		cfg.Limit = 5
	}
	return &client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type routesResponse struct {
	Routes []struct {
		Geometry struct {
			Coordinates [][2]float64 `json:"coordinates"`
		} `json:"geometry"`
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Legs     []struct {
			Steps []struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
				Maneuver struct {
					Instruction string `json:"instruction"`
				} `json:"maneuver"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

type featuresResponse struct {
	Features []struct {
		Center    []float64 `json:"center"`
		PlaceName string    `json:"place_name"`
	} `json:"features"`
}

func (c *client) Route(ctx context.Context, start, end domain.Coordinate) (*Route, error) {
	if err := start.Validate(); err != nil {
		return nil, err
	}
	if err := end.Validate(); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/directions/v5/%s/%f,%f;%f,%f", c.cfg.Profile, start.Lng, start.Lat, end.Lng, end.Lat)
	query := url.Values{}
	query.Set("geometries", "geojson")
	query.Set("steps", "true")
	query.Set("overview", "full")

	var body routesResponse
	if err := c.get(ctx, "directions", path, query, &body); err != nil {
		return nil, err
	}
	if len(body.Routes) == 0 {
		return nil, nil
	}

	r := body.Routes[0]
	route := &Route{
		Geometry:       r.Geometry.Coordinates,
		DistanceMeters: r.Distance,
		DurationSecs:   r.Duration,
	}
	for _, leg := range r.Legs {
		for _, step := range leg.Steps {
			route.Steps = append(route.Steps, domain.RouteStep{
				Instruction:    step.Maneuver.Instruction,
				DistanceMeters: step.Distance,
				DurationSecs:   step.Duration,
			})
		}
	}
	return route, nil
}

func (c *client) Forward(ctx context.Context, query string) ([]domain.Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewFieldError(domain.ErrValidation, "", "q", "query is required")
	}
	return c.geocode(ctx, url.PathEscape(query))
}

func (c *client) Reverse(ctx context.Context, at domain.Coordinate) ([]domain.Place, error) {
	if err := at.Validate(); err != nil {
		return nil, err
	}
	return c.geocode(ctx, fmt.Sprintf("%f,%f", at.Lng, at.Lat))
}

func (c *client) geocode(ctx context.Context, search string) ([]domain.Place, error) {
	path := fmt.Sprintf("/geocoding/v5/mapbox.places/%s.json", search)
	query := url.Values{}
	query.Set("limit", fmt.Sprint(c.cfg.Limit))

	var body featuresResponse
	if err := c.get(ctx, "geocoding", path, query, &body); err != nil {
		return nil, err
	}

	places := make([]domain.Place, 0, len(body.Features))
	for _, f := range body.Features {
		if len(f.Center) != 2 {
			continue
		}
		center := domain.Coordinate{Lat: f.Center[1], Lng: f.Center[0], PlaceName: f.PlaceName}
		if center.Validate() != nil {
			continue
		}
		places = append(places, domain.Place{Name: f.PlaceName, Center: center})
	}
	return places, nil
}

func (c *client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	query.Set("access_token", c.cfg.AccessToken)
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Transient(op, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Transient(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Transient(op, fmt.Errorf("provider error: %s - %s", resp.Status, string(bodyBytes)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.Transient(op, err)
	}
	return nil
}

// RouteOrStraightLine asks the provider for a route and falls back to the
// great-circle distance when it has none or fails.
func RouteOrStraightLine(ctx context.Context, c Client, start, end domain.Coordinate) (domain.DirectionsSummary, error) {
	if err := start.Validate(); err != nil {
		return domain.DirectionsSummary{}, err
	}
	if err := end.Validate(); err != nil {
		return domain.DirectionsSummary{}, err
	}

	fallback := domain.DirectionsSummary{
		Routed:         false,
		DistanceMeters: geo.HaversineKm(start, end) * 1000,
	}
	if c == nil {
		return fallback, nil
	}
	route, err := c.Route(ctx, start, end)
	if err != nil || route == nil {
		return fallback, nil
	}
	return domain.DirectionsSummary{
		Routed:         true,
		Geometry:       route.Geometry,
		DistanceMeters: route.DistanceMeters,
		DurationSecs:   route.DurationSecs,
		Steps:          route.Steps,
	}, nil
}
