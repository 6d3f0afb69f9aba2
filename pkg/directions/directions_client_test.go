package directions

import (
	"context"
	"foodia-handoff/domain"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:     srv.URL,
		AccessToken: "pk.test",
		Timeout:     200 * time.Millisecond,
	})
}

var (
	start = domain.Coordinate{Lat: -6.2000, Lng: 106.8166}
	end   = domain.Coordinate{Lat: -6.1754, Lng: 106.8272}
)

func TestRoute_ParsesFirstRoute(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/directions/v5/mapbox/driving/106.816600,-6.200000;106.827200,-6.175400"))
		assert.Equal(t, "pk.test", r.URL.Query().Get("access_token"))
		assert.Equal(t, "geojson", r.URL.Query().Get("geometries"))
		w.Write([]byte(`{"routes":[{"geometry":{"coordinates":[[106.8166,-6.2],[106.8272,-6.1754]]},
			"distance":3120.5,"duration":540,
			"legs":[{"steps":[{"distance":1000,"duration":120,"maneuver":{"instruction":"Head north"}},
			{"distance":2120.5,"duration":420,"maneuver":{"instruction":"Arrive"}}]}]}]}`))
	})

	route, err := c.Route(context.Background(), start, end)
	require.NoError(t, err)
	require.NotNil(t, route)
	assert.Equal(t, 3120.5, route.DistanceMeters)
	assert.Equal(t, 540.0, route.DurationSecs)
	assert.Len(t, route.Geometry, 2)
	require.Len(t, route.Steps, 2)
	assert.Equal(t, "Head north", route.Steps[0].Instruction)
}

func TestRoute_EmptyRoutesIsNotAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"NoRoute"}`))
	})

	route, err := c.Route(context.Background(), start, end)
	require.NoError(t, err)
	assert.Nil(t, route)
}

func TestRoute_FailuresAreTransient(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"non-2xx": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		},
		"bad json": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"routes":`))
		},
		"timeout": func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(500 * time.Millisecond)
		},
	}
	for name, h := range tests {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, h)
			_, err := c.Route(context.Background(), start, end)
			assert.ErrorIs(t, err, domain.ErrTransientIO)
		})
	}
}

func TestRoute_InvalidCoordinates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("provider must not be called")
	})
	_, err := c.Route(context.Background(), domain.Coordinate{Lat: 100}, end)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGeocode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "Monas"):
			w.Write([]byte(`{"features":[{"center":[106.8272,-6.1754],"place_name":"Monas, Jakarta"},{"center":[1],"place_name":"broken"}]}`))
		default:
			w.Write([]byte(`{"type":"FeatureCollection"}`))
		}
	})

	places, err := c.Forward(context.Background(), "Monas")
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "Monas, Jakarta", places[0].Name)
	assert.Equal(t, -6.1754, places[0].Center.Lat)

	places, err = c.Reverse(context.Background(), end)
	require.NoError(t, err)
	assert.Empty(t, places)

	_, err = c.Forward(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRouteOrStraightLine(t *testing.T) {
	failing := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	summary, err := RouteOrStraightLine(context.Background(), failing, start, end)
	require.NoError(t, err)
	assert.False(t, summary.Routed)
	assert.InDelta(t, 2976, summary.DistanceMeters, 5)
	assert.Empty(t, summary.Steps)

	summary, err = RouteOrStraightLine(context.Background(), nil, start, end)
	require.NoError(t, err)
	assert.False(t, summary.Routed)

	ok := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"routes":[{"geometry":{"coordinates":[]},"distance":3500,"duration":600,"legs":[]}]}`))
	})
	summary, err = RouteOrStraightLine(context.Background(), ok, start, end)
	require.NoError(t, err)
	assert.True(t, summary.Routed)
	assert.Equal(t, 3500.0, summary.DistanceMeters)

	_, err = RouteOrStraightLine(context.Background(), ok, domain.Coordinate{Lat: -91}, end)
	assert.ErrorIs(t, err, domain.ErrInvalidCoordinates)
}
