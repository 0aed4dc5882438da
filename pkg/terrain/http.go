package terrain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"hamprofile/pkg/geo"
)

// ErrShortResponse is returned when the API answers with fewer points than asked.
var ErrShortResponse = errors.New("elevation api returned too few results")

// Poster sends a cached POST request. *request.Client implements it.
type Poster interface {
	PostWithCache(ctx context.Context, u string, body []byte, headers map[string]string, cacheKey string) ([]byte, error)
}

// emptyReporter is implemented by clients that count empty responses.
type emptyReporter interface {
	ReportEmpty(u string)
}

// HTTPSource queries an Open-Elevation compatible lookup endpoint
// (POST {"locations":[{"latitude":..,"longitude":..}]}).
type HTTPSource struct {
	client    Poster
	url       string
	key       string
	batchSize int
}

// NewHTTPSource creates a source posting to url in batches of batchSize points.
// key is sent as a bearer token when not empty.
func NewHTTPSource(client Poster, url, key string, batchSize int) *HTTPSource {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &HTTPSource{client: client, url: url, key: key, batchSize: batchSize}
}

// Name implements ElevationSource.
func (h *HTTPSource) Name() string { return "api" }

type lookupLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type lookupRequest struct {
	Locations []lookupLocation `json:"locations"`
}

type lookupResponse struct {
	Results []struct {
		Latitude  float64  `json:"latitude"`
		Longitude float64  `json:"longitude"`
		Elevation *float64 `json:"elevation"`
	} `json:"results"`
}

// Elevations implements ElevationSource. Points the API reports without an
// elevation (e.g. outside its dataset) come back as 0, sea level.
func (h *HTTPSource) Elevations(ctx context.Context, pts []geo.Point) ([]float64, error) {
	out := make([]float64, 0, len(pts))
	for start := 0; start < len(pts); start += h.batchSize {
		end := min(start+h.batchSize, len(pts))
		vals, err := h.lookup(ctx, pts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vals...)
	}
	return out, nil
}

func (h *HTTPSource) lookup(ctx context.Context, pts []geo.Point) ([]float64, error) {
	req := lookupRequest{Locations: make([]lookupLocation, len(pts))}
	for i, p := range pts {
		// ~1 m precision keeps cache keys stable across float noise
		req.Locations[i] = lookupLocation{Latitude: round5(p.Lat), Longitude: round5(p.Lon)}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	if h.key != "" {
		headers["Authorization"] = "Bearer " + h.key
	}

	sum := sha256.Sum256(body)
	cacheKey := "elev:" + hex.EncodeToString(sum[:16])

	data, err := h.client.PostWithCache(ctx, h.url, body, headers, cacheKey)
	if err != nil {
		return nil, fmt.Errorf("elevation lookup: %w", err)
	}

	var resp lookupResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode elevation response: %w", err)
	}
	if len(resp.Results) < len(pts) {
		if r, ok := h.client.(emptyReporter); ok {
			r.ReportEmpty(h.url)
		}
		return nil, fmt.Errorf("%w: got %d, want %d", ErrShortResponse, len(resp.Results), len(pts))
	}

	out := make([]float64, len(pts))
	for i := range pts {
		if e := resp.Results[i].Elevation; e != nil {
			out[i] = *e
		}
	}
	return out, nil
}

func round5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}
