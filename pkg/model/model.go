package model

import (
	"time"

	"hamprofile/pkg/geo"
	"hamprofile/pkg/profile"
)

// Profile is a stored radio path: both endpoints, the sampled terrain and the
// chart variant it was last rendered with.
type Profile struct {
	ID   string       `json:"id"`
	From geo.Endpoint `json:"from"`
	To   geo.Endpoint `json:"to"`

	// Terrain elevations in meters, evenly spaced from From to To.
	Samples []float64 `json:"samples"`

	EarthArc      bool      `json:"earth_arc"`
	FullElevation bool      `json:"full_elevation"`
	CreatedAt     time.Time `json:"created_at"`
}

// ProfileSamples converts the stored elevations for the chart layer.
func (p *Profile) ProfileSamples() []profile.Sample {
	out := make([]profile.Sample, len(p.Samples))
	for i, e := range p.Samples {
		out[i].Elevation = e
	}
	return out
}

// ProfileSummary is the listing view of a Profile, without samples.
type ProfileSummary struct {
	ID          string    `json:"id"`
	From        geo.Point `json:"from"`
	To          geo.Point `json:"to"`
	SampleCount int       `json:"sample_count"`
	CreatedAt   time.Time `json:"created_at"`
}
