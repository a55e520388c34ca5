// Package mood maps mood labels onto closed ranges over the audio feature
// triple and filters track lists against them.
package mood

import (
	"context"
	"log/slog"

	"github.com/mixtape-fm/mixtape/models"
)

// Range is a closed interval; both bounds are inclusive.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r Range) contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Profile is the feature envelope configured for one mood label.
type Profile struct {
	Valence      Range `json:"valence"`
	Energy       Range `json:"energy"`
	Danceability Range `json:"danceability"`
}

// Matches reports whether every feature lies inside the profile.
func (p Profile) Matches(f models.AudioFeatures) bool {
	return p.Valence.contains(f.Valence) &&
		p.Energy.contains(f.Energy) &&
		p.Danceability.contains(f.Danceability)
}

var profiles = map[string]Profile{
	"happy": {
		Valence:      Range{0.6, 1.0},
		Energy:       Range{0.5, 1.0},
		Danceability: Range{0.5, 1.0},
	},
	"neutral": {
		Valence:      Range{0.4, 0.7},
		Energy:       Range{0.3, 0.7},
		Danceability: Range{0.3, 0.7},
	},
	"angry": {
		Valence:      Range{0.0, 0.4},
		Energy:       Range{0.6, 1.0},
		Danceability: Range{0.3, 0.8},
	},
	"sad": {
		Valence:      Range{0.0, 0.35},
		Energy:       Range{0.0, 0.5},
		Danceability: Range{0.0, 0.6},
	},
}

// Known reports whether the label has a configured profile.
func Known(label string) bool {
	_, ok := profiles[label]
	return ok
}

// Profiles returns a copy of the configured label-to-envelope table.
func Profiles() map[string]Profile {
	out := make(map[string]Profile, len(profiles))
	for label, p := range profiles {
		out[label] = p
	}
	return out
}

// FeatureSource supplies feature triples for a batch of track ids. Tracks
// without features upstream are absent from the map.
type FeatureSource interface {
	AudioFeatures(ctx context.Context, ids []string) (map[string]models.AudioFeatures, error)
}

type Filter struct {
	features FeatureSource
	logger   *slog.Logger
}

func NewFilter(features FeatureSource, logger *slog.Logger) *Filter {
	return &Filter{features: features, logger: logger}
}

// Filter returns the tracks whose feature triple lies inside the mood's
// envelope. An unknown mood is a pass-through, a track without features is
// excluded, and a failed batch lookup degrades to the unfiltered input.
func (f *Filter) Filter(ctx context.Context, tracks []models.Track, label string) []models.Track {
	profile, ok := profiles[label]
	if !ok {
		return tracks
	}

	var missing []string
	for _, t := range tracks {
		if t.Features == nil {
			missing = append(missing, t.ID)
		}
	}

	fetched := map[string]models.AudioFeatures{}
	if len(missing) > 0 {
		var err error
		fetched, err = f.features.AudioFeatures(ctx, missing)
		if err != nil {
			// fail open: a degraded feature service should not empty
			// the response
			f.logger.Warn("audio feature lookup failed, returning unfiltered tracks", "mood", label, "err", err)
			return tracks
		}
	}

	var matched []models.Track
	for _, t := range tracks {
		features := t.Features
		if features == nil {
			fv, ok := fetched[t.ID]
			if !ok {
				continue
			}
			features = &fv
		}

		if profile.Matches(*features) {
			t.Features = features
			matched = append(matched, t)
		}
	}

	return matched
}
