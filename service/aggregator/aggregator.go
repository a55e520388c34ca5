// Package aggregator merges tracks from several fixed catalog sources into
// one shuffled response. Failure of one source does not prevent results
// from the others.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"

	"github.com/mixtape-fm/mixtape/models"
)

const (
	KindArtist   = "artist"
	KindPlaylist = "playlist"
)

// Source names a fixed artist or curated playlist contributing tracks, the
// number to take from it, and the provenance label stamped on each track.
type Source struct {
	Kind     string
	ID       string
	Take     int
	Language string
}

// ParseSource parses the "kind|id|take|language" form used in config.
func ParseSource(spec string) (Source, error) {
	parts := strings.Split(spec, "|")
	if len(parts) != 4 {
		return Source{}, fmt.Errorf("%w: malformed source %q", models.ErrBadRequest, spec)
	}

	take, err := strconv.Atoi(parts[2])
	if err != nil || take <= 0 {
		return Source{}, fmt.Errorf("%w: bad take count in source %q", models.ErrBadRequest, spec)
	}

	src := Source{Kind: parts[0], ID: parts[1], Take: take, Language: parts[3]}
	if src.Kind != KindArtist && src.Kind != KindPlaylist {
		return Source{}, fmt.Errorf("%w: unknown source kind %q", models.ErrBadRequest, src.Kind)
	}

	return src, nil
}

// ParseSources parses a config source list, failing on the first bad entry.
func ParseSources(specs []string) ([]Source, error) {
	sources := make([]Source, 0, len(specs))
	for _, spec := range specs {
		src, err := ParseSource(spec)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// Catalog is the slice of the catalog client the aggregator uses.
type Catalog interface {
	ArtistTopTracks(ctx context.Context, artistID string) ([]models.Track, error)
	PlaylistTracks(ctx context.Context, playlistID string, limit int) ([]models.Track, error)
}

type Options struct {
	Limit int  // 0 means no truncation
	Dedup bool // drop repeated track ids across sources
}

type Aggregator struct {
	catalog Catalog
	logger  *slog.Logger
}

func New(catalog Catalog, logger *slog.Logger) *Aggregator {
	return &Aggregator{catalog: catalog, logger: logger}
}

// Aggregate fans out to every source concurrently, merges the results in
// source order, shuffles uniformly, and truncates to the limit. A failed
// source contributes nothing; if every source fails the whole call reports
// an upstream failure.
func (a *Aggregator) Aggregate(ctx context.Context, sources []Source, opts Options) ([]models.Track, error) {
	if len(sources) == 0 {
		return nil, nil
	}

	contributions := make([][]models.Track, len(sources))
	errs := make([]error, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			contributions[i], errs[i] = a.fetch(ctx, src)
		}()
	}
	wg.Wait()

	failed := 0
	for i, err := range errs {
		if err != nil {
			failed++
			a.logger.Warn("aggregation source failed", "kind", sources[i].Kind, "id", sources[i].ID, "err", err)
		}
	}
	if failed == len(sources) {
		return nil, fmt.Errorf("%w: all %d sources failed", models.ErrUpstream, len(sources))
	}

	// merge in source order so the shuffle is the only non-determinism
	var merged []models.Track
	seen := make(map[string]struct{})
	for _, tracks := range contributions {
		for _, t := range tracks {
			if opts.Dedup {
				if _, ok := seen[t.ID]; ok {
					continue
				}
				seen[t.ID] = struct{}{}
			}
			merged = append(merged, t)
		}
	}

	rand.Shuffle(len(merged), func(i, j int) {
		merged[i], merged[j] = merged[j], merged[i]
	})

	if opts.Limit > 0 && len(merged) > opts.Limit {
		merged = merged[:opts.Limit]
	}

	return merged, nil
}

func (a *Aggregator) fetch(ctx context.Context, src Source) ([]models.Track, error) {
	var tracks []models.Track
	var err error

	switch src.Kind {
	case KindArtist:
		tracks, err = a.catalog.ArtistTopTracks(ctx, src.ID)
	case KindPlaylist:
		tracks, err = a.catalog.PlaylistTracks(ctx, src.ID, src.Take)
	default:
		return nil, fmt.Errorf("%w: unknown source kind %q", models.ErrBadRequest, src.Kind)
	}

	if err != nil {
		return nil, err
	}

	if len(tracks) > src.Take {
		tracks = tracks[:src.Take]
	}

	for i := range tracks {
		tracks[i].Language = src.Language
	}

	return tracks, nil
}
