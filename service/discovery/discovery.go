// Package discovery serves the public browsing endpoints: new releases,
// the fixed mixed-source feeds, artist top tracks, mood browsing, and
// free-text search.
package discovery

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mixtape-fm/mixtape/models"
	"github.com/mixtape-fm/mixtape/pkg/web"
	"github.com/mixtape-fm/mixtape/service/aggregator"
	"github.com/mixtape-fm/mixtape/service/catalog"
	"github.com/mixtape-fm/mixtape/service/mood"
)

const (
	defaultSearchLimit = 20
	defaultAlbumLimit  = 20
	moodSearchLimit    = 50
)

// Mixes holds the fixed source lists behind the mixed feeds.
type Mixes struct {
	Hits   []aggregator.Source
	Mixed  []aggregator.Source
	Mixed1 []aggregator.Source
	Limit  int
}

type Service struct {
	catalog *catalog.Client
	mood    *mood.Filter
	agg     *aggregator.Aggregator
	mixes   Mixes
	logger  *slog.Logger
}

func NewService(cat *catalog.Client, moodFilter *mood.Filter, agg *aggregator.Aggregator, mixes Mixes, logger *slog.Logger) *Service {
	return &Service{
		catalog: cat,
		mood:    moodFilter,
		agg:     agg,
		mixes:   mixes,
		logger:  logger,
	}
}

func intQuery(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func (s *Service) HandleNewReleases(w http.ResponseWriter, r *http.Request) {
	albums, err := s.catalog.NewReleases(r.Context(), r.URL.Query().Get("country"), intQuery(r, "limit", defaultAlbumLimit))
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, map[string]any{"albums": albums})
}

func (s *Service) HandleMixedHits(w http.ResponseWriter, r *http.Request) {
	s.serveMix(w, r, s.mixes.Hits, aggregator.Options{Limit: s.mixes.Limit})
}

func (s *Service) HandleMixed(w http.ResponseWriter, r *http.Request) {
	// curated lists across languages overlap, so this feed dedups
	s.serveMix(w, r, s.mixes.Mixed, aggregator.Options{Limit: s.mixes.Limit, Dedup: true})
}

func (s *Service) HandleMixed1(w http.ResponseWriter, r *http.Request) {
	s.serveMix(w, r, s.mixes.Mixed1, aggregator.Options{Limit: s.mixes.Limit})
}

func (s *Service) serveMix(w http.ResponseWriter, r *http.Request, sources []aggregator.Source, opts aggregator.Options) {
	tracks, err := s.agg.Aggregate(r.Context(), sources, opts)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, map[string]any{"tracks": tracks})
}

// HandleArtistTopTracks serves an artist's top tracks with a fallback
// chain: top tracks, then the latest album's tracks, then a name search
// for the artist.
func (s *Service) HandleArtistTopTracks(w http.ResponseWriter, r *http.Request) {
	artistID := r.PathValue("artistId")
	if artistID == "" {
		web.ErrorMessage(w, http.StatusBadRequest, "artist id is required")
		return
	}

	tracks, err := s.artistTopTracks(r.Context(), artistID)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, map[string]any{"tracks": tracks})
}

func (s *Service) artistTopTracks(ctx context.Context, artistID string) ([]models.Track, error) {
	tracks, err := s.catalog.ArtistTopTracks(ctx, artistID)
	if err == nil && len(tracks) > 0 {
		return tracks, nil
	}
	if err != nil {
		s.logger.Warn("top tracks lookup failed, falling back to albums", "artist", artistID, "err", err)
	}

	albums, err := s.catalog.ArtistAlbums(ctx, artistID, 1)
	if err == nil && len(albums) > 0 {
		tracks, err = s.catalog.AlbumTracks(ctx, albums[0], defaultSearchLimit)
		if err == nil && len(tracks) > 0 {
			return tracks, nil
		}
	}
	if err != nil {
		s.logger.Warn("album fallback failed, falling back to name search", "artist", artistID, "err", err)
	}

	// last resort: treat the path segment as an artist name
	id, err := s.catalog.SearchArtistID(ctx, artistID)
	if err != nil {
		return nil, err
	}

	return s.catalog.ArtistTopTracks(ctx, id)
}

// HandleSongsByMood searches the catalog with the mood as the query term
// and, for the four configured labels, narrows the hits to the mood's
// feature envelope. Unknown labels keep the plain search behavior.
func (s *Service) HandleSongsByMood(w http.ResponseWriter, r *http.Request) {
	label := r.PathValue("mood")
	if label == "" {
		web.ErrorMessage(w, http.StatusBadRequest, "mood is required")
		return
	}

	tracks, err := s.catalog.SearchTracks(r.Context(), label, moodSearchLimit)
	if err != nil {
		web.Error(w, err)
		return
	}

	tracks = s.mood.Filter(r.Context(), tracks, label)

	web.JSON(w, http.StatusOK, map[string]any{"mood": label, "tracks": tracks})
}

func (s *Service) HandleSearchSongs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		web.ErrorMessage(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	tracks, err := s.catalog.SearchTracks(r.Context(), q, intQuery(r, "limit", defaultSearchLimit))
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, map[string]any{"tracks": tracks})
}

func (s *Service) HandleTrack(w http.ResponseWriter, r *http.Request) {
	track, err := s.catalog.GetTrack(r.Context(), r.PathValue("id"))
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, track)
}

func (s *Service) HandleMoods(w http.ResponseWriter, r *http.Request) {
	web.JSON(w, http.StatusOK, map[string]any{"moods": mood.Profiles()})
}
