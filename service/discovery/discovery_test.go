package discovery

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mixtape-fm/mixtape/models"
	"github.com/mixtape-fm/mixtape/service/aggregator"
	"github.com/mixtape-fm/mixtape/service/catalog"
	"github.com/mixtape-fm/mixtape/service/mood"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func trackJSON(id string, name string) string {
	return fmt.Sprintf(`{"id": %q, "name": %q, "artists": [{"id": "ar1", "name": "Artist"}], "duration_ms": 1000, "uri": "catalog:track:%s"}`, id, name, id)
}

// newTestDiscovery builds a discovery service over a fake catalog server.
func newTestDiscovery(t *testing.T, upstream http.Handler, mixes Mixes) *Service {
	t.Helper()

	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	client := catalog.NewWithHTTPClient(server.Client(), server.URL, "US", discardLogger())
	moodFilter := mood.NewFilter(client, discardLogger())
	agg := aggregator.New(client, discardLogger())

	return NewService(client, moodFilter, agg, mixes, discardLogger())
}

func decodeTracks(t *testing.T, rec *httptest.ResponseRecorder) []models.Track {
	t.Helper()

	var body struct {
		Tracks []models.Track `json:"tracks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body %q: %v", rec.Body.String(), err)
	}
	return body.Tracks
}

func TestSongsByMoodFiltersKnownLabel(t *testing.T) {
	upstream := http.NewServeMux()
	upstream.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "happy" {
			t.Errorf("expected mood used as query term, got %q", r.URL.Query().Get("q"))
		}
		fmt.Fprintf(w, `{"tracks": {"items": [%s, %s]}}`, trackJSON("up", "Upbeat"), trackJSON("down", "Gloomy"))
	})
	upstream.HandleFunc("/audio-features", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"audio_features": [
			{"id": "up", "valence": 0.9, "energy": 0.8, "danceability": 0.7},
			{"id": "down", "valence": 0.1, "energy": 0.2, "danceability": 0.2}
		]}`)
	})

	svc := newTestDiscovery(t, upstream, Mixes{})

	req := httptest.NewRequest(http.MethodGet, "/api/songs/happy", nil)
	req.SetPathValue("mood", "happy")
	rec := httptest.NewRecorder()
	svc.HandleSongsByMood(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	tracks := decodeTracks(t, rec)
	if len(tracks) != 1 || tracks[0].ID != "up" {
		t.Errorf("expected only the in-range track, got %+v", tracks)
	}
}

func TestSongsByMoodUnknownLabelIsPlainSearch(t *testing.T) {
	featureCalls := 0
	upstream := http.NewServeMux()
	upstream.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"tracks": {"items": [%s, %s]}}`, trackJSON("a", "A"), trackJSON("b", "B"))
	})
	upstream.HandleFunc("/audio-features", func(w http.ResponseWriter, r *http.Request) {
		featureCalls++
		fmt.Fprint(w, `{"audio_features": []}`)
	})

	svc := newTestDiscovery(t, upstream, Mixes{})

	req := httptest.NewRequest(http.MethodGet, "/api/songs/rainy-day", nil)
	req.SetPathValue("mood", "rainy-day")
	rec := httptest.NewRecorder()
	svc.HandleSongsByMood(rec, req)

	tracks := decodeTracks(t, rec)
	if len(tracks) != 2 {
		t.Errorf("unknown label must pass search results through, got %d tracks", len(tracks))
	}
	if featureCalls != 0 {
		t.Errorf("unknown label must not trigger a feature lookup, got %d calls", featureCalls)
	}
}

func TestSongsByMoodFailsOpenOnFeatureError(t *testing.T) {
	upstream := http.NewServeMux()
	upstream.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"tracks": {"items": [%s]}}`, trackJSON("a", "A"))
	})
	upstream.HandleFunc("/audio-features", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	svc := newTestDiscovery(t, upstream, Mixes{})

	req := httptest.NewRequest(http.MethodGet, "/api/songs/sad", nil)
	req.SetPathValue("mood", "sad")
	rec := httptest.NewRecorder()
	svc.HandleSongsByMood(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("feature failure must not fail the endpoint, got %d", rec.Code)
	}
	if tracks := decodeTracks(t, rec); len(tracks) != 1 {
		t.Errorf("expected unfiltered search results, got %d tracks", len(tracks))
	}
}

func TestArtistTopTracksFallbackToAlbum(t *testing.T) {
	upstream := http.NewServeMux()
	upstream.HandleFunc("/artists/ar1/top-tracks", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tracks": []}`)
	})
	upstream.HandleFunc("/artists/ar1/albums", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": [{"id": "al1", "name": "Latest", "images": [{"url": "http://img", "height": 640, "width": 640}]}]}`)
	})
	upstream.HandleFunc("/albums/al1/tracks", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"items": [%s]}`, trackJSON("cut1", "Album Cut"))
	})

	svc := newTestDiscovery(t, upstream, Mixes{})

	req := httptest.NewRequest(http.MethodGet, "/api/artist-top-tracks/ar1", nil)
	req.SetPathValue("artistId", "ar1")
	rec := httptest.NewRecorder()
	svc.HandleArtistTopTracks(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	tracks := decodeTracks(t, rec)
	if len(tracks) != 1 || tracks[0].ID != "cut1" {
		t.Errorf("expected album fallback tracks, got %+v", tracks)
	}
	if tracks[0].Album.Name != "Latest" {
		t.Errorf("album fallback must carry the album, got %+v", tracks[0].Album)
	}
}

func TestArtistTopTracksFallbackToNameSearch(t *testing.T) {
	upstream := http.NewServeMux()
	// the path segment is a name, so the id-based lookups 404
	upstream.HandleFunc("/artists/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/artists/resolved/top-tracks" {
			fmt.Fprintf(w, `{"tracks": [%s]}`, trackJSON("hit", "Hit"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	upstream.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") != "artist" {
			t.Errorf("expected artist search, got %q", r.URL.Query().Get("type"))
		}
		fmt.Fprint(w, `{"artists": {"items": [{"id": "resolved", "name": "Some Artist"}]}}`)
	})

	svc := newTestDiscovery(t, upstream, Mixes{})

	req := httptest.NewRequest(http.MethodGet, "/api/artist-top-tracks/Some%20Artist", nil)
	req.SetPathValue("artistId", "Some Artist")
	rec := httptest.NewRecorder()
	svc.HandleArtistTopTracks(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	tracks := decodeTracks(t, rec)
	if len(tracks) != 1 || tracks[0].ID != "hit" {
		t.Errorf("expected name-search fallback tracks, got %+v", tracks)
	}
}

func TestMixedHitsTagsAndLimits(t *testing.T) {
	upstream := http.NewServeMux()
	upstream.HandleFunc("/artists/ar1/top-tracks", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"tracks": [%s, %s]}`, trackJSON("h1", "One"), trackJSON("h2", "Two"))
	})
	upstream.HandleFunc("/artists/ar2/top-tracks", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"tracks": [%s, %s]}`, trackJSON("p1", "Three"), trackJSON("p2", "Four"))
	})

	mixes := Mixes{
		Hits: []aggregator.Source{
			{Kind: aggregator.KindArtist, ID: "ar1", Take: 2, Language: "english"},
			{Kind: aggregator.KindArtist, ID: "ar2", Take: 2, Language: "punjabi"},
		},
		Limit: 3,
	}
	svc := newTestDiscovery(t, upstream, mixes)

	rec := httptest.NewRecorder()
	svc.HandleMixedHits(rec, httptest.NewRequest(http.MethodGet, "/api/mixed-hits", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	tracks := decodeTracks(t, rec)
	if len(tracks) != 3 {
		t.Fatalf("expected the configured limit of 3 tracks, got %d", len(tracks))
	}
	valid := map[string]bool{"english": true, "punjabi": true}
	for _, tr := range tracks {
		if !valid[tr.Language] {
			t.Errorf("track %s has unexpected provenance %q", tr.ID, tr.Language)
		}
	}
}

func TestSearchSongsRequiresQuery(t *testing.T) {
	svc := newTestDiscovery(t, http.NewServeMux(), Mixes{})

	rec := httptest.NewRecorder()
	svc.HandleSearchSongs(rec, httptest.NewRequest(http.MethodGet, "/api/search/songs", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without q, got %d", rec.Code)
	}
}

func TestNewReleasesUpstreamFailure(t *testing.T) {
	upstream := http.NewServeMux()
	upstream.HandleFunc("/browse/new-releases", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	svc := newTestDiscovery(t, upstream, Mixes{})

	rec := httptest.NewRecorder()
	svc.HandleNewReleases(rec, httptest.NewRequest(http.MethodGet, "/api/new-releases", nil))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected upstream failure to surface as 502, got %d", rec.Code)
	}
}

func TestMoodsEndpoint(t *testing.T) {
	svc := newTestDiscovery(t, http.NewServeMux(), Mixes{})

	rec := httptest.NewRecorder()
	svc.HandleMoods(rec, httptest.NewRequest(http.MethodGet, "/api/moods", nil))

	var body struct {
		Moods map[string]mood.Profile `json:"moods"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}

	for _, label := range []string{"happy", "neutral", "angry", "sad"} {
		if _, ok := body.Moods[label]; !ok {
			t.Errorf("expected mood %q in response", label)
		}
	}
}
