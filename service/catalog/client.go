// Package catalog wraps the upstream music catalog API. The bearer
// credential comes from the OAuth2 client-credentials flow; the token
// source caches it and refetches on expiry, so no handler ever touches
// the raw token.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/mixtape-fm/mixtape/models"
)

type Config struct {
	ClientID          string
	ClientSecret      string
	TokenURL          string
	BaseURL           string
	Market            string
	RequestsPerSecond int
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	market     string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}

	return &Client{
		httpClient: cc.Client(context.Background()),
		baseURL:    cfg.BaseURL,
		market:     cfg.Market,
		limiter:    rate.NewLimiter(rate.Limit(rps), rps),
		logger:     logger,
	}
}

// NewWithHTTPClient constructs a client over a pre-authenticated HTTP
// client. Tests use it to point the catalog at a fake server.
func NewWithHTTPClient(httpClient *http.Client, baseURL, market string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		market:     market,
		limiter:    rate.NewLimiter(rate.Inf, 1),
		logger:     logger,
	}
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Warn("catalog error response", "path", path, "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("%w: status %d", models.ErrUpstream, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", models.ErrUpstream, err)
	}

	return nil
}

// GetTrack looks up a single track by catalog id.
func (c *Client) GetTrack(ctx context.Context, id string) (*models.Track, error) {
	var tr trackResponse
	if err := c.getJSON(ctx, "/tracks/"+url.PathEscape(id), nil, &tr); err != nil {
		return nil, err
	}

	track := trackFromWire(trackObject(tr))
	return &track, nil
}

// SearchTracks runs a free-text track search.
func (c *Client) SearchTracks(ctx context.Context, q string, limit int) ([]models.Track, error) {
	query := url.Values{
		"q":     {q},
		"type":  {"track"},
		"limit": {strconv.Itoa(limit)},
	}

	var sr searchResponse
	if err := c.getJSON(ctx, "/search", query, &sr); err != nil {
		return nil, err
	}

	if sr.Tracks == nil {
		return nil, nil
	}

	return tracksFromWire(sr.Tracks.Items), nil
}

// SearchArtistID resolves an artist name to the first matching catalog id.
func (c *Client) SearchArtistID(ctx context.Context, name string) (string, error) {
	query := url.Values{
		"q":     {name},
		"type":  {"artist"},
		"limit": {"1"},
	}

	var sr searchResponse
	if err := c.getJSON(ctx, "/search", query, &sr); err != nil {
		return "", err
	}

	if sr.Artists == nil || len(sr.Artists.Items) == 0 {
		return "", models.ErrNotFound
	}

	return sr.Artists.Items[0].ID, nil
}

// ArtistTopTracks returns the artist's top tracks for the configured market.
func (c *Client) ArtistTopTracks(ctx context.Context, artistID string) ([]models.Track, error) {
	query := url.Values{"market": {c.market}}

	var tr topTracksResponse
	if err := c.getJSON(ctx, "/artists/"+url.PathEscape(artistID)+"/top-tracks", query, &tr); err != nil {
		return nil, err
	}

	return tracksFromWire(tr.Tracks), nil
}

// ArtistAlbums lists the artist's albums, newest first upstream.
func (c *Client) ArtistAlbums(ctx context.Context, artistID string, limit int) ([]models.Album, error) {
	query := url.Values{"limit": {strconv.Itoa(limit)}}

	var ar artistAlbumsResponse
	if err := c.getJSON(ctx, "/artists/"+url.PathEscape(artistID)+"/albums", query, &ar); err != nil {
		return nil, err
	}

	albums := make([]models.Album, 0, len(ar.Items))
	for _, item := range ar.Items {
		albums = append(albums, albumFromWire(item))
	}

	return albums, nil
}

// AlbumTracks lists an album's tracks. The upstream simplified track shape
// omits the album, so it is filled in from the album itself.
func (c *Client) AlbumTracks(ctx context.Context, album models.Album, limit int) ([]models.Track, error) {
	query := url.Values{"limit": {strconv.Itoa(limit)}}

	var ar albumTracksResponse
	if err := c.getJSON(ctx, "/albums/"+url.PathEscape(album.ID)+"/tracks", query, &ar); err != nil {
		return nil, err
	}

	tracks := tracksFromWire(ar.Items)
	for i := range tracks {
		tracks[i].Album = album
	}

	return tracks, nil
}

// NewReleases lists recently released albums.
func (c *Client) NewReleases(ctx context.Context, country string, limit int) ([]models.Album, error) {
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	if country != "" {
		query.Set("country", country)
	}

	var nr newReleasesResponse
	if err := c.getJSON(ctx, "/browse/new-releases", query, &nr); err != nil {
		return nil, err
	}

	albums := make([]models.Album, 0, len(nr.Albums.Items))
	for _, item := range nr.Albums.Items {
		albums = append(albums, albumFromWire(item))
	}

	return albums, nil
}

// PlaylistTracks lists the tracks of a curated upstream playlist.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string, limit int) ([]models.Track, error) {
	query := url.Values{"limit": {strconv.Itoa(limit)}}

	var pr playlistTracksResponse
	if err := c.getJSON(ctx, "/playlists/"+url.PathEscape(playlistID)+"/tracks", query, &pr); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(pr.Items))
	for _, item := range pr.Items {
		if item.Track == nil {
			continue
		}
		tracks = append(tracks, trackFromWire(*item.Track))
	}

	return tracks, nil
}

// AudioFeatures fetches the feature triples for up to 100 track ids in one
// call. Tracks the upstream has no features for are absent from the result.
func (c *Client) AudioFeatures(ctx context.Context, ids []string) (map[string]models.AudioFeatures, error) {
	if len(ids) == 0 {
		return map[string]models.AudioFeatures{}, nil
	}

	joined := ids[0]
	for _, id := range ids[1:] {
		joined += "," + id
	}
	query := url.Values{"ids": {joined}}

	var fr audioFeaturesResponse
	if err := c.getJSON(ctx, "/audio-features", query, &fr); err != nil {
		return nil, err
	}

	features := make(map[string]models.AudioFeatures, len(fr.AudioFeatures))
	for _, f := range fr.AudioFeatures {
		if f == nil {
			continue
		}
		features[f.ID] = models.AudioFeatures{
			Valence:      f.Valence,
			Energy:       f.Energy,
			Danceability: f.Danceability,
		}
	}

	return features, nil
}
