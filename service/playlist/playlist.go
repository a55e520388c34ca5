// Package playlist owns user-scoped playlists: creation, listing, song
// membership, playback resolution, and metadata sync from catalog data.
package playlist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mixtape-fm/mixtape/db"
	"github.com/mixtape-fm/mixtape/models"
	"github.com/mixtape-fm/mixtape/pkg/web"
	"github.com/mixtape-fm/mixtape/session"
)

// TrackResolver resolves a catalog track id before it becomes a persisted
// song.
type TrackResolver interface {
	GetTrack(ctx context.Context, id string) (*models.Track, error)
}

type Service struct {
	db      *db.DB
	catalog TrackResolver
	logger  *slog.Logger
}

func NewService(database *db.DB, catalog TrackResolver, logger *slog.Logger) *Service {
	return &Service{db: database, catalog: catalog, logger: logger}
}

// Create persists a new empty playlist for the owner. Conflict when the
// owner already has one with the same name, compared case-insensitively.
func (s *Service) Create(ctx context.Context, ownerID int64, name, description string) (*models.Playlist, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: playlist name is required", models.ErrBadRequest)
	}

	p := &models.Playlist{
		PublicID:    uuid.NewString(),
		UserID:      ownerID,
		Name:        name,
		Description: description,
	}

	id, err := s.db.CreatePlaylist(p)
	if err != nil {
		return nil, err
	}
	p.ID = id

	return p, nil
}

// List returns the owner's playlists in stored order, deduplicated by
// case-insensitive name with the first occurrence winning.
func (s *Service) List(ctx context.Context, ownerID int64) ([]*models.Playlist, error) {
	playlists, err := s.db.ListPlaylistsByUser(ownerID)
	if err != nil {
		return nil, err
	}
	return dedupeByName(playlists), nil
}

func dedupeByName(playlists []*models.Playlist) []*models.Playlist {
	seen := make(map[string]struct{}, len(playlists))
	out := make([]*models.Playlist, 0, len(playlists))
	for _, p := range playlists {
		key := strings.ToLower(p.Name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// resolveOwned loads a playlist and verifies the caller owns it.
func (s *Service) resolveOwned(publicID string, callerID int64) (*models.Playlist, error) {
	p, err := s.db.GetPlaylistByPublicID(publicID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: playlist %s", models.ErrNotFound, publicID)
	}
	if p.UserID != callerID {
		return nil, fmt.Errorf("%w: playlist belongs to another user", models.ErrForbidden)
	}
	return p, nil
}

// AddSong resolves the catalog track, upserts its durable projection, and
// appends it to the playlist. Adding a song already present is a success
// no-op.
func (s *Service) AddSong(ctx context.Context, callerID int64, playlistID, trackID string) (*models.Playlist, error) {
	if trackID == "" {
		return nil, fmt.Errorf("%w: track id is required", models.ErrBadRequest)
	}

	p, err := s.resolveOwned(playlistID, callerID)
	if err != nil {
		return nil, err
	}

	track, err := s.catalog.GetTrack(ctx, trackID)
	if err != nil {
		return nil, err
	}

	song := models.SongFromTrack(*track)
	songID, err := s.db.UpsertSong(&song)
	if err != nil {
		return nil, err
	}

	added, err := s.db.AddSongToPlaylist(p.ID, songID)
	if err != nil {
		return nil, err
	}

	if added {
		if err := s.db.TouchPlaylist(p.ID); err != nil {
			return nil, err
		}
	}

	return s.withSongs(p)
}

// RemoveSong removes every reference to the catalog id. Removing an absent
// song is a success no-op.
func (s *Service) RemoveSong(ctx context.Context, callerID int64, playlistID, songID string) (*models.Playlist, error) {
	p, err := s.resolveOwned(playlistID, callerID)
	if err != nil {
		return nil, err
	}

	removed, err := s.db.RemoveSongFromPlaylist(p.ID, songID)
	if err != nil {
		return nil, err
	}

	if removed > 0 {
		if err := s.db.TouchPlaylist(p.ID); err != nil {
			return nil, err
		}
	}

	return s.withSongs(p)
}

// Play returns the playlist with its song list resolved.
func (s *Service) Play(ctx context.Context, callerID int64, playlistID string) (*models.Playlist, error) {
	p, err := s.resolveOwned(playlistID, callerID)
	if err != nil {
		return nil, err
	}
	return s.withSongs(p)
}

// SyncFromCatalog overwrites name, description, and cover image with the
// fields present in the catalog payload; absent fields keep their stored
// values.
func (s *Service) SyncFromCatalog(ctx context.Context, callerID int64, playlistID string, payload models.CatalogPlaylist) (*models.Playlist, error) {
	p, err := s.resolveOwned(playlistID, callerID)
	if err != nil {
		return nil, err
	}

	if err := s.db.UpdatePlaylistMeta(p.ID, payload.Name, payload.Description, payload.CoverURL); err != nil {
		return nil, err
	}

	p, err = s.db.GetPlaylistByPublicID(playlistID)
	if err != nil {
		return nil, err
	}

	return s.withSongs(p)
}

func (s *Service) withSongs(p *models.Playlist) (*models.Playlist, error) {
	songs, err := s.db.PlaylistSongs(p.ID)
	if err != nil {
		return nil, err
	}
	p.Songs = songs
	p.SongCount = len(songs)
	return p, nil
}

// ----- HTTP handlers -----

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type addSongRequest struct {
	TrackID string `json:"trackId"`
}

func (s *Service) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := session.GetUserID(r.Context())
	if !ok {
		web.ErrorMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.ErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := s.Create(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		s.logger.Warn("create playlist failed", "user", userID, "err", err)
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusCreated, p)
}

func (s *Service) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := session.GetUserID(r.Context())
	if !ok {
		web.ErrorMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	playlists, err := s.List(r.Context(), userID)
	if err != nil {
		s.logger.Error("list playlists failed", "user", userID, "err", err)
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, map[string]any{"playlists": playlists})
}

func (s *Service) HandleAddSong(w http.ResponseWriter, r *http.Request) {
	userID, ok := session.GetUserID(r.Context())
	if !ok {
		web.ErrorMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req addSongRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.ErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := s.AddSong(r.Context(), userID, r.PathValue("id"), req.TrackID)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, p)
}

func (s *Service) HandleRemoveSong(w http.ResponseWriter, r *http.Request) {
	userID, ok := session.GetUserID(r.Context())
	if !ok {
		web.ErrorMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	p, err := s.RemoveSong(r.Context(), userID, r.PathValue("id"), r.PathValue("songId"))
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, p)
}

func (s *Service) HandlePlay(w http.ResponseWriter, r *http.Request) {
	userID, ok := session.GetUserID(r.Context())
	if !ok {
		web.ErrorMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	p, err := s.Play(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, p)
}

func (s *Service) HandleSync(w http.ResponseWriter, r *http.Request) {
	userID, ok := session.GetUserID(r.Context())
	if !ok {
		web.ErrorMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload models.CatalogPlaylist
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		web.ErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := s.SyncFromCatalog(r.Context(), userID, r.PathValue("id"), payload)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, p)
}
