package main

import (
	"net/http"

	"github.com/justinas/alice"

	"github.com/mixtape-fm/mixtape/session"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", app.handleHealthz)

	// Accounts
	mux.HandleFunc("POST /user/register", app.users.HandleRegister)
	mux.HandleFunc("POST /user/login", app.users.HandleLogin)
	mux.HandleFunc("POST /user/logout", session.WithAuth(app.users.HandleLogout, app.sessions))

	// Public discovery
	mux.HandleFunc("GET /api/new-releases", app.discovery.HandleNewReleases)
	mux.HandleFunc("GET /api/mixed-hits", app.discovery.HandleMixedHits)
	mux.HandleFunc("GET /api/mixed", app.discovery.HandleMixed)
	mux.HandleFunc("GET /api/mixed1", app.discovery.HandleMixed1)
	mux.HandleFunc("GET /api/artist-top-tracks/{artistId}", app.discovery.HandleArtistTopTracks)
	mux.HandleFunc("GET /api/songs/{mood}", app.discovery.HandleSongsByMood)
	mux.HandleFunc("GET /api/search/songs", app.discovery.HandleSearchSongs)
	mux.HandleFunc("GET /api/track/{id}", app.discovery.HandleTrack)
	mux.HandleFunc("GET /api/moods", app.discovery.HandleMoods)

	// Playlists
	mux.HandleFunc("POST /api/playlists", session.WithAuth(app.playlists.HandleCreate, app.sessions))
	mux.HandleFunc("GET /api/playlists", session.WithAuth(app.playlists.HandleList, app.sessions))
	mux.HandleFunc("POST /api/playlists/{id}/songs", session.WithAuth(app.playlists.HandleAddSong, app.sessions))
	mux.HandleFunc("DELETE /api/playlists/{id}/songs/{songId}", session.WithAuth(app.playlists.HandleRemoveSong, app.sessions))
	mux.HandleFunc("GET /api/playlists/{id}/play", session.WithAuth(app.playlists.HandlePlay, app.sessions))
	mux.HandleFunc("POST /api/playlists/{id}/sync", session.WithAuth(app.playlists.HandleSync, app.sessions))

	standard := alice.New(app.logRequest)
	return standard.Then(mux)
}
