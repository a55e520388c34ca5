package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/mixtape-fm/mixtape/config"
	"github.com/mixtape-fm/mixtape/db"
	"github.com/mixtape-fm/mixtape/service/aggregator"
	"github.com/mixtape-fm/mixtape/service/catalog"
	"github.com/mixtape-fm/mixtape/service/discovery"
	"github.com/mixtape-fm/mixtape/service/mood"
	playlistService "github.com/mixtape-fm/mixtape/service/playlist"
	userService "github.com/mixtape-fm/mixtape/service/user"
	"github.com/mixtape-fm/mixtape/session"
)

type application struct {
	database  *db.DB
	sessions  *session.Manager
	catalog   *catalog.Client
	discovery *discovery.Service
	playlists *playlistService.Service
	users     *userService.Service
	logger    *slog.Logger
}

func main() {
	config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	database, err := db.New(viper.GetString("db.path"))
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	if err := database.Initialize(); err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	sessions := session.NewManager(
		database,
		viper.GetString("session.secret"),
		time.Duration(viper.GetInt("session.ttl_hours"))*time.Hour,
	)

	catalogClient := catalog.New(catalog.Config{
		ClientID:          viper.GetString("catalog.client_id"),
		ClientSecret:      viper.GetString("catalog.client_secret"),
		TokenURL:          viper.GetString("catalog.token_url"),
		BaseURL:           viper.GetString("catalog.base_url"),
		Market:            viper.GetString("catalog.market"),
		RequestsPerSecond: viper.GetInt("catalog.rps"),
	}, logger)

	moodFilter := mood.NewFilter(catalogClient, logger)
	agg := aggregator.New(catalogClient, logger)

	mixes, err := loadMixes()
	if err != nil {
		log.Fatalf("Error parsing mix sources: %v", err)
	}

	app := &application{
		database:  database,
		sessions:  sessions,
		catalog:   catalogClient,
		discovery: discovery.NewService(catalogClient, moodFilter, agg, mixes, logger),
		playlists: playlistService.NewService(database, catalogClient, logger),
		users:     userService.NewService(database, sessions, logger),
		logger:    logger,
	}

	addr := viper.GetString("server.host") + ":" + viper.GetString("server.port")
	server := &http.Server{
		Addr:    addr,
		Handler: app.routes(),
	}

	logger.Info("starting server", "addr", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func loadMixes() (discovery.Mixes, error) {
	hits, err := aggregator.ParseSources(viper.GetStringSlice("mix.hits"))
	if err != nil {
		return discovery.Mixes{}, err
	}
	mixed, err := aggregator.ParseSources(viper.GetStringSlice("mix.mixed"))
	if err != nil {
		return discovery.Mixes{}, err
	}
	mixed1, err := aggregator.ParseSources(viper.GetStringSlice("mix.mixed1"))
	if err != nil {
		return discovery.Mixes{}, err
	}

	return discovery.Mixes{
		Hits:   hits,
		Mixed:  mixed,
		Mixed1: mixed1,
		Limit:  viper.GetInt("mix.limit"),
	}, nil
}
