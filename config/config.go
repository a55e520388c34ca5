package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load initializes the configuration with viper
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it. Using default values and environment variables.")
	}

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.host", "localhost")

	viper.SetDefault("db.path", "./data/mixtape.db")

	viper.SetDefault("catalog.base_url", "https://api.spotify.com/v1")
	viper.SetDefault("catalog.token_url", "https://accounts.spotify.com/api/token")
	viper.SetDefault("catalog.market", "US")
	viper.SetDefault("catalog.rps", 10)

	viper.SetDefault("session.secret", "dev-only-session-secret")
	viper.SetDefault("session.ttl_hours", 24)

	// fixed aggregation sources, one per line: kind|id|take|language
	viper.SetDefault("mix.hits", []string{
		"artist|4YRxDV8wJFPHPTeXepOstw|10|hindi",
		"artist|6LEG9Ld1aLImEFEVHdWNSB|10|punjabi",
		"artist|1uNFoZAHBGtllmzznpCI3s|10|english",
	})
	viper.SetDefault("mix.mixed", []string{
		"playlist|37i9dQZF1DX0XUfTFmNBRM|25|hindi",
		"playlist|37i9dQZF1DXcBWIGoYBM5M|25|english",
	})
	viper.SetDefault("mix.mixed1", []string{
		"playlist|37i9dQZF1DXd8cOUiye1o2|25|punjabi",
		"playlist|37i9dQZF1DWXtlo6ENS92N|25|hindi",
	})
	viper.SetDefault("mix.limit", 30)

	viper.AutomaticEnv()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("Error reading config file: %v", err)
		}
		log.Println("Config file not found, using default values and environment variables")
	} else {
		log.Println("Using config file:", viper.ConfigFileUsed())
	}

	// check for required settings
	requiredVars := []string{"catalog.client_id", "catalog.client_secret"}
	missingVars := []string{}

	for _, v := range requiredVars {
		if !viper.IsSet(v) {
			missingVars = append(missingVars, v)
		}
	}

	if len(missingVars) > 0 {
		log.Fatalf("Required configuration variables not set: %s", strings.Join(missingVars, ", "))
	}
}
