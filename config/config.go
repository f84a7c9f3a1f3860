package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   Server
	Database Database
	Gemini   Gemini
	Search   Search
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type Gemini struct {
	APIKey string
	Model  string
}

type Search struct {
	APIKey   string
	Endpoint string
}

// Enabled reports whether the optional search path is configured. A missing
// key disables search, not the whole system.
func (s Search) Enabled() bool {
	return s.APIKey != ""
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "3000")
	viper.SetDefault("GEMINI_MODEL", "gemini-1.5-pro")
	viper.SetDefault("SEARCH_ENDPOINT", "https://google.serper.dev/search")

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Gemini.APIKey = viper.GetString("GEMINI_API_KEY")
	config.Gemini.Model = viper.GetString("GEMINI_MODEL")
	config.Search.APIKey = viper.GetString("SERPER_API_KEY")
	config.Search.Endpoint = viper.GetString("SEARCH_ENDPOINT")

	log.Info().
		Str("port", config.Server.Port).
		Str("gemini_model", config.Gemini.Model).
		Bool("search_enabled", config.Search.Enabled()).
		Msg("Config loaded")
	return &config, nil
}
