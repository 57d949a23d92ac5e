package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration (signal store: availability + locations).
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisSignalDB int    `mapstructure:"REDIS_SIGNAL_DB"`

	// Dataset configuration.
	DatasetPath string `mapstructure:"DATASET_PATH"`
	HistoryPath string `mapstructure:"HISTORY_PATH"`

	// Matching configuration.
	MatchStrategy         string  `mapstructure:"MATCH_STRATEGY"` // rule | similarity | affinity
	MatchTopK             int     `mapstructure:"MATCH_TOP_K"`
	MatchRadiusKm         float64 `mapstructure:"MATCH_RADIUS_KM"`
	MatchDefaultAvailable bool    `mapstructure:"MATCH_DEFAULT_AVAILABLE"`
	MatchPadResults       bool    `mapstructure:"MATCH_PAD_RESULTS"`
	MatchTieBreak         string  `mapstructure:"MATCH_TIE_BREAK"` // comma list: score,rating,locale,distance
	GatewayTimeoutMs      int     `mapstructure:"GATEWAY_TIMEOUT_MS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 10)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SIGNAL_DB", 0)
	viper.SetDefault("DATASET_PATH", "data/artisans.csv")
	viper.SetDefault("HISTORY_PATH", "data/history.csv")
	viper.SetDefault("MATCH_STRATEGY", "rule")
	viper.SetDefault("MATCH_TOP_K", 5)
	viper.SetDefault("MATCH_RADIUS_KM", 20.0)
	viper.SetDefault("MATCH_DEFAULT_AVAILABLE", false)
	viper.SetDefault("MATCH_PAD_RESULTS", false)
	viper.SetDefault("MATCH_TIE_BREAK", "score")
	viper.SetDefault("GATEWAY_TIMEOUT_MS", 2000)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// TieBreakKeys returns the configured sort keys in priority order.
func (c Config) TieBreakKeys() []string {
	parts := strings.Split(c.MatchTieBreak, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keys = append(keys, strings.ToLower(p))
		}
	}
	if len(keys) == 0 {
		keys = []string{"score"}
	}
	return keys
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return AppConfig.Env == "production"
}
