package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	Env           string
	MongoURI      string
	MongoDB       string
	SlackBotToken string
	ChannelID     string
	Locale        string
}

func Load() *Config {
	// .env is optional; deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "3000"),
		Env:           getEnv("ENV", "development"),
		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGODB_DATABASE", "kintai"),
		SlackBotToken: strings.TrimSpace(getEnv("SLACK_BOT_TOKEN", "")),
		ChannelID:     getEnv("SLACK_CHANNEL_ID", ""),
		Locale:        getEnv("BOT_LOCALE", "ja"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
