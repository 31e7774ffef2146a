package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port          int    `envconfig:"PORT" required:"true"`
	FullchainPath string `envconfig:"FULLCHAIN_PATH" required:"true"`
	PrivkeyPath   string `envconfig:"PRIVKEY_PATH" required:"true"`
	DBUrl         string `envconfig:"DB_URL" required:"true"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	JWTSecret     string `envconfig:"JWT_SECRET" required:"true"`
}

// LoadConfig reads the environment into a Config. Missing required
// values are fatal at startup, never a runtime surprise.
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using environment variables.")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal("Failed to load config: ", err)
	}
	return cfg
}
