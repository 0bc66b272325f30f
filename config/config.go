package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

var SecretKey []byte

type Config struct {
	ServerPort    string
	DatabaseURL   string
	MigrationsDir string
}

func Init() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found, relying on environment: %v", err)
	}

	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		log.Fatal("JWT secret key not set")
	}
	SecretKey = []byte(secret)

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return Config{
		ServerPort:    getEnv("SERVER_PORT", ":8080"),
		DatabaseURL:   dbURL,
		MigrationsDir: getEnv("MIGRATIONS_DIR", "database/migrations"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
