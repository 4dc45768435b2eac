// Copyright (C) 2025 veilroom <dev@veilroom.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Store backends.
const (
	BackendPostgres = "postgres"
	BackendBadger   = "badger"
)

type Config struct {
	Port         string
	StoreBackend string
	DatabaseURL  string
	BadgerDir    string
	RedisURL     string
	JWTSecret    string
	JWTIssuer    string
}

// Load reads configuration from the environment, with an optional .env file
// (ENV_FILE overrides the path).
func Load() Config {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.WithField("file", envFile).Debug("no env file found, using environment only")
	}

	return Config{
		Port:         getEnv("PORT", "8080"),
		StoreBackend: getEnv("STORE_BACKEND", BackendBadger),
		DatabaseURL:  getEnv("DATABASE_URL", "postgres://localhost/veilroom?sslmode=disable"),
		BadgerDir:    getEnv("BADGER_DIR", "data"),
		RedisURL:     getEnv("REDIS_URL", ""),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		JWTIssuer:    getEnv("JWT_ISSUER", "veilroom"),
	}
}

// Gets the env by key or fallbacks
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
