package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

var errNoEnvFile = errors.New("no .env file found")

// envFiles are tried in order; the first readable one is loaded.
var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads the first available env file. Variables already present
// in the process environment are not overwritten.
func loadEnvFiles() (string, error) {
	for _, p := range envFiles {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return p, err
		}
		return p, nil
	}
	return "", errNoEnvFile
}
