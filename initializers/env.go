package initializers

import (
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// LoadEnv reads a .env file into the process environment when one exists.
// Variables already set in the environment win.
func LoadEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Warn("failed to load .env file")
	}
}
