package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env.<appEnv> and then .env. Variables already in the
// environment are never overridden, so the first file to set a key wins.
// Missing files are skipped.
func LoadDotEnv(appEnv string) error {
	files := []string{".env"}
	if appEnv != "" {
		files = []string{".env." + appEnv, ".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
