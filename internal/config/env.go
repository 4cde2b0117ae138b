package config

import (
	"log/slog"

	"github.com/joho/godotenv"
)

// envFiles are tried in order. Values already present in the process environment win.
var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads every env file that exists so ${VAR} references in the
// configuration can be resolved. Missing files are not an error.
func loadEnvFiles() {
	for _, path := range envFiles {
		if err := godotenv.Load(path); err == nil {
			slog.Debug("Loaded environment variables", slog.String("file", path))
		}
	}
}
