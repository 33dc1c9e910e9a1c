package confkit

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// LoadDotenvOnce loads a .env file into the process environment exactly once.
// ENV_FILE overrides the search; otherwise the root .env found via
// ProjectRoot is loaded. Existing variables win unless DOTENV_OVERLOAD=1,
// and NO_DOTENV=1 disables loading entirely.
func LoadDotenvOnce() {
	dotenvOnce.Do(loadDotenv)
}

func loadDotenv() {
	if os.Getenv("NO_DOTENV") == "1" {
		return
	}

	overload := os.Getenv("DOTENV_OVERLOAD") == "1"
	load := func(path string) {
		if overload {
			_ = godotenv.Overload(path)
		} else {
			_ = godotenv.Load(path)
		}
	}

	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		load(envFile)
		return
	}

	if root, err := ProjectRoot(); err == nil {
		if path := filepath.Join(root, ".env"); fileExists(path) {
			load(path)
			return
		}
	}

	load(".env")
}
