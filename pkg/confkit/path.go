package confkit

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const maxRootWalkDepth = 8

// ProjectRoot locates the repository root by walking up from this source
// file until a directory holding go.mod or .git appears. The dotenv loader
// uses it to find the root .env. Falls back to the working directory when
// the walk comes up empty.
func ProjectRoot() (string, error) {
	if _, file, _, ok := runtime.Caller(0); ok {
		dir := filepath.Dir(file)
		for i := 0; i < maxRootWalkDepth; i++ {
			if fileExists(filepath.Join(dir, "go.mod")) || fileExists(filepath.Join(dir, ".git")) {
				return dir, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return ".", fmt.Errorf("getwd: %w", err)
	}
	return wd, nil
}
