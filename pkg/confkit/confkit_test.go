package confkit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	require.Equal(t, "/abs/file.yaml", ResolvePath("/base", "/abs/file.yaml"))
	require.Equal(t, filepath.Join("/base", "rel.yaml"), ResolvePath("/base", "rel.yaml"))

	t.Setenv("CONF_DIR", "/from-env")
	require.Equal(t, "/from-env/x.yaml", ResolvePath("/base", "${CONF_DIR}/x.yaml"))
}

func TestBaseDir(t *testing.T) {
	require.Equal(t, filepath.Join("etc"), BaseDir(filepath.Join("etc", "deepchain.yaml")))
}

type sampleConf struct {
	Name  string `json:"name"`
	Count int    `json:"count,default=3"`
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: alpha\n"), 0o644))

	cfg, err := LoadFile[sampleConf](path, false)
	require.NoError(t, err)
	require.Equal(t, "alpha", cfg.Name)
	require.Equal(t, 3, cfg.Count)
}

func TestLoadFileUseEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "beta")
	path := filepath.Join(t.TempDir(), "sample.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: ${SAMPLE_NAME}\n"), 0o644))

	cfg, err := LoadFile[sampleConf](path, true)
	require.NoError(t, err)
	require.Equal(t, "beta", cfg.Name)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile[sampleConf](filepath.Join(t.TempDir(), "absent.yaml"), false)
	require.Error(t, err)
}

func TestSectionHydrate(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "stage.yaml"), []byte("name: gamma\n"), 0o644))

	s := Section[sampleConf]{File: "stage.yaml"}
	err := s.Hydrate(base, func(p string) (*sampleConf, error) {
		return LoadFile[sampleConf](p, false)
	})
	require.NoError(t, err)
	require.NotNil(t, s.Value)
	require.Equal(t, "gamma", s.Value.Name)
	require.Equal(t, filepath.Join(base, "stage.yaml"), s.File)
}

func TestSectionHydrateEmptyFile(t *testing.T) {
	s := Section[sampleConf]{}
	err := s.Hydrate(t.TempDir(), func(string) (*sampleConf, error) {
		return nil, errors.New("loader must not run")
	})
	require.NoError(t, err)
	require.Nil(t, s.Value)
}

func TestSectionHydrateLoaderError(t *testing.T) {
	s := Section[sampleConf]{File: "broken.yaml"}
	err := s.Hydrate(t.TempDir(), func(string) (*sampleConf, error) {
		return nil, errors.New("boom")
	})
	require.Error(t, err)
}

func TestProjectRoot(t *testing.T) {
	root, err := ProjectRoot()
	require.NoError(t, err)
	require.NotEmpty(t, root)
	require.True(t,
		fileExists(filepath.Join(root, "go.mod")) || fileExists(filepath.Join(root, ".git")),
		"root %s should hold go.mod or .git", root)
}

func TestLoadDotenvOnceEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("CONFKIT_DOTENV_SMOKE_VALUE=loaded\n"), 0o600))

	t.Setenv("NO_DOTENV", "")
	t.Setenv("ENV_FILE", envFile)

	LoadDotenvOnce()
	require.Equal(t, "loaded", os.Getenv("CONFKIT_DOTENV_SMOKE_VALUE"))

	// Subsequent calls are no-ops even if the file changes.
	require.NoError(t, os.WriteFile(envFile, []byte("CONFKIT_DOTENV_SMOKE_VALUE=reloaded\n"), 0o600))
	LoadDotenvOnce()
	require.Equal(t, "loaded", os.Getenv("CONFKIT_DOTENV_SMOKE_VALUE"))
}
