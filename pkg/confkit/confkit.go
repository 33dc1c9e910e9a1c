// Package confkit carries the configuration plumbing shared by every stage:
// go-zero yaml loading, per-stage config files referenced from the main
// config, dotenv bootstrap, and path resolution relative to the repo.
package confkit

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zeromicro/go-zero/core/conf"
)

// Section points at a stage's own config file and, once hydrated, holds the
// loaded value. The File path is resolved against the main config's directory
// so stage files can sit next to it.
type Section[T any] struct {
	File  string `json:",optional"`
	Value *T     `json:"-"`
}

// Hydrate loads the section's file through loader. An empty File leaves the
// section untouched.
func (s *Section[T]) Hydrate(base string, loader func(path string) (*T, error)) error {
	if s.File == "" {
		return nil
	}
	p := ResolvePath(base, s.File)
	v, err := loader(p)
	if err != nil {
		return err
	}
	s.File, s.Value = p, v
	return nil
}

// LoadFile reads a yaml config into T via go-zero's conf loader.
func LoadFile[T any](path string, useEnv bool) (*T, error) {
	var opts []conf.Option
	if useEnv {
		opts = append(opts, conf.UseEnv())
	}
	var v T
	if err := conf.Load(path, &v, opts...); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return &v, nil
}

// ResolvePath expands environment variables in file and anchors relative
// paths at base.
func ResolvePath(base, file string) string {
	file = os.ExpandEnv(file)
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(base, file)
}

// BaseDir returns the directory holding the main config file.
func BaseDir(mainPath string) string {
	return filepath.Dir(mainPath)
}
