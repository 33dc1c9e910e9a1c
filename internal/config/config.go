package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"

	"deepchain/pkg/confkit"
	llmpkg "deepchain/pkg/llm"
	reasonpkg "deepchain/pkg/reason"
	verifypkg "deepchain/pkg/verify"
)

type Config struct {
	// Env indicates the running environment: test | dev | prod
	// Defaults to test.
	Env string       `json:",default=test"`
	Log logx.LogConf `json:",optional"`

	LLM      confkit.Section[llmpkg.Config]    `json:",optional"`
	Reasoner confkit.Section[reasonpkg.Config] `json:",optional"`
	Verifier confkit.Section[verifypkg.Config] `json:",optional"`

	mainPath string
	baseDir  string
}

func (c *Config) IsTestEnv() bool {
	return c.Env == "test" || c.Env == ""
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func Load(path string) (*Config, error) {
	confkit.LoadDotenvOnce()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path %s: %w", path, err)
	}

	var cfg Config
	if err := conf.Load(absPath, &cfg, conf.UseEnv()); err != nil {
		return nil, fmt.Errorf("load config %s: %w", absPath, err)
	}

	cfg.mainPath = absPath
	cfg.baseDir = confkit.BaseDir(absPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.hydrateSections(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "", "test", "dev", "prod":
		if strings.TrimSpace(c.Env) == "" {
			c.Env = "test"
		}
	default:
		return errors.New("config: env must be one of test|dev|prod")
	}
	return nil
}

func (c *Config) hydrateSections() error {
	base := c.baseDir

	if err := c.LLM.Hydrate(base, llmpkg.LoadConfig); err != nil {
		return fmt.Errorf("load llm config: %w", err)
	}
	if err := c.Reasoner.Hydrate(base, reasonpkg.LoadConfig); err != nil {
		return fmt.Errorf("load reasoner config: %w", err)
	}
	if err := c.Verifier.Hydrate(base, verifypkg.LoadConfig); err != nil {
		return fmt.Errorf("load verifier config: %w", err)
	}

	return nil
}

func (c *Config) MainPath() string {
	return c.mainPath
}

func (c *Config) BaseDir() string {
	return c.baseDir
}
