package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvMongoURI        = "MONGODB_URI"
	EnvMongoDatabase   = "MONGODB_DATABASE"
	EnvMongoCollection = "MONGODB_COLLECTION"
	EnvURLsFile        = "TOPIC_CRAWLER_URLS_FILE"
)

// FindConfigFile searches for the configuration file in the following order:
// 1. configPath, if set
// 2. topic-crawler.yaml in the current directory
// 3. config.yaml in the XDG config directory
//
// It returns "" when nothing is found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	p := filepath.Join(Dir(), "config.yaml")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

// LoadFile overlays the YAML file at path onto cfg. Keys missing from the
// file keep their current value.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv copies recognised environment variables onto cfg.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(EnvMongoURI, &cfg.Mongo.URI)
	set(EnvMongoDatabase, &cfg.Mongo.Database)
	set(EnvMongoCollection, &cfg.Mongo.Collection)
	set(EnvURLsFile, &cfg.URLsFile)
}

// Load builds the configuration from defaults, the config file (explicit
// path or discovered), dotenv files (default .env) and the environment. The
// returned path is the file that was read, or "".
func Load(configPath string, envFiles ...string) (Config, string, error) {
	cfg := Defaults()

	path := FindConfigFile(configPath)
	if configPath != "" && path == "" {
		return cfg, "", fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	}
	if path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return cfg, path, err
		}
	}

	if err := LoadDotEnv(envFiles...); err != nil {
		return cfg, path, err
	}
	ApplyEnv(&cfg, nil)
	return cfg, path, nil
}
