// Package config loads topic-crawler settings from defaults, a YAML file,
// the environment and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"

	"topic-crawler/internal/crawler"
	"topic-crawler/internal/pipeline"
	"topic-crawler/internal/storage"
	"topic-crawler/internal/topic"
)

const (
	AppName = "topic-crawler"

	// DefaultConfigFile is looked up in the working directory.
	DefaultConfigFile = "topic-crawler.yaml"

	DefaultURLsFile = "urls.txt"
)

// Fetcher implementations.
const (
	FetcherHTTP  = "http"
	FetcherColly = "colly"
)

// Config is the full application configuration.
type Config struct {
	URLsFile    string   `yaml:"urls_file"`
	URLs        []string `yaml:"urls"`
	FeedURL     string   `yaml:"feed_url"`
	Output      string   `yaml:"output"` // "-" for stdout
	MetricsAddr string   `yaml:"metrics_addr"`
	LogLevel    string   `yaml:"log_level"`
	LogFormat   string   `yaml:"log_format"`

	Pipeline PipelineConfig `yaml:"pipeline"`
	Crawler  CrawlerConfig  `yaml:"crawler"`
	Mongo    MongoConfig    `yaml:"mongo"`
}

type PipelineConfig struct {
	NumTopics   int    `yaml:"num_topics"`
	NumKeywords int    `yaml:"num_keywords_per_topic"`
	Mode        string `yaml:"mode"`
	Algorithm   string `yaml:"algorithm"`
	Lemmatize   bool   `yaml:"lemmatize"`
	Seed        int64  `yaml:"seed"`
}

type CrawlerConfig struct {
	Workers         int           `yaml:"workers"`
	RequestsPerHost float64       `yaml:"requests_per_host"`
	RobotsTimeout   time.Duration `yaml:"robots_timeout"`
	RespectRobots   bool          `yaml:"respect_robots"`
	UserAgent       string        `yaml:"user_agent"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	PageTimeout     time.Duration `yaml:"page_timeout"`
	MaxRetries      uint64        `yaml:"max_retries"`
	MaxBodySize     int64         `yaml:"max_body_size"`
	Fetcher         string        `yaml:"fetcher"`
}

type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	p := pipeline.DefaultOptions()
	c := crawler.DefaultOptions()
	f := crawler.DefaultFetchOptions()
	return Config{
		URLsFile:  DefaultURLsFile,
		Output:    "-",
		LogLevel:  "info",
		LogFormat: "text",
		Pipeline: PipelineConfig{
			NumTopics:   p.NumTopics,
			NumKeywords: p.NumKeywords,
			Mode:        string(p.Mode),
			Algorithm:   string(p.Algorithm),
			Lemmatize:   p.Lemmatize,
			Seed:        p.Seed,
		},
		Crawler: CrawlerConfig{
			Workers:         c.Workers,
			RequestsPerHost: c.RequestsPerHost,
			RobotsTimeout:   c.RobotsTimeout,
			RespectRobots:   c.RespectRobots,
			UserAgent:       c.UserAgent,
			RequestTimeout:  f.Timeout,
			PageTimeout:     c.PageTimeout,
			MaxRetries:      f.MaxRetries,
			MaxBodySize:     f.MaxBodySize,
			Fetcher:         FetcherHTTP,
		},
		Mongo: MongoConfig{
			Database:   storage.DefaultDatabase,
			Collection: storage.DefaultCollection,
		},
	}
}

// Validate reports every problem found, joined.
func (c Config) Validate() error {
	var errs []error
	if c.URLsFile == "" && len(c.URLs) == 0 && c.FeedURL == "" {
		errs = append(errs, ErrNoSeedSource)
	}
	if c.Pipeline.NumTopics < 1 {
		errs = append(errs, ErrInvalidTopics)
	}
	if c.Pipeline.NumKeywords < 1 {
		errs = append(errs, ErrInvalidKeywords)
	}
	if _, err := topic.ParseMode(c.Pipeline.Mode); err != nil {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidMode, c.Pipeline.Mode))
	}
	if _, err := topic.ParseAlgorithm(c.Pipeline.Algorithm); err != nil {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidAlgorithm, c.Pipeline.Algorithm))
	}
	if c.Crawler.Workers < 1 {
		errs = append(errs, ErrInvalidWorkers)
	}
	if c.Crawler.RobotsTimeout <= 0 || c.Crawler.RequestTimeout <= 0 || c.Crawler.PageTimeout <= 0 {
		errs = append(errs, ErrInvalidTimeout)
	}
	if c.Crawler.MaxBodySize <= 0 {
		errs = append(errs, ErrInvalidMaxBodySize)
	}
	if c.Crawler.Fetcher != FetcherHTTP && c.Crawler.Fetcher != FetcherColly {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidFetcher, c.Crawler.Fetcher))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.LogFormat))
	}
	return errors.Join(errs...)
}

// PipelineOptions converts the pipeline section. Call after Validate.
func (c Config) PipelineOptions() pipeline.Options {
	mode, _ := topic.ParseMode(c.Pipeline.Mode)
	alg, _ := topic.ParseAlgorithm(c.Pipeline.Algorithm)
	return pipeline.Options{
		NumTopics:   c.Pipeline.NumTopics,
		NumKeywords: c.Pipeline.NumKeywords,
		Mode:        mode,
		Algorithm:   alg,
		Lemmatize:   c.Pipeline.Lemmatize,
		Seed:        c.Pipeline.Seed,
	}
}

func (c Config) CrawlerOptions() crawler.Options {
	opts := crawler.DefaultOptions()
	opts.Workers = c.Crawler.Workers
	opts.RequestsPerHost = c.Crawler.RequestsPerHost
	opts.RobotsTimeout = c.Crawler.RobotsTimeout
	opts.RespectRobots = c.Crawler.RespectRobots
	opts.UserAgent = c.Crawler.UserAgent
	opts.PageTimeout = c.Crawler.PageTimeout
	opts.MetricsAddr = c.MetricsAddr
	return opts
}

func (c Config) FetchOptions(log logrus.FieldLogger) crawler.FetchOptions {
	opts := crawler.DefaultFetchOptions()
	opts.UserAgent = c.Crawler.UserAgent
	opts.Timeout = c.Crawler.RequestTimeout
	opts.MaxBodySize = c.Crawler.MaxBodySize
	opts.MaxRetries = c.Crawler.MaxRetries
	opts.Log = log
	return opts
}

func (c Config) MongoOptions() storage.MongoConfig {
	return storage.MongoConfig{URI: c.Mongo.URI, Database: c.Mongo.Database, Collection: c.Mongo.Collection}
}

// Dir returns the XDG configuration directory for topic-crawler.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}
