package config

import "errors"

// Configuration validation errors, returned by Config.Validate.
var (
	// ErrNoSeedSource is returned when neither a URL file, an inline list nor a feed is set.
	ErrNoSeedSource = errors.New("no seed source: set urls_file, urls or feed_url")

	ErrInvalidTopics      = errors.New("invalid pipeline.num_topics: must be positive")
	ErrInvalidKeywords    = errors.New("invalid pipeline.num_keywords_per_topic: must be positive")
	ErrInvalidMode        = errors.New("invalid pipeline.mode: want tfidf or count")
	ErrInvalidAlgorithm   = errors.New("invalid pipeline.algorithm: want nmf or lda")
	ErrInvalidWorkers     = errors.New("invalid crawler.workers: must be positive")
	ErrInvalidTimeout     = errors.New("invalid timeout: must be positive")
	ErrInvalidMaxBodySize = errors.New("invalid crawler.max_body_size: must be positive")
	ErrInvalidFetcher     = errors.New("invalid crawler.fetcher: want http or colly")
	ErrInvalidLogLevel    = errors.New("invalid log_level")
	ErrInvalidLogFormat   = errors.New("invalid log_format: want text or json")
)

// ErrConfigNotFound is returned when an explicitly named configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")
