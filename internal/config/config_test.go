package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topic-crawler/internal/topic"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "urls.txt", cfg.URLsFile)
	assert.Equal(t, 25, cfg.Pipeline.NumTopics)
	assert.Equal(t, 5, cfg.Pipeline.NumKeywords)
	assert.Equal(t, "count", cfg.Pipeline.Mode)
	assert.Equal(t, "nmf", cfg.Pipeline.Algorithm)
	assert.True(t, cfg.Pipeline.Lemmatize)
	assert.True(t, cfg.Crawler.RespectRobots)
	assert.Equal(t, FetcherHTTP, cfg.Crawler.Fetcher)
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	yml := `
urls:
  - https://a.example
pipeline:
  num_topics: 10
  mode: TFIDF
  algorithm: lda
  lemmatize: false
crawler:
  workers: 4
  page_timeout: 90s
  fetcher: colly
mongo:
  database: archive
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg := Defaults()
	require.NoError(t, LoadFile(path, &cfg))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"https://a.example"}, cfg.URLs)
	assert.Equal(t, "urls.txt", cfg.URLsFile, "unset keys keep defaults")
	assert.Equal(t, 10, cfg.Pipeline.NumTopics)
	assert.Equal(t, 5, cfg.Pipeline.NumKeywords)
	assert.False(t, cfg.Pipeline.Lemmatize)
	assert.Equal(t, 4, cfg.Crawler.Workers)
	assert.Equal(t, 90*time.Second, cfg.Crawler.PageTimeout)
	assert.Equal(t, FetcherColly, cfg.Crawler.Fetcher)
	assert.Equal(t, "archive", cfg.Mongo.Database)

	p := cfg.PipelineOptions()
	assert.Equal(t, topic.ModeTFIDF, p.Mode)
	assert.Equal(t, topic.AlgorithmLDA, p.Algorithm)
	assert.Equal(t, 4, cfg.CrawlerOptions().Workers)
	assert.Equal(t, "archive", cfg.MongoOptions().Database)
}

func TestLoadFileErrors(t *testing.T) {
	cfg := Defaults()
	err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"), &cfg)
	assert.ErrorIs(t, err, ErrConfigNotFound)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline: [unclosed"), 0o644))
	assert.Error(t, LoadFile(path, &cfg))
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.URLsFile = ""
	cfg.Pipeline.NumTopics = 0
	cfg.Pipeline.NumKeywords = -1
	cfg.Pipeline.Mode = "bm25"
	cfg.Pipeline.Algorithm = "pca"
	cfg.Crawler.Workers = 0
	cfg.Crawler.PageTimeout = 0
	cfg.Crawler.MaxBodySize = 0
	cfg.Crawler.Fetcher = "curl"
	cfg.LogLevel = "loud"
	cfg.LogFormat = "xml"

	err := cfg.Validate()
	for _, want := range []error{
		ErrNoSeedSource, ErrInvalidTopics, ErrInvalidKeywords, ErrInvalidMode, ErrInvalidAlgorithm,
		ErrInvalidWorkers, ErrInvalidTimeout, ErrInvalidMaxBodySize, ErrInvalidFetcher,
		ErrInvalidLogLevel, ErrInvalidLogFormat,
	} {
		assert.ErrorIs(t, err, want)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvMongoURI:        "mongodb://localhost:27017",
		EnvMongoCollection: "pages_v2",
		EnvURLsFile:        "/data/seeds.txt",
		EnvMongoDatabase:   "",
	}
	cfg := Defaults()
	ApplyEnv(&cfg, func(k string) (string, bool) { v, ok := env[k]; return v, ok })

	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "pages_v2", cfg.Mongo.Collection)
	assert.Equal(t, Defaults().Mongo.Database, cfg.Mongo.Database, "empty values are ignored")
	assert.Equal(t, "/data/seeds.txt", cfg.URLsFile)
}

func TestFindConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "explicit.yaml")
	assert.Empty(t, FindConfigFile(path))

	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	assert.Equal(t, path, FindConfigFile(path))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline:\n  num_topics: 3\n"), 0o644))
	t.Setenv(EnvMongoURI, "mongodb://db:27017")

	cfg, used, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 3, cfg.Pipeline.NumTopics)
	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)

	_, _, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoadDotEnvMissingFileIsIgnored(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TOPIC_CRAWLER_DOTENV_TEST=yes\n"), 0o644))
	t.Setenv("TOPIC_CRAWLER_DOTENV_TEST", "")
	require.NoError(t, os.Unsetenv("TOPIC_CRAWLER_DOTENV_TEST"))
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "yes", os.Getenv("TOPIC_CRAWLER_DOTENV_TEST"))
}
