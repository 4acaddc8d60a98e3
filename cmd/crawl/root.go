// cmd/crawl/root.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"topic-crawler/internal/config"
	"topic-crawler/internal/crawler"
	"topic-crawler/internal/logging"
	"topic-crawler/internal/pipeline"
	"topic-crawler/internal/seeds"
	"topic-crawler/internal/storage"
	"topic-crawler/internal/text"
)

// flags holds command-line values. Only flags the user actually set
// override the config file.
type flags struct {
	configPath string
	dotenv     string

	urlsFile    string
	urls        []string
	feedURL     string
	output      string
	metricsAddr string
	logLevel    string
	logFormat   string

	topics    int
	keywords  int
	mode      string
	algorithm string
	lemmatize bool
	seed      int64

	workers        int
	maxPerHost     float64
	userAgent      string
	robotsTimeout  time.Duration
	respectRobots  bool
	requestTimeout time.Duration
	pageTimeout    time.Duration
	maxRetries     uint64
	maxBodySize    int64
	fetcher        string

	mongoURI string
}

func newRootCmd() *cobra.Command {
	var f flags
	def := config.Defaults()

	cmd := &cobra.Command{
		Use:   "topic-crawler",
		Short: "Crawl seed URLs and summarize each page as keyword topics",
		Long: `topic-crawler fetches every seed URL once, extracts the paragraph text,
cleans, tokenizes, filters and lemmatizes it, and fits a per-page topic model
(NMF or LDA). One JSON record per seed is written to the output.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, f)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.configPath, "config", "c", "", "YAML config file (default ./"+config.DefaultConfigFile+" or $XDG_CONFIG_HOME/"+config.AppName+"/config.yaml)")
	fs.StringVar(&f.dotenv, "env-file", ".env", "dotenv file with MONGODB_URI and friends")

	fs.StringVarP(&f.urlsFile, "urls-file", "u", def.URLsFile, "file with one seed URL per line")
	fs.StringSliceVar(&f.urls, "url", nil, "seed URL (repeatable)")
	fs.StringVar(&f.feedURL, "feed", "", "RSS/Atom feed whose item links are added as seeds")
	fs.StringVarP(&f.output, "output", "o", def.Output, `JSON-lines output file ("-" for stdout)`)
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :2112")
	fs.StringVar(&f.logLevel, "log-level", def.LogLevel, "debug, info, warn or error")
	fs.StringVar(&f.logFormat, "log-format", def.LogFormat, "text or json")

	fs.IntVar(&f.topics, "topics", def.Pipeline.NumTopics, "topics per page")
	fs.IntVar(&f.keywords, "keywords", def.Pipeline.NumKeywords, "keywords per topic")
	fs.StringVar(&f.mode, "mode", def.Pipeline.Mode, "vectorization mode: count or tfidf")
	fs.StringVar(&f.algorithm, "algorithm", def.Pipeline.Algorithm, "topic model: nmf or lda")
	fs.BoolVar(&f.lemmatize, "lemmatize", def.Pipeline.Lemmatize, "reduce tokens to dictionary lemmas")
	fs.Int64Var(&f.seed, "seed", def.Pipeline.Seed, "random seed for model initialisation")

	fs.IntVar(&f.workers, "workers", def.Crawler.Workers, "number of parallel fetchers")
	fs.Float64Var(&f.maxPerHost, "max-per-host", def.Crawler.RequestsPerHost, "max requests/sec to one host (0 = unlimited)")
	fs.StringVar(&f.userAgent, "user-agent", def.Crawler.UserAgent, "HTTP User-Agent string")
	fs.DurationVar(&f.robotsTimeout, "robots-timeout", def.Crawler.RobotsTimeout, "robots.txt timeout")
	fs.BoolVar(&f.respectRobots, "respect-robots", def.Crawler.RespectRobots, "obey robots.txt")
	fs.DurationVar(&f.requestTimeout, "request-timeout", def.Crawler.RequestTimeout, "timeout for one HTTP request")
	fs.DurationVar(&f.pageTimeout, "page-timeout", def.Crawler.PageTimeout, "budget for fetching and modelling one page")
	fs.Uint64Var(&f.maxRetries, "max-retries", def.Crawler.MaxRetries, "retries for transient fetch errors")
	fs.Int64Var(&f.maxBodySize, "max-body-size", def.Crawler.MaxBodySize, "response body cap in bytes")
	fs.StringVar(&f.fetcher, "fetcher", def.Crawler.Fetcher, "http or colly")

	fs.StringVar(&f.mongoURI, "mongo-uri", "", "also insert results into MongoDB")

	return cmd
}

// applyFlags copies explicitly set flags onto cfg.
func applyFlags(cmd *cobra.Command, f flags, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("urls-file") {
		cfg.URLsFile = f.urlsFile
	}
	if changed("url") {
		cfg.URLs = f.urls
	}
	if changed("feed") {
		cfg.FeedURL = f.feedURL
	}
	if changed("output") {
		cfg.Output = f.output
	}
	if changed("metrics-addr") {
		cfg.MetricsAddr = f.metricsAddr
	}
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("log-format") {
		cfg.LogFormat = f.logFormat
	}
	if changed("topics") {
		cfg.Pipeline.NumTopics = f.topics
	}
	if changed("keywords") {
		cfg.Pipeline.NumKeywords = f.keywords
	}
	if changed("mode") {
		cfg.Pipeline.Mode = f.mode
	}
	if changed("algorithm") {
		cfg.Pipeline.Algorithm = f.algorithm
	}
	if changed("lemmatize") {
		cfg.Pipeline.Lemmatize = f.lemmatize
	}
	if changed("seed") {
		cfg.Pipeline.Seed = f.seed
	}
	if changed("workers") {
		cfg.Crawler.Workers = f.workers
	}
	if changed("max-per-host") {
		cfg.Crawler.RequestsPerHost = f.maxPerHost
	}
	if changed("user-agent") {
		cfg.Crawler.UserAgent = f.userAgent
	}
	if changed("robots-timeout") {
		cfg.Crawler.RobotsTimeout = f.robotsTimeout
	}
	if changed("respect-robots") {
		cfg.Crawler.RespectRobots = f.respectRobots
	}
	if changed("request-timeout") {
		cfg.Crawler.RequestTimeout = f.requestTimeout
	}
	if changed("page-timeout") {
		cfg.Crawler.PageTimeout = f.pageTimeout
	}
	if changed("max-retries") {
		cfg.Crawler.MaxRetries = f.maxRetries
	}
	if changed("max-body-size") {
		cfg.Crawler.MaxBodySize = f.maxBodySize
	}
	if changed("fetcher") {
		cfg.Crawler.Fetcher = f.fetcher
	}
	if changed("mongo-uri") {
		cfg.Mongo.URI = f.mongoURI
	}
}

func loadConfig(cmd *cobra.Command, f flags) (config.Config, string, error) {
	cfg, path, err := config.Load(f.configPath, f.dotenv)
	if err != nil {
		return cfg, path, err
	}
	applyFlags(cmd, f, &cfg)

	// the default urls.txt is optional when seeds come from elsewhere
	if !cmd.Flags().Changed("urls-file") && cfg.URLsFile == config.DefaultURLsFile && (len(cfg.URLs) > 0 || cfg.FeedURL != "") {
		if _, err := os.Stat(cfg.URLsFile); errors.Is(err, os.ErrNotExist) {
			cfg.URLsFile = ""
		}
	}
	return cfg, path, cfg.Validate()
}

func run(cmd *cobra.Command, f flags) error {
	cfg, path, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if path != "" {
		log.WithField("path", path).Info("loaded config file")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ----- text pipeline -----------------------------------------------------
	res, err := loadResources(cfg.Pipeline.Lemmatize)
	if err != nil {
		return err
	}
	parser, err := pipeline.NewDefaultParser(res, cfg.PipelineOptions(), log)
	if err != nil {
		return err
	}

	// ----- seeds -------------------------------------------------------------
	client := &http.Client{Timeout: cfg.Crawler.RequestTimeout}
	seedList, err := seeds.Collect(ctx, seeds.Sources{
		File:    cfg.URLsFile,
		URLs:    cfg.URLs,
		FeedURL: cfg.FeedURL,
	}, client, cfg.Crawler.UserAgent)
	if err != nil {
		return err
	}
	log.WithField("seeds", len(seedList)).Info("seeds collected")

	// ----- sinks -------------------------------------------------------------
	sink, err := openSinks(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		cctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := sink.Close(cctx); err != nil {
			log.WithError(err).Error("closing output")
		}
	}()

	// ----- crawl -------------------------------------------------------------
	fetchOpts := cfg.FetchOptions(log)
	fetchOpts.Client = client
	var fetcher crawler.Fetcher = crawler.NewHTTPFetcher(fetchOpts)
	if cfg.Crawler.Fetcher == config.FetcherColly {
		fetcher = crawler.NewCollyFetcher(fetchOpts)
	}

	_, err = crawler.Run(ctx, seedList, cfg.CrawlerOptions(), crawler.Deps{
		Fetcher:    fetcher,
		Parser:     parser,
		Sink:       sink,
		HTTPClient: client,
		Log:        log,
	})
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		log.Warn("interrupted, partial output written")
		return nil
	}
	return err
}

func loadResources(lemmatize bool) (*text.Resources, error) {
	if !lemmatize {
		return text.NewResources(text.English(), nil), nil
	}
	res, err := text.LoadResources()
	if err != nil {
		return nil, fmt.Errorf("load text resources: %w", err)
	}
	return res, nil
}

func openSinks(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (storage.Multi, error) {
	out, err := storage.OpenJSONL(cfg.Output)
	if err != nil {
		return nil, err
	}
	sinks := storage.Multi{out}

	mongo, err := storage.NewMongo(ctx, cfg.MongoOptions(), log)
	if err != nil {
		_ = out.Close(ctx)
		return nil, err
	}
	if mongo.Enabled() {
		sinks = append(sinks, mongo)
	}
	return sinks, nil
}
