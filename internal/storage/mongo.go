// internal/storage/mongo.go
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"topic-crawler/internal/pipeline"
)

const (
	DefaultDatabase   = "topicCrawler"
	DefaultCollection = "pages"
)

// MongoConfig selects the target collection. An empty URI disables the sink.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// MongoSink inserts one document per result.
type MongoSink struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
	log        logrus.FieldLogger
}

// NewMongo connects and pings. With an empty URI it returns a no-op sink.
func NewMongo(ctx context.Context, cfg MongoConfig, log logrus.FieldLogger) (*MongoSink, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	s := &MongoSink{timeout: cfg.Timeout, log: log}
	if cfg.URI == "" {
		log.Debug("MongoDB access disabled, running in no-op mode")
		return s, nil
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	cctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	client, err := mongo.Connect(cctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	s.client = client
	s.collection = client.Database(cfg.Database).Collection(cfg.Collection)
	log.WithFields(logrus.Fields{"database": cfg.Database, "collection": cfg.Collection}).Info("connected to MongoDB")
	return s, nil
}

// Enabled reports whether documents are actually stored.
func (s *MongoSink) Enabled() bool { return s.client != nil }

func (s *MongoSink) Write(ctx context.Context, r pipeline.PageResult) error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	res, err := s.collection.InsertOne(ctx, r)
	if err != nil {
		return fmt.Errorf("mongodb insert %s: %w", r.URL, err)
	}
	s.log.WithFields(logrus.Fields{"url": r.URL, "id": res.InsertedID}).Debug("inserted")
	return nil
}

func (s *MongoSink) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
