package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topic-crawler/internal/pipeline"
)

func TestJSONLSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewJSONL(&buf)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, pipeline.Assemble("https://a.example/?q=1&r=2", []string{"go"}, [][]string{{"go"}})))
	require.NoError(t, s.Write(ctx, pipeline.OnFailure("https://b.example", "404 Not Found")))
	require.NoError(t, s.Close(ctx))

	raw := buf.String()
	assert.NotContains(t, raw, `\u0026`)

	sc := bufio.NewScanner(strings.NewReader(raw))
	var lines []map[string]any
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		lines = append(lines, m)
	}
	require.Len(t, lines, 2)
	assert.Equal(t, "https://a.example/?q=1&r=2", lines[0]["url"])
	assert.Contains(t, lines[0], "topics")
	assert.Equal(t, "404 Not Found", lines[1]["failure_reason"])
	assert.NotContains(t, lines[1], "tokens")
}

func TestOpenJSONLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	s, err := OpenJSONL(path)
	require.NoError(t, err)
	require.NoError(t, s.Write(context.Background(), pipeline.Assemble("https://a.example", nil, nil)))
	require.NoError(t, s.Close(context.Background()))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"url":"https://a.example","tokens":[],"topics":[]}`, string(bytes.TrimSpace(b)))
}

type recordSink struct {
	n      int
	err    error
	closed bool
}

func (r *recordSink) Write(context.Context, pipeline.PageResult) error { r.n++; return r.err }
func (r *recordSink) Close(context.Context) error                      { r.closed = true; return r.err }

func TestMulti(t *testing.T) {
	a, b := &recordSink{}, &recordSink{}
	m := Multi{a, b}
	require.NoError(t, m.Write(context.Background(), pipeline.Assemble("u", nil, nil)))
	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, b.n)

	boom := errors.New("boom")
	failing := Multi{&recordSink{err: boom}, b}
	assert.ErrorIs(t, failing.Write(context.Background(), pipeline.Assemble("u", nil, nil)), boom)
	assert.Equal(t, 1, b.n)

	assert.ErrorIs(t, failing.Close(context.Background()), boom)
	assert.True(t, b.closed)
}

func TestMongoDisabled(t *testing.T) {
	s, err := NewMongo(context.Background(), MongoConfig{}, nil)
	require.NoError(t, err)
	assert.False(t, s.Enabled())
	assert.NoError(t, s.Write(context.Background(), pipeline.Assemble("u", nil, nil)))
	assert.NoError(t, s.Close(context.Background()))
}

func TestMongoIntegration(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}
	ctx := context.Background()
	s, err := NewMongo(ctx, MongoConfig{URI: uri, Database: "topicCrawlerTest", Collection: t.Name()}, nil)
	require.NoError(t, err)
	defer s.Close(ctx)
	defer s.collection.Drop(ctx)

	require.NoError(t, s.Write(ctx, pipeline.OnFailure("https://b.example", "timeout")))
	n, err := s.collection.CountDocuments(ctx, map[string]any{"failure_reason": "timeout"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
