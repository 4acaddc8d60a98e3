package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/fox", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>The quick brown fox jumps.</p></body></html>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	t.Setenv("MONGODB_URI", "")
	out := filepath.Join(t.TempDir(), "results.jsonl")

	cmd := newRootCmd()
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{
		"--url", srv.URL + "/fox",
		"--url", srv.URL + "/missing",
		"--output", out,
		"--env-file", filepath.Join(t.TempDir(), "none.env"),
		"--lemmatize=false",
		"--topics", "2",
		"--respect-robots=false",
		"--max-retries", "0",
		"--log-level", "error",
	})
	require.NoError(t, cmd.Execute(), stderr.String())

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	records := map[string]map[string]any{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		records[m["url"].(string)] = m
	}
	require.Len(t, records, 2)

	fox := records[srv.URL+"/fox"]
	assert.Equal(t, []any{"quick", "brown", "fox", "jumps"}, fox["tokens"])
	assert.Len(t, fox["topics"], 2)

	missing := records[srv.URL+"/missing"]
	assert.Equal(t, "404 Not Found", missing["failure_reason"])
	assert.NotContains(t, missing, "tokens")
}

func TestRootCommandRejectsInvalidConfig(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--url", "https://example.com", "--mode", "bm25", "--env-file", filepath.Join(t.TempDir(), "none.env")})
	assert.Error(t, cmd.Execute())
}
