package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farheen-shaikh530/releasehub/internal/model"
	"github.com/farheen-shaikh530/releasehub/internal/vendor"
)

func TestDecodeInto_EnvOverrides(t *testing.T) {
	t.Setenv("RELEASEHUB_HTTP_TIMEOUT", "7s")
	t.Setenv("OS_API", "http://legacy/component")
	t.Setenv("RELEASEHUB_FEEDS_REDDIT_URL", "http://new/reddit")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	v := viper.New()
	v.SetEnvPrefix("RELEASEHUB")
	bindEnv(v)

	cfg := model.DefaultConfig()
	require.NoError(t, decodeInto(v, cfg))

	assert.Equal(t, 7*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "http://legacy/component", cfg.Feeds.ComponentURL)
	assert.Equal(t, "http://new/reddit", cfg.Feeds.RedditURL)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, model.DefaultConfig().Feeds.VendorURL, cfg.Feeds.VendorURL, "unset keys keep defaults")
}

func TestDecodeInto_PrefixedBeatsLegacy(t *testing.T) {
	t.Setenv("CACHE_DIR", "/legacy")
	t.Setenv("RELEASEHUB_PATHS_CACHE_DIR", "/prefixed")

	v := viper.New()
	bindEnv(v)
	cfg := model.DefaultConfig()
	require.NoError(t, decodeInto(v, cfg))
	assert.Equal(t, "/prefixed", cfg.Paths.CacheDir)
}

func TestConfigKeys(t *testing.T) {
	keys := configKeys()
	for _, want := range []string{"feeds.component_url", "paths.db_path", "cache.reddit_ttl", "llm.api_key", "limits.evidence_limit"} {
		assert.Contains(t, keys, want)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.yaml")
	require.NoError(t, writeDefaultConfig(path))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = 0
	require.NoError(t, decodeInto(v, cfg))
	assert.Equal(t, model.DefaultConfig().HTTP.Timeout, cfg.HTTP.Timeout, "durations round-trip")

	assert.Error(t, writeDefaultConfig(path), "existing file is kept")
}

func TestNewMatcher(t *testing.T) {
	allowed := vendor.NewAllowList("acme")
	m, err := newMatcher("ngram", allowed)
	require.NoError(t, err)
	assert.Equal(t, "ngram", m.Name())

	m, err = newMatcher("substring", allowed)
	require.NoError(t, err)
	assert.Equal(t, "substring", m.Name())

	_, err = newMatcher("fuzzy", allowed)
	assert.Error(t, err)
}

func TestIngestTargets(t *testing.T) {
	cfg := model.DefaultConfig()
	targets := ingestTargets(cfg, false)
	require.Len(t, targets, 2)
	assert.Equal(t, "https://releasetrain.io/api/component?q=os", targets[0].URL)
	assert.Equal(t, cfg.Cache.ComponentTTL, targets[0].TTL)
	assert.Equal(t, "https://releasetrain.io/api/reddit?limit=100&page=1", targets[1].URL)

	for _, tgt := range ingestTargets(cfg, true) {
		assert.Zero(t, tgt.TTL)
	}
}

func TestPrintAnswer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printAnswer(&buf, &model.Answer{
		ShortAnswer: "Latest version of **acme** is **3.4.0**.",
		Meta:        "Intent: VERSION",
		Citations:   []string{"https://example.test/a"},
		Evidence:    []model.Evidence{{Snippet: "Acme 3.4.0 release", Date: "2025-05-01"}},
	}))
	out := buf.String()
	assert.Contains(t, out, "[1] https://example.test/a")
	assert.Contains(t, out, "- Acme 3.4.0 release (2025-05-01)")
	assert.NotContains(t, out, "Trace")
}

// feedServer serves the three upstream endpoints
func feedServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/component", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "q=os" {
			t.Errorf("component feed query = %q, want %q", r.URL.RawQuery, "q=os")
		}
		_, _ = w.Write([]byte(`{"data":[` +
			`{"versionProductName":"Acme","versionReleaseNotes":"<p>Acme 3.4.0 release is out.</p>","updatedAt":"2025-05-01T00:00:00Z"},` +
			`{"versionProductBrand":"Globex","versionId":"globex-7.1.0","versionNumber":"7.1.0","versionTimestamp":1748736000,"versionTimestampLastUpdate":"2025-06-01T00:00:00Z"}` +
			`]}`))
	})
	mux.HandleFunc("/api/reddit", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "limit=100&page=1" {
			t.Errorf("reddit feed query = %q, want %q", r.URL.RawQuery, "limit=100&page=1")
		}
		_, _ = w.Write([]byte(`[{"title":"Acme 3.3.0 release notes","createdAt":"2025-04-01T00:00:00Z","url":"https://example.test/r"}]`))
	})
	mux.HandleFunc("/api/names", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"name":"Acme"},{"name":"Globex"}]`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(t.Context()), out.String())
	return out.String()
}

func TestCommands_IngestBuildAsk(t *testing.T) {
	server := feedServer(t)
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("RELEASEHUB_FEEDS_COMPONENT_URL", server.URL+"/api/component")
	t.Setenv("RELEASEHUB_FEEDS_REDDIT_URL", server.URL+"/api/reddit")
	t.Setenv("RELEASEHUB_FEEDS_VENDOR_URL", server.URL+"/api/names")

	db := filepath.Join(dir, "hub.duckdb")
	cacheDir := filepath.Join(dir, "cache")
	metricsPath := filepath.Join(dir, "metrics.prom")

	out := execute(t, "ingest", "--db", db, "--cache-dir", cacheDir, "--fresh")
	assert.Contains(t, out, "Ingested 2/2 feeds")

	out = execute(t, "build", "--db", db, "--cache-dir", cacheDir)
	assert.Contains(t, out, "sentences:")
	assert.Contains(t, out, "latest_version_fact: 1 rows")

	out = execute(t, "build", "--db", db, "--cache-dir", cacheDir)
	assert.Contains(t, out, "already built, skipped")

	out = execute(t, "vendors", "--db", db, "--cache-dir", cacheDir, "--list")
	assert.Contains(t, out, "Origin:   local_file")
	assert.Contains(t, out, "globex")

	out = execute(t, "status", "--db", db, "--cache-dir", cacheDir)
	assert.Contains(t, out, "latest_version_fact")
	assert.Contains(t, out, "built")

	out = execute(t, "ask", "--db", db, "--cache-dir", cacheDir, "--metrics-file", metricsPath,
		"--json", "--debug=false", "what is the latest version of acme?")
	var answer model.Answer
	require.NoError(t, json.Unmarshal([]byte(out[strings.Index(out, "{"):]), &answer))
	assert.False(t, answer.Abstained)
	assert.Equal(t, "3.4.0", answer.Version)
	assert.Equal(t, 85, answer.Confidence)
	assert.Equal(t, "generic", answer.Strategy)

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `releasehub_answers_total{abstained="false",strategy="generic"} 1`)

	// a cold cache fetches both feeds from their base URLs at query time
	coldCache := filepath.Join(dir, "cold-cache")
	out = execute(t, "ask", "--db", db, "--cache-dir", coldCache, "--json", "what is the latest version of globex?")
	answer = model.Answer{}
	require.NoError(t, json.Unmarshal([]byte(out[strings.Index(out, "{"):]), &answer))
	assert.Equal(t, "generic", answer.Strategy)
	assert.Equal(t, "7.1.0", answer.Version)
	assert.Equal(t, 90, answer.Confidence)

	out = execute(t, "ask", "--db", db, "--cache-dir", coldCache, "--json", "latest android version for acme")
	answer = model.Answer{}
	require.NoError(t, json.Unmarshal([]byte(out[strings.Index(out, "{"):]), &answer))
	assert.Equal(t, "os_latest", answer.Strategy)
	assert.True(t, answer.Abstained)
	assert.Equal(t, 40, answer.Confidence)

	// no API key: rephrasing is skipped and the verified answer still prints
	t.Setenv("OPENAI_API_KEY", "")
	out = execute(t, "ask", "--db", db, "--cache-dir", cacheDir, "--json", "--llm", "--llm-provider", "openai",
		"what is the latest version of acme?")
	answer = model.Answer{}
	require.NoError(t, json.Unmarshal([]byte(out[strings.Index(out, "{"):]), &answer))
	assert.False(t, answer.Abstained)
	assert.Equal(t, "3.4.0", answer.Version)
	assert.Equal(t, 85, answer.Confidence)
	assert.Contains(t, answer.ShortAnswer, "3.4.0")
}
