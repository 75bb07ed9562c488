package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/boddenberg/cost-dashboard-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory so no stray .env is read.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("APP_ENV", "")
	t.Setenv("COSTDASH_CONFIG", "")
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, config.StoreSQLite, cfg.StoreBackend)
	assert.Equal(t, config.CacheMemory, cfg.CacheBackend)
	assert.Equal(t, "Usage", cfg.UsageCategory)
	assert.Equal(t, 20.0, cfg.LowBalanceThreshold)
	assert.Equal(t, 30, cfg.CommitmentWindowDays)
	assert.Equal(t, 12, cfg.ForecastHistory)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "costdash.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
port = 9090
cache_ttl = "90s"
usage_category = "Prepaid"
low_balance_threshold = 15.5
`), 0o600))

	t.Setenv("PORT", "7070")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port, "env overrides file")
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, "Prepaid", cfg.UsageCategory)
	assert.Equal(t, 15.5, cfg.LowBalanceThreshold)
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "c.toml")
	require.NoError(t, os.WriteFile(path, []byte(`commitment_window_days = 45`), 0o600))
	t.Setenv("COSTDASH_CONFIG", path)

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 45, cfg.CommitmentWindowDays)
}

func TestLoad_MissingFile(t *testing.T) {
	dir := isolate(t)

	_, err := config.Load(filepath.Join(dir, "nope.toml"))
	assert.Error(t, err)
}

func TestLoad_DotEnvPrecedence(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("REDIS_DB=1\nSQLITE_PATH=base.db\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.staging"), []byte("SQLITE_PATH=staging.db\n"), 0o600))
	t.Setenv("APP_ENV", "staging")
	// godotenv sets real variables; register them for cleanup
	t.Setenv("REDIS_DB", "")
	t.Setenv("SQLITE_PATH", "")
	os.Unsetenv("REDIS_DB")
	os.Unsetenv("SQLITE_PATH")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "staging.db", cfg.SQLitePath)
	assert.Equal(t, 1, cfg.RedisDB)
	assert.Equal(t, "staging", cfg.AppEnv)
}

func TestLoad_BadEnvValueKeepsDefault(t *testing.T) {
	isolate(t)
	t.Setenv("MAX_RETRIES", "many")
	t.Setenv("HTTP_TIMEOUT", "soon")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := config.Default()
	cfg.Port = 0
	cfg.StoreBackend = config.StoreSupabase
	cfg.CacheBackend = "memcached"
	cfg.LowBalanceThreshold = 150

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"PORT", "SUPABASE_URL", "SUPABASE_SERVICE_ROLE_KEY", "CACHE_BACKEND", "LOW_BALANCE_THRESHOLD"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidate_Supabase(t *testing.T) {
	cfg := config.Default()
	cfg.StoreBackend = config.StoreSupabase
	cfg.SupabaseURL = "https://example.supabase.co"
	cfg.SupabaseServiceKey = "service-key"

	assert.NoError(t, cfg.Validate())
}
