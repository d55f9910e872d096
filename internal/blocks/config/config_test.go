package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func writeEnvFile(t *testing.T, body string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(name, []byte(body), 0o600))
	return name
}

func TestReadConfig_Defaults(t *testing.T) {
	cfg, err := readConfig(lookupMap(nil), filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, DefaultDatabaseDSN, cfg.DatabaseDSN)
	assert.Equal(t, 300*time.Millisecond, cfg.DebounceDelay())
	assert.Equal(t, "plaintext", cfg.DefaultCodeLanguage)
	assert.Equal(t, DefaultRevisionsKeep, cfg.RevisionsKeep)
	assert.Equal(t, DefaultPruneSchedule, cfg.PruneSchedule)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThreshold())
	assert.Empty(t, cfg.BackendURLString())
	assert.False(t, cfg.Development)
}

func TestReadConfig_Sources(t *testing.T) {
	file := writeEnvFile(t, "BLOCKS_DEBOUNCE_MS=500\nBLOCKS_DEV=true\nBLOCKS_BACKEND_URL=https://cms.local/\nBLOCKS_REVISIONS_KEEP=5\n")
	env := map[string]string{
		"BLOCKS_REVISIONS_KEEP": "7",
		"BLOCKS_PRUNE_SCHEDULE": "",
	}

	cfg, err := readConfig(lookupMap(env), file)
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, cfg.DebounceDelay())
	assert.True(t, cfg.Development)
	assert.Equal(t, "https://cms.local", cfg.BackendURLString())
	// окружение процесса важнее файла
	assert.Equal(t, 7, cfg.RevisionsKeep)
	// пустое значение не заменяет значение по умолчанию
	assert.Equal(t, DefaultPruneSchedule, cfg.PruneSchedule)

	_, exist := os.LookupEnv("BLOCKS_DEBOUNCE_MS")
	assert.False(t, exist)
}

func TestReadConfig_Clamp(t *testing.T) {
	for _, v := range []string{"0", "-5", "60000", "abc"} {
		cfg, err := readConfig(lookupMap(map[string]string{"BLOCKS_DEBOUNCE_MS": v}))
		require.NoError(t, err)
		assert.Equal(t, 300*time.Millisecond, cfg.DebounceDelay(), v)
	}
}

func TestEnvSource_FirstFileWins(t *testing.T) {
	first := writeEnvFile(t, "BLOCKS_PDF_FONT=first.ttf\n")
	second := writeEnvFile(t, "BLOCKS_PDF_FONT=second.ttf\nBLOCKS_METRICS_FILE=blocks.prom\n")

	src, err := loadEnvSource(nil, first, second)
	require.NoError(t, err)

	v, source, ok := src.Get("BLOCKS_PDF_FONT")
	require.True(t, ok)
	assert.Equal(t, "first.ttf", v)
	assert.Equal(t, first, source)

	v, source, _ = src.Get("BLOCKS_METRICS_FILE")
	assert.Equal(t, "blocks.prom", v)
	assert.Equal(t, second, source)

	_, _, ok = src.Get("BLOCKS_DEV")
	assert.False(t, ok)
	assert.False(t, src.Bool("BLOCKS_DEV"))
	assert.Zero(t, src.Int("BLOCKS_PDF_FONT"))
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "postgres://blocks:xxxxx@db/blocks", maskValue("DatabaseDSN", "postgres://blocks:secret@db/blocks"))
	assert.Equal(t, "blocks.db", maskValue("DatabaseDSN", "blocks.db"))
	assert.Equal(t, "s****t", maskValue("APIToken", "secret"))
	assert.Equal(t, "plaintext", maskValue("DefaultCodeLanguage", "plaintext"))
}
