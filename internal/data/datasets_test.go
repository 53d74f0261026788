package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonFixture = `[
	{"datetime": "2024-03-01T00:15:00Z", "price": 52.0},
	{"datetime": "2024-03-01T00:00:00Z", "price": 50.0}
]`

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "prices.json", jsonFixture)

	series, err := LoadJSON(path)
	require.NoError(t, err)
	require.Len(t, series, 2)

	// Sorted by time regardless of file order.
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), series[0].Time)
	assert.InDelta(t, 50.0, series[0].Price, 1e-9)
	assert.InDelta(t, 52.0, series[1].Price, 1e-9)
}

func TestLoadJSON_PlainTimestamps(t *testing.T) {
	path := writeFile(t, "plain.json", `[{"datetime": "2024-03-01 06:30", "price": 3.5}]`)

	series, err := LoadJSON(path)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, time.Date(2024, 3, 1, 6, 30, 0, 0, time.UTC), series[0].Time)
}

func TestLoadJSON_Errors(t *testing.T) {
	path := writeFile(t, "bad.json", `[{"datetime": "yesterday", "price": 1}]`)
	_, err := LoadJSON(path)
	assert.Error(t, err)

	path = writeFile(t, "empty.json", `[]`)
	_, err = LoadJSON(path)
	assert.ErrorContains(t, err, "no records")
}

func TestScanDatasets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"), []byte(jsonFixture), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("Datum von;p\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	datasets, err := ScanDatasets(dir)
	require.NoError(t, err)
	require.Len(t, datasets, 2)

	assert.Equal(t, "a", datasets[0].Name)
	assert.Equal(t, FormatSMARDCSV, datasets[0].Format)
	assert.Equal(t, "b", datasets[1].Name)
	assert.Equal(t, FormatJSON, datasets[1].Format)
	assert.Positive(t, datasets[1].SizeBytes)
}

func TestScanDatasets_MissingDir(t *testing.T) {
	_, err := ScanDatasets(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoad_DispatchesOnExtension(t *testing.T) {
	jsonPath := writeFile(t, "p.json", jsonFixture)
	series, err := Load(jsonPath)
	require.NoError(t, err)
	assert.Len(t, series, 2)

	_, err = Load("prices.parquet")
	assert.ErrorContains(t, err, "unsupported dataset format")
}

func TestCache_Load(t *testing.T) {
	path := writeFile(t, "cached.json", jsonFixture)
	cache := NewCache(time.Hour)

	series, hit, err := cache.Load(path)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, series, 2)

	_, hit, err = cache.Load(path)
	require.NoError(t, err)
	assert.True(t, hit)

	// Changing the file on disk invalidates the entry.
	updated := `[{"datetime": "2024-03-02T00:00:00Z", "price": 70.0}]`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))
	require.NoError(t, os.Chtimes(path, time.Now(), time.Now().Add(time.Second)))

	series, hit, err = cache.Load(path)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, series, 1)
}

func TestCache_Clear(t *testing.T) {
	path := writeFile(t, "clear.json", jsonFixture)
	cache := NewCache(0) // falls back to the default TTL

	_, _, err := cache.Load(path)
	require.NoError(t, err)

	cache.Clear()

	_, hit, err := cache.Load(path)
	require.NoError(t, err)
	assert.False(t, hit)
}
