package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSMARDCSV(t *testing.T) {
	// Rows out of order, one missing price ("-") to be interpolated.
	content := "Datum von;Datum bis;Deutschland/Luxemburg [€/MWh] Berechnete Auflösungen;Polen [€/MWh]\n" +
		"01.03.2024 00:00;01.03.2024 00:15;50,25;60,0\n" +
		"01.03.2024 00:30;01.03.2024 00:45;-;62,0\n" +
		"01.03.2024 00:15;01.03.2024 00:30;52,75;61,0\n" +
		"01.03.2024 00:45;01.03.2024 01:00;55,25;63,0\n"
	path := writeFile(t, "smard.csv", content)

	series, err := LoadSMARDCSV(path)
	require.NoError(t, err)
	require.Len(t, series, 4)

	for i := 1; i < len(series); i++ {
		assert.True(t, series[i-1].Time.Before(series[i].Time), "series must be sorted")
	}
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), series[0].Time)

	assert.InDelta(t, 50.25, series[0].Price, 1e-9)
	assert.InDelta(t, 52.75, series[1].Price, 1e-9)
	// Interpolated halfway between 52.75 and 55.25.
	assert.InDelta(t, 54.0, series[2].Price, 1e-9)
	assert.InDelta(t, 55.25, series[3].Price, 1e-9)
}

func TestLoadSMARDCSV_BOMHeader(t *testing.T) {
	content := "\uFEFFDatum von;Preis [€/MWh]\n" +
		"01.03.2024 00:00;42,5\n"
	path := writeFile(t, "bom.csv", content)

	series, err := LoadSMARDCSV(path)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.InDelta(t, 42.5, series[0].Price, 1e-9)
}

func TestLoadSMARDCSV_FallbackColumns(t *testing.T) {
	// No exact zone column: the first MWh-ish column wins.
	content := "Datum von;Kommentar;Spot [€/MWh];Anders [€/MWh]\n" +
		"01.03.2024 00:00;x;10,0;99,0\n"
	path := writeFile(t, "fallback.csv", content)

	series, err := LoadSMARDCSV(path)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.InDelta(t, 10.0, series[0].Price, 1e-9)

	// No price-looking column at all: last column wins.
	content = "Datum von;foo;bar\n" +
		"01.03.2024 00:00;1,0;7,5\n"
	path = writeFile(t, "last.csv", content)

	series, err = LoadSMARDCSV(path)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.InDelta(t, 7.5, series[0].Price, 1e-9)
}

func TestLoadSMARDCSV_EdgeGapsRepeatNearest(t *testing.T) {
	content := "Datum von;Preis [€/MWh]\n" +
		"01.03.2024 00:00;-\n" +
		"01.03.2024 00:15;20,0\n" +
		"01.03.2024 00:30;-\n"
	path := writeFile(t, "edges.csv", content)

	series, err := LoadSMARDCSV(path)
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.InDelta(t, 20.0, series[0].Price, 1e-9)
	assert.InDelta(t, 20.0, series[2].Price, 1e-9)
}

func TestLoadSMARDCSV_Errors(t *testing.T) {
	_, err := LoadSMARDCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	path := writeFile(t, "notime.csv", "foo;bar\n1;2\n")
	_, err = LoadSMARDCSV(path)
	assert.ErrorContains(t, err, "Datum von")

	path = writeFile(t, "noprices.csv", "Datum von;Preis [€/MWh]\n01.03.2024 00:00;-\n")
	_, err = LoadSMARDCSV(path)
	assert.ErrorContains(t, err, "no numeric prices")
}
