package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"storage-arbitrage/internal/api/models"
	"storage-arbitrage/internal/data"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// performRequest runs one request against the router. A non-nil body is
// marshalled as JSON.
func performRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), "body: %s", w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.ErrorResponse
	decodeBody(t, w, &resp)
	return resp.Error.Code
}

// twoDayPrices is a quarter-hourly series with a cheap outlier on day one
// and a spike on day two, enough for the lookahead strategy to buy 0.75 MWh
// at 5 and sell half the capacity at 200.
func twoDayPrices() []models.PricePoint {
	day1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	var out []models.PricePoint
	add := func(start time.Time, prices ...float64) {
		for i, p := range prices {
			out = append(out, models.PricePoint{
				Time:  start.Add(time.Duration(i) * 15 * time.Minute),
				Price: p,
			})
		}
	}
	add(day1, 5, 50, 50, 50, 50, 50, 60, 70, 80, 90)
	add(day2, 200, 100, 100, 100, 100, 100, 100)
	return out
}

// writePriceJSON writes the fixture series as a JSON dataset into dir and
// returns the file name.
func writePriceJSON(t *testing.T, dir, name string) string {
	t.Helper()

	records := make([]data.PriceRecord, 0, len(twoDayPrices()))
	for _, p := range twoDayPrices() {
		records = append(records, data.PriceRecord{
			Datetime: p.Time.Format(time.RFC3339),
			Price:    p.Price,
		})
	}
	raw, err := json.Marshal(records)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), raw, 0o644))
	return name
}
