package data

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"storage-arbitrage/internal/model"
)

// PriceRecord is one entry of a JSON price file: an array of
// {"datetime": "...", "price": 12.3} objects.
type PriceRecord struct {
	Datetime string  `json:"datetime"`
	Price    float64 `json:"price"`
}

var jsonTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// LoadJSON reads a JSON price series and returns it sorted by time.
func LoadJSON(path string) ([]model.PricePoint, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []PriceRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no records in %s", path)
	}

	out := make([]model.PricePoint, 0, len(records))
	for _, rec := range records {
		t, err := parseJSONTime(rec.Datetime)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", rec.Datetime, err)
		}
		out = append(out, model.PricePoint{Time: t, Price: rec.Price})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

func parseJSONTime(s string) (time.Time, error) {
	for _, layout := range jsonTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime format")
}
