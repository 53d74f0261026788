package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"storage-arbitrage/internal/model"
)

// SMARD export format: ';' separated, ',' as decimal separator, timestamps
// in the "Datum von" column as DD.MM.YYYY HH:MM.
const (
	smardTimeColumn  = "Datum von"
	smardPriceColumn = "Deutschland/Luxemburg [€/MWh] Berechnete Auflösungen"
	smardTimeLayout  = "02.01.2006 15:04"
)

// LoadSMARDCSV reads a SMARD wholesale price export. The price column is the
// German/Luxembourg bidding zone when present, otherwise the first column
// mentioning MWh or €, otherwise the last column. Unparseable prices are
// linearly interpolated between their neighbours; the series is returned
// sorted by time.
func LoadSMARDCSV(path string) ([]model.PricePoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	timeIdx := -1
	for i, col := range header {
		if col == smardTimeColumn {
			timeIdx = i
			break
		}
	}
	if timeIdx < 0 {
		return nil, fmt.Errorf("column %q not found in %s", smardTimeColumn, path)
	}

	priceIdx := findPriceColumn(header)

	type rawPoint struct {
		t       time.Time
		price   float64
		missing bool
	}
	var rows []rawPoint

	for {
		record, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(record) <= timeIdx || len(record) <= priceIdx {
			continue
		}

		t, err := time.Parse(smardTimeLayout, record[timeIdx])
		if err != nil {
			return nil, fmt.Errorf("parse time %q: %w", record[timeIdx], err)
		}

		p := rawPoint{t: t}
		if v, err := parseGermanFloat(record[priceIdx]); err == nil {
			p.price = v
		} else {
			p.missing = true
		}
		rows = append(rows, p)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].t.Before(rows[j].t) })

	prices := make([]float64, len(rows))
	missing := make([]bool, len(rows))
	anyValid := false
	for i, row := range rows {
		prices[i] = row.price
		missing[i] = row.missing
		if !row.missing {
			anyValid = true
		}
	}
	if !anyValid {
		return nil, fmt.Errorf("no numeric prices in %s", path)
	}
	interpolateMissing(prices, missing)

	out := make([]model.PricePoint, len(rows))
	for i, row := range rows {
		out[i] = model.PricePoint{Time: row.t, Price: prices[i]}
	}
	return out, nil
}

func findPriceColumn(header []string) int {
	for i, col := range header {
		if col == smardPriceColumn {
			return i
		}
	}
	for i, col := range header {
		if strings.Contains(col, "MWh") || strings.Contains(col, "€") {
			return i
		}
	}
	return len(header) - 1
}

// parseGermanFloat parses "123,45" style decimals. Values with thousands
// separators or placeholders like "-" fail and count as missing.
func parseGermanFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(s, 64)
}

// interpolateMissing fills gaps linearly between valid neighbours. Runs at
// the edges repeat the nearest valid value.
func interpolateMissing(prices []float64, missing []bool) {
	n := len(prices)

	prev := -1
	for i := 0; i < n; i++ {
		if missing[i] {
			continue
		}
		if prev < 0 {
			for j := 0; j < i; j++ {
				prices[j] = prices[i]
			}
		} else if i-prev > 1 {
			step := (prices[i] - prices[prev]) / float64(i-prev)
			for j := prev + 1; j < i; j++ {
				prices[j] = prices[prev] + step*float64(j-prev)
			}
		}
		prev = i
	}

	if prev >= 0 {
		for j := prev + 1; j < n; j++ {
			prices[j] = prices[prev]
		}
	}
}
