package model

import "time"

// PricePoint is one quarter-hour of wholesale market data.
type PricePoint struct {
	Time  time.Time
	Price float64 // EUR/MWh, may be negative
}

// Day returns the point's timestamp truncated to its calendar date,
// preserving the location.
func (p PricePoint) Day() time.Time {
	y, m, d := p.Time.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, p.Time.Location())
}

// DayPrices is one calendar day's contiguous slice of a price series.
type DayPrices struct {
	Date   time.Time
	Points []PricePoint
}

// SplitByDay groups a time-ascending series into calendar days, preserving
// order. The returned slices alias the input.
func SplitByDay(series []PricePoint) []DayPrices {
	var days []DayPrices
	start := 0
	for i := 1; i <= len(series); i++ {
		if i == len(series) || !series[i].Day().Equal(series[start].Day()) {
			days = append(days, DayPrices{
				Date:   series[start].Day(),
				Points: series[start:i],
			})
			start = i
		}
	}
	return days
}

// Values extracts the raw price values of a series.
func Values(series []PricePoint) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Price
	}
	return out
}
