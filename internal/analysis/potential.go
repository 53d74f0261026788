package analysis

import (
	"math"
	"sort"
	"time"

	"storage-arbitrage/internal/model"
)

// DayStats summarizes one calendar day of prices. SpreadP95P05 is the robust
// daily spread a storage asset can work with.
type DayStats struct {
	Date         time.Time `json:"date"`
	Count        int       `json:"count"`
	MinPrice     float64   `json:"min_price"`
	MaxPrice     float64   `json:"max_price"`
	MeanPrice    float64   `json:"mean_price"`
	StdDevPrice  float64   `json:"std_dev_price"`
	P05Price     float64   `json:"p05_price"`
	P95Price     float64   `json:"p95_price"`
	SpreadP95P05 float64   `json:"spread_p95_p05"`
}

// ArbitragePotential is a dataset-level summary for ranking and sanity
// checks. It combines raw price statistics with an oracle profit: the maximum
// profit the given storage could have extracted with perfect foresight.
type ArbitragePotential struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Count     int       `json:"count"`

	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
	MeanPrice    float64 `json:"mean_price"`
	StdDevPrice  float64 `json:"std_dev_price"`
	P05Price     float64 `json:"p05_price"`
	P95Price     float64 `json:"p95_price"`
	SpreadP95P05 float64 `json:"spread_p95_p05"`

	OracleProfit float64 `json:"oracle_profit"`

	Days []DayStats `json:"days,omitempty"`
}

// ComputePotential builds price statistics for the whole series and per day,
// plus the oracle profit bound for the given storage parameters.
func ComputePotential(series []model.PricePoint, params model.StorageParams) ArbitragePotential {
	p := ArbitragePotential{}
	if len(series) == 0 {
		return p
	}
	p.StartTime = series[0].Time
	p.EndTime = series[len(series)-1].Time
	p.Count = len(series)

	fillPriceStats(model.Values(series),
		&p.MinPrice, &p.MaxPrice, &p.MeanPrice, &p.StdDevPrice,
		&p.P05Price, &p.P95Price, &p.SpreadP95P05)

	for _, day := range model.SplitByDay(series) {
		p.Days = append(p.Days, DayStatistics(day))
	}

	p.OracleProfit = OracleProfit(series, params)
	return p
}

// PriceStats are whole-series price statistics, without the oracle bound.
type PriceStats struct {
	Count        int     `json:"count"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
	MeanPrice    float64 `json:"mean_price"`
	StdDevPrice  float64 `json:"std_dev_price"`
	P05Price     float64 `json:"p05_price"`
	P95Price     float64 `json:"p95_price"`
	SpreadP95P05 float64 `json:"spread_p95_p05"`
}

// SeriesStats computes the price statistics for a whole series. Cheap enough
// for dataset listings, unlike the oracle bound.
func SeriesStats(series []model.PricePoint) PriceStats {
	s := PriceStats{Count: len(series)}
	if len(series) == 0 {
		return s
	}
	fillPriceStats(model.Values(series),
		&s.MinPrice, &s.MaxPrice, &s.MeanPrice, &s.StdDevPrice,
		&s.P05Price, &s.P95Price, &s.SpreadP95P05)
	return s
}

// DayStatistics computes the price statistics for a single day.
func DayStatistics(day model.DayPrices) DayStats {
	s := DayStats{Date: day.Date, Count: len(day.Points)}
	if len(day.Points) == 0 {
		return s
	}
	fillPriceStats(model.Values(day.Points),
		&s.MinPrice, &s.MaxPrice, &s.MeanPrice, &s.StdDevPrice,
		&s.P05Price, &s.P95Price, &s.SpreadP95P05)
	return s
}

func fillPriceStats(vals []float64, minP, maxP, meanP, stdP, p05, p95, spread *float64) {
	if len(vals) == 0 {
		return
	}
	sum := 0.0
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, v := range vals {
		sum += v
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	m := sum / float64(len(vals))

	varSum := 0.0
	for _, v := range vals {
		d := v - m
		varSum += d * d
	}

	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	*minP = lo
	*maxP = hi
	*meanP = m
	*stdP = math.Sqrt(varSum / float64(len(vals)))
	*p05 = percentileSorted(sorted, 0.05)
	*p95 = percentileSorted(sorted, 0.95)
	*spread = *p95 - *p05
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// OracleProfit computes a perfect-foresight upper bound with a DP over
// quantized energy levels. The storage starts empty, one step per interval
// moves maxPower * IntervalHours MWh, and charge cost / discharge revenue use
// the same fee and efficiency accounting as the simulation. The bound is an
// upper limit for any causal strategy on the same series.
func OracleProfit(series []model.PricePoint, params model.StorageParams) float64 {
	if len(series) == 0 || params.Validate() != nil {
		return 0
	}

	stepEnergy := params.MaxPowerMW() * model.IntervalHours
	steps := int(math.Round(params.CapacityMWh / stepEnergy))
	if steps < 1 {
		steps = 1
	}

	// Level grid: index i maps to i * stepEnergy MWh, 0..steps inclusive.
	nStates := steps + 1
	negInf := -1e100
	dp := make([]float64, nStates)
	next := make([]float64, nStates)
	for i := range dp {
		dp[i] = negInf
	}
	dp[0] = 0

	chargeFee := stepEnergy * params.FeePerMWh
	usable := stepEnergy * params.Efficiency
	dischargeFee := usable * params.FeePerMWh

	for _, point := range series {
		for i := range next {
			next[i] = negInf
		}
		price := point.Price

		for idx := 0; idx <= steps; idx++ {
			if dp[idx] <= negInf/2 {
				continue
			}

			// Hold.
			if dp[idx] > next[idx] {
				next[idx] = dp[idx]
			}

			// Charge one step: pay energy plus fee on the gross amount.
			if idx < steps {
				cost := stepEnergy*price + chargeFee
				if v := dp[idx] - cost; v > next[idx+1] {
					next[idx+1] = v
				}
			}

			// Discharge one step: only the usable fraction earns revenue,
			// fee applies to the delivered energy.
			if idx > 0 {
				revenue := usable*price - dischargeFee
				if v := dp[idx] + revenue; v > next[idx-1] {
					next[idx-1] = v
				}
			}
		}
		dp, next = next, dp
	}

	best := negInf
	for _, v := range dp {
		if v > best {
			best = v
		}
	}
	if best <= negInf/2 {
		return 0
	}
	return best
}
