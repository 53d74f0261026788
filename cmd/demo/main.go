package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"storage-arbitrage/internal/backtest"
	"storage-arbitrage/internal/economics"
	"storage-arbitrage/internal/model"
	"storage-arbitrage/internal/strategy"
)

// Demo:
// - build a synthetic quarter-hour price series with a night trough and an
//   evening peak
// - run the lookahead strategy over it
// - print the resulting trades and the investment analysis
func main() {
	days := flag.Int("days", 2, "number of synthetic days")
	capacity := flag.Float64("capacity", 1.0, "storage capacity MWh")
	flag.Parse()

	series := syntheticSeries(*days)

	params := model.StorageParams{
		CapacityMWh: *capacity,
		ChargeRate:  0.5,
		Efficiency:  0.85,
	}
	store, err := model.NewEnergyStorage(params)
	if err != nil {
		panic(err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	strat := strategy.NewThresholdLookahead(strategy.LookaheadParams{}, log)
	engine := backtest.New(log)
	res, err := engine.Run(series, store, strat, backtest.Options{KeepDetails: true})
	if err != nil {
		panic(err)
	}

	fmt.Printf("Simulated %d synthetic days with %s (%.2f MWh @ %.2fC, efficiency %.0f%%)\n\n",
		res.DayCount(), strat.Name(), params.CapacityMWh, params.ChargeRate, params.Efficiency*100)

	for _, day := range res.Days {
		fmt.Printf("%s  profit=%8.2f  cycles=%.2f  level %.3f -> %.3f\n",
			day.Date.Format("2006-01-02"), day.Profit, day.Cycles, day.InitialLevel, day.FinalLevel)
		for _, tr := range day.Trades {
			fmt.Printf("    %-9s intervals %2d..%-2d  %.3f -> %.3f MWh (%.3f traded)\n",
				string(tr.Type), tr.StartIndex, tr.EndIndex, tr.StartEnergy, tr.EndEnergy, tr.EnergyMWh)
		}
	}

	fmt.Printf("\nTotal profit=%.2f  cycles=%.2f  final level=%.3f MWh\n",
		res.TotalProfit, res.TotalCycles, res.FinalLevel)

	annualProfit := economics.Annualize(res.TotalProfit, res.DayCount())
	annualCycles := economics.Annualize(res.TotalCycles, res.DayCount())
	econ := economics.Analyze(params, annualProfit, annualCycles, economics.DefaultParams())
	fmt.Printf("Annualized profit=%.2f  capex=%.2f  npv=%.2f\n",
		annualProfit, econ.Capex.TotalCapex, econ.NPV.NPV)
}

// syntheticSeries builds quarter-hour days shaped like a day-ahead curve: a
// slow sinusoid with a deep night trough and an evening peak on top.
func syntheticSeries(days int) []model.PricePoint {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	var out []model.PricePoint
	for d := 0; d < days; d++ {
		for i := 0; i < 96; i++ {
			ts := start.AddDate(0, 0, d).Add(time.Duration(i) * 15 * time.Minute)
			hour := float64(i) / 4

			price := 80 + 40*math.Sin((hour-9)/24*2*math.Pi)
			if hour >= 2 && hour < 4 {
				price -= 45
			}
			if hour >= 18 && hour < 20 {
				price += 60
			}
			out = append(out, model.PricePoint{Time: ts, Price: price})
		}
	}
	return out
}
