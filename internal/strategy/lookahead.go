package strategy

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"storage-arbitrage/internal/model"
)

// DefaultWindowSize is the look-ahead horizon in quarter-hour intervals.
const DefaultWindowSize = 6

// Tolerance around a charge/discharge target, in MWh. An operation counts as
// complete once the level is within this band of its target.
const targetTolerance = 0.1

const statusInterval = 10 * time.Second

// LookaheadParams configures the threshold-lookahead strategy.
type LookaheadParams struct {
	// WindowSize is the number of intervals (including the current one)
	// whose prices form the percentile window. Values <= 0 select
	// DefaultWindowSize.
	WindowSize int
}

// ThresholdLookahead trades on rolling look-ahead percentiles: it charges
// when the current price sits below the window's 20th percentile and the
// window mean promises a rise, and discharges above the 80th percentile when
// the mean promises a fall. Trades are sized by how extreme the price is
// within the window and gated against the previous trade's price to avoid
// chaining losses.
type ThresholdLookahead struct {
	windowSize int
	logger     *logrus.Logger
}

// optPrice is an optional price or level; the zero value means "not set".
type optPrice struct {
	value float64
	set   bool
}

func NewThresholdLookahead(params LookaheadParams, logger *logrus.Logger) *ThresholdLookahead {
	windowSize := params.WindowSize
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &ThresholdLookahead{windowSize: windowSize, logger: logger}
}

func (s *ThresholdLookahead) Name() string { return "threshold_lookahead" }

// Run executes the strategy over one day slice, mutating the storage in
// place. It appends one history entry per index, recorded before any action
// at that index. The input slice is not modified.
func (s *ThresholdLookahead) Run(day []model.PricePoint, store *model.EnergyStorage) []EnergyHistoryEntry {
	prices := model.Values(day)
	total := len(prices)
	history := make([]EnergyHistoryEntry, 0, total)

	// Targets of the running operation and price references of the last
	// trades. Targets stay set after an exhausted operation drops the mode;
	// they are only consulted while their matching mode is active.
	var chargeTarget, dischargeTarget optPrice
	var operationPrice optPrice
	var lastCharge, lastDischarge optPrice

	lastStatus := time.Now()

	for idx := 0; idx < total; idx++ {
		if time.Since(lastStatus) > statusInterval {
			s.logger.WithFields(logrus.Fields{
				"progress": float64(idx) / float64(total) * 100,
				"index":    idx,
				"total":    total,
			}).Info("lookahead progress")
			lastStatus = time.Now()
		}

		history = append(history, EnergyHistoryEntry{
			TimeIndex:   idx,
			EnergyLevel: store.EnergyLevel(),
			Action:      store.Mode().Action(),
		})

		if store.IsProcessing() {
			switch {
			case store.Mode() == model.Charging && chargeTarget.set:
				if store.EnergyLevel() >= chargeTarget.value-targetTolerance {
					store.StopProcess()
					chargeTarget = optPrice{}
					operationPrice = optPrice{}
				} else {
					store.ContinueProcess(idx)
				}
			case store.Mode() == model.Discharging && dischargeTarget.set:
				if store.EnergyLevel() <= dischargeTarget.value+targetTolerance {
					store.StopProcess()
					dischargeTarget = optPrice{}
					// The finished sale's start price is the reference the
					// next discharge has to beat; the charge reference resets.
					lastDischarge = operationPrice
					operationPrice = optPrice{}
					lastCharge = optPrice{}
				} else {
					store.ContinueProcess(idx)
				}
			default:
				store.ContinueProcess(idx)
			}
			continue
		}

		price := prices[idx]

		lookAhead := min(s.windowSize, total-idx)
		if lookAhead < 1 {
			continue
		}
		window := prices[idx : idx+lookAhead]
		sorted := sortedCopy(window)

		buyThreshold := percentileSorted(sorted, 0.20)
		sellThreshold := percentileSorted(sorted, 0.80)
		futureMean := mean(window)
		futureStd := stdDev(window)

		// Charge evaluation first; a triggered charge skips the discharge
		// evaluation for this step.
		if store.EnergyLevel() < store.Capacity()*0.9 {
			veryLowPrice := price < buyThreshold
			likelyToRise := futureMean > price*1.2
			betterThanLastCharge := !lastCharge.set || price < lastCharge.value*0.95

			if veryLowPrice && likelyToRise && betterThanLastCharge {
				available := store.Capacity() - store.EnergyLevel()
				targetAmount := available * 0.5
				if price < percentileSorted(sorted, 0.10) {
					targetAmount = available * 0.8
				}

				if targetAmount >= store.Capacity()*0.1 {
					target := min(store.EnergyLevel()+targetAmount, store.Capacity())
					chargeTarget = optPrice{value: target, set: true}
					lastCharge = optPrice{value: price, set: true}
					operationPrice = optPrice{value: price, set: true}

					s.logger.WithFields(logrus.Fields{
						"time":        day[idx].Time.Format("02.01. 15:04"),
						"price":       price,
						"future_mean": futureMean,
						"future_std":  futureStd,
						"level":       store.EnergyLevel(),
						"target":      target,
					}).Debug("charge decision")

					store.StartCharging(price, idx)
					lastDischarge = optPrice{}
					continue
				}
			}
		}

		if store.EnergyLevel() > store.Capacity()*0.1 {
			veryHighPrice := price > sellThreshold
			likelyToFall := futureMean < price*0.9
			betterThanLastDischarge := !lastDischarge.set || price > lastDischarge.value*1.05

			if veryHighPrice && likelyToFall && betterThanLastDischarge {
				targetAmount := store.EnergyLevel() * 0.5
				if price > percentileSorted(sorted, 0.90) {
					targetAmount = store.EnergyLevel() * 0.8
				}

				if targetAmount >= store.Capacity()*0.1 {
					target := max(store.EnergyLevel()-targetAmount, 0)
					dischargeTarget = optPrice{value: target, set: true}
					operationPrice = optPrice{value: price, set: true}
					lastDischarge = optPrice{value: price, set: true}
					lastCharge = optPrice{}

					s.logger.WithFields(logrus.Fields{
						"time":        day[idx].Time.Format("02.01. 15:04"),
						"price":       price,
						"future_mean": futureMean,
						"future_std":  futureStd,
						"level":       store.EnergyLevel(),
						"target":      target,
					}).Debug("discharge decision")

					store.StartDischarging(price, idx)
					continue
				}
			}
		}
	}

	return history
}
