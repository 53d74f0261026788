package strategy

import (
	"fmt"
	"strings"

	"storage-arbitrage/internal/model"
)

// ScheduleParams implements a simple daily time-window baseline:
// - Charge during [ChargeStart, ChargeEnd)
// - Discharge during [DischargeStart, DischargeEnd)
// - Otherwise idle.
//
// Times are "HH:MM" and interpreted in the price series' timezone. Each
// window executes as one storage operation priced at the interval the window
// was entered on.
type ScheduleParams struct {
	ChargeStart    string
	ChargeEnd      string
	DischargeStart string
	DischargeEnd   string
}

// DefaultScheduleParams charges in the early-morning trough and discharges
// into the evening peak.
func DefaultScheduleParams() ScheduleParams {
	return ScheduleParams{
		ChargeStart:    "01:00",
		ChargeEnd:      "05:00",
		DischargeStart: "17:00",
		DischargeEnd:   "21:00",
	}
}

// DailySchedule is the fixed-window baseline strategy. It knows nothing about
// prices; it exists to give the threshold strategy something to beat.
type DailySchedule struct {
	csMins int
	ceMins int
	dsMins int
	deMins int
}

func NewDailySchedule(params ScheduleParams) (*DailySchedule, error) {
	cs, err := parseHHMM(params.ChargeStart)
	if err != nil {
		return nil, fmt.Errorf("charge start: %w", err)
	}
	ce, err := parseHHMM(params.ChargeEnd)
	if err != nil {
		return nil, fmt.Errorf("charge end: %w", err)
	}
	ds, err := parseHHMM(params.DischargeStart)
	if err != nil {
		return nil, fmt.Errorf("discharge start: %w", err)
	}
	de, err := parseHHMM(params.DischargeEnd)
	if err != nil {
		return nil, fmt.Errorf("discharge end: %w", err)
	}

	// Circular [start,end) windows intersect iff either start lies in the
	// other window.
	if inWindow(cs, ds, de) || inWindow(ds, cs, ce) {
		return nil, fmt.Errorf("charge and discharge windows overlap")
	}

	return &DailySchedule{csMins: cs, ceMins: ce, dsMins: ds, deMins: de}, nil
}

func (s *DailySchedule) Name() string { return "daily_schedule" }

func (s *DailySchedule) Run(day []model.PricePoint, store *model.EnergyStorage) []EnergyHistoryEntry {
	history := make([]EnergyHistoryEntry, 0, len(day))

	for idx, point := range day {
		history = append(history, EnergyHistoryEntry{
			TimeIndex:   idx,
			EnergyLevel: store.EnergyLevel(),
			Action:      store.Mode().Action(),
		})

		mins := point.Time.Hour()*60 + point.Time.Minute()

		want := model.Idle
		switch {
		case inWindow(mins, s.csMins, s.ceMins):
			want = model.Charging
		case inWindow(mins, s.dsMins, s.deMins):
			want = model.Discharging
		}

		if store.IsProcessing() && store.Mode() != want {
			store.StopProcess()
		}

		switch want {
		case model.Charging:
			if store.Mode() == model.Charging {
				store.ContinueProcess(idx)
			} else {
				store.StartCharging(point.Price, idx)
			}
		case model.Discharging:
			if store.Mode() == model.Discharging {
				store.ContinueProcess(idx)
			} else {
				store.StartDischarging(point.Price, idx)
			}
		}
	}

	return history
}

func parseHHMM(s string) (int, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	var h, m int
	if _, err := fmt.Sscanf(parts[0], "%d", &h); err != nil {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &m); err != nil {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return h*60 + m, nil
}

// inWindow checks whether tMins is in [start, end) on a 24h clock.
// If start == end, the window is empty (always false).
// If start > end, it wraps across midnight.
func inWindow(tMins, start, end int) bool {
	if start == end {
		return false
	}
	if start < end {
		return tMins >= start && tMins < end
	}
	return tMins >= start || tMins < end
}
