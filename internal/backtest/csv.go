package backtest

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// WriteDailyResultsCSV writes one summary row per simulated day.
func WriteDailyResultsCSV(path string, days []DayResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"date",
		"profit",
		"cycles",
		"charge_count",
		"discharge_count",
		"initial_level",
		"final_level",
		"charged_mwh",
		"discharged_mwh",
		"cost",
		"revenue",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, d := range days {
		row := []string{
			fmtDate(d.Date),
			fmtFloat(d.Profit),
			fmtFloat(d.Cycles),
			strconv.Itoa(d.ChargeCount),
			strconv.Itoa(d.DischargeCount),
			fmtFloat(d.InitialLevel),
			fmtFloat(d.FinalLevel),
			fmtFloat(d.ChargedMWh),
			fmtFloat(d.DischargedMWh),
			fmtFloat(d.Cost),
			fmtFloat(d.Revenue),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

// WriteTransactionsCSV writes the flattened transaction log across all days.
// Days simulated without details contribute no rows.
func WriteTransactionsCSV(path string, days []DayResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"date",
		"kind",
		"time_index",
		"interval",
		"price",
		"amount_mwh",
		"usable_mwh",
		"cost",
		"revenue",
		"fee",
		"energy_level",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, d := range days {
		for _, tx := range d.Transactions {
			row := []string{
				fmtDate(d.Date),
				string(tx.Kind),
				strconv.Itoa(tx.TimeIndex),
				strconv.Itoa(tx.Interval),
				fmtFloat(tx.Price),
			}
			switch {
			case tx.Charge != nil:
				row = append(row,
					fmtFloat(tx.Charge.AmountMWh),
					"",
					fmtFloat(tx.Charge.Cost),
					"",
					fmtFloat(tx.Charge.TransactionFee),
				)
			case tx.Discharge != nil:
				row = append(row,
					fmtFloat(tx.Discharge.AmountGrossMWh),
					fmtFloat(tx.Discharge.AmountUsableMWh),
					"",
					fmtFloat(tx.Discharge.Revenue),
					fmtFloat(tx.Discharge.TransactionFee),
				)
			default:
				row = append(row, "", "", "", "", "")
			}
			row = append(row, fmtFloat(tx.EnergyLevel))
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	return w.Error()
}

// WriteTradesCSV writes the summarized trades of all days.
func WriteTradesCSV(path string, days []DayResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"date",
		"type",
		"start_index",
		"end_index",
		"start_energy",
		"end_energy",
		"energy_traded",
		"intervals",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, d := range days {
		for _, tr := range d.Trades {
			row := []string{
				fmtDate(d.Date),
				string(tr.Type),
				strconv.Itoa(tr.StartIndex),
				strconv.Itoa(tr.EndIndex),
				fmtFloat(tr.StartEnergy),
				fmtFloat(tr.EndEnergy),
				fmtFloat(tr.EnergyMWh),
				strconv.Itoa(tr.Intervals),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	return w.Error()
}

func fmtDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
