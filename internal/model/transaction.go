package model

// TransactionKind tags the two transaction variants.
// Keep these values stable; they are intended for CSV output.
type TransactionKind string

const (
	TransactionCharge    TransactionKind = "charge"
	TransactionDischarge TransactionKind = "discharge"
)

// ChargeDetail is the payload of a charge transaction.
type ChargeDetail struct {
	AmountMWh      float64 // energy bought and stored this step
	EnergyCost     float64 // AmountMWh * price
	TransactionFee float64 // AmountMWh * fee
	Cost           float64 // EnergyCost + TransactionFee
}

// DischargeDetail is the payload of a discharge transaction.
type DischargeDetail struct {
	AmountGrossMWh  float64 // energy withdrawn from the storage
	AmountUsableMWh float64 // energy delivered after efficiency
	EnergyLossMWh   float64 // AmountGrossMWh - AmountUsableMWh
	GrossRevenue    float64 // AmountGrossMWh * price
	EfficiencyLoss  float64 // revenue lost to efficiency
	EnergyRevenue   float64 // AmountUsableMWh * price
	TransactionFee  float64 // AmountUsableMWh * fee
	Revenue         float64 // EnergyRevenue - TransactionFee
}

// Transaction records one step of a charge or discharge operation. Exactly
// one of Charge and Discharge is set, matching Kind. Transactions are created
// by the storage step functions and never mutated after append.
type Transaction struct {
	Kind        TransactionKind
	Price       float64 // EUR/MWh the operation runs at
	EnergyLevel float64 // level after this step
	TimeIndex   int     // index into the day's price series
	Interval    int     // step within the operation, 0 for the opening step

	Charge    *ChargeDetail
	Discharge *DischargeDetail
}

// CashDelta is the signed cash movement of this transaction: negative for a
// charge (cost), positive for a discharge (net revenue).
func (t Transaction) CashDelta() float64 {
	switch t.Kind {
	case TransactionCharge:
		return -t.Charge.Cost
	case TransactionDischarge:
		return t.Discharge.Revenue
	default:
		return 0
	}
}

// AmountMWh is the energy moved this step: stored energy for a charge, gross
// withdrawn energy for a discharge.
func (t Transaction) AmountMWh() float64 {
	switch t.Kind {
	case TransactionCharge:
		return t.Charge.AmountMWh
	case TransactionDischarge:
		return t.Discharge.AmountGrossMWh
	default:
		return 0
	}
}
