package model

import "errors"

// IntervalHours is the length of one simulation step, in hours. The market
// data is quarter-hourly, so one step moves at most maxPower * 0.25 MWh.
const IntervalHours = 0.25

// StorageParams defines the physical and economic parameters of the storage asset.
// Units:
// - CapacityMWh: MWh
// - ChargeRate: C-rate, multiple of capacity per hour (0.5 = full charge in 2h)
// - Efficiency: round-trip efficiency fraction in (0, 1]
// - FeePerMWh: fixed transaction fee in EUR per MWh
type StorageParams struct {
	CapacityMWh float64 `json:"capacity_mwh" yaml:"capacity_mwh"`
	ChargeRate  float64 `json:"charge_rate" yaml:"charge_rate"`
	Efficiency  float64 `json:"efficiency" yaml:"efficiency"`
	FeePerMWh   float64 `json:"fee_per_mwh" yaml:"fee_per_mwh"`
}

func (p StorageParams) Validate() error {
	if p.CapacityMWh <= 0 {
		return errors.New("CapacityMWh must be > 0")
	}
	if p.ChargeRate <= 0 {
		return errors.New("ChargeRate must be > 0")
	}
	if p.Efficiency <= 0 || p.Efficiency > 1 {
		return errors.New("Efficiency must be in (0, 1]")
	}
	if p.FeePerMWh < 0 {
		return errors.New("FeePerMWh must be >= 0")
	}
	return nil
}

// MaxPowerMW is the charge/discharge power limit implied by the C-rate.
func (p StorageParams) MaxPowerMW() float64 {
	return p.CapacityMWh * p.ChargeRate
}

// Mode is the exclusive operating state of the storage.
type Mode int

const (
	Idle Mode = iota
	Charging
	Discharging
)

func (m Mode) String() string {
	switch m {
	case Charging:
		return "charging"
	case Discharging:
		return "discharging"
	default:
		return "idle"
	}
}

// Action returns the per-step action flag recorded in the energy history.
func (m Mode) Action() Action {
	switch m {
	case Charging:
		return ActionCharge
	case Discharging:
		return ActionDischarge
	default:
		return ActionIdle
	}
}

// Totals is a snapshot of the lifetime accumulators. All values are
// monotonically non-decreasing over a run.
type Totals struct {
	ChargedEnergyMWh    float64 // energy pulled from the market
	DischargedEnergyMWh float64 // usable energy sold (after efficiency)
	GrossEnergyMWh      float64 // energy withdrawn from the storage (before efficiency)
	ChargeCost          float64 // EUR spent charging, fees included
	DischargeRevenue    float64 // EUR earned discharging, net of fees
	GrossEnergyRevenue  float64 // EUR the gross energy would have earned
	EfficiencyLosses    float64 // EUR lost to round-trip efficiency
	EnergyLossesMWh     float64 // MWh lost to round-trip efficiency
	Cycles              float64 // gross discharged energy / capacity
}

// EnergyStorage models one battery storage asset trading on interval prices.
// It is a three-state machine (Idle/Charging/Discharging); a charge or
// discharge operation spans one or more quarter-hour steps, all executed at
// the price the operation was started with.
//
// An EnergyStorage is owned by exactly one simulation run and is not safe for
// concurrent use.
type EnergyStorage struct {
	params     StorageParams
	maxPowerMW float64

	energyLevel float64
	cash        float64

	mode            Mode
	operationPrice  float64
	currentInterval int

	transactions []Transaction

	totals      Totals
	dailyCycles float64

	operationDays int
}

// NewEnergyStorage creates an empty storage asset from validated parameters.
func NewEnergyStorage(params StorageParams) (*EnergyStorage, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &EnergyStorage{
		params:     params,
		maxPowerMW: params.MaxPowerMW(),
	}, nil
}

// StartCharging begins a new charge operation at the given price and performs
// its first step. Returns false without any state change if an operation is
// already running or the storage is full.
func (s *EnergyStorage) StartCharging(price float64, timeIndex int) bool {
	if s.mode != Idle {
		return false
	}
	if s.energyLevel >= s.params.CapacityMWh {
		return false
	}

	s.mode = Charging
	s.operationPrice = price
	s.currentInterval = 0

	return s.chargeStep(price, timeIndex)
}

// StartDischarging begins a new discharge operation at the given price and
// performs its first step. Returns false without any state change if an
// operation is already running or the storage is empty.
func (s *EnergyStorage) StartDischarging(price float64, timeIndex int) bool {
	if s.mode != Idle {
		return false
	}
	if s.energyLevel <= 0 {
		return false
	}

	s.mode = Discharging
	s.operationPrice = price
	s.currentInterval = 0

	return s.dischargeStep(price, timeIndex)
}

// ContinueProcess performs the next step of the running operation at the
// operation's fixed price. Returns false when no operation is running or the
// step could not move any energy (the storage drops to Idle in that case).
func (s *EnergyStorage) ContinueProcess(timeIndex int) bool {
	s.currentInterval++

	switch s.mode {
	case Charging:
		return s.chargeStep(s.operationPrice, timeIndex)
	case Discharging:
		return s.dischargeStep(s.operationPrice, timeIndex)
	default:
		return false
	}
}

// StopProcess ends the running operation, leaving the energy level as is.
// The strategy calls this once its charge or discharge target is reached.
func (s *EnergyStorage) StopProcess() {
	s.mode = Idle
}

func (s *EnergyStorage) chargeStep(price float64, timeIndex int) bool {
	stepLimit := s.maxPowerMW * IntervalHours
	available := s.params.CapacityMWh - s.energyLevel
	amount := min(stepLimit, available)

	if amount <= 0 {
		s.mode = Idle
		return false
	}

	energyCost := amount * price
	fee := amount * s.params.FeePerMWh
	cost := energyCost + fee

	s.energyLevel += amount
	s.cash -= cost

	s.totals.ChargedEnergyMWh += amount
	s.totals.ChargeCost += cost

	s.transactions = append(s.transactions, Transaction{
		Kind:        TransactionCharge,
		Price:       price,
		EnergyLevel: s.energyLevel,
		TimeIndex:   timeIndex,
		Interval:    s.currentInterval,
		Charge: &ChargeDetail{
			AmountMWh:      amount,
			EnergyCost:     energyCost,
			TransactionFee: fee,
			Cost:           cost,
		},
	})
	return true
}

func (s *EnergyStorage) dischargeStep(price float64, timeIndex int) bool {
	stepLimit := s.maxPowerMW * IntervalHours
	amount := min(stepLimit, s.energyLevel)

	if amount <= 0 {
		s.mode = Idle
		return false
	}

	usable := amount * s.params.Efficiency
	energyLoss := amount * (1 - s.params.Efficiency)

	grossRevenue := amount * price
	efficiencyLoss := grossRevenue * (1 - s.params.Efficiency)
	energyRevenue := usable * price
	fee := usable * s.params.FeePerMWh
	revenue := energyRevenue - fee

	s.energyLevel -= amount
	s.cash += revenue

	s.totals.GrossEnergyMWh += amount
	s.totals.DischargedEnergyMWh += usable
	s.totals.DischargeRevenue += revenue
	s.totals.GrossEnergyRevenue += grossRevenue
	s.totals.EfficiencyLosses += efficiencyLoss
	s.totals.EnergyLossesMWh += energyLoss

	s.transactions = append(s.transactions, Transaction{
		Kind:        TransactionDischarge,
		Price:       price,
		EnergyLevel: s.energyLevel,
		TimeIndex:   timeIndex,
		Interval:    s.currentInterval,
		Discharge: &DischargeDetail{
			AmountGrossMWh:  amount,
			AmountUsableMWh: usable,
			EnergyLossMWh:   energyLoss,
			GrossRevenue:    grossRevenue,
			EfficiencyLoss:  efficiencyLoss,
			EnergyRevenue:   energyRevenue,
			TransactionFee:  fee,
			Revenue:         revenue,
		},
	})

	// One full cycle = discharging one capacity worth of gross energy.
	cycleFraction := amount / s.params.CapacityMWh
	s.dailyCycles += cycleFraction
	s.totals.Cycles += cycleFraction

	return true
}

// IsProcessing reports whether a charge or discharge operation is running.
func (s *EnergyStorage) IsProcessing() bool {
	return s.mode != Idle
}

func (s *EnergyStorage) Mode() Mode            { return s.mode }
func (s *EnergyStorage) Params() StorageParams { return s.params }
func (s *EnergyStorage) Capacity() float64     { return s.params.CapacityMWh }
func (s *EnergyStorage) MaxPower() float64     { return s.maxPowerMW }
func (s *EnergyStorage) EnergyLevel() float64  { return s.energyLevel }
func (s *EnergyStorage) Cash() float64         { return s.cash }
func (s *EnergyStorage) DailyCycles() float64  { return s.dailyCycles }
func (s *EnergyStorage) OperationDays() int    { return s.operationDays }

// Totals returns a copy of the lifetime accumulators.
func (s *EnergyStorage) Totals() Totals { return s.totals }

// Transactions returns the transaction log of the current accounting period.
// The returned slice must not be modified. ResetDailyTransactions detaches
// the log rather than truncating it, so a slice obtained before the reset
// stays valid.
func (s *EnergyStorage) Transactions() []Transaction { return s.transactions }

// TotalProfit is lifetime discharge revenue minus lifetime charge cost.
func (s *EnergyStorage) TotalProfit() float64 {
	return s.totals.DischargeRevenue - s.totals.ChargeCost
}

// ActualEfficiency is the revenue retained after efficiency losses, as a
// percentage of the gross energy revenue. Returns 0 before the first discharge.
func (s *EnergyStorage) ActualEfficiency() float64 {
	if s.totals.GrossEnergyRevenue == 0 {
		return 0
	}
	return (s.totals.GrossEnergyRevenue - s.totals.EfficiencyLosses) / s.totals.GrossEnergyRevenue * 100
}

// EnergyEfficiency is usable discharged energy as a percentage of charged
// energy. Returns 0 before the first charge.
func (s *EnergyStorage) EnergyEfficiency() float64 {
	if s.totals.ChargedEnergyMWh == 0 {
		return 0
	}
	return s.totals.DischargedEnergyMWh / s.totals.ChargedEnergyMWh * 100
}

// ResetDailyTransactions clears the transaction log and the daily cycle
// counter for the next accounting period, forcing the mode back to Idle.
// Lifetime accumulators, cash and the energy level are untouched.
func (s *EnergyStorage) ResetDailyTransactions() {
	s.transactions = nil
	s.mode = Idle
	s.dailyCycles = 0
}

// AddOperationDay records one completed simulation day.
func (s *EnergyStorage) AddOperationDay() {
	s.operationDays++
}
