package model

// Action is the per-step action flag recorded in the energy history.
// Keep the numeric values stable; they are intended for CSV output.
type Action int

const (
	ActionDischarge Action = -1
	ActionIdle      Action = 0
	ActionCharge    Action = 1
)

func (a Action) String() string {
	switch a {
	case ActionCharge:
		return "charge"
	case ActionDischarge:
		return "discharge"
	default:
		return "idle"
	}
}

// TransactionKind maps a nonzero action to its transaction kind. Only valid
// for ActionCharge and ActionDischarge.
func (a Action) TransactionKind() TransactionKind {
	if a == ActionCharge {
		return TransactionCharge
	}
	return TransactionDischarge
}
