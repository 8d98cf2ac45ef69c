package finance

import "errors"

var (
	// ErrInvalidParameters is returned when project parameters fail validation.
	ErrInvalidParameters = errors.New("finance: invalid project parameters")
	// ErrNegativeEquipmentCost is returned for a negative equipment cost input.
	ErrNegativeEquipmentCost = errors.New("finance: negative equipment cost")
	// ErrInvalidOpexInput is returned for malformed opex inputs.
	ErrInvalidOpexInput = errors.New("finance: invalid opex input")
	// ErrInvalidRevenueInput is returned for malformed revenue inputs.
	ErrInvalidRevenueInput = errors.New("finance: invalid revenue input")
	// ErrCapexNotComputed is returned when a step requires capex first.
	ErrCapexNotComputed = errors.New("finance: capex not computed")
	// ErrOpexNotComputed is returned when a step requires opex first.
	ErrOpexNotComputed = errors.New("finance: opex not computed")
	// ErrRevenueNotComputed is returned when a step requires revenue first.
	ErrRevenueNotComputed = errors.New("finance: revenue not computed")
	// ErrNoCashFlows is returned when metrics are requested before the schedule exists.
	ErrNoCashFlows = errors.New("finance: cash flows not generated")
)
