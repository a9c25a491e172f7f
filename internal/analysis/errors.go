package analysis

import "errors"

var (
	// ErrUnknownBA is returned when a balancing authority has no cached series.
	ErrUnknownBA = errors.New("analysis: unknown balancing authority")

	// ErrNoSeasonalData is returned when a BA has no demand in either the
	// summer or winter month sets, so no usable threshold exists.
	ErrNoSeasonalData = errors.New("analysis: no seasonal demand data")

	// ErrBoundsNotFound is returned when bracket expansion exhausts its
	// doubling budget without the upper bound crossing the target rate.
	ErrBoundsNotFound = errors.New("analysis: bracket bounds not found")

	// ErrTargetUnachievable is returned when no load addition reaches the
	// target curtailment rate within tolerance. This is an expected outcome
	// for targets below a BA's first achievable rate, not a failure of the
	// solver.
	ErrTargetUnachievable = errors.New("analysis: target curtailment rate not achievable")

	// ErrRatesRequired is returned when a batch run is requested without an
	// explicit list of target rates.
	ErrRatesRequired = errors.New("analysis: target curtailment rates must be explicitly provided")
)
