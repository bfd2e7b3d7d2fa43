package surrogate

import "errors"

var (
	// ErrNoPredictionInputs means a magnitude prediction was requested
	// with neither bound observations nor an explicit times/filters/
	// distance triple.
	ErrNoPredictionInputs = errors.New("neither bound observations nor explicit prediction times supplied")

	// ErrFiltersNotLoaded means the model was constructed without a
	// filter library, so magnitude prediction is unavailable.
	ErrFiltersNotLoaded = errors.New("filter library not loaded")

	// ErrNoObservations means a likelihood function was called on a
	// model with no bound observation set.
	ErrNoObservations = errors.New("no observations bound to the model")
)
