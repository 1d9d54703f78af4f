package ena

import "errors"

var (
	// Construction errors
	ErrNoNodes          = errors.New("ena: system has no nodes")
	ErrNoLocations      = errors.New("ena: node has no locations")
	ErrInvalidInput     = errors.New("ena: input node index out of range")
	ErrInvalidTarget    = errors.New("ena: transition target out of range")
	ErrInvalidInitial   = errors.New("ena: initial location out of range")
	ErrDuplicateName    = errors.New("ena: duplicate field name")
	ErrInvalidInitValue = errors.New("ena: invalid initial value type")

	// Path errors
	ErrInvalidPath = errors.New("ena: invalid transition path")

	// Snapshot errors
	ErrUnknownField = errors.New("ena: unknown snapshot field")
)
