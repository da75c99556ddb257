package menu

import "errors"

// Configuration errors. Invalid settings are caller mistakes and fail
// fast before any blocks are processed.
var (
	// ErrInvalidMaxColumns is returned when MaxColumns is not positive.
	ErrInvalidMaxColumns = errors.New("max columns must be greater than zero")

	// ErrInvalidColumnGap is returned when MaxColumnGap is negative.
	ErrInvalidColumnGap = errors.New("max column gap must not be negative")

	// ErrInvalidMatchDistance is returned when MaxMatchDistance is not positive.
	ErrInvalidMatchDistance = errors.New("max match distance must be greater than zero")
)

// Config controls one parse. It is pure input: the engine copies it and
// holds no state across calls.
type Config struct {
	// LanguageHints is forwarded to the OCR backend and otherwise unused
	// by the engine.
	LanguageHints []string

	// MaxColumns caps the number of columns the grouper may produce.
	MaxColumns int

	// MaxColumnGap is the largest horizontal gap, in pixels, between two
	// blocks that still belong to the same column.
	MaxColumnGap float64

	// MaxMatchDistance is the vertical distance cutoff, in pixels, for
	// pairing a name with a price. Zero selects DefaultMaxMatchDistance.
	MaxMatchDistance float64
}

// DefaultConfig returns settings tuned for a photographed vertical
// Japanese menu.
func DefaultConfig() Config {
	return Config{
		LanguageHints:    []string{"ja"},
		MaxColumns:       8,
		MaxColumnGap:     60,
		MaxMatchDistance: DefaultMaxMatchDistance,
	}
}

// Validate reports the first configuration violation found.
func (c Config) Validate() error {
	if c.MaxColumns <= 0 {
		return ErrInvalidMaxColumns
	}
	if c.MaxColumnGap < 0 {
		return ErrInvalidColumnGap
	}
	if c.MaxMatchDistance < 0 {
		return ErrInvalidMatchDistance
	}
	return nil
}

// matchDistance resolves the effective matcher cutoff.
func (c Config) matchDistance() float64 {
	if c.MaxMatchDistance > 0 {
		return c.MaxMatchDistance
	}
	return DefaultMaxMatchDistance
}
