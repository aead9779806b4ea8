// Package frequency converts forecast horizons expressed in resampling
// frequency units into absolute day or second counts. A frequency code is a
// short string like "D", "W", "3H" or "15s"; the trailing character selects
// the unit family.
package frequency

import (
	"errors"
	"fmt"
)

// ErrUnknownCode is returned for an empty or unrecognized frequency code.
var ErrUnknownCode = errors.New("unknown frequency code")

const (
	secondsPerHour = 3600
	secondsPerDay  = 86400
)

// Days converts a horizon of freq units into whole days. Sub-daily units
// truncate toward zero.
func Days(freq string, horizon int) (int, error) {
	unit, err := unitOf(freq)
	if err != nil {
		return 0, err
	}
	switch unit {
	case 's':
		return horizon / secondsPerDay, nil
	case 'H':
		return horizon / 24, nil
	case 'D':
		return horizon, nil
	case 'W':
		return horizon * 7, nil
	case 'M':
		return horizon * 30, nil
	case 'Q':
		return horizon * 90, nil
	default: // 'Y'
		return horizon * 365, nil
	}
}

// Seconds converts a horizon of freq units into seconds.
func Seconds(freq string, horizon int) (int, error) {
	unit, err := unitOf(freq)
	if err != nil {
		return 0, err
	}
	switch unit {
	case 's':
		return horizon, nil
	case 'H':
		return horizon * secondsPerHour, nil
	case 'D':
		return horizon * secondsPerDay, nil
	case 'W':
		return horizon * 7 * secondsPerDay, nil
	case 'M':
		return horizon * 30 * secondsPerDay, nil
	case 'Q':
		return horizon * 90 * secondsPerDay, nil
	default: // 'Y'
		return horizon * 365 * secondsPerDay, nil
	}
}

// SubDaily reports whether the frequency unit is finer than a day.
func SubDaily(freq string) (bool, error) {
	unit, err := unitOf(freq)
	if err != nil {
		return false, err
	}
	return unit == 's' || unit == 'H', nil
}

func unitOf(freq string) (byte, error) {
	if freq == "" {
		return 0, fmt.Errorf("%w: empty string", ErrUnknownCode)
	}
	unit := freq[len(freq)-1]
	switch unit {
	case 's', 'H', 'D', 'W', 'M', 'Q', 'Y':
		return unit, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCode, freq)
	}
}
