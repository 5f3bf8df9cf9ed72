package model

import (
	"fmt"
	"strconv"
	"time"
)

// IntervalDuration converts an exchange interval string ("1m", "4h", "1d",
// "1w", "1M") into a duration. A month counts as 30 days.
func IntervalDuration(interval string) (time.Duration, error) {
	if len(interval) < 2 {
		return 0, fmt.Errorf("invalid interval %q", interval)
	}
	n, err := strconv.Atoi(interval[:len(interval)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid interval %q", interval)
	}
	var unit time.Duration
	switch interval[len(interval)-1] {
	case 's':
		unit = time.Second
	case 'm':
		unit = time.Minute
	case 'h':
		unit = time.Hour
	case 'd':
		unit = 24 * time.Hour
	case 'w':
		unit = 7 * 24 * time.Hour
	case 'M':
		unit = 30 * 24 * time.Hour
	default:
		return 0, fmt.Errorf("invalid interval %q", interval)
	}
	return time.Duration(n) * unit, nil
}
