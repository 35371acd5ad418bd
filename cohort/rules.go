package cohort

import (
	"errors"
	"regexp"
	"time"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

var errEndBeforeStart = errors.New("must be after the start date")

// after accepts a time (or *time.Time) later than start.
func after(start time.Time) func(any) error {
	return func(value any) error {
		var end time.Time
		switch v := value.(type) {
		case time.Time:
			end = v
		case *time.Time:
			if v == nil {
				return nil
			}
			end = *v
		default:
			return nil
		}
		if end.IsZero() || start.IsZero() {
			return nil
		}
		if !end.After(start) {
			return errEndBeforeStart
		}
		return nil
	}
}
